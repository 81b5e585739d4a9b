// Package langdetect supplies concrete lang.Detector adapters. The module
// ships exactly one, WhatlangDetector, over github.com/abadojack/whatlanggo
// — the closest pure-Go equivalent to the n-gram classifiers ucto-family
// tools traditionally delegate language detection to (spec.md §4.6/§9).
package langdetect

import "github.com/abadojack/whatlanggo"

// WhatlangDetector adapts whatlanggo's n-gram classifier to lang.Detector.
// Confidence below MinConfidence is treated as "could not decide" (an
// empty code), matching the "" = unknown contract lang.Dispatcher expects.
type WhatlangDetector struct {
	// MinConfidence rejects a low-confidence guess outright. Zero accepts
	// every guess whatlanggo does not itself report as undetermined.
	MinConfidence float64
}

// Detect implements lang.Detector. text arrives already utt_mark-stripped
// and lowercased (lang.Dispatcher's contract); whatlanggo itself is
// case-insensitive so no further normalization is needed here.
func (d *WhatlangDetector) Detect(text string) string {
	info := whatlanggo.Detect(text)
	if info.Lang == whatlanggo.Und {
		return ""
	}
	if info.Confidence < d.MinConfidence {
		return ""
	}
	return info.Lang.Iso6393()
}
