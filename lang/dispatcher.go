// Package lang implements the per-line language dispatcher (spec.md §4.5):
// selecting which compiled Setting tokenizes a line, optionally splitting
// a line into per-language runs first when detection and "und" spans are
// both enabled.
package lang

import (
	"errors"
	"strings"

	"github.com/ucto-go/ucto/config"
	"github.com/ucto-go/ucto/token"
)

// ErrNoDetector is returned by EnableLanguageDetection when no Detector
// implementation was supplied to enable against.
var ErrNoDetector = errors.New("lang: no language detector adapter configured")

// Detector maps a text fragment to an ISO-639 code, or "" when it cannot
// decide (spec.md §4.6). Callers always pass text with utt_mark
// occurrences already stripped and already lowercased; Dispatcher does
// that normalization before calling Detect so implementations stay pure
// text classifiers.
type Detector interface {
	Detect(text string) string
}

// Cascade recurses into the rule cascade for one language's compiled
// Setting (spec.md §4.2), returning the produced tokens with Language left
// unset — Dispatcher fills it in. Kept as a parameter rather than an
// import so this package has no dependency on package tokenizer, which
// itself depends on lang.
type Cascade func(setting *config.Setting, text string) []token.Token

// Dispatcher holds one tokenizer's configured languages and implements
// spec.md §4.5's tokenize_one_line.
type Dispatcher struct {
	// Settings maps language code (including "default") to its compiled
	// Setting. "und" is never a key here even when UndAllowed is true —
	// spec.md §4.5: "an und key is present with no Setting".
	Settings map[string]*config.Setting
	Default  *config.Setting

	UndAllowed bool
	Detect     bool
	Detector   Detector
	UttMark    string
}

// EnableLanguageDetection turns on the detect/und-splitting path (spec.md
// §4.6/§9). It refuses when d.Detector is nil — detection must be backed
// by a concrete adapter such as langdetect.WhatlangDetector; there is no
// stdlib fallback to silently degrade to.
func (d *Dispatcher) EnableLanguageDetection() error {
	if d.Detector == nil {
		return ErrNoDetector
	}
	d.Detect = true
	return nil
}

// TokenizeOneLine implements spec.md §4.5. hint is the caller-supplied
// language override for this call, or "" for none.
func (d *Dispatcher) TokenizeOneLine(line, hint string, cascade Cascade) []token.Token {
	if d.UndAllowed && d.Detect {
		return d.splitByLanguage(line, cascade)
	}
	lang, setting := d.resolve(line, hint)
	if setting == nil {
		return d.undSpans(line)
	}
	return d.run(setting, lang, line, cascade)
}

// resolve implements the non-splitting branch of spec.md §4.5: a hint
// wins outright; otherwise detect from the whole line if detection is on;
// otherwise "default". Falls back to und (if permitted) or default when
// the resolved code names no configured Setting.
func (d *Dispatcher) resolve(line, hint string) (string, *config.Setting) {
	code := hint
	if code == "" {
		if d.Detect && d.Detector != nil {
			code = d.Detector.Detect(d.normalizeForDetect(line))
		} else {
			code = token.LanguageDefault
		}
	}
	if code == "" {
		code = token.LanguageUndetermined
	}
	if s, ok := d.Settings[code]; ok {
		return code, s
	}
	if d.UndAllowed {
		return token.LanguageUndetermined, nil
	}
	return token.LanguageDefault, d.Default
}

// normalizeForDetect strips utt_mark occurrences and lowercases line, the
// exact input contract spec.md §4.6 requires of a LanguageDetector.
func (d *Dispatcher) normalizeForDetect(line string) string {
	if d.UttMark != "" {
		line = strings.ReplaceAll(line, d.UttMark, "")
	}
	return strings.ToLower(line)
}

// run invokes cascade and tags every resulting token with lang.
func (d *Dispatcher) run(setting *config.Setting, lang, text string, cascade Cascade) []token.Token {
	toks := cascade(setting, text)
	for i := range toks {
		toks[i].Language = lang
	}
	return toks
}

// undSpans builds the UNANALYZED tokens spec.md §4.5 emits for a span that
// resolved to "und" with no configured Setting: one token, marked as a
// whole sentence, for each piece of text between utt_mark occurrences
// (whitespace-only pieces are skipped).
func (d *Dispatcher) undSpans(text string) []token.Token {
	pieces := []string{text}
	if d.UttMark != "" {
		pieces = strings.Split(text, d.UttMark)
	}
	var out []token.Token
	for _, p := range pieces {
		if strings.TrimSpace(p) == "" {
			continue
		}
		t := token.Token{Type: token.TypeUnanalyzed, Text: p, Language: token.LanguageUndetermined}
		t.Role = t.Role.Set(token.BeginSentence).Set(token.EndSentence)
		out = append(out, t)
	}
	return out
}

// splitByLanguage implements spec.md §4.5's und-splitting branch: split
// the line on eos_markers boundaries followed by a space (using the
// default Setting's markers), detect each split's language, coalesce
// adjacent same-language splits into runs, and for each run either emit
// one UNANALYZED token (und) or recurse into the cascade.
func (d *Dispatcher) splitByLanguage(line string, cascade Cascade) []token.Token {
	parts := splitOnEOS(line, d.Default)

	type run struct {
		lang string
		text strings.Builder
	}
	var runs []run
	for _, part := range parts {
		code := ""
		if d.Detector != nil {
			code = d.Detector.Detect(d.normalizeForDetect(part))
		}
		lang := code
		if lang == "" {
			lang = token.LanguageUndetermined
		}
		if lang != token.LanguageUndetermined {
			if _, ok := d.Settings[lang]; !ok {
				lang = token.LanguageDefault
			}
		}
		if n := len(runs); n > 0 && runs[n-1].lang == lang {
			runs[n-1].text.WriteString(part)
			continue
		}
		var r run
		r.lang = lang
		r.text.WriteString(part)
		runs = append(runs, r)
	}

	var out []token.Token
	for _, r := range runs {
		text := r.text.String()
		if text == "" {
			continue
		}
		if r.lang == token.LanguageUndetermined {
			out = append(out, d.undSpans(text)...)
			continue
		}
		setting := d.Settings[r.lang]
		if setting == nil {
			setting = d.Default
		}
		out = append(out, d.run(setting, r.lang, text, cascade)...)
	}
	return out
}

// splitOnEOS splits line into pieces, each ending right after a run of
// default.EOSMarkers characters that is followed by whitespace (spec.md
// §4.5: "split the line on sentence-terminator boundaries that are
// followed by a space"). The terminator and any single trailing space stay
// attached to the piece that precedes the split, matching how the
// original line is reassembled losslessly by concatenation.
func splitOnEOS(line string, defaultSetting *config.Setting) []string {
	if defaultSetting == nil {
		return []string{line}
	}
	runes := []rune(line)
	var parts []string
	start := 0
	for i := 0; i < len(runes); i++ {
		if !defaultSetting.EOSMarkers.Contains(string(runes[i])) {
			continue
		}
		j := i + 1
		for j < len(runes) && defaultSetting.EOSMarkers.Contains(string(runes[j])) {
			j++
		}
		if j < len(runes) && runes[j] == ' ' {
			parts = append(parts, string(runes[start:j+1]))
			start = j + 1
			i = j
		}
	}
	if start < len(runes) {
		parts = append(parts, string(runes[start:]))
	}
	if len(parts) == 0 {
		return []string{line}
	}
	return parts
}
