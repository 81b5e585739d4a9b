// Package sentence implements the sentence/paragraph boundary detector
// (spec.md §4.3): assigning BEGIN_SENT/END_SENT/TEMP_END_SENT roles over a
// token buffer using the end-of-sentence marker set, quote state and
// casing heuristics, plus sentence counting and popping.
package sentence

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"bitbucket.org/creachadair/stringset"

	"github.com/ucto-go/ucto/internal/charset"
	"github.com/ucto-go/ucto/quote"
	"github.com/ucto-go/ucto/token"
)

// closeBrackets is the set of single characters spec.md §4.3 calls out by
// name for the closing-bracket rule: ), }, ], >.
var closeBrackets = stringset.New(")", "}", "]", ">")

// Detector holds the per-language state bounds detection needs: the
// configured end-of-sentence marker set and the live Quoting state (nil
// when quote-detection is off for this language).
type Detector struct {
	EOSMarkers           stringset.Set
	Quoting              *quote.Quoting
	QuoteDetection       bool
	SentencePerLineInput bool
}

// DetectBounds implements spec.md §4.3: walks buf[offset:], assigning
// sentence-boundary roles to every PUNCTUATION-typed token, then runs the
// trailing-punctuation post-pass back to (but not touching) offset itself.
func (d *Detector) DetectBounds(buf []token.Token, offset int) error {
	for i := offset; i < len(buf); i++ {
		if !strings.HasPrefix(buf[i].Type, token.TypePunctuation) {
			continue
		}
		if err := d.boundAt(buf, i); err != nil {
			return err
		}
	}
	d.postPass(buf, offset)
	return nil
}

func (d *Detector) boundAt(buf []token.Token, i int) error {
	isEOS := d.isEOS(buf, i)
	if d.SentencePerLineInput {
		isEOS = false
	}

	switch {
	case isEOS:
		if d.QuoteDetection && d.Quoting != nil && d.Quoting.Depth() > 0 {
			buf[i].Role = buf[i].Role.Set(token.TempEndSentence)
			if i > 0 {
				buf[i-1].Role = buf[i-1].Role.Clear(token.TempEndSentence)
			}
		} else {
			buf[i].Role = buf[i].Role.Set(token.EndSentence)
			if i+1 < len(buf) {
				buf[i+1].Role = buf[i+1].Role.Set(token.BeginSentence)
			}
			demoteMergedBoundary(buf, i)
		}
	case closeBrackets.Contains(buf[i].Text):
		// A closing bracket right after a "pure" END_SENT absorbs it: the
		// previous token stops being a sentence end and this one stops
		// being a sentence start, leaving the boundary to a later token
		// instead of splitting mid-parenthetical (spec.md §4.3; exact
		// behavior grounded on the original detectSentenceBounds, which
		// only clears the two flags here rather than granting END_SENT to
		// the bracket itself).
		demoteMergedBoundary(buf, i)
	}

	if d.QuoteDetection && d.Quoting != nil {
		r := firstRune(buf[i].Text)
		if r != 0 {
			return d.Quoting.Handle(i, string(r), buf)
		}
	}
	return nil
}

// demoteMergedBoundary implements the "if previous token is EOS and not
// BOS, it stops being EOS, as this one takes its place" rule shared by
// both the plain-EOS and closing-bracket branches: it clears the
// predecessor's END_SENT and this token's BEGIN_SENT, merging a run of
// trailing punctuation into a single boundary.
func demoteMergedBoundary(buf []token.Token, i int) {
	if i == 0 {
		return
	}
	prev := buf[i-1].Role
	if prev.Has(token.EndSentence) && !prev.Has(token.BeginSentence) {
		buf[i-1].Role = prev.Clear(token.EndSentence)
		buf[i].Role = buf[i].Role.Clear(token.BeginSentence)
	}
}

// isEOS implements spec.md §4.3's is_eos predicate for the token at i,
// grounded on the original detectEos: a one-character eos-marker token is
// an end of sentence unconditionally once any following quote/casing
// exception clears, since by this stage a known abbreviation's internal
// periods were already consumed as part of a single cascade-emitted
// token rather than appearing as their own PUNCTUATION token.
func (d *Detector) isEOS(buf []token.Token, i int) bool {
	r := firstRune(buf[i].Text)
	if r != '.' && !d.EOSMarkers.Contains(string(r)) {
		return false
	}
	if i+1 == len(buf) {
		return true
	}
	next := buf[i+1]
	nr := firstRune(next.Text)
	if charset.IsQuote(nr) {
		if d.QuoteDetection {
			return true
		}
		if i+2 < len(buf) {
			nr2 := firstRune(buf[i+2].Text)
			return charset.IsUpperOrTitle(nr2) || unicode.IsPunct(nr2)
		}
		return false
	}
	if utf8.RuneCountInString(buf[i].Text) > 1 {
		return charset.IsUpperOrTitle(nr)
	}
	return true
}

// postPass implements spec.md §4.3's trailing-punctuation cleanup,
// grounded on the original loop's exact condition: walking backward from
// the buffer end down to (not including) offset while tokens remain
// PUNCTUATION, BEGIN_SENT is always stripped; END_SENT is stripped only
// when quote-detection is off, or the token itself opens a quote — and
// even then never on the buffer's very last token.
func (d *Detector) postPass(buf []token.Token, offset int) {
	n := len(buf)
	for i := n - 1; i > offset; i-- {
		if !strings.HasPrefix(buf[i].Type, token.TypePunctuation) {
			break
		}
		buf[i].Role = buf[i].Role.Clear(token.BeginSentence)
		if !d.QuoteDetection || buf[i].Role.Has(token.BeginQuote) {
			if i != n-1 {
				buf[i].Role = buf[i].Role.Clear(token.EndSentence)
			}
		}
	}
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
