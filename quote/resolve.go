package quote

import (
	"unicode/utf8"

	"github.com/ucto-go/ucto/internal/cfgerr"
	"github.com/ucto-go/ucto/internal/charset"
	"github.com/ucto-go/ucto/token"
)

// Resolve implements spec.md §4.4 "Resolve(beginIndex, endIndex)": confirm
// the span between a quote's open and close tokens is a well-formed run of
// sentences (ignoring already-resolved nested quotes), repairing a single
// missing trailing END_SENT by promoting a pending TEMP_END_SENT or
// synthesizing one, then marking BEGIN_QUOTE/END_QUOTE. If the span cannot
// be repaired the attempt is silently discarded — the caller left the open
// entry on the stack and FlushStack will eventually drop it once its
// containing sentence is popped.
func Resolve(buf []token.Token, begin, end int) error {
	if begin > end || begin < 0 || end >= len(buf) {
		return &cfgerr.RangeError{Msg: "quote resolve: begin > end or out of range"}
	}
	if begin == end {
		buf[begin].Role = buf[begin].Role.Set(token.BeginQuote).Set(token.EndQuote)
		return nil
	}

	opens, closes := 0, 0
	lastTemp := -1
	for i := begin + 1; i < end; i++ {
		r := buf[i].Role
		if r.Has(token.BeginSentence) {
			opens++
		}
		// The quote's first sentence begins implicitly at the opening quote,
		// so an END_SENT with no unmatched BEGIN_SENT before it closes that
		// implicit sentence and does not count against the balance.
		if r.Has(token.EndSentence) && closes < opens {
			closes++
		}
		if r.Has(token.TempEndSentence) {
			lastTemp = i
		}
	}

	switch opens - closes {
	case 0:
		// Already balanced.
	case 1:
		if lastTemp >= 0 {
			buf[lastTemp].Role = buf[lastTemp].Role.Clear(token.TempEndSentence).Set(token.EndSentence)
			if lastTemp+1 < end {
				buf[lastTemp+1].Role = buf[lastTemp+1].Role.Set(token.BeginSentence)
			}
		} else {
			buf[end-1].Role = buf[end-1].Role.Set(token.EndSentence)
		}
	default:
		// Cannot be repaired by a single synthesized boundary; discard the
		// attempt (leave the quote unresolved).
		return errUnrepaired
	}

	buf[begin].Role = buf[begin].Role.Set(token.BeginQuote)
	buf[end].Role = buf[end].Role.Set(token.EndQuote)

	// Propagate END_SENT onto the closing quote if the content token right
	// before it already ended a sentence and it is immediately followed
	// (possibly across one intervening open quote) by a token whose text
	// starts with an uppercase/titlecase letter — the original's
	// resolveQuote tests the next token's literal casing (is_BOS), not a
	// role bit, since the forward pass that assigns BEGIN_SENT/END_SENT
	// hasn't reached that index yet at the point Resolve runs.
	if buf[end-1].Role.Has(token.EndSentence) {
		next := end + 1
		if next < len(buf) && buf[next].Role.Has(token.BeginQuote) {
			next++
		}
		if next < len(buf) {
			r, _ := utf8.DecodeRuneInString(buf[next].Text)
			if charset.IsUpperOrTitle(r) {
				buf[end].Role = buf[end].Role.Set(token.EndSentence)
			}
		}
	}

	return nil
}

// errUnrepaired is a sentinel distinguishing "discard, try again later"
// from a genuine RangeError/LogicError. Callers should treat it as a no-op,
// not propagate it as fatal.
var errUnrepaired = &unrepairedError{}

type unrepairedError struct{}

func (*unrepairedError) Error() string { return "quote span could not be repaired" }

// IsUnrepaired reports whether err is the "discard this resolution
// attempt" sentinel (as opposed to a genuine fatal RangeError/LogicError).
func IsUnrepaired(err error) bool {
	_, ok := err.(*unrepairedError)
	return ok
}
