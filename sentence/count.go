package sentence

import "github.com/ucto-go/ucto/token"

// CountSentences implements spec.md §4.3's count_sentences(force), grounded
// on the original countSentences: a single forward pass that tracks quote
// depth (reset at NEWPARAGRAPH), marks BEGIN_SENT on the current sentence's
// first token as a sanity check, promotes a depth-zero TEMP_END_SENT to
// END_SENT when force is set, and forces END_SENT onto the buffer's last
// token if force is set and nothing already ended it there.
func (d *Detector) CountSentences(buf []token.Token, force bool) int {
	n := len(buf)
	if n == 0 {
		return 0
	}

	quoteLevel := 0
	count := 0
	begin := 0
	curLang := ""
	for i := 0; i < n; i++ {
		if curLang == "" {
			curLang = buf[i].Language
		} else if buf[i].Language != curLang {
			buf[i-1].Role = buf[i-1].Role.Set(token.EndSentence)
			curLang = buf[i].Language
		}

		if buf[i].Role.Has(token.NewParagraph) {
			quoteLevel = 0
		}
		if buf[i].Role.Has(token.BeginQuote) {
			quoteLevel++
		}
		if buf[i].Role.Has(token.EndQuote) {
			quoteLevel--
		}

		if force && buf[i].Role.Has(token.TempEndSentence) && quoteLevel == 0 {
			buf[i].Role = buf[i].Role.Clear(token.TempEndSentence).Set(token.EndSentence)
		}

		buf[begin].Role = buf[begin].Role.Set(token.BeginSentence)

		if buf[i].Role.Has(token.EndSentence) && quoteLevel == 0 {
			begin = i + 1
			count++
		}

		if force && i == n-1 && !buf[i].Role.Has(token.EndSentence) {
			count++
			buf[i].Role = buf[i].Role.Set(token.EndSentence)
		}
	}
	return count
}

// PopSentence implements spec.md §4.3's "popping a sentence", grounded on
// the original popSentence. Quote depth is tracked in the same order the
// original does it: NEWPARAGRAPH resets it, ENDQUOTE decrements it before
// the BEGIN_SENT check for this token, and BEGINQUOTE increments it only
// after that check — incrementing before would make a token that opens a
// quote and starts a sentence in the same breath miscount as already
// inside that quote, per the original's own inline note on this ordering.
func (d *Detector) PopSentence(buf *[]token.Token) ([]token.Token, bool) {
	b := *buf
	n := len(b)
	if n == 0 {
		return nil, false
	}

	quoteLevel := 0
	begin := 0
	for i := 0; i < n; i++ {
		if b[i].Role.Has(token.NewParagraph) {
			quoteLevel = 0
		} else if b[i].Role.Has(token.EndQuote) {
			quoteLevel--
		}

		if b[i].Role.Has(token.BeginSentence) && quoteLevel == 0 {
			begin = i
		}

		if b[i].Role.Has(token.BeginQuote) {
			quoteLevel++
		}

		if b[i].Role.Has(token.EndSentence) && quoteLevel == 0 {
			popped := append([]token.Token(nil), b[begin:i+1]...)
			rest := append([]token.Token(nil), b[i+1:]...)
			*buf = rest
			if d.Quoting != nil {
				d.Quoting.FlushStack(i + 1)
			}
			return popped, true
		}
	}
	return nil, false
}
