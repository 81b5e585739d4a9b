package sentence

import (
	"testing"

	"bitbucket.org/creachadair/stringset"

	"github.com/ucto-go/ucto/quote"
	"github.com/ucto-go/ucto/token"
)

func word(text string) token.Token { return token.New(token.TypeWord, text) }
func punct(text string) token.Token {
	t := token.New(token.TypePunctuation, text)
	t.Role = t.Role.Set(token.NoSpace)
	return t
}

func TestIsEOSEndOfBuffer(t *testing.T) {
	d := &Detector{EOSMarkers: stringset.New(".", "!", "?")}
	buf := []token.Token{word("Hello"), punct(".")}
	if err := d.DetectBounds(buf, 0); err != nil {
		t.Fatal(err)
	}
	if !buf[1].Role.Has(token.EndSentence) {
		t.Errorf("buf[1].Role = %v, want EndSentence set", buf[1].Role)
	}
}

func TestIsEOSBeforeUppercaseWord(t *testing.T) {
	d := &Detector{EOSMarkers: stringset.New(".", "!", "?")}
	buf := []token.Token{word("Hello"), punct("."), word("World")}
	if err := d.DetectBounds(buf, 0); err != nil {
		t.Fatal(err)
	}
	if !buf[1].Role.Has(token.EndSentence) {
		t.Errorf("buf[1] not EndSentence: %v", buf[1].Role)
	}
	if !buf[2].Role.Has(token.BeginSentence) {
		t.Errorf("buf[2] not BeginSentence: %v", buf[2].Role)
	}
}

func TestIsEOSMultiCharPunctuationRequiresUppercaseNext(t *testing.T) {
	d := &Detector{EOSMarkers: stringset.New(".", "!", "?")}
	lower := []token.Token{word("Hello"), punct("?!"), word("world")}
	if err := d.DetectBounds(lower, 0); err != nil {
		t.Fatal(err)
	}
	if lower[1].Role.Has(token.EndSentence) {
		t.Errorf("multi-char punctuation before a lowercase word should not be EndSentence: %v", lower[1].Role)
	}

	upper := []token.Token{word("Hello"), punct("?!"), word("World")}
	if err := d.DetectBounds(upper, 0); err != nil {
		t.Fatal(err)
	}
	if !upper[1].Role.Has(token.EndSentence) {
		t.Errorf("multi-char punctuation before an uppercase word should be EndSentence: %v", upper[1].Role)
	}
}

func TestBracketAbsorptionMergesBoundaryAway(t *testing.T) {
	d := &Detector{EOSMarkers: stringset.New(".", "!", "?")}
	buf := []token.Token{word("Hello"), punct("."), punct(")"), word("World")}
	if err := d.DetectBounds(buf, 0); err != nil {
		t.Fatal(err)
	}
	if buf[1].Role.Has(token.EndSentence) {
		t.Errorf("EndSentence should have been demoted off buf[1]: %v", buf[1].Role)
	}
	if buf[2].Role.Has(token.BeginSentence) || buf[2].Role.Has(token.EndSentence) {
		t.Errorf("closing bracket should carry neither boundary flag: %v", buf[2].Role)
	}
}

func TestTrailingPunctuationPostPass(t *testing.T) {
	d := &Detector{EOSMarkers: stringset.New(".", "!", "?")}
	buf := []token.Token{word("Hello"), punct("."), punct(".")}
	if err := d.DetectBounds(buf, 0); err != nil {
		t.Fatal(err)
	}
	if buf[1].Role.Has(token.EndSentence) {
		t.Errorf("interior trailing punctuation should have EndSentence stripped: %v", buf[1].Role)
	}
	if !buf[2].Role.Has(token.EndSentence) {
		t.Errorf("last token should keep EndSentence: %v", buf[2].Role)
	}
}

func TestQuoteDeferredTempEndSentence(t *testing.T) {
	pairs := quote.DefaultPairs()
	q := quote.NewQuoting(pairs)
	d := &Detector{
		EOSMarkers:     stringset.New(".", "!", "?"),
		Quoting:        q,
		QuoteDetection: true,
	}
	buf := []token.Token{
		punct(`"`),
		word("Hello"),
		punct("."),
		word("World"),
		punct(`"`),
	}
	if err := d.DetectBounds(buf, 0); err != nil {
		t.Fatal(err)
	}
	if !buf[0].Role.Has(token.BeginQuote) {
		t.Errorf("opening quote should be BeginQuote: %v", buf[0].Role)
	}
	if !buf[4].Role.Has(token.EndQuote) {
		t.Errorf("closing quote should be EndQuote: %v", buf[4].Role)
	}
}

func TestCountSentencesForceFinalBoundary(t *testing.T) {
	d := &Detector{EOSMarkers: stringset.New(".", "!", "?")}
	buf := []token.Token{word("Hello"), word("there")}
	n := d.CountSentences(buf, true)
	if n != 1 {
		t.Errorf("CountSentences = %d, want 1", n)
	}
	if !buf[1].Role.Has(token.EndSentence) {
		t.Errorf("last token should be forced EndSentence: %v", buf[1].Role)
	}
}

func TestPopSentence(t *testing.T) {
	d := &Detector{EOSMarkers: stringset.New(".", "!", "?")}
	buf := []token.Token{word("Hello"), punct("."), word("World"), punct(".")}
	if err := d.DetectBounds(buf, 0); err != nil {
		t.Fatal(err)
	}
	popped, ok := d.PopSentence(&buf)
	if !ok {
		t.Fatal("expected a poppable sentence")
	}
	if len(popped) != 2 || popped[0].Text != "Hello" || popped[1].Text != "." {
		t.Errorf("popped = %+v", popped)
	}
	if len(buf) != 2 || buf[0].Text != "World" {
		t.Errorf("remaining buf = %+v", buf)
	}
}
