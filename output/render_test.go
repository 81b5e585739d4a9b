package output

import (
	"testing"

	"github.com/ucto-go/ucto/token"
)

func tok(typ, text string, role token.Role) token.Token {
	return token.Token{Type: typ, Text: text, Role: role, Language: "default"}
}

// NOSPACE is set on the token that has nothing following it (rule
// cascade convention: "no space after me"), not on the token that
// follows — see the doc comment on Render.

func TestRenderJoinsWithSpaceAndHonorsNoSpace(t *testing.T) {
	toks := []token.Token{
		tok(token.TypeWord, "Hello", token.NoSpace),
		tok(token.TypePunctuation, ",", 0),
		tok(token.TypeWord, "world", token.NoSpace),
		tok(token.TypePunctuation, ".", token.EndSentence),
	}
	got := Render(toks, false, Options{})
	want := "Hello, world.\n"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRenderUttMarkAtSentenceEnd(t *testing.T) {
	toks := []token.Token{
		tok(token.TypeWord, "Hi", token.NoSpace),
		tok(token.TypePunctuation, ".", token.EndSentence),
	}
	got := Render(toks, false, Options{UttMark: "<utt>"})
	want := "Hi.<utt>"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRenderSuppressesEndSentenceInsideQuote(t *testing.T) {
	toks := []token.Token{
		tok(token.TypePunctuation, `"`, token.NoSpace|token.BeginQuote),
		tok(token.TypeWord, "Hi", token.NoSpace),
		tok(token.TypePunctuation, ".", token.TempEndSentence),
		tok(token.TypeWord, "there", token.NoSpace),
		tok(token.TypePunctuation, `"`, token.EndQuote|token.EndSentence),
	}
	got := Render(toks, false, Options{})
	want := "\"Hi. there\"\n"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRenderNewParagraphBlankLine(t *testing.T) {
	toks := []token.Token{
		tok(token.TypeWord, "First", token.NoSpace),
		tok(token.TypePunctuation, ".", token.EndSentence),
		tok(token.TypeWord, "Second", token.NewParagraph|token.BeginSentence|token.NoSpace),
		tok(token.TypePunctuation, ".", token.EndSentence),
	}
	got := Render(toks, true, Options{})
	want := "First.\n\nSecond.\n"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRenderVerbose(t *testing.T) {
	toks := []token.Token{
		tok(token.TypeWord, "Hi", token.NoSpace),
		tok(token.TypePunctuation, ".", token.EndSentence),
	}
	got := renderVerbose(toks)
	want := "Hi\tWORD\tNOSPACE\n.\tPUNCTUATION\tENDOFSENTENCE\n"
	if got != want {
		t.Errorf("renderVerbose = %q, want %q", got, want)
	}
}
