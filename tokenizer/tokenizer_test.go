package tokenizer

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"bitbucket.org/creachadair/stringset"

	"github.com/ucto-go/ucto/config"
	"github.com/ucto-go/ucto/quote"
	"github.com/ucto-go/ucto/rules"
	"github.com/ucto-go/ucto/token"
)

func plainSetting() *config.Setting {
	cascade := rules.NewCascade()
	punct, err := rules.NewRule(token.TypePunctuation, `[.,!?;:]`)
	if err != nil {
		panic(err)
	}
	cascade.Rules = append(cascade.Rules, punct)
	return &config.Setting{
		Cascade:    cascade,
		EOSMarkers: stringset.New(".", "!", "?"),
		Quotes:     quote.DefaultPairs(),
		Filter:     map[rune]string{},
		Macros:     map[string]string{},
		Splitter:   '%',
		Source:     "test",
	}
}

func newTestTokenizer() *Tokenizer {
	settings := map[string]*config.Setting{"default": plainSetting()}
	return New(settings, "default", nil, false)
}

func TestTokenizeLineProducesWords(t *testing.T) {
	tz := newTestTokenizer()
	if err := tz.TokenizeLine("Hello world."); err != nil {
		t.Fatal(err)
	}
	if len(tz.buffer) == 0 {
		t.Fatal("expected tokens in buffer")
	}
	if tz.buffer[0].Text != "Hello" {
		t.Errorf("buffer[0] = %+v", tz.buffer[0])
	}
}

func TestTokenizeLineFirstTokenIsNewParagraph(t *testing.T) {
	tz := newTestTokenizer()
	if err := tz.TokenizeLine("First line."); err != nil {
		t.Fatal(err)
	}
	if !tz.buffer[0].Role.Has(token.NewParagraph) {
		t.Errorf("first token of document should open NEWPARAGRAPH: %v", tz.buffer[0].Role)
	}
}

func TestBlankLineArmsParagraphSignal(t *testing.T) {
	tz := newTestTokenizer()
	if err := tz.TokenizeLine("First."); err != nil {
		t.Fatal(err)
	}
	if err := tz.TokenizeLine(""); err != nil {
		t.Fatal(err)
	}
	if err := tz.TokenizeLine("Second."); err != nil {
		t.Fatal(err)
	}
	var secondStart = -1
	for i, tok := range tz.buffer {
		if tok.Text == "Second" {
			secondStart = i
			break
		}
	}
	if secondStart < 0 {
		t.Fatal("did not find Second token")
	}
	if !tz.buffer[secondStart].Role.Has(token.NewParagraph) {
		t.Errorf("token after blank line should be NEWPARAGRAPH: %v", tz.buffer[secondStart].Role)
	}
}

func TestGetSentencesAfterFinish(t *testing.T) {
	tz := newTestTokenizer()
	if err := tz.TokenizeLine("Hello world. This is Go"); err != nil {
		t.Fatal(err)
	}
	tz.Finish()
	sentences := tz.GetSentences()
	if len(sentences) != 2 {
		t.Fatalf("got %d sentences, want 2: %+v", len(sentences), sentences)
	}
	if sentences[0][len(sentences[0])-1].Text != "." {
		t.Errorf("first sentence should end on the period: %+v", sentences[0])
	}
	if sentences[1][len(sentences[1])-1].Text != "Go" {
		t.Errorf("second (forced) sentence should end on Go: %+v", sentences[1])
	}
}

func TestUttMarkForcesSentenceEnd(t *testing.T) {
	tz := newTestTokenizer()
	tz.Detector.SentencePerLineInput = false
	if err := tz.TokenizeLine("no terminal punctuation here<utt>"); err != nil {
		t.Fatal(err)
	}
	count := tz.Detector.CountSentences(tz.buffer, false)
	if count != 1 {
		t.Fatalf("count = %d, want 1 after explicit utt_mark", count)
	}
}

func TestTokenizeOneSentenceDrainsReader(t *testing.T) {
	tz := newTestTokenizer()
	r := bufio.NewScanner(strings.NewReader("Hello world.\nSecond sentence.\n"))
	first, err := tz.TokenizeOneSentence(r)
	if err != nil {
		t.Fatal(err)
	}
	if first[len(first)-1].Text != "." {
		t.Errorf("first sentence = %+v", first)
	}
	second, err := tz.TokenizeOneSentence(r)
	if err != nil {
		t.Fatal(err)
	}
	if second[len(second)-1].Text != "." {
		t.Errorf("second sentence = %+v", second)
	}
	_, err = tz.TokenizeOneSentence(r)
	if err != io.EOF {
		t.Errorf("err = %v, want io.EOF", err)
	}
}
