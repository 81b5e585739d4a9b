// Package tokenizer implements the TokenizerClass equivalent of spec.md
// §3/§4.8: line-by-line ingestion into a growing token buffer, boundary
// detection on each newly appended span, and sentence popping/rendering
// off the front of that buffer.
package tokenizer

import (
	"bufio"
	"io"
	"strings"

	"github.com/ucto-go/ucto/config"
	"github.com/ucto-go/ucto/internal/charset"
	"github.com/ucto-go/ucto/lang"
	"github.com/ucto-go/ucto/quote"
	"github.com/ucto-go/ucto/rules"
	"github.com/ucto-go/ucto/sentence"
	"github.com/ucto-go/ucto/token"
)

// DefaultUttMark is the explicit utterance-boundary marker spec.md §3
// gives as the tokenizer's default.
const DefaultUttMark = "<utt>"

// Tokenizer holds the per-document state spec.md §3's "Tokenizer state"
// names: the compiled per-language settings, the growing token buffer,
// mode flags, the paragraph signal and the active separator set.
//
// Quote tracking is kept to a single Quoting shared across the whole
// buffer rather than one per language the way the original keeps
// settings[lang]->quotes: ucto-go's line-based API dispatches language per
// line but still renders one linear document, and one shared open-quote
// stack is the only sensible way to track nesting across a language
// switch mid-document. Single-language runs (the common case, and the
// only one cmd/ucto's -L flag drives) are unaffected by this narrowing.
type Tokenizer struct {
	Settings   map[string]*config.Setting
	Dispatcher *lang.Dispatcher
	Detector   *sentence.Detector
	Quoting    *quote.Quoting
	Separators *charset.SeparatorSet

	PassThrough          bool
	SentencePerLineInput bool
	UttMark              string

	// DoFilter enables the per-language character-substitution filter
	// (spec.md §3 mode flags, §4.1 [FILTER]); on by default, matching the
	// original's "filtering is on unless disabled" behavior.
	DoFilter bool
	// LowerCase/UpperCase fold every emitted token's text (mutually
	// exclusive; LowerCase wins if both are set, mirroring -l/-u being the
	// last-flag-wins case in most ucto front-ends).
	LowerCase bool
	UpperCase bool
	// DoPunctFilter drops PUNCTUATION/CURRENCY/EMOTICON/PICTOGRAM tokens
	// from the emitted stream (spec.md §4.2 step 6), clearing NOSPACE on
	// the token that preceded a dropped one.
	DoPunctFilter bool
	// NoParagraphDetection disables the blank-line paragraph signal (-P):
	// blank lines are still skipped, but never arm NEWPARAGRAPH/BEGIN_SENT
	// on the following token.
	NoParagraphDetection bool

	buffer           []token.Token
	pendingParagraph bool
}

// New builds a Tokenizer from settings keyed by language code (must
// include "default"). Quote pairs are taken from the default Setting;
// sentence boundary detection's end-of-sentence marker set likewise comes
// from the default Setting, per the single-shared-Quoting narrowing
// documented on the Tokenizer type.
func New(settings map[string]*config.Setting, defaultLang string, detectLanguage lang.Detector, undAllowed bool) *Tokenizer {
	def := settings[defaultLang]
	q := quote.NewQuoting(def.Quotes)
	return &Tokenizer{
		Settings: settings,
		Dispatcher: &lang.Dispatcher{
			Settings:   settings,
			Default:    def,
			UndAllowed: undAllowed,
			Detect:     detectLanguage != nil,
			Detector:   detectLanguage,
			UttMark:    DefaultUttMark,
		},
		Detector: &sentence.Detector{
			EOSMarkers: def.EOSMarkers,
			Quoting:    q,
		},
		Quoting:          q,
		Separators:       charset.NewSeparatorSet(),
		UttMark:          DefaultUttMark,
		DoFilter:         true,
		pendingParagraph: true,
	}
}

// EnableQuoteDetection turns on quote-aware sentence boundary deferral
// (spec.md §4.3/§4.4).
func (t *Tokenizer) EnableQuoteDetection(on bool) {
	t.Detector.QuoteDetection = on
}

// TokenizeLine implements one pass of spec.md §4.8's "tokenize_one_line"
// over a single line of input (no embedded newline): an empty line arms
// the paragraph signal for the next non-empty line's first token,
// otherwise the line is dispatched by language, chunked on separators,
// cascaded, appended to the buffer, and bounds-detected over just the
// newly appended span.
func (t *Tokenizer) TokenizeLine(line string) error {
	if strings.TrimRight(line, "\r\n") == "" {
		if !t.NoParagraphDetection {
			t.pendingParagraph = true
		}
		return nil
	}

	begin := len(t.buffer)
	newToks := t.dispatchLine(line)
	if len(newToks) == 0 {
		return nil
	}

	if t.pendingParagraph {
		newToks[0].Role = newToks[0].Role.Set(token.NewParagraph).Set(token.BeginSentence)
		t.pendingParagraph = false
	}
	if t.SentencePerLineInput {
		newToks[0].Role = newToks[0].Role.Set(token.BeginSentence)
		newToks[len(newToks)-1].Role = newToks[len(newToks)-1].Role.Set(token.EndSentence)
	}

	t.buffer = append(t.buffer, newToks...)
	t.Detector.SentencePerLineInput = t.SentencePerLineInput
	return t.Detector.DetectBounds(t.buffer, begin)
}

func (t *Tokenizer) dispatchLine(line string) []token.Token {
	cascade := func(setting *config.Setting, text string) []token.Token {
		return t.tokenizeChunks(setting, text)
	}
	toks := t.Dispatcher.TokenizeOneLine(line, "", cascade)
	return t.postProcess(toks)
}

// postProcess applies the per-line mode flags that act on the fully
// dispatched token stream rather than on one chunk at a time (spec.md §3,
// §4.2 step 6): punctuation dropping first (so the NOSPACE repair it does
// sees the cascade's original adjacency), then case folding.
func (t *Tokenizer) postProcess(toks []token.Token) []token.Token {
	if t.DoPunctFilter {
		toks = dropPunct(toks)
	}
	switch {
	case t.LowerCase:
		for i := range toks {
			toks[i].Text = strings.ToLower(toks[i].Text)
		}
	case t.UpperCase:
		for i := range toks {
			toks[i].Text = strings.ToUpper(toks[i].Text)
		}
	}
	return toks
}

// dropPunct removes PUNCTUATION/CURRENCY/EMOTICON/PICTOGRAM tokens and
// clears NOSPACE on whatever emitted token preceded a dropped one, so the
// survivor doesn't glue to whatever follows (spec.md §4.2 step 6).
func dropPunct(in []token.Token) []token.Token {
	out := make([]token.Token, 0, len(in))
	for _, tk := range in {
		if isPunctDroppable(tk.Type) {
			if n := len(out); n > 0 {
				out[n-1].Role = out[n-1].Role.Clear(token.NoSpace)
			}
			continue
		}
		out = append(out, tk)
	}
	return out
}

func isPunctDroppable(typ string) bool {
	switch typ {
	case token.TypePunctuation, token.TypeCurrency, token.TypeEmoticon, token.TypePictogram:
		return true
	default:
		return false
	}
}

// tokenizeChunks implements spec.md §4.2 steps 1–2 over one language's
// text: separator-driven chunking (with zero-width-joiner elision) and
// explicit utt_mark splitting, before handing each resulting chunk to the
// rule cascade (or the pass-through classifier).
//
// utt_mark detection here only ever looks back within this call's own
// accumulator, not the Tokenizer's full buffer: the original scans the
// live global token list so a marker at the very start of a new line can
// still close a sentence left open by the previous line. That cross-line
// case is narrowed away here in favor of per-line isolation, which only
// matters for documents that both disable sentenceperlineinput and place
// an explicit marker as literally the first token of a line.
func (t *Tokenizer) tokenizeChunks(setting *config.Setting, text string) []token.Token {
	if t.DoFilter && setting != nil {
		text = setting.Filter.Apply(text)
	}
	var toks []token.Token
	for _, chunk := range splitChunks(text, t.Separators) {
		chunk = elideZWJ(chunk)
		if chunk == "" {
			continue
		}
		if t.UttMark != "" && strings.Contains(chunk, t.UttMark) {
			pieces := strings.Split(chunk, t.UttMark)
			for i, piece := range pieces {
				if piece != "" {
					toks = append(toks, t.classify(setting, piece)...)
				}
				if i < len(pieces)-1 && len(toks) > 0 {
					toks[len(toks)-1].Role = toks[len(toks)-1].Role.Set(token.EndSentence)
				}
			}
			continue
		}
		toks = append(toks, t.classify(setting, chunk)...)
	}
	return toks
}

func (t *Tokenizer) classify(setting *config.Setting, chunk string) []token.Token {
	if t.PassThrough {
		tok := rules.PassThroughClassify(chunk)
		if setting != nil && setting.Cascade != nil && setting.Cascade.NormSet.Contains(tok.Type) {
			tok.Text = "{{" + tok.Type + "}}"
		}
		return []token.Token{tok}
	}
	return setting.Cascade.Tokenize(chunk)
}

// splitChunks breaks text at separator runes (spec.md §4.2 step 1),
// discarding the separators themselves; consecutive separators collapse
// to a single chunk boundary. A zero-width joiner is dropped and the rune
// after it stays in the current chunk, even when that rune is a separator.
func splitChunks(text string, seps *charset.SeparatorSet) []string {
	if seps == nil {
		seps = charset.NewSeparatorSet()
	}
	var chunks []string
	var b strings.Builder
	joined := false
	for _, r := range text {
		if r == charset.ZeroWidthJoiner {
			joined = true
			continue
		}
		if seps.IsSeparator(r) && !joined {
			if b.Len() > 0 {
				chunks = append(chunks, b.String())
				b.Reset()
			}
			continue
		}
		b.WriteRune(r)
		joined = false
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}

// elideZWJ strips zero-width joiners (U+200D), which carry no independent
// token identity and would otherwise confuse rule matching.
func elideZWJ(chunk string) string {
	return strings.ReplaceAll(chunk, "‍", "")
}

// PopSentence extracts and returns the first complete sentence at the
// front of the buffer, if one is available.
func (t *Tokenizer) PopSentence() ([]token.Token, bool) {
	if t.Detector.CountSentences(t.buffer, false) == 0 {
		return nil, false
	}
	return t.Detector.PopSentence(&t.buffer)
}

// Finish forces the tail of the buffer to end in a sentence, promoting any
// lingering TEMP_END_SENT at quote depth zero and forcing END_SENT onto
// the last token, per spec.md §4.3 count_sentences(force=true). Call this
// once all input is exhausted so a final, unterminated sentence can still
// be popped.
func (t *Tokenizer) Finish() {
	if len(t.buffer) > 0 {
		t.Detector.CountSentences(t.buffer, true)
	}
}

// GetSentences drains every currently poppable sentence from the buffer.
// Call Finish first to also drain a final, unterminated trailing sentence.
func (t *Tokenizer) GetSentences() [][]token.Token {
	var out [][]token.Token
	for {
		s, ok := t.PopSentence()
		if !ok {
			break
		}
		out = append(out, s)
	}
	return out
}

// GetUTF8Sentences is GetSentences under another name: Go's string type is
// already UTF-8, so there is no separate encoding to convert to the way
// the original's UnicodeString-based API needed one.
func (t *Tokenizer) GetUTF8Sentences() [][]token.Token {
	return t.GetSentences()
}

// TokenizeOneSentence reads lines from r until one complete sentence can
// be popped, or r is exhausted — in which case the buffer's tail is
// force-finished and the last, possibly unterminated sentence is
// returned. Returns io.EOF (with no tokens) once both r and the buffer are
// drained.
func (t *Tokenizer) TokenizeOneSentence(r *bufio.Scanner) ([]token.Token, error) {
	for {
		if s, ok := t.PopSentence(); ok {
			return s, nil
		}
		if !r.Scan() {
			if err := r.Err(); err != nil {
				return nil, err
			}
			t.Finish()
			if s, ok := t.PopSentence(); ok {
				return s, nil
			}
			return nil, io.EOF
		}
		if err := t.TokenizeLine(r.Text()); err != nil {
			return nil, err
		}
	}
}
