// Package charset provides the Unicode character-classification, BOM
// sniffing and character-filter primitives the tokenizer core consumes.
// Normalization itself is delegated to golang.org/x/text/unicode/norm; this
// package only adapts that library's modes to the tokenizer's own
// vocabulary (NFC/NFD/NFKC/NFKD) and adds the classification helpers the
// rule cascade needs that the stdlib and x/text don't provide directly.
package charset

import (
	"bufio"
	"fmt"
	"io"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ZeroWidthJoiner is elided during line tokenization (spec.md §4.2 step 1);
// it suppresses the following separator boundary so the next rune stays
// attached to the current chunk.
const ZeroWidthJoiner = '‍'

// Normalizer adapts golang.org/x/text/unicode/norm to the four mode names
// the settings/CLI surface understands.
type Normalizer struct {
	mode string
	form norm.Form
}

// NewNormalizer returns a Normalizer defaulting to no normalization ("").
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// SetMode sets the normalization form; one of "", "NFC", "NFD", "NFKC",
// "NFKD" (case-insensitive). Returns the previous mode, mirroring the
// teacher-idiom getter/setter pairs used throughout this module's ambient
// CLI plumbing.
func (n *Normalizer) SetMode(mode string) (string, error) {
	prev := n.mode
	switch mode {
	case "":
		n.mode, n.form = "", 0
	case "NFC":
		n.mode, n.form = mode, norm.NFC
	case "NFD":
		n.mode, n.form = mode, norm.NFD
	case "NFKC":
		n.mode, n.form = mode, norm.NFKC
	case "NFKD":
		n.mode, n.form = mode, norm.NFKD
	default:
		return prev, fmt.Errorf("charset: unknown normalization mode %q", mode)
	}
	return prev, nil
}

// Mode returns the currently configured normalization mode name.
func (n *Normalizer) Mode() string { return n.mode }

// Normalize applies the configured normalization form, or returns s
// unchanged when no mode is set.
func (n *Normalizer) Normalize(s string) string {
	if n.mode == "" {
		return s
	}
	return n.form.String(s)
}

// Category classifies a single code point into one of the coarse
// categories the tokenizer assigns to single-character chunks (spec.md
// §4.2 step 3).
type Category string

const (
	CategoryWord      Category = "WORD"
	CategoryNumber    Category = "NUMBER"
	CategoryPunct     Category = "PUNCTUATION"
	CategoryCurrency  Category = "CURRENCY"
	CategorySymbol    Category = "SYMBOL"
	CategoryEmoticon  Category = "EMOTICON"
	CategoryPictogram Category = "PICTOGRAM"
	CategoryUnknown   Category = "UNKNOWN"
)

// Emoticons block: U+1F600–U+1F64F.
// Miscellaneous Symbols and Pictographs block: U+1F300–U+1F5FF.
const (
	emoticonsLo  = 0x1F600
	emoticonsHi  = 0x1F64F
	pictogramsLo = 0x1F300
	pictogramsHi = 0x1F5FF
)

// Classify returns the coarse classification for a single rune.
func Classify(r rune) Category {
	switch {
	case r >= emoticonsLo && r <= emoticonsHi:
		return CategoryEmoticon
	case r >= pictogramsLo && r <= pictogramsHi:
		return CategoryPictogram
	case unicode.Is(unicode.Sc, r):
		return CategoryCurrency
	case unicode.IsDigit(r) || unicode.IsNumber(r):
		return CategoryNumber
	case unicode.IsPunct(r) || unicode.IsSymbol(r) && !unicode.Is(unicode.Sc, r) && classifyIsPunctLike(r):
		return CategoryPunct
	case unicode.IsLetter(r):
		return CategoryWord
	default:
		return CategoryUnknown
	}
}

// classifyIsPunctLike reports whether r is an other, math or modifier
// symbol (So, Sm, Sk). Together with the currency check ahead of it in
// Classify this covers every Unicode symbol category, so every
// non-currency symbol outside the emoticon/pictogram blocks is classified
// as PUNCTUATION and Classify never returns CategorySymbol.
func classifyIsPunctLike(r rune) bool {
	return unicode.Is(unicode.So, r) || unicode.Is(unicode.Sm, r) || unicode.Is(unicode.Sk, r)
}

// IsQuote reports whether r is a quotation mark rune, for the "chunk
// contains a quote" test used to decide whether a multi-rune chunk needs
// the rule cascade (spec.md §4.2 step 3). Matches against the Unicode
// Quotation_Mark property (as the original's u_isquote does) rather than
// a hand-picked rune list, so every quote character spec.md §4.1's
// default pairs register — including „ U+201E and ‟ U+201F, which the
// Pi/Pf general categories alone miss — is recognized.
func IsQuote(r rune) bool {
	return unicode.Is(unicode.Quotation_Mark, r) || unicode.Is(unicode.Pi, r) || unicode.Is(unicode.Pf, r)
}

// NeedsCascade reports whether a multi-rune chunk must go through the rule
// cascade rather than being provisionally classified as WORD outright:
// true iff any code point is punctuation, a number, currency, a quote, or
// an emoticon/pictogram (spec.md §4.2 step 3).
func NeedsCascade(s string) bool {
	for _, r := range s {
		cat := Classify(r)
		switch cat {
		case CategoryPunct, CategoryNumber, CategoryEmoticon, CategoryPictogram, CategoryCurrency:
			return true
		}
		if IsQuote(r) {
			return true
		}
	}
	return false
}

// IsUpperOrTitle reports whether r is uppercase or titlecase in a cased
// script, used by the sentence-boundary "next token starts with a cased
// uppercase/titlecase letter" heuristic.
func IsUpperOrTitle(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsTitle(r)
}

// Filter is the per-language character-substitution map: a single source
// rune maps to a (possibly empty, meaning "delete") replacement string.
type Filter map[rune]string

// Apply runs the filter over s, replacing or deleting mapped runes.
func (f Filter) Apply(s string) string {
	if len(f) == 0 {
		return s
	}
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if repl, ok := f[r]; ok {
			out = append(out, repl...)
			continue
		}
		out = append(out, string(r)...)
	}
	return string(out)
}

// SniffBOM reads and discards a UTF-8, UTF-16LE or UTF-16BE byte-order mark
// from the head of r, if present, returning the detected encoding name
// ("", "UTF-8", "UTF-16LE", "UTF-16BE"). The caller is responsible for
// transcoding non-UTF-8 streams; this function only performs the sniff, as
// is appropriate for a collaborator kept behind the stream-decoding
// boundary (spec.md §1 Out of scope).
func SniffBOM(r *bufio.Reader) (string, error) {
	head, err := r.Peek(3)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		if len(head) == 0 {
			return "", nil
		}
	}
	switch {
	case len(head) >= 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF:
		r.Discard(3)
		return "UTF-8", nil
	case len(head) >= 2 && head[0] == 0xFF && head[1] == 0xFE:
		r.Discard(2)
		return "UTF-16LE", nil
	case len(head) >= 2 && head[0] == 0xFE && head[1] == 0xFF:
		r.Discard(2)
		return "UTF-16BE", nil
	}
	return "", nil
}

// RuneLen is a small convenience used by the rule cascade's 2500-code-point
// overlong-chunk guard (spec.md §4.2).
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
