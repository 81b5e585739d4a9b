// Package output renders a token buffer back to text (spec.md §4.8):
// joining literal token text on whitespace except where NOSPACE forbids
// it, inserting paragraph breaks and sentence terminators, and an
// alternate verbose per-token listing for debugging settings files.
//
// Render's incremental-buffer-then-flush shape is grounded on the
// teacher's writer.StarlarkWriter (writer/starlark.go):
// BeginMacro/WriteCommand/EndMacro accumulate pending output and flush it
// at a structural boundary (a directory push/pop, a macro close); Render
// accumulates pending literal text the same way and flushes it at a
// sentence or paragraph boundary instead.
package output

import (
	"strings"

	"github.com/ucto-go/ucto/token"
)

// TextRedundancy controls how much of the original text a structured
// renderer would keep alongside tokenized text. No structured (FoLiA-like)
// renderer ships in this module (spec.md §1 Non-goal); the enum exists so
// NodeWalker-based callers have a typed contract to compile against.
type TextRedundancy int

const (
	TextRedundancyFull TextRedundancy = iota
	TextRedundancyMinimal
	TextRedundancyNone
)

// Options configures Render.
type Options struct {
	// Verbose renders one tab-separated "text\tTYPE\tROLES" line per token
	// instead of reassembled plain text.
	Verbose bool
	// UttMark is written at each sentence end reached at quote depth zero,
	// in place of a bare newline, when non-empty.
	UttMark string
}

// NodeWalker stands in for the structured-document (FoLiA-like) side of
// output spec.md §1 explicitly excludes from this module: something that
// can walk text-bearing nodes and replace their text with tokenized
// output. No concrete implementation is shipped.
type NodeWalker interface {
	WalkTextNodes(fn func(get func() string, set func(string)) error) error
}

// Render implements spec.md §4.8. continued indicates the buffer does not
// open at the start of the document, so a NEWPARAGRAPH token after the
// first should be preceded by a blank line rather than starting one.
//
// NOSPACE is produced (rules.Cascade.Tokenize, the rule cascade's
// recursive emission) and consumed (here) as "no space follows this
// token" rather than "no space precedes it": that is the convention the
// role bit actually carries in the original tokenizeWord (a trailing
// `space` parameter controls the bit) and in the FoLiA `space="no"`
// attribute it maps to, even though spec.md §3's prose paraphrases it the
// other way round. Render therefore gates the separator before token i on
// token i-1's own NOSPACE bit, not token i's.
func Render(tokens []token.Token, continued bool, opts Options) string {
	if opts.Verbose {
		return renderVerbose(tokens)
	}

	var b strings.Builder
	depth := 0
	pending := false
	prevNoSpace := false
	first := true
	atLineBreak := false

	flushBreak := func() {
		if opts.UttMark != "" {
			b.WriteString(opts.UttMark)
		} else {
			b.WriteByte('\n')
		}
		pending = false
		atLineBreak = opts.UttMark == ""
	}

	for _, t := range tokens {
		if t.Role.Has(token.NewParagraph) {
			if !first || continued {
				if atLineBreak {
					b.WriteByte('\n')
				} else {
					b.WriteString("\n\n")
				}
			}
			pending = false
			depth = 0
		} else if pending && !prevNoSpace {
			b.WriteByte(' ')
		}
		b.WriteString(t.Text)
		pending = true
		prevNoSpace = t.Role.Has(token.NoSpace)
		first = false
		atLineBreak = false

		if t.Role.Has(token.BeginQuote) {
			depth++
		}
		if t.Role.Has(token.EndQuote) && depth > 0 {
			depth--
		}
		if t.Role.Has(token.EndSentence) && depth == 0 {
			flushBreak()
		}
	}
	return b.String()
}

func renderVerbose(tokens []token.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Text)
		b.WriteByte('\t')
		b.WriteString(t.Type)
		b.WriteByte('\t')
		b.WriteString(t.Role.String())
		b.WriteByte('\n')
	}
	return b.String()
}
