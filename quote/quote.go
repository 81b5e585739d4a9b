// Package quote implements the quote-pairing state machine (spec.md §4.4):
// a per-language stack of open quote characters and their token indices,
// resolved or discarded as closing quotes are encountered, with deferred
// end-of-sentence promotion across a resolved span.
//
// The Stack's push/pop/innermost-first-lookup shape is grounded on the
// teacher's cmakelib/bindings.Mapping and the lower-level varStack
// (cmakelib/bindings/bindings.go, stack.go): both are a LIFO of frames
// searched from the top down, and FlushStack plays the role Mapping.Pop
// plays for variable scopes — except here the frames are (token index,
// open character) pairs rebased as the token buffer's head is drained,
// rather than name/value maps.
package quote

import (
	"bitbucket.org/creachadair/stringset"

	"github.com/ucto-go/ucto/internal/cfgerr"
	"github.com/ucto-go/ucto/token"
)

// Pair is a configured open/close quote character class: any member of
// Open pairs with any member of Close.
type Pair struct {
	Open  stringset.Set
	Close stringset.Set
}

// NewPair builds a Pair from literal open/close character strings (one or
// more runes each, as read from a [QUOTES] line).
func NewPair(open, close string) Pair {
	o, c := stringset.New(), stringset.New()
	for _, r := range open {
		o.Add(string(r))
	}
	for _, r := range close {
		c.Add(string(r))
	}
	return Pair{Open: o, Close: c}
}

// DefaultPairs returns the default quote pairs applied when a settings
// file declares none (spec.md §4.1): "..", single curly quotes, and the
// double low/high-9 curly quote family closing on ” alone.
func DefaultPairs() []Pair {
	return []Pair{
		NewPair(`"`, `"`),
		NewPair("‘", "’"),
		NewPair("“„‟", "”"),
	}
}

type entry struct {
	Index int
	Char  string
}

// Quoting holds one language's configured quote pairs and the live stack
// of currently-open quotes for a tokenization run.
type Quoting struct {
	Pairs []Pair
	stack []entry
}

// NewQuoting returns a Quoting configured with pairs.
func NewQuoting(pairs []Pair) *Quoting {
	return &Quoting{Pairs: pairs}
}

// Depth returns the number of currently open quotes.
func (q *Quoting) Depth() int { return len(q.stack) }

// push opens a new quote at index with character c.
func (q *Quoting) push(index int, c string) {
	q.stack = append(q.stack, entry{Index: index, Char: c})
}

// openPairFor returns the Pair whose Open class contains c, if any.
func (q *Quoting) openPairFor(c string) (Pair, bool) {
	for _, p := range q.Pairs {
		if p.Open.Contains(c) {
			return p, true
		}
	}
	return Pair{}, false
}

// closePairFor returns the Pair whose Close class contains c, if any.
func (q *Quoting) closePairFor(c string) (Pair, bool) {
	for _, p := range q.Pairs {
		if p.Close.Contains(c) {
			return p, true
		}
	}
	return Pair{}, false
}

// innermostOpenFor scans the stack from the top for an entry whose
// character belongs to pair's Open class, returning its stack position (or
// -1 if none is open).
func (q *Quoting) innermostOpenFor(pair Pair) int {
	for i := len(q.stack) - 1; i >= 0; i-- {
		if pair.Open.Contains(q.stack[i].Char) {
			return i
		}
	}
	return -1
}

// Handle implements the per-token outcome table of spec.md §4.4 for the
// first code point c of the token at index idx in buf, calling Resolve
// when a close completes a pair. A RangeError/LogicError from Resolve is
// always fatal and is returned to the caller; an "unrepaired" result is not
// an error — the entry is pushed back onto the stack so FlushStack can
// clean it up later, per spec.md §4.4's "discard the attempt" rule.
func (q *Quoting) Handle(idx int, c string, buf []token.Token) error {
	switch {
	case c == `"` || c == "＂":
		if i := q.innermostDoubleOrGeneric(c, true); i >= 0 {
			return q.tryResolve(i, idx, buf)
		}
		q.push(idx, c)
		return nil
	case c == "'":
		if i := q.innermostDoubleOrGeneric(c, false); i >= 0 {
			return q.tryResolve(i, idx, buf)
		}
		q.push(idx, c)
		return nil
	}
	if _, ok := q.openPairFor(c); ok {
		q.push(idx, c)
		return nil
	}
	if pair, ok := q.closePairFor(c); ok {
		if i := q.innermostOpenFor(pair); i >= 0 {
			return q.tryResolve(i, idx, buf)
		}
		// No matching open quote: ignore per spec.md §4.4.
	}
	return nil
}

// tryResolve removes the stack entry at position i, attempts Resolve
// against the token at idx, and pushes the entry back if the span could
// not be repaired.
func (q *Quoting) tryResolve(i, idx int, buf []token.Token) error {
	e := q.stack[i]
	q.removeAt(i)
	err := Resolve(buf, e.Index, idx)
	if err == nil {
		return nil
	}
	if IsUnrepaired(err) {
		q.stack = append(q.stack, entry{})
		copy(q.stack[i+1:], q.stack[i:])
		q.stack[i] = e
		return nil
	}
	return err
}

// innermostDoubleOrGeneric searches the stack from the top for the
// matching ASCII/fullwidth double quote (or plain single quote) entry,
// treating straight quotes as self-pairing.
func (q *Quoting) innermostDoubleOrGeneric(c string, double bool) int {
	for i := len(q.stack) - 1; i >= 0; i-- {
		if double && (q.stack[i].Char == `"` || q.stack[i].Char == "＂") {
			return i
		}
		if !double && q.stack[i].Char == "'" {
			return i
		}
	}
	return -1
}

func (q *Quoting) removeAt(i int) {
	q.stack = append(q.stack[:i], q.stack[i+1:]...)
}

// FlushStack drops stack entries whose indices fall below n (because the
// sentence containing their open quote has been popped off the buffer) and
// rebases the remaining indices by -n, keeping them valid against the
// shortened buffer (spec.md §4.3 "Popping a sentence").
func (q *Quoting) FlushStack(n int) {
	kept := q.stack[:0]
	for _, e := range q.stack {
		if e.Index >= n {
			e.Index -= n
			kept = append(kept, e)
		}
	}
	q.stack = kept
}

// RangeErrorf is a convenience for building a RangeError carrying msg
// as-is (no formatting is applied).
func RangeErrorf(msg string) error {
	return &cfgerr.RangeError{Msg: msg}
}
