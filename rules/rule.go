// Package rules implements the rule-ordered regex cascade that is the core
// of the tokenizer (spec.md §4.2): an ordered, first-match-wins list of
// named regex rules, applied recursively to prefix/suffix/capture-group
// text until a chunk is fully decomposed into leaf tokens.
//
// The cascade's table shape — compile-time ordered list of (pattern,
// action), matched in declared order — is grounded on the teacher's
// cmakelib/lexer/rules.Rules type (cmakelib/lexer/rules/rules.go): that
// table additionally carries flex-style "start conditions" which ucto's
// simpler first-match cascade has no use for (ucto has no sub-lexer
// states), so Cascade drops that dimension but keeps the same
// register-then-match-in-order shape and the same "compile once, match
// many" regexp ownership.
package rules

import (
	"fmt"

	"github.com/ucto-go/ucto/internal/uregexp"
)

// Rule is one named pattern in the cascade. ID doubles as the emitted
// token type when a match produces exactly this classification.
type Rule struct {
	ID      string
	Pattern string
	matcher *uregexp.Matcher
}

// NewRule compiles pattern under name id.
func NewRule(id, pattern string) (*Rule, error) {
	m, err := uregexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", id, err)
	}
	return &Rule{ID: id, Pattern: pattern, matcher: m}, nil
}

// MatchAll delegates to the compiled matcher.
func (r *Rule) MatchAll(input string) (prefix string, groups []string, suffix string, ok bool) {
	return r.matcher.MatchAll(input)
}
