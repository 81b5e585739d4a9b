// Package uregexp wraps regexp.Regexp with the "match_all" contract the
// rule cascade needs: a prefix/groups/suffix split around the first match,
// where groups are either the rule's own explicit capture groups or, if the
// rule declared none, the whole match as a single group. Groups are read
// positionally from FindStringSubmatchIndex; group names are not consulted.
// The wrapper is loosely grounded on the teacher's regexp-driven lexer
// (cmakelib/lexer/lexer.go's init()).
package uregexp

import "regexp"

// Matcher compiles a single rule pattern and exposes MatchAll.
type Matcher struct {
	re       *regexp.Regexp
	hasGroups bool
}

// Compile compiles pattern. An error here is a configuration error at the
// call site (malformed [RULES]/[META-RULES] pattern).
func Compile(pattern string) (*Matcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &Matcher{re: re, hasGroups: re.NumSubexp() > 0}, nil
}

// MustCompile is like Compile but panics on error; used for built-in rules
// baked into the default settings rather than loaded from a file.
func MustCompile(pattern string) *Matcher {
	m, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return m
}

// MatchAll finds the first match in input and returns the text to its
// left, the matched groups (explicit capture groups, or the whole match if
// the pattern declared none), and the text to its right. ok is false if
// there was no match.
func (m *Matcher) MatchAll(input string) (prefix string, groups []string, suffix string, ok bool) {
	loc := m.re.FindStringSubmatchIndex(input)
	if loc == nil {
		return "", nil, "", false
	}
	prefix = input[:loc[0]]
	suffix = input[loc[1]:]
	if !m.hasGroups {
		return prefix, []string{input[loc[0]:loc[1]]}, suffix, true
	}
	for i := 1; i < len(loc)/2; i++ {
		lo, hi := loc[2*i], loc[2*i+1]
		if lo < 0 {
			continue
		}
		groups = append(groups, input[lo:hi])
	}
	if len(groups) == 0 {
		groups = []string{input[loc[0]:loc[1]]}
	}
	return prefix, groups, suffix, true
}

// String returns the underlying pattern's source, for diagnostics.
func (m *Matcher) String() string { return m.re.String() }
