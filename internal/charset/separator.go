package charset

import (
	"unicode"

	"bitbucket.org/creachadair/stringset"
)

// SeparatorSet holds the explicit separator characters plus a flag for
// "all Unicode whitespace is a separator", matching the Tokenizer state's
// `separators` field (spec.md §3). Runes are stored as single-rune strings
// in a stringset.Set, the same set type the teacher uses for its own
// string-enum membership tests (tools/llvmbuildtobzl.go's stringProps/
// listProps).
type SeparatorSet struct {
	chars        stringset.Set
	allWhitespace bool
}

// NewSeparatorSet returns an empty separator set with all-whitespace
// splitting enabled, the tokenizer's default.
func NewSeparatorSet() *SeparatorSet {
	return &SeparatorSet{chars: stringset.New(), allWhitespace: true}
}

// SetAllWhitespace toggles whether every Unicode whitespace rune is treated
// as a separator ("+" in the --separators spec).
func (s *SeparatorSet) SetAllWhitespace(b bool) { s.allWhitespace = b }

// AllWhitespace reports the current all-whitespace setting.
func (s *SeparatorSet) AllWhitespace() bool { return s.allWhitespace }

// Add registers additional explicit separator runes.
func (s *SeparatorSet) Add(runes ...rune) {
	for _, r := range runes {
		s.chars.Add(string(r))
	}
}

// Reset clears the explicit separator set (used by --separators=-+ which
// means "only the literal characters that follow, not whitespace").
func (s *SeparatorSet) Reset() {
	s.chars = stringset.New()
}

// IsSeparator reports whether r is a separator: true if it is Unicode
// whitespace and all-whitespace splitting is enabled, or if it is in the
// explicit separator set.
func (s *SeparatorSet) IsSeparator(r rune) bool {
	if s.allWhitespace && unicode.IsSpace(r) {
		return true
	}
	return s.chars.Contains(string(r))
}

// ParseSpec configures a SeparatorSet from the --separators CLI spec
// (spec.md §6.2): "+" means all whitespace (the default), "-+" means only
// the literal "+" character (all-whitespace is disabled and "+" becomes an
// explicit separator), "+XYZ" means whitespace plus the explicit
// characters X, Y, Z.
func (s *SeparatorSet) ParseSpec(spec string) {
	switch {
	case spec == "+":
		s.SetAllWhitespace(true)
		s.Reset()
	case len(spec) >= 2 && spec[0] == '-':
		s.SetAllWhitespace(false)
		s.Reset()
		s.Add([]rune(spec[1:])...)
	case len(spec) >= 1 && spec[0] == '+':
		s.SetAllWhitespace(true)
		s.Reset()
		s.Add([]rune(spec[1:])...)
	default:
		s.SetAllWhitespace(false)
		s.Reset()
		s.Add([]rune(spec)...)
	}
}
