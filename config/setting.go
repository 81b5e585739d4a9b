// Package config implements the settings-file loader (spec.md §4.1): one
// compiled Setting per language, built from a line-oriented, sectioned
// configuration format with %include/%define directives, meta-rule
// expansion and rule ordering.
package config

import (
	"bitbucket.org/creachadair/stringset"

	"github.com/ucto-go/ucto/internal/charset"
	"github.com/ucto-go/ucto/quote"
	"github.com/ucto-go/ucto/rules"
)

// Setting is the fully compiled configuration for one language. Package
// config never mutates a Setting after Load returns it; a caller may still
// adjust it before tokenizing (cmd/ucto adds --normalize types to
// Cascade.NormSet), and once left unchanged it may be shared by reference
// across many Tokenizer instances (spec.md §5).
type Setting struct {
	Cascade    *rules.Cascade
	EOSMarkers stringset.Set
	Quotes     []quote.Pair
	Filter     charset.Filter
	Macros     map[string]string
	Splitter   rune
	Version    string
	Source     string
}

// newSetting returns a Setting with empty-but-non-nil collections, ready
// to be populated by the loader.
func newSetting(source string) *Setting {
	return &Setting{
		Cascade:    rules.NewCascade(),
		EOSMarkers: stringset.New(),
		Filter:     make(charset.Filter),
		Macros:     make(map[string]string),
		Splitter:   '%',
		Source:     source,
	}
}

// applyDefaults fills in the EOSMarkers/Quotes defaults spec.md §4.1
// requires when a settings file declares neither (`.!?` and the standard
// curly/straight quote pairs).
func (s *Setting) applyDefaults() {
	if s.EOSMarkers.Len() == 0 {
		s.EOSMarkers = stringset.New(".", "!", "?")
	}
	if len(s.Quotes) == 0 {
		s.Quotes = quote.DefaultPairs()
	}
}
