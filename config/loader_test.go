package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ucto-go/ucto/token"
)

func writeSettings(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMinimal(t *testing.T) {
	dir := t.TempDir()
	path := writeSettings(t, dir, "eng.settings", `
version=0.7

[RULES]
URL=https?://\S+

[RULE-ORDER]
URL

[EOSMARKERS]
.
!
?

[QUOTES]
" "
‘ ’
`)
	s, err := Load(path, SearchPath{}, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Version != "0.7" {
		t.Errorf("Version = %q, want 0.7", s.Version)
	}
	if len(s.Cascade.Rules) != 1 || s.Cascade.Rules[0].ID != "URL" {
		t.Errorf("Cascade.Rules = %+v", s.Cascade.Rules)
	}
	for _, c := range []string{".", "!", "?"} {
		if !s.EOSMarkers.Contains(c) {
			t.Errorf("EOSMarkers missing %q", c)
		}
	}
	if len(s.Quotes) != 2 {
		t.Errorf("Quotes = %+v, want 2 pairs", s.Quotes)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeSettings(t, dir, "empty.settings", `
[RULES]
WORD=\p{L}+
`)
	s, err := Load(path, SearchPath{}, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, c := range []string{".", "!", "?"} {
		if !s.EOSMarkers.Contains(c) {
			t.Errorf("default EOSMarkers missing %q", c)
		}
	}
	if len(s.Quotes) == 0 {
		t.Error("expected default quote pairs")
	}
}

func TestMetaRuleExpansion(t *testing.T) {
	dir := t.TempDir()
	path := writeSettings(t, dir, "abbr.settings", `
[ABBREVIATIONS]
e.g.
Mr.

[META-RULES]
ABBR=ABBREVIATIONS

[RULE-ORDER]
ABBR
`)
	s, err := Load(path, SearchPath{}, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Cascade.Rules) != 1 {
		t.Fatalf("Cascade.Rules = %+v", s.Cascade.Rules)
	}
	got := s.Cascade.Rules[0].Pattern
	want := `e\.g\.|Mr\.`
	if got != want {
		t.Errorf("expanded meta-rule pattern = %q, want %q", got, want)
	}
}

func TestMetaRuleSkipsEmptyClass(t *testing.T) {
	dir := t.TempDir()
	var warnings []string
	path := writeSettings(t, dir, "nope.settings", `
[META-RULES]
BAD=TOKENS

[RULES]
WORD=\p{L}+
`)
	s, err := Load(path, SearchPath{}, func(format string, args ...interface{}) {
		warnings = append(warnings, format)
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, r := range s.Cascade.Rules {
		if r.ID == "BAD" {
			t.Errorf("expected BAD meta-rule to be skipped, got rule %+v", r)
		}
	}
	if len(warnings) == 0 {
		t.Error("expected a warning about the skipped meta-rule")
	}
}

func TestRuleOrderDuplicateRejected(t *testing.T) {
	dir := t.TempDir()
	path := writeSettings(t, dir, "dup.settings", `
[RULES]
WORD=\p{L}+

[RULE-ORDER]
WORD
WORD
`)
	if _, err := Load(path, SearchPath{}, nil); err == nil {
		t.Error("expected error on duplicate RULE-ORDER entry")
	}
}

func TestInclude(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, "extra.rule", "NUM=\\d+\n")
	path := writeSettings(t, dir, "main.settings", `
[RULES]
%include extra.rule
WORD=\p{L}+

[RULE-ORDER]
NUM
WORD
`)
	s, err := Load(path, SearchPath{}, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Cascade.Rules) != 2 || s.Cascade.Rules[0].ID != "NUM" {
		t.Errorf("Cascade.Rules = %+v", s.Cascade.Rules)
	}
}

func TestDefineMacro(t *testing.T) {
	dir := t.TempDir()
	path := writeSettings(t, dir, "macro.settings", `
%define DIGIT \d

[RULES]
NUM=%DIGIT%+

[RULE-ORDER]
NUM
`)
	s, err := Load(path, SearchPath{}, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Cascade.Rules[0].Pattern != `\d+` {
		t.Errorf("Pattern = %q, want %q", s.Cascade.Rules[0].Pattern, `\d+`)
	}
}

func TestTokenizeUsesLoadedRules(t *testing.T) {
	dir := t.TempDir()
	path := writeSettings(t, dir, "tok.settings", `
[RULES]
URL=https?://\S+

[RULE-ORDER]
URL
`)
	s, err := Load(path, SearchPath{}, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	toks := s.Cascade.Tokenize("https://example.com")
	if len(toks) != 1 || toks[0].Type != "URL" {
		t.Errorf("Tokenize = %+v", toks)
	}
	_ = token.TypeWord
}
