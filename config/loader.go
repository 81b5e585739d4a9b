package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ucto-go/ucto/internal/cfgerr"
	"github.com/ucto-go/ucto/quote"
	"github.com/ucto-go/ucto/rules"
)

// classSections lists the enumerated alternation classes that [META-RULES]
// may reference and that accumulate line-by-line into a single `|`-joined
// pattern (spec.md §4.1 "Entries in the enumerated class sections
// accumulate").
var classSections = []string{
	"ABBREVIATIONS", "TOKENS", "PREFIXES", "SUFFIXES",
	"ATTACHEDPREFIXES", "ATTACHEDSUFFIXES", "UNITS", "ORDINALS", "CURRENCY",
}

func isClassSection(name string) bool {
	for _, c := range classSections {
		if c == name {
			return true
		}
	}
	return false
}

// reservedClassChars is the set of regex metacharacters escaped in
// ABBREVIATIONS class entries only (spec.md §4.1), so that literal
// abbreviation text such as "e.g." can be joined into an alternation
// without its dots being interpreted as "any character".
const reservedClassChars = `?^$[](){}*.+|-`

// loader holds the mutable state accumulated while walking one settings
// file and its %include targets. Its overall shape follows the teacher's
// iniFile loader (tools/llvmbuildtobzl.go load()): lines drive a flat
// build-up of accumulator maps, except here what is being built is a
// compiled Setting rather than a component graph, no ini library is
// involved, and dispatch switches on the section name to one of several
// very different per-section grammars (spec.md §4.1 is one format wearing
// several section-local dialects, not a uniform key=value file).
type loader struct {
	searchPath SearchPath
	baseDir    string
	file       string

	splitter rune
	macros   map[string]string

	version string

	rulePatterns map[string]string // rule id -> pattern, in [RULES]
	ruleSeen     []string          // [RULES] insertion order, for deterministic fallback
	metaRules    []string          // raw "NAME=parts" lines from [META-RULES]
	ruleOrder    []string          // [RULE-ORDER] entries, in file order
	orderSeen    map[string]bool

	classLines map[string][]string // section name -> accumulated literal lines

	eosLine string // concatenated single-character EOS marker literals
	quotes  []quote.Pair
	filter  map[rune]string

	warnf func(string, ...interface{})
}

// Load reads the settings file at path (and any %include targets it
// names) and returns the compiled, immutable Setting. sp resolves
// %include targets that aren't found as literally given; warnf receives
// non-fatal diagnostics (skipped meta-rules, unknown rule-order entries,
// and so on) and may be nil.
func Load(path string, sp SearchPath, warnf func(string, ...interface{})) (*Setting, error) {
	if warnf == nil {
		warnf = func(string, ...interface{}) {}
	}
	l := &loader{
		searchPath:   sp,
		baseDir:      dirOf(path),
		file:         path,
		splitter:     '%',
		macros:       make(map[string]string),
		rulePatterns: make(map[string]string),
		orderSeen:    make(map[string]bool),
		classLines:   make(map[string][]string),
		filter:       make(map[rune]string),
		warnf:        warnf,
	}
	if err := l.loadFile(path); err != nil {
		return nil, err
	}
	return l.build()
}

func dirOf(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return ""
}

// loadFile parses one top-level settings file: section headers switch the
// active mode, and every other non-blank, non-comment line is handed to
// dispatch. %include/%define/SPLITTER= are recognized by substring search
// before any other interpretation, exactly as the original C++ loader
// does it (setting.cxx's read loop checks rawline.find("%include") etc.
// ahead of the `[` section-header / macro-substitution path).
func (l *loader) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return cfgerr.NewConfigf(path, 0, "cannot open settings file: %v", err)
	}
	defer f.Close()

	mode := ""
	lineNo := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		lineNo++
		raw := sc.Text()

		switch {
		case strings.Contains(raw, "%include"):
			target := strings.TrimSpace(raw[strings.Index(raw, "%include")+len("%include"):])
			if err := l.include(mode, target, path, lineNo); err != nil {
				return err
			}
			continue
		case strings.Contains(raw, "%define"):
			rest := raw[strings.Index(raw, "%define")+len("%define"):]
			parts := strings.SplitN(strings.TrimSpace(rest), " ", 2)
			if len(parts) < 2 {
				parts = strings.SplitN(strings.TrimSpace(rest), "\t", 2)
			}
			if len(parts) < 2 {
				return cfgerr.NewConfigf(path, lineNo, "invalid %%define: %s", raw)
			}
			key := string(l.splitter) + parts[0] + string(l.splitter)
			l.macros[key] = strings.TrimSpace(parts[1])
			continue
		case strings.Contains(raw, "SPLITTER="):
			val := strings.TrimSpace(raw[strings.Index(raw, "SPLITTER=")+len("SPLITTER="):])
			val = strings.Trim(val, `"`)
			if val == "" {
				return cfgerr.NewConfigf(path, lineNo, "invalid SPLITTER value in: %s", raw)
			}
			l.splitter = []rune(val)[0]
			continue
		}

		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			mode = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			continue
		}
		if strings.HasPrefix(line, `\[`) {
			line = line[1:]
		}
		line = l.substituteMacros(line)
		if err := l.dispatch(mode, line, path, lineNo); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return cfgerr.NewConfigf(path, lineNo, "read error: %v", err)
	}
	return nil
}

// substituteMacros performs the plain substring replacement the original
// loader uses (setting.cxx substitute_macros): every registered
// `<splitter>NAME<splitter>` key is replaced by its value, longest
// registration order doesn't matter because keys are always fully
// delimited by the splitter on both sides.
func (l *loader) substituteMacros(line string) string {
	for k, v := range l.macros {
		if strings.Contains(line, k) {
			line = strings.ReplaceAll(line, k, v)
		}
	}
	return line
}

// include resolves and loads one %include target for the section
// currently active in mode, filling in the section-appropriate extension
// when target has none (spec.md §4.1).
func (l *loader) include(mode, target, fromFile string, fromLine int) error {
	ext, ok := includeExt[mode]
	if !ok {
		return cfgerr.NewConfigf(fromFile, fromLine, "%%include not implemented for section [%s]", mode)
	}
	resolved := l.searchPath.Resolve(target, l.baseDir, ext)
	if resolved == "" {
		return cfgerr.NewConfigf(fromFile, fromLine, "%%include target not found: %s", target)
	}
	return l.includeFragment(mode, resolved)
}

// includeExt maps a section name to the file extension ucto conventionally
// uses for %include targets of that section (spec.md §4.1: "a missing
// extension is filled with the section-appropriate suffix").
var includeExt = map[string]string{
	"RULES":            ".rule",
	"FILTER":           ".filter",
	"QUOTES":           ".quote",
	"EOSMARKERS":       ".eos",
	"ABBREVIATIONS":    ".abr",
	"TOKENS":           ".abr",
	"PREFIXES":         ".abr",
	"SUFFIXES":         ".abr",
	"ATTACHEDPREFIXES": ".abr",
	"ATTACHEDSUFFIXES": ".abr",
	"UNITS":            ".abr",
	"ORDINALS":         ".abr",
	"CURRENCY":         ".abr",
}

// includeFragment reads an included file as a flat list of section-body
// lines (no headers, no directives of its own) and dispatches each one
// under the including section's mode.
func (l *loader) includeFragment(mode, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return cfgerr.NewConfigf(path, 0, "cannot open include target: %v", err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = l.substituteMacros(line)
		if err := l.dispatch(mode, line, path, lineNo); err != nil {
			return err
		}
	}
	return sc.Err()
}

// dispatch handles one already-macro-substituted, non-blank content line
// under the active section mode. This is the Go analogue of setting.cxx's
// big per-mode switch statement.
func (l *loader) dispatch(mode, line, file string, lineNo int) error {
	switch {
	case mode == "RULES":
		i := strings.Index(line, "=")
		if i < 0 {
			return cfgerr.NewConfigf(file, lineNo, "invalid RULES entry: %s", line)
		}
		id, pat := line[:i], line[i+1:]
		if _, dup := l.rulePatterns[id]; !dup {
			l.ruleSeen = append(l.ruleSeen, id)
		}
		l.rulePatterns[id] = pat
		return nil

	case mode == "RULE-ORDER":
		for _, name := range strings.Fields(line) {
			if l.orderSeen[name] {
				return cfgerr.NewConfigf(file, lineNo, "duplicate RULE-ORDER entry: %s", name)
			}
			l.orderSeen[name] = true
			l.ruleOrder = append(l.ruleOrder, name)
		}
		return nil

	case mode == "META-RULES":
		l.metaRules = append(l.metaRules, line)
		return nil

	case isClassSection(mode):
		l.classLines[mode] = append(l.classLines[mode], line)
		return nil

	case mode == "EOSMARKERS":
		uit, ok := unescapeSingle(line)
		if !ok {
			return cfgerr.NewConfigf(file, lineNo, "invalid EOSMARKERS entry: %s", line)
		}
		l.eosLine += uit
		return nil

	case mode == "QUOTES":
		open, close, ok := splitOnWhitespace(line)
		if !ok {
			return cfgerr.NewConfigf(file, lineNo, "invalid QUOTES entry: %s (missing whitespace)", line)
		}
		open, close = unescapeAll(strings.TrimSpace(open)), unescapeAll(strings.TrimSpace(close))
		if open == "" || close == "" {
			return cfgerr.NewConfigf(file, lineNo, "invalid QUOTES entry: %s", line)
		}
		l.quotes = append(l.quotes, quote.NewPair(open, close))
		return nil

	case mode == "FILTER":
		src, repl, ok := splitOnWhitespace(line)
		if !ok {
			src, repl = line, ""
		}
		r := []rune(strings.TrimSpace(src))
		if len(r) == 0 {
			return cfgerr.NewConfigf(file, lineNo, "invalid FILTER entry: %s", line)
		}
		l.filter[r[0]] = strings.TrimSpace(repl)
		return nil

	case mode == "":
		if k, v, ok := strings.Cut(line, "="); ok && k == "version" {
			l.version = v
		}
		return nil

	default:
		return cfgerr.NewConfigf(file, lineNo, "unrecognized section [%s]", mode)
	}
}

// splitOnWhitespace splits line at its first run of space/tab, as
// setting.cxx does for [QUOTES] and [FILTER] lines (first space, else
// first tab).
func splitOnWhitespace(line string) (a, b string, ok bool) {
	if i := strings.IndexByte(line, ' '); i >= 0 {
		return line[:i], line[i+1:], true
	}
	if i := strings.IndexByte(line, '\t'); i >= 0 {
		return line[:i], line[i+1:], true
	}
	return line, "", false
}

// unescapeSingle decodes exactly one `\uXXXX`/`\UXXXXXXXX` escape or a
// literal single character, as spec.md §4.1 requires for [EOSMARKERS].
func unescapeSingle(line string) (string, bool) {
	switch {
	case strings.HasPrefix(line, `\u`) && len(line) == 6:
		n, err := strconv.ParseUint(line[2:], 16, 32)
		if err != nil {
			return "", false
		}
		return string(rune(n)), true
	case strings.HasPrefix(line, `\U`) && len(line) == 10:
		n, err := strconv.ParseUint(line[2:], 16, 32)
		if err != nil {
			return "", false
		}
		return string(rune(n)), true
	default:
		r := []rune(line)
		if len(r) == 0 {
			return "", false
		}
		return string(r[0]), true
	}
}

// unescapeAll decodes every `\uXXXX`/`\UXXXXXXXX` escape occurring in s,
// used for [QUOTES] fields which may name multi-character classes.
func unescapeAll(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == 'u' || s[i+1] == 'U') {
			width := 6
			if s[i+1] == 'U' {
				width = 10
			}
			if i+width <= len(s) {
				if r, ok := unescapeSingle(s[i : i+width]); ok {
					b.WriteString(r)
					i += width
					continue
				}
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// build assembles the accumulated loader state into a compiled Setting:
// class patterns, meta-rule expansion, rule compilation and ordering.
func (l *loader) build() (*Setting, error) {
	s := newSetting(l.file)
	s.Macros = l.macros
	s.Splitter = l.splitter
	s.Version = l.version
	s.Quotes = l.quotes
	s.Filter = l.filter
	for _, r := range l.eosLine {
		s.EOSMarkers.Add(string(r))
	}

	classPatterns := make(map[string]string, len(classSections))
	for _, name := range classSections {
		lines := l.classLines[name]
		if len(lines) == 0 {
			continue
		}
		escaped := make([]string, len(lines))
		for i, line := range lines {
			if name == "ABBREVIATIONS" {
				escaped[i] = escapeReserved(line)
			} else {
				escaped[i] = line
			}
		}
		classPatterns[name] = strings.Join(escaped, "|")
	}

	// Expand [META-RULES] into additional named rule patterns.
	for _, raw := range l.metaRules {
		i := strings.Index(raw, "=")
		if i < 0 {
			l.warnf("config: skipping malformed META-RULES entry %q", raw)
			continue
		}
		name, rest := raw[:i], raw[i+1:]
		if name == "SPLITTER" {
			if len(rest) > 0 {
				l.splitter = []rune(strings.Trim(rest, `"`))[0]
			}
			continue
		}
		pattern, ok := l.expandMetaRule(rest, classPatterns)
		if !ok {
			l.warnf("config: skipping META rule %q, it mentions an unknown or empty pattern class", name)
			continue
		}
		if _, dup := l.rulePatterns[name]; !dup {
			l.ruleSeen = append(l.ruleSeen, name)
		}
		l.rulePatterns[name] = pattern
	}

	orderedIDs := l.sortRuleIDs()
	for _, id := range orderedIDs {
		pat, ok := l.rulePatterns[id]
		if !ok {
			continue
		}
		r, err := rules.NewRule(id, l.substituteMacros(pat))
		if err != nil {
			return nil, cfgerr.NewConfigf(l.file, 0, "compiling rule %s: %v", id, err)
		}
		s.Cascade.Rules = append(s.Cascade.Rules, r)
	}

	s.applyDefaults()
	return s, nil
}

// expandMetaRule implements spec.md §4.1's [META-RULES] expansion:
// rest is split on the loader's splitter rune into parts, each part is
// either an enumerated class name (substituted by that class's
// `|`-joined, macro-substituted pattern) or literal text (macro-
// substituted directly); all parts are concatenated, not rejoined with
// any separator, to form the rule pattern. Grounded directly on
// setting.cxx's meta-rule handling.
func (l *loader) expandMetaRule(rest string, classPatterns map[string]string) (string, bool) {
	parts := strings.Split(rest, string(l.splitter))
	var out strings.Builder
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if isClassSection(p) {
			cp, ok := classPatterns[p]
			if !ok || cp == "" {
				return "", false
			}
			out.WriteString(l.substituteMacros(cp))
			continue
		}
		out.WriteString(l.substituteMacros(p))
	}
	return out.String(), true
}

// escapeReserved backslash-escapes spec.md §4.1's reserved character set
// in an ABBREVIATIONS literal, without double-escaping characters the
// settings author already escaped explicitly.
func escapeReserved(line string) string {
	var b strings.Builder
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\\' && i+1 < len(runes) {
			b.WriteRune(r)
			i++
			b.WriteRune(runes[i])
			continue
		}
		if strings.ContainsRune(reservedClassChars, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// sortRuleIDs implements sort_rules (spec.md §4.1): rules named by
// [RULE-ORDER] come first, in that order (warning on any name with no
// matching rule); every remaining defined rule is appended afterward, in
// the order it was first defined, so the result is deterministic even
// with no [RULE-ORDER] at all.
func (l *loader) sortRuleIDs() []string {
	defined := make(map[string]bool, len(l.rulePatterns))
	for id := range l.rulePatterns {
		defined[id] = true
	}
	var out []string
	used := make(map[string]bool)
	for _, name := range l.ruleOrder {
		if !defined[name] {
			l.warnf("config: RULE-ORDER names undefined rule %q", name)
			continue
		}
		out = append(out, name)
		used[name] = true
	}
	var rest []string
	for _, id := range l.ruleSeen {
		if !used[id] {
			rest = append(rest, id)
		}
	}
	if len(l.ruleOrder) > 0 {
		for _, id := range rest {
			l.warnf("config: rule %q has no RULE-ORDER entry, appending", id)
		}
	}
	return append(out, rest...)
}

// loadFromReader lets tests build a Setting straight from an io.Reader
// without touching the filesystem, by spilling it to a temp file and
// reusing Load.
func loadFromReader(r io.Reader, file string, sp SearchPath, warnf func(string, ...interface{})) (*Setting, error) {
	tmp, err := os.CreateTemp("", "ucto-settings-*")
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()
	if _, err := io.Copy(tmp, r); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Load(tmp.Name(), sp, warnf)
}
