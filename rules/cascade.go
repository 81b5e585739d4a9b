package rules

import (
	"bitbucket.org/creachadair/stringset"
	"github.com/ucto-go/ucto/internal/charset"
	"github.com/ucto-go/ucto/token"
)

// MaxChunkRunes is the over-long-chunk guard from spec.md §4.2: a chunk
// longer than this many code points is rejected with a warning and the
// rest of the line continues.
const MaxChunkRunes = 2500

// maxRecursionDepth bounds the cascade's recursion as a defense against a
// misbehaving rule that rewrites its input to itself without progress
// (spec.md §4.2: "loaders must reject patterns that can rewrite a
// non-empty input to an identical output without progress"). Package
// config performs no load-time check for such patterns, so this depth
// limit and the non-progress guard in tokenizeWord are the only defenses.
const maxRecursionDepth = 64

// Cascade is the compiled, ordered rule list plus the small amount of
// shared state (normalize-set, warning sink) the recursive tokenization
// needs.
type Cascade struct {
	Rules   []*Rule
	NormSet stringset.Set
	Warn    func(format string, args ...interface{})
}

// NewCascade returns an empty Cascade. Rules are appended by the config
// loader in [RULE-ORDER] order (or load order, if unspecified).
func NewCascade() *Cascade {
	return &Cascade{NormSet: stringset.New(), Warn: func(string, ...interface{}) {}}
}

func (c *Cascade) warnf(format string, args ...interface{}) {
	if c.Warn != nil {
		c.Warn(format, args...)
	}
}

// leaf builds a single emitted token, applying normalize-set substitution
// (spec.md §4.2 step 5).
func (c *Cascade) leaf(typ, text string) token.Token {
	if c.NormSet.Contains(typ) {
		text = "{{" + typ + "}}"
	}
	return token.Token{Type: typ, Text: text}
}

// classifySingle implements spec.md §4.2 step 3 for a one-rune chunk.
func (c *Cascade) classifySingle(r rune) token.Token {
	cat := charset.Classify(r)
	return c.leaf(string(cat), string(r))
}

// Tokenize runs the full rule cascade over one non-separator chunk (spec.md
// §4.2 steps 3–6) and returns its tokens with NoSpace set on every token
// but the last (the chunk contained no separators internally, by
// construction). An empty chunk yields no tokens.
func (c *Cascade) Tokenize(chunk string) []token.Token {
	if chunk == "" {
		return nil
	}
	toks := c.tokenizeWord(chunk, "", 0)
	for i := 0; i < len(toks)-1; i++ {
		toks[i].Role = toks[i].Role.Set(token.NoSpace)
	}
	return toks
}

// tokenizeWord implements spec.md §4.2 steps 3–4. assignedType is the
// outer rule name propagated down from a group recursion ("" at top
// level); depth bounds pathological recursion.
func (c *Cascade) tokenizeWord(word string, assignedType string, depth int) []token.Token {
	if word == "" {
		return nil
	}
	if charset.RuneLen(word) > MaxChunkRunes {
		c.warnf("rules: chunk of %d code points exceeds limit of %d, skipping", charset.RuneLen(word), MaxChunkRunes)
		return nil
	}

	runes := []rune(word)
	if len(runes) == 1 {
		tok := c.classifySingle(runes[0])
		if assignedType != "" {
			tok.Type = assignedType
		}
		return []token.Token{tok}
	}

	if !charset.NeedsCascade(word) {
		typ := token.TypeWord
		if assignedType != "" {
			typ = assignedType
		}
		return []token.Token{c.leaf(typ, word)}
	}

	if depth >= maxRecursionDepth {
		c.warnf("rules: recursion depth limit reached on chunk %q, emitting atomically", word)
		typ := token.TypeWord
		if assignedType != "" {
			typ = assignedType
		}
		return []token.Token{c.leaf(typ, word)}
	}

	for _, rule := range c.Rules {
		prefix, groups, suffix, ok := rule.MatchAll(word)
		if !ok {
			continue
		}
		// Non-progress guard: a rule matching the entire chunk as a single
		// group identical to the input would recurse forever.
		if prefix == "" && suffix == "" && len(groups) == 1 && groups[0] == word && rule.ID == assignedType {
			c.warnf("rules: rule %s made no progress on %q, emitting atomically", rule.ID, word)
			return []token.Token{c.leaf(rule.ID, word)}
		}

		var out []token.Token
		if prefix != "" {
			out = append(out, c.tokenizeWord(prefix, "", depth+1)...)
		}
		inAssignedCall := assignedType != ""
		for _, g := range groups {
			if g == "" {
				continue
			}
			switch {
			case prefix == "" && suffix == "" && inAssignedCall:
				out = append(out, c.leaf(assignedType, g))
			case rule.ID == token.TypeWord:
				out = append(out, c.leaf(token.TypeWord, g))
			default:
				out = append(out, c.tokenizeWord(g, rule.ID, depth+1)...)
			}
		}
		if suffix != "" {
			out = append(out, c.tokenizeWord(suffix, "", depth+1)...)
		}
		for i := 0; i < len(out)-1; i++ {
			out[i].Role = out[i].Role.Set(token.NoSpace)
		}
		return out
	}

	// No rule matched: emit atomically (spec.md §4.2 step 4, final clause).
	typ := token.TypeWord
	if assignedType != "" {
		typ = assignedType
	}
	return []token.Token{c.leaf(typ, word)}
}
