package rules

import (
	"unicode"

	"github.com/ucto-go/ucto/token"
)

// PassThroughClassify implements the chunk classification used in
// pass-through mode (spec.md §4.7): a chunk is WORD if every rune is a
// letter, NUMBER if every rune is a digit, PUNCTUATION if every rune is
// punctuation, else UNKNOWN. Every pass-through token's language is
// "default"; the caller is responsible for that assignment.
func PassThroughClassify(chunk string) token.Token {
	if chunk == "" {
		return token.Token{}
	}
	allLetters, allDigits, allPunct := true, true, true
	for _, r := range chunk {
		if !unicode.IsLetter(r) {
			allLetters = false
		}
		if !unicode.IsDigit(r) {
			allDigits = false
		}
		if !unicode.IsPunct(r) {
			allPunct = false
		}
	}
	switch {
	case allLetters:
		return token.New(token.TypeWord, chunk)
	case allDigits:
		return token.New(token.TypeNumber, chunk)
	case allPunct:
		return token.New(token.TypePunctuation, chunk)
	default:
		return token.New(token.TypeUnknown, chunk)
	}
}
