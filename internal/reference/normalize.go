package reference

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText folds text for fuzzy comparison: diacritics stripped,
// lowercased, every non-alphanumeric run collapsed to a single space.
// "Naïve T-cell responses" and "naive t cell responses" normalize equally.
func NormalizeText(text string) string {
	folded, _, err := transform.String(foldTransformer(), text)
	if err != nil {
		folded = text
	}

	var b strings.Builder
	b.Grow(len(folded))
	lastSpace := true
	for _, r := range strings.ToLower(folded) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
			lastSpace = false
		} else if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Tokens returns the normalized tokens of text with at least minLen runes.
func Tokens(text string, minLen int) []string {
	var tokens []string
	for _, tok := range strings.Fields(NormalizeText(text)) {
		if len(tok) >= minLen {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// TokenSet returns the normalized tokens of text as a set.
func TokenSet(text string, minLen int) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range Tokens(text, minLen) {
		set[tok] = true
	}
	return set
}

func foldTransformer() transform.Transformer {
	return transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
}
