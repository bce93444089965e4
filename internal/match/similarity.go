// Package match selects the container block that corresponds to a target
// bibliographic reference, or declares an explicit no-match.
package match

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/ManfrediC/sps-review/internal/reference"
)

// TitleSimilarity scores two titles in [0,1]. It blends an edit-distance
// ratio with the fraction of significant reference tokens found in the
// candidate, so both near-verbatim titles and reordered or truncated ones
// score high. Containment of one normalized title in the other is treated as
// near-certain.
func TitleSimilarity(refTitle, candidate string) float64 {
	refNorm := reference.NormalizeText(refTitle)
	candNorm := reference.NormalizeText(candidate)
	if refNorm == "" || candNorm == "" {
		return 0
	}
	if refNorm == candNorm {
		return 1
	}

	seq := levenshteinRatio(refNorm, candNorm)

	refTokens := reference.TokenSet(refNorm, 4)
	candTokens := reference.TokenSet(candNorm, 4)
	hits := 0
	for tok := range refTokens {
		if candTokens[tok] {
			hits++
		}
	}
	overlap := float64(hits) / float64(max(1, len(refTokens)))
	if strings.Contains(candNorm, refNorm) || strings.Contains(refNorm, candNorm) {
		overlap = max(overlap, 0.95)
	}

	return max(seq, 0.65*seq+0.35*overlap)
}

// AuthorSimilarity returns the fraction of reference surnames present in the
// block preview text.
func AuthorSimilarity(surnames []string, preview string) float64 {
	if len(surnames) == 0 {
		return 0
	}
	previewNorm := " " + reference.NormalizeText(preview) + " "
	tokens := reference.TokenSet(preview, 3)

	hits := 0
	for _, surname := range surnames {
		if strings.Contains(previewNorm, " "+surname+" ") {
			hits++
			continue
		}
		// Compound surnames normalize to several tokens; count the surname
		// when all of them appear.
		parts := reference.Tokens(surname, 3)
		if len(parts) > 0 && allIn(parts, tokens) {
			hits++
		}
	}
	return float64(hits) / float64(len(surnames))
}

func levenshteinRatio(a, b string) float64 {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

func allIn(parts []string, set map[string]bool) bool {
	for _, p := range parts {
		if !set[p] {
			return false
		}
	}
	return true
}
