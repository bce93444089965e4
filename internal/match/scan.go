package match

import (
	"strings"

	"github.com/ManfrediC/sps-review/internal/document"
	"github.com/ManfrediC/sps-review/internal/reference"
)

// TitleSignals are the per-document title screening signals: whether the
// reference title occurs verbatim in the leading pages, and what fraction of
// its significant words occur there at all.
type TitleSignals struct {
	FirstPagesHit bool    `json:"title_on_first_pages"`
	WordHitRatio  float64 `json:"title_word_hit_ratio"`
}

// ScanTitle screens a document's leading pages against the reference title.
// A high word-hit ratio without a container verdict suggests the target
// publication itself, not a bundle containing it.
func ScanTitle(snap *document.Snapshot, ref reference.Record, scanPages int) TitleSignals {
	title := reference.NormalizeText(ref.Title)
	if title == "" {
		return TitleSignals{}
	}
	var b strings.Builder
	for _, page := range snap.Pages {
		if page.Index >= scanPages {
			continue
		}
		b.WriteString(page.Text)
		b.WriteByte('\n')
	}
	text := reference.NormalizeText(b.String())
	if text == "" {
		return TitleSignals{}
	}

	sig := TitleSignals{FirstPagesHit: strings.Contains(" "+text+" ", " "+title+" ")}
	titleTokens := reference.Tokens(title, 4)
	if len(titleTokens) == 0 {
		return sig
	}
	pageTokens := reference.TokenSet(text, 4)
	hits := 0
	for _, tok := range titleTokens {
		if pageTokens[tok] {
			hits++
		}
	}
	sig.WordHitRatio = float64(hits) / float64(len(titleTokens))
	return sig
}
