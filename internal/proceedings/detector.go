package proceedings

import (
	"strings"

	"github.com/ManfrediC/sps-review/internal/config"
	"github.com/ManfrediC/sps-review/internal/document"
)

// Score is the structural signal bundle for container detection. The score is
// monotonic in structural repetition: more title-like and author-like lines
// never flip a container verdict back to false.
type Score struct {
	NPages             int  `json:"n_pages"`
	AbstractStartCount int  `json:"abstract_start_count"`
	TitleLikeCount     int  `json:"title_like_count"`
	AuthorLikeCount    int  `json:"author_like_count"`
	ProgramMarkerCount int  `json:"program_marker_count"`
	IsContainer        bool `json:"is_container"`
}

// Detector scores documents for container structure.
type Detector struct {
	cfg config.ProceedingsConfig
}

// NewDetector returns a detector with the given thresholds.
func NewDetector(cfg config.ProceedingsConfig) *Detector {
	return &Detector{cfg: cfg}
}

// Detect computes structural signals over the leading pages of the snapshot
// and verdicts whether the document is a container. A container must exceed
// the page threshold and show repeated publication structure: enough coded
// abstract headers, enough program-booklet marker phrases, or enough
// title-like lines together with enough author-like lines.
func (d *Detector) Detect(snap *document.Snapshot) Score {
	lines := snap.Lines()
	score := Score{NPages: snap.NPages}
	if score.NPages == 0 {
		score.NPages = len(snap.Pages)
	}

	var firstPages []string
	for _, line := range lines {
		if line.Page >= d.cfg.ScanPages {
			continue
		}
		if _, _, ok := AbstractStart(line.Text); ok {
			score.AbstractStartCount++
		}
		if TitleLike(line.Text) {
			score.TitleLikeCount++
		}
		if AuthorLike(line.Text) {
			score.AuthorLikeCount++
		}
		if line.Page < 5 {
			firstPages = append(firstPages, line.Text)
		}
	}

	markerText := normalizeMarkerText(snap.SourceFilename + " " + strings.Join(firstPages, " "))
	score.ProgramMarkerCount = CountProgramMarkers(markerText)

	markerHit := d.cfg.MinProgramMarkers > 0 &&
		score.ProgramMarkerCount >= d.cfg.MinProgramMarkers
	score.IsContainer = score.NPages >= d.cfg.MinPages &&
		(score.AbstractStartCount >= d.cfg.MinAbstractStarts ||
			markerHit ||
			(score.TitleLikeCount >= d.cfg.MinTitleLikeLines &&
				score.AuthorLikeCount >= d.cfg.MinAuthorLikeLines))
	return score
}
