package match

import (
	"strings"

	"github.com/ManfrediC/sps-review/internal/config"
	"github.com/ManfrediC/sps-review/internal/reference"
	"github.com/ManfrediC/sps-review/internal/segment"
)

// Method identifies how a block was matched to the reference.
type Method string

const (
	// MethodDOI means the reference DOI appeared verbatim in the block.
	MethodDOI Method = "doi"
	// MethodTitle means the normalized titles were identical.
	MethodTitle Method = "title"
	// MethodFuzzy means the block won the weighted similarity pass.
	MethodFuzzy Method = "fuzzy"
	// MethodNone means no block met the acceptance threshold.
	MethodNone Method = "none"
)

// Result is the matcher outcome for one document and one reference. Reruns
// produce a fresh Result; results are never mutated.
type Result struct {
	Method      Method  `json:"method"`
	BlockIndex  int     `json:"block_index"` // -1 when Method is none
	Confidence  float64 `json:"confidence"`
	TitleScore  float64 `json:"title_score"`
	AuthorScore float64 `json:"author_score"`

	// Block is the selected block, nil when Method is none.
	Block *segment.Block `json:"-"`
}

// Matched reports whether a block was selected.
func (r Result) Matched() bool {
	return r.Method != MethodNone
}

// Matcher scores candidate blocks against a target reference.
type Matcher struct {
	cfg config.MatchConfig
}

// NewMatcher returns a matcher with the given weights and thresholds.
func NewMatcher(cfg config.MatchConfig) *Matcher {
	return &Matcher{cfg: cfg}
}

// Match runs the identifier pass and then the fuzzy pass over the blocks.
// The DOI pass wins outright regardless of fuzzy scores. In the fuzzy pass,
// scores within TieEpsilon are broken by the higher title score, then by
// document order, so repeated runs select the same block.
func (m *Matcher) Match(blocks []segment.Block, ref reference.Record) Result {
	none := Result{Method: MethodNone, BlockIndex: -1}
	if len(blocks) == 0 {
		return none
	}

	if doi := strings.ToLower(strings.TrimSpace(ref.DOI)); doi != "" {
		for i := range blocks {
			if strings.Contains(strings.ToLower(blocks[i].Text()), doi) {
				return Result{
					Method:     MethodDOI,
					BlockIndex: blocks[i].Index,
					Confidence: 1,
					Block:      &blocks[i],
				}
			}
		}
	}

	surnames := ref.Surnames(m.cfg.MaxSurnames)
	best := -1
	var bestCombined, bestTitle, bestAuthor float64
	for i := range blocks {
		title := TitleSimilarity(ref.Title, blocks[i].TitleCandidate)
		author := AuthorSimilarity(surnames, blocks[i].Preview)
		combined := m.cfg.TitleWeight*title + m.cfg.AuthorWeight*author

		if best < 0 || m.better(combined, title, bestCombined, bestTitle) {
			best, bestCombined, bestTitle, bestAuthor = i, combined, title, author
		}
	}

	if bestCombined < m.cfg.MinCombined || bestTitle < m.cfg.MinTitleScore {
		none.TitleScore = bestTitle
		none.AuthorScore = bestAuthor
		return none
	}

	method := MethodFuzzy
	if bestTitle >= 1 {
		method = MethodTitle
	}
	return Result{
		Method:      method,
		BlockIndex:  blocks[best].Index,
		Confidence:  bestCombined,
		TitleScore:  bestTitle,
		AuthorScore: bestAuthor,
		Block:       &blocks[best],
	}
}

// better reports whether a candidate score beats the current best. Candidates
// are visited in document order, so returning false on exact ties keeps the
// earliest block.
func (m *Matcher) better(combined, title, bestCombined, bestTitle float64) bool {
	diff := combined - bestCombined
	if diff > m.cfg.TieEpsilon {
		return true
	}
	if diff < -m.cfg.TieEpsilon {
		return false
	}
	return title > bestTitle
}
