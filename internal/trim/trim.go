// Package trim materializes trimmed text artifacts for documents whose
// matched abstract block replaces the full text downstream.
package trim

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ManfrediC/sps-review/internal/document"
	"github.com/ManfrediC/sps-review/internal/match"
)

// Record is one trimmed artifact: the selected block's text plus the
// provenance needed to audit why this block replaced the full document.
type Record struct {
	PaperID           string    `json:"paper_id"`
	SourceFilename    string    `json:"source_filename"`
	SourceSHA256      string    `json:"source_sha256"`
	MatchedBlockIndex int       `json:"matched_block_index"`
	MatchMethod       string    `json:"match_method"`
	Confidence        float64   `json:"match_confidence"`
	TitleScore        float64   `json:"title_score"`
	AuthorScore       float64   `json:"author_score"`
	BlockCode         string    `json:"block_code,omitempty"`
	TitleCandidate    string    `json:"title_candidate"`
	StartPage         int       `json:"start_page"`
	EndPage           int       `json:"end_page"`
	Text              string    `json:"text"`
	TrimmedAtUTC      time.Time `json:"trimmed_at_utc"`
}

// NewRecord builds a trimmed record from a match result against a snapshot.
// The result must carry a block (method other than none).
func NewRecord(snap *document.Snapshot, res match.Result) (Record, error) {
	if res.Block == nil {
		return Record{}, fmt.Errorf("building trimmed record for %s: match has no block", snap.PaperID)
	}
	return Record{
		PaperID:           snap.PaperID,
		SourceFilename:    snap.SourceFilename,
		SourceSHA256:      snap.SourceSHA256,
		MatchedBlockIndex: res.BlockIndex,
		MatchMethod:       string(res.Method),
		Confidence:        res.Confidence,
		TitleScore:        res.TitleScore,
		AuthorScore:       res.AuthorScore,
		BlockCode:         res.Block.Code,
		TitleCandidate:    res.Block.TitleCandidate,
		StartPage:         res.Block.StartPage,
		EndPage:           res.Block.EndPage,
		Text:              res.Block.Text(),
		TrimmedAtUTC:      time.Now().UTC(),
	}, nil
}

// Store writes and removes trimmed records under a single directory, one
// JSON file per paper.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating trimmed artifact directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Path returns where the trimmed record for a paper lives.
func (s *Store) Path(paperID string) string {
	return filepath.Join(s.dir, paperID+".trimmed.json")
}

// Write persists a trimmed record. The record is staged in a temp file and
// renamed into place so readers never observe a half-written artifact.
func (s *Store) Write(rec Record) error {
	if rec.PaperID == "" {
		return fmt.Errorf("writing trimmed record: empty paper ID")
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding trimmed record %s: %w", rec.PaperID, err)
	}
	tmp, err := os.CreateTemp(s.dir, rec.PaperID+".trimmed.*.tmp")
	if err != nil {
		return fmt.Errorf("staging trimmed record %s: %w", rec.PaperID, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("staging trimmed record %s: %w", rec.PaperID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("staging trimmed record %s: %w", rec.PaperID, err)
	}
	if err := os.Rename(tmpName, s.Path(rec.PaperID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing trimmed record %s: %w", rec.PaperID, err)
	}
	return nil
}

// Remove deletes a paper's trimmed record if present. A rerun that no longer
// matches any block must not leave a stale artifact behind.
func (s *Store) Remove(paperID string) error {
	err := os.Remove(s.Path(paperID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing trimmed record %s: %w", paperID, err)
	}
	return nil
}

// Load reads a paper's trimmed record, or ok=false when absent.
func (s *Store) Load(paperID string) (Record, bool, error) {
	data, err := os.ReadFile(s.Path(paperID))
	if os.IsNotExist(err) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("reading trimmed record %s: %w", paperID, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false, fmt.Errorf("parsing trimmed record %s: %w", paperID, err)
	}
	return rec, true, nil
}
