// Package registry persists every triage decision per paper in an
// idempotent, last-write-wins table consumed by downstream stages.
package registry

import (
	"database/sql"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is the latest triage decision for one paper. Entries are built fully
// in memory and written in a single statement; a rerun replaces the whole
// row, never merges into it.
type Entry struct {
	PaperID string `json:"paper_id"`

	// Status is "ok" for processed documents or "extraction_failed" when raw
	// extraction failed and the rest of the pipeline was skipped.
	Status string `json:"status"`

	NeedsOCRBeforeOCR     bool   `json:"needs_ocr_before_ocr"`
	OCRApplied            bool   `json:"ocr_applied"`
	OCRError              string `json:"ocr_error,omitempty"`
	RemainingQualityFlags string `json:"remaining_quality_flags,omitempty"`

	IsContainer        bool `json:"is_container"`
	TitleLikeCount     int  `json:"title_like_count"`
	AuthorLikeCount    int  `json:"author_like_count"`
	AbstractStartCount int  `json:"abstract_start_count"`
	ProgramMarkerCount int  `json:"program_marker_count"`

	MatchMethod         string  `json:"match_method,omitempty"`
	MatchConfidence     float64 `json:"match_confidence,omitempty"`
	MatchedBlockIndex   int     `json:"matched_block_index"`
	MatchedReferenceKey string  `json:"matched_reference_key,omitempty"`

	UpdatedAt time.Time `json:"updated_at_utc"`
}

// Registry is a SQLite-backed decision table keyed by paper ID.
type Registry struct {
	db *sql.DB
}

const schema = `
	CREATE TABLE IF NOT EXISTS decisions (
		paper_id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		needs_ocr_before_ocr INTEGER NOT NULL,
		ocr_applied INTEGER NOT NULL,
		ocr_error TEXT NOT NULL DEFAULT '',
		remaining_quality_flags TEXT NOT NULL DEFAULT '',
		is_container INTEGER NOT NULL,
		title_like_count INTEGER NOT NULL DEFAULT 0,
		author_like_count INTEGER NOT NULL DEFAULT 0,
		abstract_start_count INTEGER NOT NULL DEFAULT 0,
		program_marker_count INTEGER NOT NULL DEFAULT 0,
		match_method TEXT NOT NULL DEFAULT '',
		match_confidence REAL NOT NULL DEFAULT 0,
		matched_block_index INTEGER NOT NULL DEFAULT -1,
		matched_reference_key TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	)`

const entryColumns = `paper_id, status, needs_ocr_before_ocr, ocr_applied,
	ocr_error, remaining_quality_flags, is_container,
	title_like_count, author_like_count, abstract_start_count,
	program_marker_count, match_method, match_confidence,
	matched_block_index, matched_reference_key, updated_at`

// Open opens or creates the registry database at path, creating the parent
// directory if needed. SQLite cannot create the database file itself when
// the directory is missing.
func Open(path string) (*Registry, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating registry directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening registry database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating registry schema: %w", err)
	}
	return &Registry{db: db}, nil
}

// Close closes the underlying database.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Upsert writes the entry for its paper ID, replacing any existing row.
// The write is a single statement, so concurrent readers of the same key see
// either the old row or the new one, never a partial row.
func (r *Registry) Upsert(e Entry) error {
	if e.PaperID == "" {
		return fmt.Errorf("upserting registry entry: empty paper ID")
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(
		`INSERT OR REPLACE INTO decisions (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.PaperID, e.Status, boolInt(e.NeedsOCRBeforeOCR), boolInt(e.OCRApplied),
		e.OCRError, e.RemainingQualityFlags, boolInt(e.IsContainer),
		e.TitleLikeCount, e.AuthorLikeCount, e.AbstractStartCount,
		e.ProgramMarkerCount, e.MatchMethod, e.MatchConfidence,
		e.MatchedBlockIndex, e.MatchedReferenceKey, e.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting registry entry %s: %w", e.PaperID, err)
	}
	return nil
}

// Get returns the entry for a paper ID, or ok=false if absent.
func (r *Registry) Get(paperID string) (Entry, bool, error) {
	row := r.db.QueryRow(`SELECT `+entryColumns+` FROM decisions WHERE paper_id = ?`, paperID)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("reading registry entry %s: %w", paperID, err)
	}
	return e, true, nil
}

// All yields entries in paper ID order for batch reconciliation. Iteration
// stops early on the first scan error, which the second value reports.
func (r *Registry) All() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		rows, err := r.db.Query(`SELECT ` + entryColumns + ` FROM decisions ORDER BY paper_id`)
		if err != nil {
			yield(Entry{}, fmt.Errorf("scanning registry: %w", err))
			return
		}
		defer rows.Close()
		for rows.Next() {
			e, err := scanEntry(rows)
			if err != nil {
				yield(Entry{}, fmt.Errorf("scanning registry row: %w", err))
				return
			}
			if !yield(e, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Entry{}, fmt.Errorf("scanning registry: %w", err))
		}
	}
}

// Count returns the number of registry rows.
func (r *Registry) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM decisions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting registry entries: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	var needsOCR, applied, container int
	var updatedAt string
	err := row.Scan(
		&e.PaperID, &e.Status, &needsOCR, &applied,
		&e.OCRError, &e.RemainingQualityFlags, &container,
		&e.TitleLikeCount, &e.AuthorLikeCount, &e.AbstractStartCount,
		&e.ProgramMarkerCount, &e.MatchMethod, &e.MatchConfidence,
		&e.MatchedBlockIndex, &e.MatchedReferenceKey, &updatedAt,
	)
	if err != nil {
		return Entry{}, err
	}
	e.NeedsOCRBeforeOCR = needsOCR != 0
	e.OCRApplied = applied != 0
	e.IsContainer = container != 0
	if t, perr := time.Parse(time.RFC3339Nano, updatedAt); perr == nil {
		e.UpdatedAt = t
	}
	return e, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
