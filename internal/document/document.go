// Package document defines the core domain types for extracted paper text.
package document

import (
	"strings"
	"time"
)

// Page holds the extracted text of a single PDF page.
type Page struct {
	Index int    `json:"page_index"`
	Text  string `json:"text"`
}

// Snapshot is one immutable extraction result for a source file. A document
// gains a second snapshot only through OCR re-extraction; snapshots are never
// edited in place.
type Snapshot struct {
	PaperID        string    `json:"paper_id"`
	SourceFilename string    `json:"source_filename"`
	SourceSHA256   string    `json:"source_sha256"`
	Extractor      string    `json:"extractor"`
	ExtractedAt    time.Time `json:"extracted_at_utc"`
	NPages         int       `json:"n_pages"`
	PageCharCounts []int     `json:"page_char_counts"`
	Pages          []Page    `json:"pages"`
}

// TotalChars returns the total extracted character count across pages.
func (s *Snapshot) TotalChars() int {
	total := 0
	for _, n := range s.PageCharCounts {
		total += n
	}
	return total
}

// FullText joins all page texts with newlines.
func (s *Snapshot) FullText() string {
	texts := make([]string, 0, len(s.Pages))
	for _, p := range s.Pages {
		texts = append(texts, p.Text)
	}
	return strings.Join(texts, "\n")
}

// Document is a paper identity plus its current extraction snapshot. When OCR
// replaces the text, the pre-OCR snapshot is retained so reruns stay
// reproducible from inputs (replace, don't merge).
type Document struct {
	current *Snapshot
	preOCR  *Snapshot
}

// New wraps an initial extraction snapshot.
func New(snap *Snapshot) *Document {
	return &Document{current: snap}
}

// PaperID returns the stable document identity.
func (d *Document) PaperID() string {
	return d.current.PaperID
}

// Current returns the snapshot downstream stages should read.
func (d *Document) Current() *Snapshot {
	return d.current
}

// PreOCR returns the superseded snapshot, or nil if OCR never ran.
func (d *Document) PreOCR() *Snapshot {
	return d.preOCR
}

// OCRApplied reports whether the current snapshot came from an OCR pass.
func (d *Document) OCRApplied() bool {
	return d.preOCR != nil
}

// WithOCRSnapshot returns a new Document whose current text is the OCR
// re-extraction, keeping the original snapshot as the pre-OCR version.
// The receiver is not modified.
func (d *Document) WithOCRSnapshot(snap *Snapshot) *Document {
	return &Document{current: snap, preOCR: d.current}
}

// Line is one non-empty text line with its position in the document.
type Line struct {
	Page  int    // Page index within the snapshot
	Index int    // Line index within the page
	Text  string // Whitespace-collapsed line content
}

// Lines flattens the snapshot's pages into ordered non-empty lines with
// collapsed internal whitespace. Blank lines are dropped; the remaining lines
// keep their original page/line positions.
func (s *Snapshot) Lines() []Line {
	var lines []Line
	for _, page := range s.Pages {
		for i, raw := range strings.Split(page.Text, "\n") {
			text := strings.Join(strings.Fields(raw), " ")
			if text == "" {
				continue
			}
			lines = append(lines, Line{Page: page.Index, Index: i, Text: text})
		}
	}
	return lines
}
