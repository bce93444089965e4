// Package extract adapts the PDF text extraction library to the triage
// core's Document model.
package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/ManfrediC/sps-review/internal/document"
)

// extractorName tags snapshots with the producing library.
const extractorName = "ledongthuc/pdf"

// ConversionError indicates raw text extraction failed for a source file.
// It is fatal for that document only; the batch continues.
type ConversionError struct {
	Path string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("extracting text from %s: %v", e.Path, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// PDFExtractor extracts per-page text from PDF files.
type PDFExtractor struct{}

// NewPDFExtractor returns the library-backed extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract reads every page of the PDF at sourcePath and returns an immutable
// snapshot: ordered page texts, per-page character counts, and the source
// checksum. Pages whose text cannot be decoded yield empty text rather than
// failing the document; the quality classifier handles them downstream.
func (x *PDFExtractor) Extract(ctx context.Context, sourcePath string) (*document.Snapshot, error) {
	f, r, err := pdf.Open(sourcePath)
	if err != nil {
		return nil, &ConversionError{Path: sourcePath, Err: err}
	}
	defer f.Close()

	checksum, err := fileSHA256(sourcePath)
	if err != nil {
		return nil, &ConversionError{Path: sourcePath, Err: err}
	}

	snap := &document.Snapshot{
		PaperID:        document.PaperIDFromFilename(sourcePath),
		SourceFilename: filepath.Base(sourcePath),
		SourceSHA256:   checksum,
		Extractor:      extractorName,
		ExtractedAt:    time.Now().UTC(),
		NPages:         r.NumPage(),
	}

	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, &ConversionError{Path: sourcePath, Err: err}
		}
		text := ""
		page := r.Page(i)
		if !page.V.IsNull() {
			if t, err := page.GetPlainText(nil); err == nil {
				text = cleanPageText(t)
			}
		}
		snap.Pages = append(snap.Pages, document.Page{Index: i - 1, Text: text})
		snap.PageCharCounts = append(snap.PageCharCounts, len(text))
	}
	return snap, nil
}

// cleanPageText normalizes non-breaking spaces and trims the page.
func cleanPageText(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, " ", " "))
}


func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening source for checksum: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing source: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
