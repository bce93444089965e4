// Package quality classifies extracted text reliability and decides whether a
// document needs an OCR pass.
package quality

import (
	"strings"
	"unicode"

	"github.com/ManfrediC/sps-review/internal/config"
	"github.com/ManfrediC/sps-review/internal/document"
)

// Verdict is the classifier outcome for one snapshot.
type Verdict string

const (
	// VerdictClean means the extracted text is usable as-is.
	VerdictClean Verdict = "clean"
	// VerdictNeedsOCR means too little text was extracted for the page count.
	VerdictNeedsOCR Verdict = "needs_ocr"
	// VerdictCorrupted means the text carries an encoding-corruption signature.
	VerdictCorrupted Verdict = "corrupted"
)

// NeedsOCR reports whether the verdict should trigger the OCR fallback.
func (v Verdict) NeedsOCR() bool {
	return v == VerdictNeedsOCR || v == VerdictCorrupted
}

// Signals is the derived quality flag bundle for one snapshot. It is a pure
// function of the snapshot and is recomputed on demand, never persisted.
type Signals struct {
	TotalChars          int     `json:"total_chars"`
	CharsPerPage        float64 `json:"chars_per_page"`
	GarbageRatio        float64 `json:"garbage_ratio"`
	ControlCharCount    int     `json:"control_char_count"`
	WhitespacePageRatio float64 `json:"whitespace_page_ratio"`
	LowCharDensity      bool    `json:"low_char_density"`
	CorruptionSignature bool    `json:"corruption_signature"`
}

// Classifier scores snapshots against configured thresholds.
type Classifier struct {
	cfg config.QualityConfig
}

// NewClassifier returns a classifier with the given thresholds.
func NewClassifier(cfg config.QualityConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify computes the signal bundle and verdict for a snapshot. Rules are
// evaluated in precedence order: low density first, then corruption, then
// clean. The result depends only on the snapshot and the configured
// thresholds.
func (c *Classifier) Classify(snap *document.Snapshot) (Signals, Verdict) {
	sig := c.signals(snap)
	switch {
	case sig.LowCharDensity:
		return sig, VerdictNeedsOCR
	case sig.CorruptionSignature:
		return sig, VerdictCorrupted
	default:
		return sig, VerdictClean
	}
}

func (c *Classifier) signals(snap *document.Snapshot) Signals {
	sig := Signals{TotalChars: snap.TotalChars()}

	pages := len(snap.Pages)
	if pages > 0 {
		sig.CharsPerPage = float64(sig.TotalChars) / float64(pages)
		blank := 0
		for _, p := range snap.Pages {
			if strings.TrimSpace(p.Text) == "" {
				blank++
			}
		}
		sig.WhitespacePageRatio = float64(blank) / float64(pages)
	}

	text := snap.FullText()
	sig.GarbageRatio = garbageRatio(text)
	sig.ControlCharCount = controlCharCount(text)

	sig.LowCharDensity = pages > 0 && sig.CharsPerPage < c.cfg.MinCharsPerPage
	sig.CorruptionSignature = sig.GarbageRatio > c.cfg.MaxGarbageRatio ||
		sig.ControlCharCount > c.cfg.MaxControlChars
	return sig
}

// garbageRatio returns the fraction of non-whitespace runes that fall outside
// plausible printable text: private-use area glyphs, the replacement
// character, and stray control characters, all typical of broken font
// encodings.
func garbageRatio(text string) float64 {
	total := 0
	garbage := 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if isGarbageRune(r) {
			garbage++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(garbage) / float64(total)
}

func isGarbageRune(r rune) bool {
	if r >= 0xE000 && r <= 0xF8FF { // Private Use Area
		return true
	}
	if r == 0xFFFD {
		return true
	}
	if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
		return true
	}
	return false
}

// controlCharCount counts control characters other than newline, carriage
// return, and tab.
func controlCharCount(text string) int {
	count := 0
	for _, r := range text {
		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			count++
		}
	}
	return count
}
