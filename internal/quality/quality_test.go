package quality

import (
	"strings"
	"testing"

	"github.com/ManfrediC/sps-review/internal/config"
	"github.com/ManfrediC/sps-review/internal/document"
)

func snapshot(texts ...string) *document.Snapshot {
	snap := &document.Snapshot{PaperID: "test", NPages: len(texts)}
	for i, text := range texts {
		snap.Pages = append(snap.Pages, document.Page{Index: i, Text: text})
		snap.PageCharCounts = append(snap.PageCharCounts, len(text))
	}
	return snap
}

func newClassifier() *Classifier {
	return NewClassifier(config.Default().Quality)
}

func TestClassify_CleanText(t *testing.T) {
	body := strings.Repeat("Stiff person syndrome is a rare neurological disorder. ", 10)
	_, verdict := newClassifier().Classify(snapshot(body, body, body))
	if verdict != VerdictClean {
		t.Errorf("verdict = %q, want clean", verdict)
	}
	if verdict.NeedsOCR() {
		t.Error("clean verdict must not trigger OCR")
	}
}

func TestClassify_LowDensityNeedsOCR(t *testing.T) {
	sig, verdict := newClassifier().Classify(snapshot("", "a", ""))
	if verdict != VerdictNeedsOCR {
		t.Errorf("verdict = %q, want needs_ocr", verdict)
	}
	if !sig.LowCharDensity {
		t.Error("LowCharDensity flag not set")
	}
	if sig.WhitespacePageRatio <= 0.5 {
		t.Errorf("WhitespacePageRatio = %v, want > 0.5", sig.WhitespacePageRatio)
	}
}

func TestClassify_CorruptedText(t *testing.T) {
	// Dense enough to pass rule 1, but dominated by PUA glyphs.
	corrupt := strings.Repeat(" ", 100)
	sig, verdict := newClassifier().Classify(snapshot(corrupt))
	if verdict != VerdictCorrupted {
		t.Errorf("verdict = %q, want corrupted", verdict)
	}
	if !sig.CorruptionSignature {
		t.Error("CorruptionSignature flag not set")
	}
	if !verdict.NeedsOCR() {
		t.Error("corrupted verdict must trigger OCR")
	}
}

func TestClassify_ControlCharacters(t *testing.T) {
	body := strings.Repeat("readable body text with normal words here. ", 20)
	corrupt := body + "\x01\x02\x03\x04\x05\x06"
	_, verdict := newClassifier().Classify(snapshot(corrupt))
	if verdict != VerdictCorrupted {
		t.Errorf("verdict = %q, want corrupted", verdict)
	}
}

func TestClassify_ControlCharacterThresholdIsTolerated(t *testing.T) {
	// Exactly MaxControlChars control characters stay within tolerance;
	// the verdict flips only above it.
	body := strings.Repeat("readable body text with normal words here. ", 20)
	atLimit := body + strings.Repeat("\x01", config.Default().Quality.MaxControlChars)
	_, verdict := newClassifier().Classify(snapshot(atLimit))
	if verdict != VerdictClean {
		t.Errorf("verdict = %q, want clean at the tolerated count", verdict)
	}
}

func TestClassify_LowDensityTakesPrecedence(t *testing.T) {
	// Both rules would fire; rule 1 wins.
	_, verdict := newClassifier().Classify(snapshot(""))
	if verdict != VerdictNeedsOCR {
		t.Errorf("verdict = %q, want needs_ocr (precedence)", verdict)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	snap := snapshot(strings.Repeat("mixed  content with some real words. ", 15))
	c := newClassifier()
	sig1, v1 := c.Classify(snap)
	sig2, v2 := c.Classify(snap)
	if v1 != v2 || sig1 != sig2 {
		t.Errorf("classification not deterministic: (%v,%q) vs (%v,%q)", sig1, v1, sig2, v2)
	}
}

func TestClassify_EmptyDocument(t *testing.T) {
	_, verdict := newClassifier().Classify(&document.Snapshot{PaperID: "empty"})
	if verdict != VerdictClean {
		// Zero pages means no density signal at all; nothing to OCR.
		t.Errorf("verdict = %q, want clean for zero-page snapshot", verdict)
	}
}
