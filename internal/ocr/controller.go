package ocr

import (
	"context"
	"errors"

	"github.com/ManfrediC/sps-review/internal/document"
	"github.com/ManfrediC/sps-review/internal/quality"
)

// Extractor re-extracts page text from a (possibly OCR-augmented) source
// file.
type Extractor interface {
	Extract(ctx context.Context, sourcePath string) (*document.Snapshot, error)
}

// Outcome records how the fallback handled one document.
type Outcome struct {
	// Doc is the document to continue the pipeline with. When OCR succeeded
	// this is a new version superseding the input; otherwise the input
	// document unchanged.
	Doc *document.Document

	// Applied is true when OCR ran and its text replaced the original.
	Applied bool

	// Verdict is the classifier verdict on Doc's current text.
	Verdict quality.Verdict

	// Signals is the signal bundle matching Verdict.
	Signals quality.Signals

	// ErrReason is a short registry-facing reason when the OCR tool failed
	// ("timeout", or the tool error); empty on success or when OCR was not
	// needed. Tool failure is a recorded degraded state, not a fatal error.
	ErrReason string
}

// Controller applies the single-attempt OCR fallback policy.
type Controller struct {
	converter  Converter
	extractor  Extractor
	classifier *quality.Classifier
}

// NewController wires the fallback out of its collaborators.
func NewController(converter Converter, extractor Extractor, classifier *quality.Classifier) *Controller {
	return &Controller{converter: converter, extractor: extractor, classifier: classifier}
}

// Process decides whether doc needs OCR and, if so, makes exactly one
// attempt. A clean verdict passes the document through untouched. On OCR or
// re-extraction failure the pre-OCR text is kept and the reason recorded. On
// success the re-extracted text replaces the original (full replacement,
// never a merge) and the classifier runs again; a still-unclean verdict is
// recorded as remaining quality flags, not an error.
func (c *Controller) Process(ctx context.Context, doc *document.Document, sourcePath string) Outcome {
	signals, verdict := c.classifier.Classify(doc.Current())
	out := Outcome{Doc: doc, Verdict: verdict, Signals: signals}
	if !verdict.NeedsOCR() {
		return out
	}

	augmentedPath, err := c.converter.Convert(ctx, sourcePath)
	if err != nil {
		out.ErrReason = errReason(err)
		return out
	}

	snap, err := c.extractor.Extract(ctx, augmentedPath)
	if err != nil {
		out.ErrReason = errReason(err)
		return out
	}
	snap.PaperID = doc.PaperID()

	out.Doc = doc.WithOCRSnapshot(snap)
	out.Applied = true
	out.Signals, out.Verdict = c.classifier.Classify(snap)
	return out
}

func errReason(err error) string {
	switch {
	case IsTimeout(err):
		return "timeout"
	case errors.Is(err, ErrDisabled):
		return "disabled"
	default:
		return err.Error()
	}
}
