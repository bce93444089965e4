// Package pipeline sequences the triage stages for single documents and
// whole batches.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ManfrediC/sps-review/internal/config"
	"github.com/ManfrediC/sps-review/internal/document"
	"github.com/ManfrediC/sps-review/internal/logger"
	"github.com/ManfrediC/sps-review/internal/match"
	"github.com/ManfrediC/sps-review/internal/ocr"
	"github.com/ManfrediC/sps-review/internal/proceedings"
	"github.com/ManfrediC/sps-review/internal/quality"
	"github.com/ManfrediC/sps-review/internal/reference"
	"github.com/ManfrediC/sps-review/internal/registry"
	"github.com/ManfrediC/sps-review/internal/segment"
	"github.com/ManfrediC/sps-review/internal/trim"
)

// StatusOK and StatusExtractionFailed are the registry status values the
// pipeline writes.
const (
	StatusOK               = "ok"
	StatusExtractionFailed = "extraction_failed"
)

// Extractor pulls a text snapshot out of a source PDF.
type Extractor interface {
	Extract(ctx context.Context, sourcePath string) (*document.Snapshot, error)
}

// ReferenceStore resolves a paper ID to its bibliographic record.
type ReferenceStore interface {
	Lookup(paperID string) (ref reference.Record, ok bool)
}

// Pipeline runs extract, quality screening, OCR fallback, container
// detection, segmentation, matching and artifact emission for one corpus.
type Pipeline struct {
	cfg       config.Config
	log       *logger.Logger
	extractor Extractor
	fallback  *ocr.Controller
	detector  *proceedings.Detector
	matcher   *match.Matcher
	refs      ReferenceStore
	registry  *registry.Registry
	trims     *trim.Store

	// snapshotDir, when set, receives the finalized extraction record of
	// every processed document.
	snapshotDir string
}

// Deps bundles the pipeline collaborators. All fields are required except
// SnapshotDir.
type Deps struct {
	Extractor   Extractor
	Fallback    *ocr.Controller
	References  ReferenceStore
	Registry    *registry.Registry
	Trims       *trim.Store
	SnapshotDir string
}

// New wires a pipeline from its configuration and collaborators.
func New(cfg config.Config, log *logger.Logger, deps Deps) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		log:         log,
		extractor:   deps.Extractor,
		fallback:    deps.Fallback,
		detector:    proceedings.NewDetector(cfg.Proceedings),
		matcher:     match.NewMatcher(cfg.Match),
		refs:        deps.References,
		registry:    deps.Registry,
		trims:       deps.Trims,
		snapshotDir: deps.SnapshotDir,
	}
}

// Process runs the full stage sequence for one source PDF and records the
// decision. Per-document degradations (failed extraction, failed OCR, no
// match) are recorded in the registry and do not return an error; only
// infrastructure failures and context cancellation do. A cancelled context
// leaves no registry entry for the document.
func (p *Pipeline) Process(ctx context.Context, sourcePath string) (registry.Entry, error) {
	paperID := document.PaperIDFromFilename(sourcePath)
	log := p.log.With("paper_id", paperID)

	snap, err := p.extractor.Extract(ctx, sourcePath)
	if err != nil {
		if ctx.Err() != nil {
			return registry.Entry{}, ctx.Err()
		}
		log.Warn("extraction failed", "error", err)
		entry := registry.Entry{PaperID: paperID, Status: StatusExtractionFailed, MatchedBlockIndex: -1}
		if uerr := p.registry.Upsert(entry); uerr != nil {
			return registry.Entry{}, uerr
		}
		return entry, nil
	}
	snap.PaperID = paperID

	outcome := p.fallback.Process(ctx, document.New(snap), sourcePath)
	if ctx.Err() != nil {
		return registry.Entry{}, ctx.Err()
	}
	current := outcome.Doc.Current()

	entry := registry.Entry{
		PaperID:           paperID,
		Status:            StatusOK,
		NeedsOCRBeforeOCR: outcome.Applied || outcome.ErrReason != "",
		OCRApplied:        outcome.Applied,
		OCRError:          outcome.ErrReason,
		MatchedBlockIndex: -1,
	}
	if outcome.Verdict != quality.VerdictClean {
		entry.RemainingQualityFlags = string(outcome.Verdict)
	}
	if outcome.Applied {
		log.Info("ocr applied", "verdict", outcome.Verdict)
	} else if outcome.ErrReason != "" {
		log.Warn("ocr fallback failed, keeping original text", "reason", outcome.ErrReason)
	}

	score := p.detector.Detect(current)
	entry.IsContainer = score.IsContainer
	entry.TitleLikeCount = score.TitleLikeCount
	entry.AuthorLikeCount = score.AuthorLikeCount
	entry.AbstractStartCount = score.AbstractStartCount
	entry.ProgramMarkerCount = score.ProgramMarkerCount

	if score.IsContainer {
		if err := p.matchContainer(current, &entry, log); err != nil {
			return registry.Entry{}, err
		}
	} else {
		// Pass-through: full text is canonical, no trimmed artifact.
		if err := p.trims.Remove(paperID); err != nil {
			return registry.Entry{}, err
		}
	}

	if p.snapshotDir != "" {
		recordPath := filepath.Join(p.snapshotDir, paperID+".json")
		if err := document.WriteSnapshot(recordPath, current); err != nil {
			return registry.Entry{}, err
		}
	}

	if ctx.Err() != nil {
		return registry.Entry{}, ctx.Err()
	}
	if err := p.registry.Upsert(entry); err != nil {
		return registry.Entry{}, err
	}
	return entry, nil
}

// matchContainer runs segmentation and reference matching for a container
// document and maintains its trimmed artifact.
func (p *Pipeline) matchContainer(snap *document.Snapshot, entry *registry.Entry, log *logger.Logger) error {
	blocks := segment.Split(snap.Lines())
	log.Debug("container segmented", "blocks", len(blocks))

	ref, ok := p.refs.Lookup(entry.PaperID)
	if !ok {
		log.Warn("no reference record, skipping match")
		entry.MatchMethod = string(match.MethodNone)
		return p.trims.Remove(entry.PaperID)
	}

	res := p.matcher.Match(blocks, ref)
	entry.MatchMethod = string(res.Method)
	entry.MatchConfidence = res.Confidence
	entry.MatchedBlockIndex = res.BlockIndex
	if !res.Matched() {
		log.Info("no block matched, full text remains canonical",
			"best_title_score", res.TitleScore)
		return p.trims.Remove(entry.PaperID)
	}

	entry.MatchedReferenceKey = referenceKey(ref)
	rec, err := trim.NewRecord(snap, res)
	if err != nil {
		return err
	}
	if err := p.trims.Write(rec); err != nil {
		return err
	}
	log.Info("block matched",
		"method", res.Method,
		"block", res.BlockIndex,
		"confidence", fmt.Sprintf("%.4f", res.Confidence))
	return nil
}

// referenceKey identifies the matched reference in the registry: the DOI
// when the record has one, the paper ID otherwise.
func referenceKey(ref reference.Record) string {
	if ref.DOI != "" {
		return ref.DOI
	}
	return ref.PaperID
}

// Summary aggregates batch outcomes.
type Summary struct {
	Total            int `json:"total"`
	ExtractionFailed int `json:"extraction_failed"`
	OCRApplied       int `json:"ocr_applied"`
	OCRFailed        int `json:"ocr_failed"`
	Containers       int `json:"containers"`
	Matched          int `json:"matched"`
	NoMatch          int `json:"no_match"`
}

// Run processes every PDF under inputDir with a bounded worker pool. Each
// document is independent; degraded documents are counted, not fatal. The
// first infrastructure error cancels the remaining work.
func (p *Pipeline) Run(ctx context.Context, inputDir string) (Summary, error) {
	paths, err := ListPDFs(inputDir)
	if err != nil {
		return Summary{}, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers())

	var mu sync.Mutex
	var sum Summary
	for _, path := range paths {
		g.Go(func() error {
			entry, err := p.Process(ctx, path)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			sum.Total++
			if entry.Status == StatusExtractionFailed {
				sum.ExtractionFailed++
				return nil
			}
			if entry.OCRApplied {
				sum.OCRApplied++
			}
			if !entry.OCRApplied && entry.OCRError != "" {
				sum.OCRFailed++
			}
			if entry.IsContainer {
				sum.Containers++
				if entry.MatchMethod != "" && entry.MatchMethod != string(match.MethodNone) {
					sum.Matched++
				} else {
					sum.NoMatch++
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return sum, err
	}
	p.log.Info("batch complete",
		"total", sum.Total,
		"containers", sum.Containers,
		"matched", sum.Matched,
		"ocr_applied", sum.OCRApplied,
		"extraction_failed", sum.ExtractionFailed)
	return sum, nil
}

func (p *Pipeline) workers() int {
	if p.cfg.Workers > 0 {
		return p.cfg.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// ListPDFs returns the PDF paths under dir in name order.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing input directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
