package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ManfrediC/sps-review/internal/config"
	"github.com/ManfrediC/sps-review/internal/document"
	"github.com/ManfrediC/sps-review/internal/logger"
	"github.com/ManfrediC/sps-review/internal/ocr"
	"github.com/ManfrediC/sps-review/internal/quality"
	"github.com/ManfrediC/sps-review/internal/reference"
	"github.com/ManfrediC/sps-review/internal/registry"
	"github.com/ManfrediC/sps-review/internal/trim"
)

type fakeExtractor struct {
	snaps map[string]*document.Snapshot
	errs  map[string]error
}

func (f *fakeExtractor) Extract(_ context.Context, sourcePath string) (*document.Snapshot, error) {
	id := document.PaperIDFromFilename(sourcePath)
	if err, ok := f.errs[id]; ok {
		return nil, err
	}
	snap, ok := f.snaps[id]
	if !ok {
		return nil, fmt.Errorf("no fixture for %s", id)
	}
	return snap, nil
}

type fakeRefStore map[string]reference.Record

func (s fakeRefStore) Lookup(paperID string) (reference.Record, bool) {
	r, ok := s[paperID]
	return r, ok
}

const targetTitle = "Outcomes of early decompression in cervical myelopathy"

// containerSnapshot builds a 30-page abstract booklet with ten coded
// abstracts on the first ten pages. The fifth abstract is the target paper.
func containerSnapshot() *document.Snapshot {
	titles := []string{
		"Epidemiology of paediatric femur fractures in rural cohorts",
		"Minimally invasive fixation for thoracolumbar burst injuries",
		"Long term sequelae of untreated scaphoid nonunion patterns",
		"Gait analysis after staged bilateral knee arthroplasty procedures",
		targetTitle,
		"Revision strategies for infected intramedullary nail constructs",
		"Vitamin D status and fragility fracture incidence in elders",
		"Telemedicine follow up models for postoperative spine patients",
		"Complication profiles of anterior versus posterior approaches",
		"Registry based audit of implant survivorship at ten years",
	}
	pages := make([]document.Page, 30)
	for i := range pages {
		pages[i] = document.Page{Index: i}
	}
	for i, title := range titles {
		authors := "Smith J, MD; Jones K, PhD"
		if title == targetTitle {
			authors = "Nakamura T, MD; Sato K, PhD"
		}
		pages[i].Text = fmt.Sprintf("%d. %s\n%s\nDepartment of Surgery, University Hospital\nWe report a consecutive series with mid term follow up and discuss complications.",
			10+i, title, authors)
	}
	for i := 10; i < 30; i++ {
		pages[i].Text = "Discussion of the pooled results continues with methodological detail and limitations noted by the panel."
	}
	counts := make([]int, len(pages))
	for i, p := range pages {
		counts[i] = len(p.Text)
	}
	return &document.Snapshot{
		SourceFilename: "2024_annual_meeting_program_and_abstracts.pdf",
		NPages:         len(pages),
		PageCharCounts: counts,
		Pages:          pages,
	}
}

func simpleSnapshot() *document.Snapshot {
	pages := []document.Page{
		{Index: 0, Text: "A single case report describing an unusual presentation of cervical instability in an adult patient."},
		{Index: 1, Text: "The patient underwent staged treatment and recovered without neurological deficit at one year."},
		{Index: 2, Text: "We discuss the differential diagnosis and review the sparse literature on this presentation."},
	}
	counts := make([]int, len(pages))
	for i, p := range pages {
		counts[i] = len(p.Text)
	}
	return &document.Snapshot{NPages: 3, PageCharCounts: counts, Pages: pages}
}

func newTestPipeline(t *testing.T, ext Extractor, refs ReferenceStore) (*Pipeline, *registry.Registry, *trim.Store, string) {
	t.Helper()
	cfg := config.Default()
	cfg.OCR.Tool = "" // fallback disabled, fixtures are clean
	cfg.Workers = 2

	reg, err := registry.Open(filepath.Join(t.TempDir(), "decisions.db"))
	if err != nil {
		t.Fatalf("registry.Open() error = %v", err)
	}
	t.Cleanup(func() { reg.Close() })

	trims, err := trim.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("trim.NewStore() error = %v", err)
	}
	snapDir := t.TempDir()

	classifier := quality.NewClassifier(cfg.Quality)
	fallback := ocr.NewController(ocr.NewCommandConverter(cfg.OCR, t.TempDir()), ext, classifier)
	p := New(cfg, logger.Nop(), Deps{
		Extractor:   ext,
		Fallback:    fallback,
		References:  refs,
		Registry:    reg,
		Trims:       trims,
		SnapshotDir: snapDir,
	})
	return p, reg, trims, snapDir
}

func TestProcess_PassThrough(t *testing.T) {
	ext := &fakeExtractor{snaps: map[string]*document.Snapshot{"200": simpleSnapshot()}}
	p, reg, trims, snapDir := newTestPipeline(t, ext, fakeRefStore{})

	entry, err := p.Process(context.Background(), "/in/200_Case.pdf")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if entry.Status != StatusOK || entry.IsContainer {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.MatchedBlockIndex != -1 || entry.MatchMethod != "" {
		t.Errorf("pass-through must skip matching: %+v", entry)
	}
	if _, ok, _ := trims.Load("200"); ok {
		t.Error("pass-through document got a trimmed artifact")
	}
	if _, ok, err := reg.Get("200"); err != nil || !ok {
		t.Errorf("registry entry missing: ok=%v err=%v", ok, err)
	}
	if _, err := os.Stat(filepath.Join(snapDir, "200.json")); err != nil {
		t.Errorf("extraction record not written: %v", err)
	}
}

func TestProcess_ContainerMatch(t *testing.T) {
	ext := &fakeExtractor{snaps: map[string]*document.Snapshot{"100": containerSnapshot()}}
	refs := fakeRefStore{"100": {
		PaperID: "100",
		Title:   targetTitle,
		Authors: "Nakamura, T.; Sato, K.",
		DOI:     "10.1007/s00586-test",
	}}
	p, reg, trims, _ := newTestPipeline(t, ext, refs)

	entry, err := p.Process(context.Background(), "/in/100_Outcomes.pdf")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if !entry.IsContainer {
		t.Fatalf("booklet not detected as container: %+v", entry)
	}
	stored, ok, err := reg.Get("100")
	if err != nil || !ok {
		t.Fatalf("registry entry missing: ok=%v err=%v", ok, err)
	}
	if stored.ProgramMarkerCount != 2 {
		t.Errorf("ProgramMarkerCount = %d, want 2 from the booklet filename", stored.ProgramMarkerCount)
	}
	if entry.MatchMethod != "title" {
		t.Errorf("MatchMethod = %q, want title (exact normalized title)", entry.MatchMethod)
	}
	if entry.MatchedBlockIndex != 4 {
		t.Errorf("MatchedBlockIndex = %d, want 4", entry.MatchedBlockIndex)
	}
	if entry.MatchedReferenceKey != "10.1007/s00586-test" {
		t.Errorf("MatchedReferenceKey = %q", entry.MatchedReferenceKey)
	}

	rec, ok, err := trims.Load("100")
	if err != nil || !ok {
		t.Fatalf("trimmed artifact missing: ok=%v err=%v", ok, err)
	}
	if !strings.Contains(rec.Text, "cervical myelopathy") {
		t.Errorf("trimmed text lacks target block: %q", rec.Text)
	}
	if rec.MatchedBlockIndex != 4 || rec.MatchMethod != "title" {
		t.Errorf("provenance mismatch: %+v", rec)
	}
}

func TestProcess_RerunWithoutMatchClearsArtifact(t *testing.T) {
	ext := &fakeExtractor{snaps: map[string]*document.Snapshot{"100": containerSnapshot()}}
	refs := fakeRefStore{"100": {PaperID: "100", Title: targetTitle}}
	p, reg, trims, _ := newTestPipeline(t, ext, refs)

	if _, err := p.Process(context.Background(), "/in/100_Outcomes.pdf"); err != nil {
		t.Fatalf("first Process() error = %v", err)
	}
	if _, ok, _ := trims.Load("100"); !ok {
		t.Fatal("first run did not write a trimmed artifact")
	}

	// Rerun with the reference row gone: the stale artifact must not survive.
	delete(refs, "100")
	entry, err := p.Process(context.Background(), "/in/100_Outcomes.pdf")
	if err != nil {
		t.Fatalf("second Process() error = %v", err)
	}
	if entry.MatchMethod != "none" {
		t.Errorf("MatchMethod = %q, want none", entry.MatchMethod)
	}
	if _, ok, _ := trims.Load("100"); ok {
		t.Error("stale trimmed artifact survived a no-match rerun")
	}
	n, err := reg.Count()
	if err != nil || n != 1 {
		t.Errorf("registry Count() = %d err=%v, want one entry after rerun", n, err)
	}
}

func TestProcess_ExtractionFailure(t *testing.T) {
	ext := &fakeExtractor{errs: map[string]error{"300": errors.New("damaged xref table")}}
	p, reg, _, _ := newTestPipeline(t, ext, fakeRefStore{})

	entry, err := p.Process(context.Background(), "/in/300_Broken.pdf")
	if err != nil {
		t.Fatalf("Process() error = %v, degraded extraction must not be fatal", err)
	}
	if entry.Status != StatusExtractionFailed {
		t.Errorf("Status = %q, want %q", entry.Status, StatusExtractionFailed)
	}
	if got, ok, _ := reg.Get("300"); !ok || got.Status != StatusExtractionFailed {
		t.Errorf("registry entry = %+v ok=%v", got, ok)
	}
}

func TestProcess_CancelledLeavesNoEntry(t *testing.T) {
	ext := &fakeExtractor{snaps: map[string]*document.Snapshot{"200": simpleSnapshot()}}
	p, reg, _, _ := newTestPipeline(t, ext, fakeRefStore{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Process(ctx, "/in/200_Case.pdf"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Process() error = %v, want context.Canceled", err)
	}
	n, err := reg.Count()
	if err != nil || n != 0 {
		t.Errorf("registry Count() = %d err=%v, want no entry for cancelled document", n, err)
	}
}

func TestRun_Summary(t *testing.T) {
	inputDir := t.TempDir()
	for _, name := range []string{"100_Outcomes.pdf", "200_Case.pdf", "300_Broken.pdf", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(inputDir, name), []byte("%PDF-1.4"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	ext := &fakeExtractor{
		snaps: map[string]*document.Snapshot{"100": containerSnapshot(), "200": simpleSnapshot()},
		errs:  map[string]error{"300": errors.New("damaged xref table")},
	}
	refs := fakeRefStore{"100": {PaperID: "100", Title: targetTitle, Authors: "Nakamura, T.; Sato, K."}}
	p, reg, _, _ := newTestPipeline(t, ext, refs)

	sum, err := p.Run(context.Background(), inputDir)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := Summary{Total: 3, ExtractionFailed: 1, Containers: 1, Matched: 1}
	if sum != want {
		t.Errorf("Summary = %+v, want %+v", sum, want)
	}
	n, err := reg.Count()
	if err != nil || n != 3 {
		t.Errorf("registry Count() = %d err=%v, want 3", n, err)
	}
}

func TestListPDFs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.PDF", "a.pdf", "c.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	paths, err := ListPDFs(dir)
	if err != nil {
		t.Fatalf("ListPDFs() error = %v", err)
	}
	if len(paths) != 2 || filepath.Base(paths[0]) != "a.pdf" || filepath.Base(paths[1]) != "b.PDF" {
		t.Errorf("ListPDFs() = %v", paths)
	}
}
