package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ManfrediC/sps-review/internal/extract"
	"github.com/ManfrediC/sps-review/internal/ocr"
	"github.com/ManfrediC/sps-review/internal/pipeline"
	"github.com/ManfrediC/sps-review/internal/quality"
	"github.com/ManfrediC/sps-review/internal/reference"
	"github.com/ManfrediC/sps-review/internal/registry"
	"github.com/ManfrediC/sps-review/internal/trim"
)

var (
	runInputDir string
	runRefsPath string
	runOutDir   string
)

func init() {
	runCmd.Flags().StringVar(&runInputDir, "input", "", "Directory of source PDFs (required)")
	runCmd.Flags().StringVar(&runRefsPath, "refs", "", "Reference list CSV (required)")
	runCmd.Flags().StringVar(&runOutDir, "out", "triage-out", "Output directory")
	runCmd.MarkFlagRequired("input")
	runCmd.MarkFlagRequired("refs")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full triage pipeline over a PDF corpus",
	Long: `Run extraction, quality screening, OCR fallback, container detection,
segmentation and reference matching for every PDF under --input, writing
extraction records, trimmed artifacts and the decision registry under --out.`,
	RunE: runRun,
}

// RunResult is the response for the run command.
type RunResult struct {
	Status  string           `json:"status"`
	OutDir  string           `json:"out_dir"`
	Summary pipeline.Summary `json:"summary"`
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	log := mustNewLogger()
	defer log.Sync()

	refs, err := reference.LoadCSV(runRefsPath)
	if err != nil {
		exitWithError(ExitDataError, "loading reference list: %v", err)
	}
	log.Info("reference list loaded", "path", runRefsPath, "rows", refs.Len())

	reg, err := registry.Open(filepath.Join(runOutDir, "decisions.db"))
	if err != nil {
		exitWithError(ExitError, "opening decision registry: %v", err)
	}
	defer reg.Close()

	trims, err := trim.NewStore(filepath.Join(runOutDir, "trimmed"))
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	extractor := extract.NewPDFExtractor()
	classifier := quality.NewClassifier(cfg.Quality)
	converter := ocr.NewCommandConverter(cfg.OCR, filepath.Join(runOutDir, "ocr"))
	fallback := ocr.NewController(converter, extractor, classifier)

	p := pipeline.New(cfg, log, pipeline.Deps{
		Extractor:   extractor,
		Fallback:    fallback,
		References:  refs,
		Registry:    reg,
		Trims:       trims,
		SnapshotDir: filepath.Join(runOutDir, "records"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := p.Run(ctx, runInputDir)
	if err != nil {
		exitWithError(ExitError, "pipeline: %v", err)
	}
	return outputJSON(RunResult{Status: "ok", OutDir: runOutDir, Summary: sum})
}
