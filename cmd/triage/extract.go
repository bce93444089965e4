package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ManfrediC/sps-review/internal/document"
	"github.com/ManfrediC/sps-review/internal/extract"
	"github.com/ManfrediC/sps-review/internal/pipeline"
)

var (
	extractInputDir string
	extractOutDir   string
)

func init() {
	extractCmd.Flags().StringVar(&extractInputDir, "input", "", "Directory of source PDFs (required)")
	extractCmd.Flags().StringVar(&extractOutDir, "out", "triage-out/records", "Directory for extraction records")
	extractCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract text snapshots from PDFs without screening them",
	Long: `Extract page text from every PDF under --input and write one JSON
extraction record per document. No quality screening, OCR or matching runs;
use this to inspect raw extraction output or to feed the screen and trim
commands.`,
	RunE: runExtract,
}

// ExtractResult is the response for the extract command.
type ExtractResult struct {
	Status    string   `json:"status"`
	Extracted int      `json:"extracted"`
	Failed    []string `json:"failed,omitempty"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := mustNewLogger()
	defer log.Sync()

	paths, err := pipeline.ListPDFs(extractInputDir)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	extractor := extract.NewPDFExtractor()
	result := ExtractResult{Status: "ok"}
	for _, path := range paths {
		if ctx.Err() != nil {
			exitWithError(ExitError, "interrupted")
		}
		paperID := document.PaperIDFromFilename(path)
		snap, err := extractor.Extract(ctx, path)
		if err != nil {
			log.Warn("extraction failed", "paper_id", paperID, "error", err)
			result.Failed = append(result.Failed, paperID)
			continue
		}
		snap.PaperID = paperID
		recordPath := filepath.Join(extractOutDir, paperID+".json")
		if err := document.WriteSnapshot(recordPath, snap); err != nil {
			exitWithError(ExitError, "%v", err)
		}
		result.Extracted++
		log.Debug("extracted", "paper_id", paperID, "pages", snap.NPages, "chars", snap.TotalChars())
	}
	return outputJSON(result)
}
