package main

import (
	"github.com/spf13/cobra"

	"github.com/ManfrediC/sps-review/internal/document"
	"github.com/ManfrediC/sps-review/internal/match"
	"github.com/ManfrediC/sps-review/internal/proceedings"
	"github.com/ManfrediC/sps-review/internal/quality"
	"github.com/ManfrediC/sps-review/internal/reference"
)

var (
	screenRecordsDir string
	screenRefsPath   string
)

func init() {
	screenCmd.Flags().StringVar(&screenRecordsDir, "records", "triage-out/records", "Directory of extraction records")
	screenCmd.Flags().StringVar(&screenRefsPath, "refs", "", "Reference list CSV for title screening signals (optional)")
	rootCmd.AddCommand(screenCmd)
}

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Report text quality and container signals for extracted records",
	Long: `Classify each extraction record under --records and report its quality
verdict, quality signals and structural container score. Nothing is written;
this is the inspection view of the decisions the run command would make.`,
	RunE: runScreen,
}

// ScreenRow is one document's screening report.
type ScreenRow struct {
	PaperID string              `json:"paper_id"`
	Verdict quality.Verdict     `json:"verdict"`
	Signals quality.Signals     `json:"signals"`
	Score   proceedings.Score   `json:"structure"`
	Title   *match.TitleSignals `json:"title,omitempty"`
}

func runScreen(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	log := mustNewLogger()
	defer log.Sync()

	paths, err := document.ListSnapshots(screenRecordsDir)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	var refs *reference.CSVStore
	if screenRefsPath != "" {
		refs, err = reference.LoadCSV(screenRefsPath)
		if err != nil {
			exitWithError(ExitDataError, "loading reference list: %v", err)
		}
	}

	classifier := quality.NewClassifier(cfg.Quality)
	detector := proceedings.NewDetector(cfg.Proceedings)

	rows := make([]ScreenRow, 0, len(paths))
	for _, path := range paths {
		snap, err := document.LoadSnapshot(path)
		if err != nil {
			log.Warn("skipping unreadable record", "path", path, "error", err)
			continue
		}
		signals, verdict := classifier.Classify(snap)
		row := ScreenRow{
			PaperID: snap.PaperID,
			Verdict: verdict,
			Signals: signals,
			Score:   detector.Detect(snap),
		}
		if refs != nil {
			if ref, ok := refs.Lookup(snap.PaperID); ok {
				sig := match.ScanTitle(snap, ref, cfg.Proceedings.ScanPages)
				row.Title = &sig
			}
		}
		rows = append(rows, row)
	}
	return outputJSON(rows)
}
