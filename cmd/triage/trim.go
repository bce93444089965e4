package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ManfrediC/sps-review/internal/document"
	"github.com/ManfrediC/sps-review/internal/match"
	"github.com/ManfrediC/sps-review/internal/proceedings"
	"github.com/ManfrediC/sps-review/internal/reference"
	"github.com/ManfrediC/sps-review/internal/registry"
	"github.com/ManfrediC/sps-review/internal/segment"
	"github.com/ManfrediC/sps-review/internal/trim"
)

var (
	trimRecordsDir string
	trimRefsPath   string
	trimOutDir     string
)

func init() {
	trimCmd.Flags().StringVar(&trimRecordsDir, "records", "triage-out/records", "Directory of extraction records")
	trimCmd.Flags().StringVar(&trimRefsPath, "refs", "", "Reference list CSV (required)")
	trimCmd.Flags().StringVar(&trimOutDir, "out", "triage-out", "Output directory")
	trimCmd.MarkFlagRequired("refs")
	rootCmd.AddCommand(trimCmd)
}

var trimCmd = &cobra.Command{
	Use:   "trim",
	Short: "Segment container records and trim them to their matched abstract",
	Long: `Detect container documents among existing extraction records, segment
them into candidate abstract blocks, match each against its reference row and
write trimmed artifacts plus registry entries. Documents that are not
containers are recorded as pass-through; a rerun that no longer matches
removes the stale trimmed artifact.`,
	RunE: runTrim,
}

// TrimResult is the response for the trim command.
type TrimResult struct {
	Status     string `json:"status"`
	Records    int    `json:"records"`
	Containers int    `json:"containers"`
	Matched    int    `json:"matched"`
	NoMatch    int    `json:"no_match"`
}

func runTrim(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	log := mustNewLogger()
	defer log.Sync()

	refs, err := reference.LoadCSV(trimRefsPath)
	if err != nil {
		exitWithError(ExitDataError, "loading reference list: %v", err)
	}
	paths, err := document.ListSnapshots(trimRecordsDir)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	reg, err := registry.Open(filepath.Join(trimOutDir, "decisions.db"))
	if err != nil {
		exitWithError(ExitError, "opening decision registry: %v", err)
	}
	defer reg.Close()
	trims, err := trim.NewStore(filepath.Join(trimOutDir, "trimmed"))
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	detector := proceedings.NewDetector(cfg.Proceedings)
	matcher := match.NewMatcher(cfg.Match)

	result := TrimResult{Status: "ok"}
	for _, path := range paths {
		snap, err := document.LoadSnapshot(path)
		if err != nil {
			log.Warn("skipping unreadable record", "path", path, "error", err)
			continue
		}
		result.Records++
		entry := registry.Entry{PaperID: snap.PaperID, Status: "ok", MatchedBlockIndex: -1}

		score := detector.Detect(snap)
		entry.IsContainer = score.IsContainer
		entry.TitleLikeCount = score.TitleLikeCount
		entry.AuthorLikeCount = score.AuthorLikeCount
		entry.AbstractStartCount = score.AbstractStartCount
		entry.ProgramMarkerCount = score.ProgramMarkerCount

		if !score.IsContainer {
			if err := trims.Remove(snap.PaperID); err != nil {
				exitWithError(ExitError, "%v", err)
			}
			if err := reg.Upsert(entry); err != nil {
				exitWithError(ExitError, "%v", err)
			}
			continue
		}
		result.Containers++

		res := match.Result{Method: match.MethodNone, BlockIndex: -1}
		if ref, ok := refs.Lookup(snap.PaperID); ok {
			res = matcher.Match(segment.Split(snap.Lines()), ref)
			if res.Matched() {
				entry.MatchedReferenceKey = ref.DOI
				if entry.MatchedReferenceKey == "" {
					entry.MatchedReferenceKey = ref.PaperID
				}
			}
		} else {
			log.Warn("no reference record", "paper_id", snap.PaperID)
		}
		entry.MatchMethod = string(res.Method)
		entry.MatchConfidence = res.Confidence
		entry.MatchedBlockIndex = res.BlockIndex

		if res.Matched() {
			rec, err := trim.NewRecord(snap, res)
			if err != nil {
				exitWithError(ExitError, "%v", err)
			}
			if err := trims.Write(rec); err != nil {
				exitWithError(ExitError, "%v", err)
			}
			result.Matched++
			log.Info("block matched", "paper_id", snap.PaperID, "method", res.Method, "block", res.BlockIndex)
		} else {
			if err := trims.Remove(snap.PaperID); err != nil {
				exitWithError(ExitError, "%v", err)
			}
			result.NoMatch++
			log.Info("no block matched", "paper_id", snap.PaperID, "best_title_score", res.TitleScore)
		}
		if err := reg.Upsert(entry); err != nil {
			exitWithError(ExitError, "%v", err)
		}
	}
	return outputJSON(result)
}
