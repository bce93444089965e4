package registry

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// csvHeader is the downstream-facing column set of the decision registry.
var csvHeader = []string{
	"paper_id",
	"status",
	"needs_ocr_before_ocr",
	"ocr_applied",
	"ocr_error",
	"remaining_quality_flags",
	"is_container",
	"title_like_count",
	"author_like_count",
	"abstract_start_count",
	"program_marker_count",
	"match_method",
	"match_confidence",
	"matched_block_index",
	"matched_reference_key",
	"updated_at_utc",
}

// ExportCSV writes all entries as a CSV report in paper ID order.
func (r *Registry) ExportCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("writing registry header: %w", err)
	}
	for e, err := range r.All() {
		if err != nil {
			return err
		}
		row := []string{
			e.PaperID,
			e.Status,
			boolText(e.NeedsOCRBeforeOCR),
			boolText(e.OCRApplied),
			e.OCRError,
			e.RemainingQualityFlags,
			boolText(e.IsContainer),
			strconv.Itoa(e.TitleLikeCount),
			strconv.Itoa(e.AuthorLikeCount),
			strconv.Itoa(e.AbstractStartCount),
			strconv.Itoa(e.ProgramMarkerCount),
			e.MatchMethod,
			strconv.FormatFloat(e.MatchConfidence, 'f', 4, 64),
			strconv.Itoa(e.MatchedBlockIndex),
			e.MatchedReferenceKey,
			e.UpdatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing registry row %s: %w", e.PaperID, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing registry export: %w", err)
	}
	return nil
}

func boolText(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
