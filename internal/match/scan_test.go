package match

import (
	"testing"

	"github.com/ManfrediC/sps-review/internal/document"
	"github.com/ManfrediC/sps-review/internal/reference"
)

func TestScanTitle(t *testing.T) {
	snap := &document.Snapshot{Pages: []document.Page{
		{Index: 0, Text: "Outcomes of early decompression in cervical myelopathy\nSmith J, MD"},
		{Index: 1, Text: "Methods and results follow."},
	}}

	tests := []struct {
		name      string
		title     string
		scanPages int
		wantHit   bool
		wantRatio float64
	}{
		{
			name:      "verbatim title on first page",
			title:     "Outcomes of early decompression in cervical myelopathy",
			scanPages: 2,
			wantHit:   true,
			wantRatio: 1,
		},
		{
			name:      "partial word overlap",
			title:     "Early decompression timing in thoracic trauma",
			scanPages: 2,
			wantHit:   false,
			wantRatio: 0.4, // early, decompression hit out of 5 significant tokens
		},
		{
			name:      "title beyond scan window",
			title:     "Methods and results follow",
			scanPages: 1,
			wantHit:   false,
			wantRatio: 0,
		},
		{
			name:      "empty title",
			title:     "",
			scanPages: 2,
			wantHit:   false,
			wantRatio: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := ScanTitle(snap, reference.Record{Title: tt.title}, tt.scanPages)
			if sig.FirstPagesHit != tt.wantHit {
				t.Errorf("FirstPagesHit = %v, want %v", sig.FirstPagesHit, tt.wantHit)
			}
			if diff := sig.WordHitRatio - tt.wantRatio; diff > 0.001 || diff < -0.001 {
				t.Errorf("WordHitRatio = %v, want %v", sig.WordHitRatio, tt.wantRatio)
			}
		})
	}
}
