package document

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadSnapshot reads an extraction record from a JSON file.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading extraction record: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing extraction record %s: %w", filepath.Base(path), err)
	}
	if snap.PaperID == "" {
		snap.PaperID = PaperIDFromFilename(path)
	}
	return &snap, nil
}

// WriteSnapshot writes an extraction record as indented JSON, creating the
// parent directory if needed.
func WriteSnapshot(path string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding extraction record: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating record directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing extraction record: %w", err)
	}
	return nil
}

// ListSnapshots returns the paths of all extraction records in a directory,
// sorted by file name for deterministic batch order.
func ListSnapshots(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing extraction records: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// PaperIDFromFilename derives the paper ID from a source or record file name.
// Source PDFs are named "<id>_<title words>.pdf"; records are "<id>.json".
func PaperIDFromFilename(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.Index(stem, "_"); i > 0 {
		return stem[:i]
	}
	return stem
}
