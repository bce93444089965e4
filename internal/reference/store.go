package reference

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Store resolves paper IDs to their bibliographic reference, if one is known.
type Store interface {
	// Lookup returns the reference for a paper ID, or ok=false for an
	// unknown reference.
	Lookup(paperID string) (Record, bool)
}

// CSVStore is a Store backed by a screening-export CSV file (one row per
// reference, keyed by the Covidence column).
type CSVStore struct {
	byID map[string]Record
}

// csvColumns maps the Record fields to accepted header spellings, first
// match wins. Covidence exports have varied slightly across versions.
var csvColumns = map[string][]string{
	"paper_id": {"Covidence", "Covidence #", "covidence_id", "paper_id"},
	"title":    {"Title", "title"},
	"authors":  {"Authors", "authors"},
	"journal":  {"Journal", "journal"},
	"year":     {"Published Year", "Year", "year"},
	"doi":      {"DOI", "doi"},
	"url":      {"URL", "Ref", "url"},
}

// LoadCSV reads a reference export CSV. Rows without a paper ID are skipped;
// a later row for the same ID replaces an earlier one.
func LoadCSV(path string) (*CSVStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening reference export: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses a reference export from a reader.
func ReadCSV(r io.Reader) (*CSVStore, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading reference export header: %w", err)
	}
	index := headerIndex(header)
	if _, ok := index["paper_id"]; !ok {
		return nil, fmt.Errorf("reference export has no Covidence/paper_id column")
	}

	store := &CSVStore{byID: make(map[string]Record)}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading reference export line %d: %w", line, err)
		}
		rec := recordFromRow(row, index)
		if rec.PaperID == "" {
			continue
		}
		store.byID[rec.PaperID] = rec
	}
	return store, nil
}

// Lookup implements Store.
func (s *CSVStore) Lookup(paperID string) (Record, bool) {
	rec, ok := s.byID[paperID]
	return rec, ok
}

// Len returns the number of loaded references.
func (s *CSVStore) Len() int {
	return len(s.byID)
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int)
	for field, names := range csvColumns {
		for _, name := range names {
			for i, col := range header {
				if strings.EqualFold(strings.TrimSpace(col), name) {
					index[field] = i
					break
				}
			}
			if _, ok := index[field]; ok {
				break
			}
		}
	}
	return index
}

func recordFromRow(row []string, index map[string]int) Record {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	year, _ := strconv.Atoi(field("year"))
	return Record{
		PaperID: field("paper_id"),
		Title:   field("title"),
		Authors: field("authors"),
		Journal: field("journal"),
		Year:    year,
		DOI:     field("doi"),
		URL:     field("url"),
	}
}
