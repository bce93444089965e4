// Package reference defines the target bibliographic records the matcher
// searches for inside container documents.
package reference

import "strings"

// Record is one bibliographic reference from the screening export. It is
// read-only input to the triage core.
type Record struct {
	// PaperID is the stable screening identifier (Covidence number) that also
	// keys extraction records and registry rows.
	PaperID string `json:"paper_id"`

	Title   string `json:"title"`
	Authors string `json:"authors"` // Semicolon-separated "Last, First" entries
	Journal string `json:"journal,omitempty"`
	Year    int    `json:"year,omitempty"`
	DOI     string `json:"doi,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Surnames returns up to max normalized author surnames in listing order.
// Author entries are semicolon-separated with the surname before the first
// comma ("Smith, Jane A.; Jones, K.").
func (r Record) Surnames(max int) []string {
	var surnames []string
	seen := make(map[string]bool)
	for _, chunk := range strings.Split(r.Authors, ";") {
		part := strings.TrimSpace(chunk)
		if part == "" {
			continue
		}
		surname := part
		if i := strings.Index(part, ","); i >= 0 {
			surname = part[:i]
		}
		normalized := NormalizeText(surname)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		surnames = append(surnames, normalized)
		if max > 0 && len(surnames) >= max {
			break
		}
	}
	return surnames
}
