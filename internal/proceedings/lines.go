// Package proceedings detects container documents that bundle many
// independent publications, such as conference proceedings and abstract
// booklets.
package proceedings

import (
	"regexp"
	"strings"
	"unicode"
)

// abstractStartRe matches coded abstract headers such as "S-123. Title" or
// "42. Title" that open a new abstract in proceedings volumes.
var abstractStartRe = regexp.MustCompile(
	`^((?:[A-Z]{1,3}-)?(?:[A-Z]{1,2})?\d{2,3}|\d{2,3})\.\s+(.+)$`,
)

// authorCredentialRe matches academic credential suffixes typical of author
// listings.
var authorCredentialRe = regexp.MustCompile(
	`(?i)\b(MD|M\.D\.|DO|D\.O\.|PHD|PH\.D\.|MSC|M\.S\.|MS|BS|B\.S\.|BA|B\.A\.|MBA|MBBS|MPH|RN|FRCPC|FAAN|FRCP|DPhil)\b`,
)

var alphaRe = regexp.MustCompile(`[A-Za-z]`)

var institutionMarkers = []string{
	"university", "hospital", "medical center", "school of medicine",
	"clinic", "department", "institute", "center", "centre",
	"usa", "canada", "united kingdom", "australia", "japan",
	"italy", "france", "germany", "korea",
}

var footerMarkers = []string{
	"annals of neurology",
	"downloaded from https://",
	"terms and conditions",
	"program and abstracts",
}

var programMarkers = []string{
	"annual meeting",
	"program and abstracts",
	"program abstracts",
	"poster sessions",
	"poster presentations",
}

// AbstractStart parses a coded abstract header line. It returns the abstract
// code, the title remainder, and whether the line is such a header.
func AbstractStart(line string) (code, title string, ok bool) {
	m := abstractStartRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", "", false
	}
	return m[1], strings.TrimSpace(m[2]), true
}

// AuthorLike reports whether a line looks like an author listing: credential
// suffixes, heavy comma separation, or semicolon-delimited name groups.
func AuthorLike(line string) bool {
	if authorCredentialRe.MatchString(line) {
		return true
	}
	commas := strings.Count(line, ",")
	if commas >= 3 {
		return true
	}
	return strings.Contains(line, ";") && commas >= 1
}

// InstitutionLike reports whether a line mentions an affiliation marker.
func InstitutionLike(line string) bool {
	return containsAnyMarker(line, institutionMarkers)
}

// FooterLike reports whether a line is running journal header/footer chrome.
func FooterLike(line string) bool {
	return containsAnyMarker(line, footerMarkers)
}

// TitleLike reports whether a line plausibly opens a publication title: a
// mid-length capitalized run of mostly alphabetic words without terminal
// punctuation that is not an author listing, affiliation, footer, or coded
// abstract header.
func TitleLike(line string) bool {
	if _, _, ok := AbstractStart(line); ok {
		return false
	}
	if AuthorLike(line) || InstitutionLike(line) || FooterLike(line) {
		return false
	}
	line = strings.TrimSpace(line)
	if line == "" || strings.ContainsRune(".!?;:,", rune(line[len(line)-1])) {
		return false
	}
	words := strings.Fields(line)
	if len(words) < 4 || len(words) > 24 {
		return false
	}
	first := []rune(words[0])[0]
	if !unicode.IsUpper(first) && !unicode.IsDigit(first) {
		return false
	}
	alphaWords := 0
	for _, w := range words {
		if alphaRe.MatchString(w) {
			alphaWords++
		}
	}
	min := len(words) - 2
	if min < 3 {
		min = 3
	}
	return alphaWords >= min
}

// CountProgramMarkers counts program-booklet phrases in already-normalized
// text ("annual meeting", "poster sessions", ...).
func CountProgramMarkers(normalized string) int {
	count := 0
	for _, marker := range programMarkers {
		if strings.Contains(normalized, marker) {
			count++
		}
	}
	return count
}

func containsAnyMarker(line string, markers []string) bool {
	normalized := normalizeMarkerText(line)
	for _, marker := range markers {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}

// normalizeMarkerText lowercases and collapses non-alphanumerics so marker
// phrases match across punctuation and spacing variants.
func normalizeMarkerText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == ':' || r == '/':
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace:
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimRight(b.String(), " ")
}
