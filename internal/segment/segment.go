// Package segment splits a container document's text into contiguous
// candidate blocks, each a putative standalone publication.
package segment

import (
	"strings"

	"github.com/ManfrediC/sps-review/internal/document"
	"github.com/ManfrediC/sps-review/internal/proceedings"
)

const (
	// titleLeadLines bounds how many leading lines may be folded into a
	// block's title candidate.
	titleLeadLines = 5
	// previewLines bounds the leading window used as the author-candidate
	// preview text.
	previewLines = 12
)

// Block is one contiguous candidate publication inside a container document.
// Blocks from one segmentation run cover the document's lines exactly: every
// line belongs to exactly one block.
type Block struct {
	Index     int             // Position in document order
	Code      string          // Abstract code if the block opens with one ("S-123")
	Lines     []document.Line // The block's lines in document order
	StartLine int             // Index of the first line in the flattened document
	EndLine   int             // Index one past the last line
	StartPage int
	EndPage   int

	// TitleCandidate is the probable title assembled from the leading lines,
	// with any abstract code stripped.
	TitleCandidate string
	// Preview is the leading window of the block with footer chrome removed,
	// used for author matching.
	Preview string
}

// Text returns the block's full text, one line per row.
func (b *Block) Text() string {
	texts := make([]string, len(b.Lines))
	for i, line := range b.Lines {
		texts[i] = line.Text
	}
	return strings.Join(texts, "\n")
}

// Pages regroups the block's lines into per-page texts, dropping footer
// chrome. Pages that end up empty are omitted.
func (b *Block) Pages() []document.Page {
	var pages []document.Page
	for _, line := range b.Lines {
		if proceedings.FooterLike(line.Text) {
			continue
		}
		if n := len(pages); n > 0 && pages[n-1].Index == line.Page {
			pages[n-1].Text += "\n" + line.Text
			continue
		}
		pages = append(pages, document.Page{Index: line.Page, Text: line.Text})
	}
	return pages
}

// Split segments the flattened lines of a container document into blocks.
// A new block begins at a coded abstract header, at a title-like line that
// follows a non-title-like line, or at a title-like line opening a page.
// A document with no internal boundaries yields exactly one block spanning
// everything, so the matcher can still run and report an explicit no-match.
func Split(lines []document.Line) []Block {
	if len(lines) == 0 {
		return []Block{{Index: 0}}
	}

	starts := []int{0}
	for i := 1; i < len(lines); i++ {
		if isBoundary(lines[i], lines[i-1]) {
			starts = append(starts, i)
		}
	}

	blocks := make([]Block, 0, len(starts))
	for n, start := range starts {
		end := len(lines)
		if n+1 < len(starts) {
			end = starts[n+1]
		}
		blocks = append(blocks, makeBlock(n, lines, start, end))
	}
	return blocks
}

func isBoundary(line, prev document.Line) bool {
	if _, _, ok := proceedings.AbstractStart(line.Text); ok {
		return true
	}
	if !proceedings.TitleLike(line.Text) {
		return false
	}
	return !proceedings.TitleLike(prev.Text) || line.Page != prev.Page
}

func makeBlock(index int, lines []document.Line, start, end int) Block {
	span := lines[start:end]
	b := Block{
		Index:     index,
		Lines:     span,
		StartLine: start,
		EndLine:   end,
		StartPage: span[0].Page,
		EndPage:   span[len(span)-1].Page,
	}

	first := span[0].Text
	if code, title, ok := proceedings.AbstractStart(first); ok {
		b.Code = code
		first = title
	}

	// Fold continuation lines into the title until the author/affiliation
	// section starts.
	titleParts := []string{first}
	for _, line := range span[1:min(len(span), titleLeadLines)] {
		if _, _, ok := proceedings.AbstractStart(line.Text); ok {
			break
		}
		if proceedings.AuthorLike(line.Text) || proceedings.InstitutionLike(line.Text) ||
			proceedings.FooterLike(line.Text) {
			break
		}
		titleParts = append(titleParts, line.Text)
	}
	b.TitleCandidate = strings.TrimSpace(strings.Join(titleParts, " "))

	var preview []string
	for _, line := range span[:min(len(span), previewLines)] {
		if proceedings.FooterLike(line.Text) {
			continue
		}
		preview = append(preview, line.Text)
	}
	b.Preview = strings.Join(preview, " ")
	return b
}
