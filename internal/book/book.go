// Package book defines the value types shared between site adapters
// and the EPUB assembler, along with chapter range selection and
// chapter title normalization.
package book

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Chapter is a single downloaded chapter. Paragraphs are plain text
// blocks in reading order. Index is the 1-based position of the chapter
// in the source chapter ordering, which stays stable even when other
// chapters in a run are skipped.
type Chapter struct {
	Title      string
	Paragraphs []string
	Index      int
}

// CoverImage holds downloaded cover image bytes and their media type.
type CoverImage struct {
	Data      []byte
	MediaType string
}

// Link is an external reference shown on the introduction page.
type Link struct {
	Text string
	Href string
}

// Metadata describes the book being assembled. It is produced once per
// run from the novel's landing page. CoverURL is the source location of
// the cover image; Cover is populated after the image has been
// downloaded and re-encoded.
type Metadata struct {
	Title          string
	Author         string
	Translator     string
	Synopsis       string
	AlternateTitle string
	Subjects       []string
	Links          []Link
	Language       string
	Identifier     string
	CoverURL       string
	Cover          *CoverImage
	Modified       time.Time
}

var chapterTitleRe = regexp.MustCompile(`(?i)^(?:chapter\s*)?(\d+)\W*(.*)$`)

// NormalizeChapterTitle rewrites raw chapter link text into the
// canonical "Chapter N: Title" form. Surrounding brackets and dashes
// around the title part are stripped; a chapter with no title text
// becomes "Chapter N: Untitled". Titles that do not start with a
// chapter number are returned trimmed but otherwise unchanged.
func NormalizeChapterTitle(raw string) string {
	raw = strings.TrimSpace(raw)

	m := chapterTitleRe.FindStringSubmatch(raw)
	if m == nil {
		return raw
	}

	num := strings.TrimLeft(m[1], "0")
	if num == "" {
		num = "0"
	}

	title := strings.TrimSpace(m[2])
	title = strings.TrimLeft(title, "([-– ")
	title = strings.TrimRight(title, ")] ")
	if title == "" {
		title = "Untitled"
	}

	return fmt.Sprintf("Chapter %s: %s", num, title)
}
