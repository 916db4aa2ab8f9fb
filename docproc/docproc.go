// Package docproc turns raw unstructured text into a processed document:
// normalized text, a nested chapter tree, a flattened table of contents,
// derived metadata and spine-driven layout hints.
//
// Processing is pure and deterministic. The same (rawText, title,
// templateID, spine) tuple always yields the same ProcessedDocument, which
// is what makes the digest-based reprocessing cache sound.
//
// Usage:
//
//	processed := docproc.Process(docproc.Request{
//		Title:   "My Doc",
//		RawText: raw,
//		Spine:   spine.Metrics{AD: 40, PM: 55, ESI: 20},
//	})
package docproc

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/zariapress/zaria/spine"
)

// Chapter is one node of the structural tree. Sections hold strictly
// deeper-levelled descendants, attached via the level-ordered stack in
// nestChapters.
type Chapter struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Level    int        `json:"level"` // 1..6
	Content  string     `json:"content"`
	Sections []*Chapter `json:"sections"`
}

// TocEntry is one row of the flattened table of contents. Order is the
// 1-based pre-order traversal index over the chapter tree.
type TocEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Level int    `json:"level"`
	Order int    `json:"order"`
}

// Metadata describes the document as a whole.
type Metadata struct {
	Title                   string   `json:"title"`
	Subtitle                string   `json:"subtitle,omitempty"`
	Author                  string   `json:"author,omitempty"`
	Language                string   `json:"language"`
	Keywords                []string `json:"keywords"`
	WordCount               int      `json:"wordCount"`
	EstimatedReadingMinutes int      `json:"estimatedReadingMinutes"`
}

// ProvidedMetadata is caller-supplied metadata that overrides extraction.
type ProvidedMetadata struct {
	Subtitle string   `json:"subtitle,omitempty" yaml:"subtitle"`
	Author   string   `json:"author,omitempty" yaml:"author"`
	Language string   `json:"language,omitempty" yaml:"language"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords"`
}

// ProcessedDocument is the aggregate every encoder consumes. Chapters and
// metadata are read-only once built.
type ProcessedDocument struct {
	NormalizedText string             `json:"normalizedText"`
	Chapters       []*Chapter         `json:"chapters"`
	Metadata       Metadata           `json:"metadata"`
	Toc            []TocEntry         `json:"toc"`
	Layout         spine.LayoutHints  `json:"layout"`
}

// Request carries everything Process needs.
type Request struct {
	Title    string
	RawText  string
	Metadata ProvidedMetadata
	Spine    spine.Metrics
}

// Process runs the full pipeline: normalize → detect headings → build the
// chapter tree → extract metadata → flatten the TOC → derive layout.
func Process(req Request) ProcessedDocument {
	normalized := Normalize(req.RawText)
	flat := buildFlatChapters(normalized, req.Title)
	chapters := nestChapters(flat)
	meta := extractMetadata(normalized, chapters, req.Title, req.Metadata)

	return ProcessedDocument{
		NormalizedText: normalized,
		Chapters:       chapters,
		Metadata:       meta,
		Toc:            flattenToc(chapters),
		Layout:         spine.Derive(req.Spine).Layout,
	}
}

// Digest is the content digest used to skip redundant reprocessing: a
// hex-encoded SHA-256 over the fields that influence processing output.
func Digest(rawText, title, templateID string, m spine.Metrics) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s|%s",
		rawText, title, templateID,
		strconv.FormatFloat(m.AD, 'f', -1, 64),
		strconv.FormatFloat(m.PM, 'f', -1, 64),
		strconv.FormatFloat(m.ESI, 'f', -1, 64))
	return hex.EncodeToString(h.Sum(nil))
}

// FlattenChapters returns the tree in pre-order, the ordering shared by the
// TOC and by every encoder's chapter flow.
func FlattenChapters(chapters []*Chapter) []*Chapter {
	var out []*Chapter
	var walk func(nodes []*Chapter)
	walk = func(nodes []*Chapter) {
		for _, n := range nodes {
			out = append(out, n)
			walk(n.Sections)
		}
	}
	walk(chapters)
	return out
}

func flattenToc(chapters []*Chapter) []TocEntry {
	entries := make([]TocEntry, 0, len(chapters))
	order := 1
	var walk func(nodes []*Chapter)
	walk = func(nodes []*Chapter) {
		for _, n := range nodes {
			entries = append(entries, TocEntry{
				ID:    n.ID,
				Title: n.Title,
				Level: n.Level,
				Order: order,
			})
			order++
			walk(n.Sections)
		}
	}
	walk(chapters)
	return entries
}
