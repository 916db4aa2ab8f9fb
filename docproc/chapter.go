package docproc

import (
	"fmt"
	"regexp"
	"strings"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases value and replaces every non-alphanumeric run with a
// single dash. May return "" (e.g. for punctuation-only titles); callers
// fall back to an ordinal id.
func Slug(value string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(value)), "-")
	return strings.Trim(s, "-")
}

type flatChapter struct {
	id      string
	level   int
	title   string
	content string
}

// buildFlatChapters cuts the document at heading positions. A chapter's
// content is every line between its heading and the next heading (or end
// of document). With no headings at all, the whole document becomes one
// level-1 chapter titled with the caller-supplied title.
func buildFlatChapters(normalizedText, titleFallback string) []flatChapter {
	lines := strings.Split(normalizedText, "\n")
	headings := detectHeadings(lines)

	if len(headings) == 0 {
		id := Slug(titleFallback)
		if id == "" {
			id = "chapter-1"
		}
		return []flatChapter{{
			id:      id,
			level:   1,
			title:   titleFallback,
			content: normalizedText,
		}}
	}

	chapters := make([]flatChapter, 0, len(headings))
	for idx, h := range headings {
		next := len(lines)
		if idx+1 < len(headings) {
			next = headings[idx+1].lineIndex
		}
		content := strings.TrimSpace(strings.Join(lines[h.lineIndex+1:next], "\n"))

		// Ordinal-disambiguated slug keeps ids unique when titles repeat.
		id := Slug(fmt.Sprintf("%s-%d", h.title, idx+1))
		if id == "" {
			id = fmt.Sprintf("chapter-%d", idx+1)
		}

		chapters = append(chapters, flatChapter{
			id:      id,
			level:   h.level,
			title:   h.title,
			content: content,
		})
	}
	return chapters
}

// nestChapters assembles the tree with a level-ordered stack: before
// attaching a chapter, every open chapter at the same or deeper level is
// popped, so a node's level is always strictly greater than its parent's.
func nestChapters(flat []flatChapter) []*Chapter {
	var root []*Chapter
	var stack []*Chapter

	for _, current := range flat {
		node := &Chapter{
			ID:       current.id,
			Title:    current.title,
			Level:    current.level,
			Content:  current.content,
			Sections: []*Chapter{},
		}

		for len(stack) > 0 && stack[len(stack)-1].Level >= node.Level {
			stack = stack[:len(stack)-1]
		}

		if len(stack) == 0 {
			root = append(root, node)
		} else {
			parent := stack[len(stack)-1]
			parent.Sections = append(parent.Sections, node)
		}

		stack = append(stack, node)
	}

	return root
}
