package docproc

import (
	"strings"
	"testing"

	"github.com/zariapress/zaria/spine"
)

func process(t *testing.T, title, raw string) ProcessedDocument {
	t.Helper()
	return Process(Request{Title: title, RawText: raw, Spine: spine.Metrics{AD: 50, PM: 50, ESI: 50}})
}

func TestProcessMarkdownTree(t *testing.T) {
	doc := process(t, "Fallback", "# Title\n\nBody text.\n\n## Sub\n\nMore text.")

	if len(doc.Chapters) != 1 {
		t.Fatalf("roots = %d, want 1", len(doc.Chapters))
	}
	root := doc.Chapters[0]
	if root.Title != "Title" || root.Level != 1 || root.Content != "Body text." {
		t.Fatalf("root = %+v", root)
	}
	if len(root.Sections) != 1 {
		t.Fatalf("root sections = %d, want 1", len(root.Sections))
	}
	sub := root.Sections[0]
	if sub.Title != "Sub" || sub.Level != 2 || sub.Content != "More text." {
		t.Fatalf("sub = %+v", sub)
	}

	if len(doc.Toc) != 2 {
		t.Fatalf("toc = %d entries, want 2", len(doc.Toc))
	}
	if doc.Toc[0].Order != 1 || doc.Toc[1].Order != 2 {
		t.Fatalf("toc orders = %d, %d", doc.Toc[0].Order, doc.Toc[1].Order)
	}
	if doc.Toc[0].Title != "Title" || doc.Toc[1].Title != "Sub" {
		t.Fatalf("toc titles = %q, %q", doc.Toc[0].Title, doc.Toc[1].Title)
	}
}

func TestProcessNoHeadings(t *testing.T) {
	raw := "Just a plain paragraph.\n\nAnother paragraph."
	doc := process(t, "My Doc", raw)

	if len(doc.Chapters) != 1 {
		t.Fatalf("chapters = %d, want 1", len(doc.Chapters))
	}
	ch := doc.Chapters[0]
	if ch.Title != "My Doc" || ch.Level != 1 {
		t.Fatalf("chapter = %+v", ch)
	}
	if ch.Content != doc.NormalizedText {
		t.Fatalf("content %q != normalized text %q", ch.Content, doc.NormalizedText)
	}
	if ch.ID != "my-doc" {
		t.Fatalf("id = %q, want my-doc", ch.ID)
	}
	if doc.Metadata.Title != "My Doc" {
		t.Fatalf("metadata title = %q", doc.Metadata.Title)
	}
}

func TestProcessStackPopping(t *testing.T) {
	// #, ##, ### then # again: both inner levels close, a second root opens.
	raw := "# One\n\na\n\n## Two\n\nb\n\n### Three\n\nc\n\n# Four\n\nd"
	doc := process(t, "X", raw)

	if len(doc.Chapters) != 2 {
		t.Fatalf("roots = %d, want 2", len(doc.Chapters))
	}
	one, four := doc.Chapters[0], doc.Chapters[1]
	if one.Title != "One" || four.Title != "Four" {
		t.Fatalf("roots = %q, %q", one.Title, four.Title)
	}
	if len(four.Sections) != 0 {
		t.Fatalf("second root has %d sections, want 0", len(four.Sections))
	}
	if len(one.Sections) != 1 || len(one.Sections[0].Sections) != 1 {
		t.Fatalf("nesting under first root broken: %+v", one)
	}
	if doc.Toc[3].Title != "Four" || doc.Toc[3].Order != 4 {
		t.Fatalf("toc[3] = %+v", doc.Toc[3])
	}
}

func TestProcessSiblingsSameLevel(t *testing.T) {
	raw := "## A\n\nx\n\n## B\n\ny"
	doc := process(t, "X", raw)
	if len(doc.Chapters) != 2 {
		t.Fatalf("expected 2 sibling roots, got %d", len(doc.Chapters))
	}
}

func TestChapterIDsUniqueForRepeatedTitles(t *testing.T) {
	doc := process(t, "X", "# Notes\n\na\n\n# Notes\n\nb")
	ids := map[string]bool{}
	for _, ch := range doc.Chapters {
		if ids[ch.ID] {
			t.Fatalf("duplicate id %q", ch.ID)
		}
		ids[ch.ID] = true
	}
	if doc.Chapters[0].ID != "notes-1" || doc.Chapters[1].ID != "notes-2" {
		t.Fatalf("ids = %q, %q", doc.Chapters[0].ID, doc.Chapters[1].ID)
	}
}

func TestKeywordRanking(t *testing.T) {
	raw := strings.Repeat("architecture ", 5) + strings.Repeat("system ", 3) + "the and for tiny"
	keywords := ExtractKeywords(raw)
	if len(keywords) < 2 {
		t.Fatalf("keywords = %v", keywords)
	}
	if keywords[0] != "architecture" || keywords[1] != "system" {
		t.Fatalf("keywords = %v, want architecture before system", keywords)
	}
	for _, k := range keywords {
		if k == "the" || k == "and" || k == "for" || k == "tiny" {
			t.Fatalf("stop/short word leaked: %v", keywords)
		}
	}
}

func TestKeywordTiesKeepFirstSeenOrder(t *testing.T) {
	keywords := ExtractKeywords("zebra apple zebra apple mango")
	if keywords[0] != "zebra" || keywords[1] != "apple" || keywords[2] != "mango" {
		t.Fatalf("keywords = %v", keywords)
	}
}

func TestProvidedKeywordsVerbatim(t *testing.T) {
	doc := Process(Request{
		Title:    "T",
		RawText:  "lots of repeated repeated repeated words",
		Metadata: ProvidedMetadata{Keywords: []string{"Alpha", "BETA"}},
	})
	if len(doc.Metadata.Keywords) != 2 || doc.Metadata.Keywords[0] != "Alpha" {
		t.Fatalf("keywords = %v", doc.Metadata.Keywords)
	}
}

func TestReadingTime(t *testing.T) {
	tests := []struct {
		words   int
		minutes int
	}{
		{0, 1},
		{1, 1},
		{220, 1},
		{221, 2},
		{2200, 10},
	}
	for _, tt := range tests {
		raw := strings.TrimSpace(strings.Repeat("word ", tt.words))
		doc := process(t, "T", raw)
		if doc.Metadata.WordCount != tt.words {
			t.Errorf("words=%d: count=%d", tt.words, doc.Metadata.WordCount)
		}
		if doc.Metadata.EstimatedReadingMinutes != tt.minutes {
			t.Errorf("words=%d: minutes=%d, want %d", tt.words, doc.Metadata.EstimatedReadingMinutes, tt.minutes)
		}
	}
}

func TestMetadataTitleTruncation(t *testing.T) {
	// The first-line fallback truncates to 120 runes; chapter titles do not.
	long := strings.Repeat("x", 200)
	meta := extractMetadata(long+"\nrest", nil, "Fallback", ProvidedMetadata{})
	if got := len([]rune(meta.Title)); got != 120 {
		t.Fatalf("fallback title length = %d, want 120", got)
	}

	doc := process(t, long, "body only, no headings")
	if doc.Metadata.Title != long {
		t.Fatalf("chapter-derived title was truncated to %d runes", len([]rune(doc.Metadata.Title)))
	}
}

func TestProcessDeterministic(t *testing.T) {
	req := Request{
		Title:   "Stable",
		RawText: "# A\n\nbody\n\n## B\n\nmore",
		Spine:   spine.Metrics{AD: 33, PM: 66, ESI: 99},
	}
	a, b := Process(req), Process(req)
	if a.NormalizedText != b.NormalizedText || len(a.Toc) != len(b.Toc) ||
		a.Metadata.Title != b.Metadata.Title || a.Layout != b.Layout {
		t.Fatal("Process is not deterministic")
	}
}

func TestDigest(t *testing.T) {
	m := spine.Metrics{AD: 10, PM: 20, ESI: 30}
	a := Digest("raw", "title", "tpl", m)
	if a != Digest("raw", "title", "tpl", m) {
		t.Fatal("digest not stable")
	}
	if a == Digest("raw2", "title", "tpl", m) ||
		a == Digest("raw", "title2", "tpl", m) ||
		a == Digest("raw", "title", "tpl2", m) ||
		a == Digest("raw", "title", "tpl", spine.Metrics{AD: 11, PM: 20, ESI: 30}) {
		t.Fatal("digest ignores an input")
	}
	if len(a) != 64 {
		t.Fatalf("digest length = %d", len(a))
	}
}
