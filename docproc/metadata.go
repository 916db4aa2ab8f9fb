package docproc

import (
	"regexp"
	"sort"
	"strings"
)

// Words of 4+ characters still too common to rank as keywords.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"that": true, "this": true, "into": true, "about": true, "your": true,
	"their": true, "have": true, "will": true, "are": true, "but": true,
}

const (
	maxKeywords      = 12
	maxTitleLength   = 120
	wordsPerMinute   = 220
	minKeywordLength = 4
)

var nonWord = regexp.MustCompile(`[^a-z0-9\s]`)

// ExtractKeywords returns the up-to-12 highest-frequency words of the text,
// lowercased, excluding short words and stop words. Ties keep
// first-encountered order.
func ExtractKeywords(text string) []string {
	counts := make(map[string]int)
	var order []string

	cleaned := nonWord.ReplaceAllString(strings.ToLower(text), " ")
	for _, word := range strings.Fields(cleaned) {
		if len(word) < minKeywordLength || stopWords[word] {
			continue
		}
		if counts[word] == 0 {
			order = append(order, word)
		}
		counts[word]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	return order
}

func extractMetadata(normalizedText string, chapters []*Chapter, fallbackTitle string, provided ProvidedMetadata) Metadata {
	// Chapter titles win as-is; only the first-line fallback is truncated.
	var title string
	if len(chapters) > 0 {
		title = chapters[0].Title
	} else {
		title = fallbackTitle
		for _, line := range strings.Split(normalizedText, "\n") {
			if strings.TrimSpace(line) != "" {
				title = line
				break
			}
		}
		if runes := []rune(title); len(runes) > maxTitleLength {
			title = string(runes[:maxTitleLength])
		}
	}

	language := provided.Language
	if language == "" {
		language = "en"
	}

	keywords := provided.Keywords
	if len(keywords) == 0 {
		keywords = ExtractKeywords(normalizedText)
	}

	words := len(strings.Fields(normalizedText))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}

	return Metadata{
		Title:                   title,
		Subtitle:                provided.Subtitle,
		Author:                  provided.Author,
		Language:                language,
		Keywords:                keywords,
		WordCount:               words,
		EstimatedReadingMinutes: minutes,
	}
}
