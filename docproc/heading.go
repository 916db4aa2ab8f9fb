package docproc

import (
	"fmt"
	"regexp"
	"strings"
)

// Heading classification rules, first match wins. The ordering is part of
// the contract: a line like "1.2 DEPLOYMENT" is a numeric outline at level
// 2, never an all-caps heading, because the outline rule runs first.
var (
	markdownHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	chapterHeading  = regexp.MustCompile(`(?i)^chapter\s+([0-9ivxlcdm]+)[:.\-]?\s+(.+)$`)
	outlineHeading  = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+){0,4})\s+(.+)$`)
	allCapsLine     = regexp.MustCompile(`^[A-Z0-9\s:&'\-]+$`)
)

const maxHeadingLevel = 6

// headingFromLine classifies a single trimmed line. ok is false for body
// content.
func headingFromLine(line string) (level int, title string, ok bool) {
	if m := markdownHeading.FindStringSubmatch(line); m != nil {
		return len(m[1]), strings.TrimSpace(m[2]), true
	}

	if m := chapterHeading.FindStringSubmatch(line); m != nil {
		return 1, strings.TrimSpace(fmt.Sprintf("Chapter %s %s", m[1], m[2])), true
	}

	if m := outlineHeading.FindStringSubmatch(line); m != nil {
		depth := strings.Count(m[1], ".") + 1
		if depth > maxHeadingLevel {
			depth = maxHeadingLevel
		}
		return depth, strings.TrimSpace(m[1] + " " + m[2]), true
	}

	// All-caps heuristic: short shouty lines ("INTRODUCTION", "PART ONE")
	// that are not sentences.
	if len(line) > 2 && len(line) < 90 &&
		allCapsLine.MatchString(line) &&
		!strings.HasSuffix(line, ".") &&
		len(strings.Split(line, " ")) <= 12 {
		return 1, line, true
	}

	return 0, "", false
}

type headingCandidate struct {
	lineIndex int
	level     int
	title     string
}

// detectHeadings scans normalized lines in document order.
func detectHeadings(lines []string) []headingCandidate {
	var candidates []headingCandidate
	for i, line := range lines {
		if level, title, ok := headingFromLine(strings.TrimSpace(line)); ok {
			candidates = append(candidates, headingCandidate{
				lineIndex: i,
				level:     level,
				title:     title,
			})
		}
	}
	return candidates
}
