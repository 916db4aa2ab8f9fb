package export

// Metrics for the two standard Type 1 fonts the paginated encoder embeds
// by reference. Widths are in 1/1000 em for ASCII 32..126, from the Adobe
// core font AFM files. Word wrapping only needs relative advance widths;
// viewers substitute their own outlines for the standard 14.

type fontMetrics struct {
	baseFont string
	widths   [95]int // codes 32..126
}

const defaultGlyphWidth = 500

// widthOf returns the advance width of r in 1/1000 em.
func (f *fontMetrics) widthOf(r rune) int {
	if r >= 32 && r <= 126 {
		return f.widths[r-32]
	}
	return defaultGlyphWidth
}

// textWidth measures s at the given point size.
func (f *fontMetrics) textWidth(s string, size float64) float64 {
	total := 0
	for _, r := range s {
		total += f.widthOf(r)
	}
	return float64(total) * size / 1000
}

var timesRoman = &fontMetrics{
	baseFont: "Times-Roman",
	widths: [95]int{
		250, 333, 408, 500, 500, 833, 778, 180, 333, 333, // space ! " # $ % & ' ( )
		500, 564, 250, 333, 250, 278, 500, 500, 500, 500, // * + , - . / 0 1 2 3
		500, 500, 500, 500, 500, 500, 278, 278, 564, 564, // 4 5 6 7 8 9 : ; < =
		564, 444, 921, 722, 667, 667, 722, 611, 556, 722, // > ? @ A B C D E F G
		722, 333, 389, 722, 611, 889, 722, 722, 556, 722, // H I J K L M N O P Q
		667, 556, 611, 722, 722, 944, 722, 722, 611, 333, // R S T U V W X Y Z [
		278, 333, 469, 500, 333, 444, 500, 444, 500, 444, // \ ] ^ _ ` a b c d e
		333, 500, 500, 278, 278, 500, 278, 778, 500, 500, // f g h i j k l m n o
		500, 500, 333, 389, 278, 500, 500, 722, 500, 500, // p q r s t u v w x y
		444, 480, 200, 480, 541, // z { | } ~
	},
}

var timesBold = &fontMetrics{
	baseFont: "Times-Bold",
	widths: [95]int{
		250, 333, 555, 500, 500, 1000, 833, 278, 333, 333,
		500, 570, 250, 333, 250, 278, 500, 500, 500, 500,
		500, 500, 500, 500, 500, 500, 333, 333, 570, 570,
		570, 500, 930, 722, 667, 722, 722, 667, 611, 778,
		778, 389, 500, 778, 667, 944, 722, 778, 611, 778,
		722, 556, 667, 722, 722, 1000, 722, 722, 667, 333,
		278, 333, 581, 500, 333, 500, 556, 444, 556, 444,
		333, 500, 556, 278, 333, 556, 278, 833, 556, 500,
		556, 556, 444, 389, 333, 556, 500, 722, 500, 500,
		444, 394, 220, 394, 520,
	},
}

// wrapText greedily packs whitespace-delimited words into lines no wider
// than maxWidth at the given size. A single over-long word becomes its own
// line rather than being broken mid-word.
func wrapText(text string, maxWidth, size float64, font *fontMetrics) []string {
	var lines []string
	var current string

	for _, word := range splitWords(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if font.textWidth(candidate, size) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

func splitWords(text string) []string {
	var words []string
	start := -1
	for i, r := range text {
		switch r {
		case ' ', '\t', '\n', '\r':
			if start >= 0 {
				words = append(words, text[start:i])
				start = -1
			}
		default:
			if start < 0 {
				start = i
			}
		}
	}
	if start >= 0 {
		words = append(words, text[start:])
	}
	return words
}
