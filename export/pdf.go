package export

import (
	"fmt"

	"github.com/zariapress/zaria/docproc"
)

// A4 in PDF points.
const (
	pageWidth  = 595.28
	pageHeight = 841.89
)

// Vertical space required before starting a chapter heading on the current
// page; body lines only need the bottom margin.
const headingReserve = 140

// EncodePDF renders the paginated document: a cover page, a table of
// contents page, then chapters flowed in pre-order with spine-derived
// typography.
func EncodePDF(ctx ExecutionContext) (*GeneratedAsset, error) {
	model := ctx.Render
	if model == nil || ctx.Processed == nil {
		return nil, fmt.Errorf("pdf: execution context incomplete")
	}

	palette := model.Template.Palette
	layout := model.SpineProfile.Layout
	margin := layout.Margin

	purple := parseHexColor(palette.Purple)
	purpleDeep := parseHexColor(palette.PurpleDeep)
	gold := parseHexColor(palette.Gold)
	white := parseHexColor(palette.White)

	doc := newPDFDocument(pageWidth, pageHeight)

	// Cover: accent band, title, optional subtitle, badge.
	cover := doc.addPage()
	cover.fillRect(0, pageHeight-float64(model.Cover.AccentBandHeight),
		pageWidth, float64(model.Cover.AccentBandHeight), purpleDeep)
	cover.text("F1", 36, margin, pageHeight-160, purple, ctx.Processed.Metadata.Title)
	if ctx.Processed.Metadata.Subtitle != "" {
		cover.text("F2", 15, margin, pageHeight-200, purpleDeep, ctx.Processed.Metadata.Subtitle)
	}
	cover.fillRect(margin, pageHeight-240, 210, 28, gold)
	cover.text("F1", 11, margin+12, pageHeight-223, white, model.Cover.BadgeText)

	// Table of contents, indented by level.
	toc := doc.addPage()
	toc.text("F1", 24, margin, pageHeight-margin, purple, "Table of Contents")
	tocCursor := pageHeight - margin - 40
	for _, entry := range ctx.Processed.Toc {
		indent := ""
		for i := 1; i < entry.Level; i++ {
			indent += "  "
		}
		line := fmt.Sprintf("%s%d. %s", indent, entry.Order, entry.Title)
		toc.text("F2", 11, margin, tocCursor, purpleDeep, line)
		tocCursor -= 16
	}

	// Chapter flow.
	page := doc.addPage()
	cursorY := pageHeight - margin
	newPage := func() {
		page = doc.addPage()
		cursorY = pageHeight - margin
	}

	for _, chapter := range docproc.FlattenChapters(ctx.Processed.Chapters) {
		if cursorY < headingReserve {
			newPage()
		}

		headingSize := float64(22 - (chapter.Level-1)*2)
		if headingSize < 14 {
			headingSize = 14
		}
		page.text("F1", headingSize, margin, cursorY, purple, chapter.Title)
		cursorY -= headingSize + 8

		lines := wrapText(chapter.Content, pageWidth-margin*2, layout.BodyFontSize, timesRoman)
		for _, line := range lines {
			if cursorY < margin {
				newPage()
			}
			page.text("F2", layout.BodyFontSize, margin, cursorY, purpleDeep, line)
			cursorY -= layout.BodyFontSize * layout.LineHeight
		}

		cursorY -= layout.ParagraphSpacing
	}

	return &GeneratedAsset{
		Format:   FormatPDF,
		Filename: assetFilename(ctx.Processed.Metadata.Title, "pdf"),
		MimeType: FormatPDF.MimeType(),
		Buffer:   doc.bytes(),
	}, nil
}
