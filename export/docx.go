package export

import (
	"fmt"
	"strings"

	"github.com/zariapress/zaria/docproc"
)

// EncodeDOCX produces a WordprocessingML package: a title block, optional
// italic subtitle, then one heading plus body paragraphs per flattened
// chapter. Heading levels map to the Heading1..Heading5 style tiers that
// standard editors ship.
func EncodeDOCX(ctx ExecutionContext) (*GeneratedAsset, error) {
	if ctx.Render == nil || ctx.Processed == nil {
		return nil, fmt.Errorf("docx: execution context incomplete")
	}

	meta := ctx.Processed.Metadata
	var body strings.Builder

	styledParagraph(&body, "Title", meta.Title, false)
	if meta.Subtitle != "" {
		plainParagraph(&body, meta.Subtitle, true, 0)
	}
	body.WriteString("    <w:p/>\n")

	for _, ch := range docproc.FlattenChapters(ctx.Processed.Chapters) {
		styledParagraph(&body, headingStyle(ch.Level), ch.Title, false)
		for _, para := range splitParagraphs(ch.Content) {
			plainParagraph(&body, para, false, 220)
		}
	}

	document := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
%s    <w:sectPr/>
  </w:body>
</w:document>`, body.String())

	var b archiveBuilder
	b.add("[Content_Types].xml", []byte(docxContentTypes))
	b.add("_rels/.rels", []byte(docxRootRels))
	b.add("word/document.xml", []byte(document))
	b.add("word/styles.xml", []byte(docxStyles))

	buf, err := b.finalize()
	if err != nil {
		return nil, fmt.Errorf("docx: %w", err)
	}

	return &GeneratedAsset{
		Format:   FormatDOCX,
		Filename: assetFilename(meta.Title, "docx"),
		MimeType: FormatDOCX.MimeType(),
		Buffer:   buf,
	}, nil
}

// headingStyle maps a chapter level to a heading style tier, 1..5.
func headingStyle(level int) string {
	if level < 1 {
		level = 1
	}
	if level > 5 {
		level = 5
	}
	return fmt.Sprintf("Heading%d", level)
}

func styledParagraph(b *strings.Builder, style, text string, italic bool) {
	fmt.Fprintf(b, "    <w:p><w:pPr><w:pStyle w:val=\"%s\"/></w:pPr>%s</w:p>\n",
		style, runXML(text, italic))
}

func plainParagraph(b *strings.Builder, text string, italic bool, spacingAfter int) {
	props := ""
	if spacingAfter > 0 {
		props = fmt.Sprintf("<w:pPr><w:spacing w:after=\"%d\"/></w:pPr>", spacingAfter)
	}
	fmt.Fprintf(b, "    <w:p>%s%s</w:p>\n", props, runXML(text, italic))
}

func runXML(text string, italic bool) string {
	props := ""
	if italic {
		props = "<w:rPr><w:i/></w:rPr>"
	}
	return fmt.Sprintf("<w:r>%s<w:t xml:space=\"preserve\">%s</w:t></w:r>",
		props, escapeXML(text))
}

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
  <Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

const docxRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// Minimal style definitions so Title and Heading1..5 render with visible
// hierarchy in editors that honour embedded styles.
const docxStyles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:style w:type="paragraph" w:styleId="Title">
    <w:name w:val="Title"/>
    <w:rPr><w:b/><w:sz w:val="56"/></w:rPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Heading1">
    <w:name w:val="heading 1"/>
    <w:rPr><w:b/><w:sz w:val="44"/></w:rPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Heading2">
    <w:name w:val="heading 2"/>
    <w:rPr><w:b/><w:sz w:val="36"/></w:rPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Heading3">
    <w:name w:val="heading 3"/>
    <w:rPr><w:b/><w:sz w:val="32"/></w:rPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Heading4">
    <w:name w:val="heading 4"/>
    <w:rPr><w:b/><w:sz w:val="28"/></w:rPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Heading5">
    <w:name w:val="heading 5"/>
    <w:rPr><w:b/><w:sz w:val="26"/></w:rPr>
  </w:style>
</w:styles>`
