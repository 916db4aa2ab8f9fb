package export

import (
	"fmt"
	"strings"

	"github.com/zariapress/zaria/docproc"
)

// EncodeEPUB produces an EPUB 3 package: stored mimetype, container
// descriptor, palette-derived stylesheet, nav document, one XHTML content
// file per flattened chapter, and an OPF manifest whose spine follows
// chapter pre-order.
func EncodeEPUB(ctx ExecutionContext) (*GeneratedAsset, error) {
	model := ctx.Render
	if model == nil || ctx.Processed == nil {
		return nil, fmt.Errorf("epub: execution context incomplete")
	}

	meta := ctx.Processed.Metadata
	palette := model.Template.Palette
	chapters := docproc.FlattenChapters(ctx.Processed.Chapters)

	var b archiveBuilder
	b.addStored("mimetype", []byte("application/epub+zip"))
	b.add("META-INF/container.xml", []byte(containerXML))

	css := fmt.Sprintf(`body { font-family: serif; margin: 0; padding: 1.618rem; color: %s; background: %s; }
h1,h2,h3,h4,h5,h6 { color: %s; page-break-after: avoid; }
a { color: %s; text-decoration: none; }
.chapter { margin-bottom: 2.618rem; }`,
		palette.PurpleDeep, palette.White, palette.Purple, palette.Gold)
	b.add("OEBPS/styles.css", []byte(css))

	var navItems, manifestItems, spineItems strings.Builder
	for i, ch := range chapters {
		fmt.Fprintf(&navItems, "        <li><a href=\"chapters/chapter-%d.xhtml\">%s</a></li>\n",
			i+1, escapeXML(ch.Title))
		fmt.Fprintf(&manifestItems, "    <item id=\"chap%d\" href=\"chapters/chapter-%d.xhtml\" media-type=\"application/xhtml+xml\"/>\n",
			i+1, i+1)
		fmt.Fprintf(&spineItems, "    <itemref idref=\"chap%d\"/>\n", i+1)

		b.add(fmt.Sprintf("OEBPS/chapters/chapter-%d.xhtml", i+1),
			[]byte(chapterXHTML(ch, meta.Language)))
	}

	nav := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops" lang="%s">
  <head>
    <title>Navigation</title>
    <link rel="stylesheet" href="styles.css"/>
  </head>
  <body>
    <nav epub:type="toc" id="toc">
      <h1>Table of Contents</h1>
      <ol>
%s      </ol>
    </nav>
  </body>
</html>`, meta.Language, navItems.String())
	b.add("OEBPS/nav.xhtml", []byte(nav))

	author := meta.Author
	if author == "" {
		author = "ZARIA Builder"
	}
	opf := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="bookid" xml:lang="%s">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:identifier id="bookid">urn:uuid:%s</dc:identifier>
    <dc:title>%s</dc:title>
    <dc:language>%s</dc:language>
    <dc:creator>%s</dc:creator>
  </metadata>
  <manifest>
    <item id="nav" href="nav.xhtml" properties="nav" media-type="application/xhtml+xml"/>
    <item id="css" href="styles.css" media-type="text/css"/>
%s  </manifest>
  <spine>
%s  </spine>
</package>`,
		meta.Language, ctx.DocumentID, escapeXML(meta.Title), meta.Language,
		escapeXML(author), manifestItems.String(), spineItems.String())
	b.add("OEBPS/package.opf", []byte(opf))

	buf, err := b.finalize()
	if err != nil {
		return nil, fmt.Errorf("epub: %w", err)
	}

	return &GeneratedAsset{
		Format:   FormatEPUB,
		Filename: assetFilename(meta.Title, "epub"),
		MimeType: FormatEPUB.MimeType(),
		Buffer:   buf,
	}, nil
}

const containerXML = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/package.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

// chapterXHTML renders one chapter file. The heading tag is the chapter
// level shifted down one tier, capped at h6.
func chapterXHTML(ch *docproc.Chapter, language string) string {
	tier := ch.Level + 1
	if tier > 6 {
		tier = 6
	}

	var paragraphs strings.Builder
	for _, para := range splitParagraphs(ch.Content) {
		fmt.Fprintf(&paragraphs, "      <p>%s</p>\n", escapeXML(para))
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" lang="%s">
  <head>
    <title>%s</title>
    <link rel="stylesheet" href="../styles.css"/>
  </head>
  <body>
    <article class="chapter">
      <h%d>%s</h%d>
%s    </article>
  </body>
</html>`, language, escapeXML(ch.Title), tier, escapeXML(ch.Title), tier, paragraphs.String())
}

// splitParagraphs cuts content on blank-line boundaries, dropping empties.
func splitParagraphs(content string) []string {
	var out []string
	for _, part := range strings.Split(content, "\n\n") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// escapeXML escapes the five characters unsafe inside markup text and
// attribute values.
func escapeXML(s string) string {
	return xmlReplacer.Replace(s)
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)
