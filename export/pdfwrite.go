package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Minimal PDF 1.4 writer: enough objects for text, filled rectangles and
// the two referenced standard fonts, with a correct cross-reference table.
// Content streams are written uncompressed with exact /Length values.

type pdfColor struct {
	r, g, b float64
}

// parseHexColor converts "#RRGGBB" to normalized components. Malformed
// values fall back to black.
func parseHexColor(hex string) pdfColor {
	s := strings.TrimPrefix(hex, "#")
	if len(s) != 6 {
		return pdfColor{}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return pdfColor{}
	}
	return pdfColor{
		r: float64(v>>16&255) / 255,
		g: float64(v>>8&255) / 255,
		b: float64(v&255) / 255,
	}
}

func fnum(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// pdfPage accumulates content-stream operators for one page.
type pdfPage struct {
	content bytes.Buffer
}

func (p *pdfPage) fillRect(x, y, w, h float64, c pdfColor) {
	fmt.Fprintf(&p.content, "%s %s %s rg\n%s %s %s %s re\nf\n",
		fnum(c.r), fnum(c.g), fnum(c.b), fnum(x), fnum(y), fnum(w), fnum(h))
}

func (p *pdfPage) text(font string, size, x, y float64, c pdfColor, s string) {
	fmt.Fprintf(&p.content, "BT\n/%s %s Tf\n%s %s %s rg\n%s %s Td\n(%s) Tj\nET\n",
		font, fnum(size), fnum(c.r), fnum(c.g), fnum(c.b), fnum(x), fnum(y), encodePDFText(s))
}

// encodePDFText maps a string to a WinAnsi-encoded PDF string literal.
// Latin-1 passes through; a handful of typographic characters map to their
// WinAnsi slots; everything else degrades to '?'.
func encodePDFText(s string) string {
	var b strings.Builder
	for _, r := range s {
		var code byte
		switch {
		case r == '(' || r == ')' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
			continue
		case r >= 32 && r <= 126:
			b.WriteByte(byte(r))
			continue
		case r >= 0xA0 && r <= 0xFF:
			code = byte(r)
		default:
			code = winAnsiExtra(r)
		}
		fmt.Fprintf(&b, "\\%03o", code)
	}
	return b.String()
}

func winAnsiExtra(r rune) byte {
	switch r {
	case '•': // bullet
		return 0x95
	case '–': // en dash
		return 0x96
	case '—': // em dash
		return 0x97
	case '‘':
		return 0x91
	case '’':
		return 0x92
	case '“':
		return 0x93
	case '”':
		return 0x94
	case '…': // ellipsis
		return 0x85
	case '€': // euro
		return 0x80
	default:
		return '?'
	}
}

// pdfDocument owns the page list and serialises the final file.
type pdfDocument struct {
	width, height float64
	pages         []*pdfPage
}

func newPDFDocument(width, height float64) *pdfDocument {
	return &pdfDocument{width: width, height: height}
}

func (d *pdfDocument) addPage() *pdfPage {
	p := &pdfPage{}
	d.pages = append(d.pages, p)
	return p
}

// Object numbering: 1 catalog, 2 page tree, 3 heading font (F1), 4 body
// font (F2), then a (content, page) object pair per page.
func (d *pdfDocument) bytes() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	objCount := 4 + 2*len(d.pages)
	offsets := make([]int, objCount+1)

	writeObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	var kids []string
	for i := range d.pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", 6+2*i))
	}

	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>",
		strings.Join(kids, " "), len(d.pages)))
	writeObj(3, "<< /Type /Font /Subtype /Type1 /BaseFont /"+timesBold.baseFont+
		" /Encoding /WinAnsiEncoding >>")
	writeObj(4, "<< /Type /Font /Subtype /Type1 /BaseFont /"+timesRoman.baseFont+
		" /Encoding /WinAnsiEncoding >>")

	for i, page := range d.pages {
		contentNum := 5 + 2*i
		pageNum := 6 + 2*i
		content := page.content.Bytes()

		offsets[contentNum] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n<< /Length %d >>\nstream\n", contentNum, len(content))
		buf.Write(content)
		buf.WriteString("endstream\nendobj\n")

		writeObj(pageNum, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s %s] "+
				"/Resources << /Font << /F1 3 0 R /F2 4 0 R >> >> /Contents %d 0 R >>",
			fnum(d.width), fnum(d.height), contentNum))
	}

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", objCount+1)
	buf.WriteString("0000000000 65535 f \n")
	for num := 1; num <= objCount; num++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[num])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		objCount+1, xrefStart)

	return buf.Bytes()
}
