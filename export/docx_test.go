package export

import (
	"bytes"
	"strings"
	"testing"
)

func TestEncodeDOCXPackage(t *testing.T) {
	asset, err := EncodeDOCX(fixtureContext(t))
	if err != nil {
		t.Fatalf("EncodeDOCX: %v", err)
	}
	if asset.Filename != "field-notes.docx" {
		t.Errorf("filename = %q", asset.Filename)
	}
	if asset.MimeType != "application/vnd.openxmlformats-officedocument.wordprocessingml.document" {
		t.Errorf("mime type = %q", asset.MimeType)
	}

	_, contents := readArchive(t, asset.Buffer)

	for _, part := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml", "word/styles.xml"} {
		if _, ok := contents[part]; !ok {
			t.Errorf("missing package part %s", part)
		}
	}

	doc := contents["word/document.xml"]
	if !strings.Contains(doc, `w:val="Title"`) {
		t.Error("document missing Title-styled paragraph")
	}
	if !strings.Contains(doc, `w:val="Heading1"`) || !strings.Contains(doc, `w:val="Heading2"`) {
		t.Error("document missing heading style tiers")
	}
	if !strings.Contains(doc, "Methods &amp; Tools") {
		t.Error("heading text not escaped")
	}
	if strings.Contains(doc, "<markers>") {
		t.Error("body text leaked unescaped angle brackets")
	}

	styles := contents["word/styles.xml"]
	for _, id := range []string{"Title", "Heading1", "Heading2", "Heading3", "Heading4", "Heading5"} {
		if !strings.Contains(styles, `w:styleId="`+id+`"`) {
			t.Errorf("styles.xml missing %s", id)
		}
	}
}

func TestHeadingStyleClamps(t *testing.T) {
	tests := []struct {
		level int
		want  string
	}{
		{0, "Heading1"},
		{1, "Heading1"},
		{3, "Heading3"},
		{5, "Heading5"},
		{9, "Heading5"},
	}
	for _, tt := range tests {
		if got := headingStyle(tt.level); got != tt.want {
			t.Errorf("headingStyle(%d) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestEncodeDOCXDeterminism(t *testing.T) {
	ec := fixtureContext(t)
	first, err := EncodeDOCX(ec)
	if err != nil {
		t.Fatalf("EncodeDOCX: %v", err)
	}
	second, err := EncodeDOCX(ec)
	if err != nil {
		t.Fatalf("EncodeDOCX: %v", err)
	}
	if !bytes.Equal(first.Buffer, second.Buffer) {
		t.Error("same execution context produced different DOCX bytes")
	}
}
