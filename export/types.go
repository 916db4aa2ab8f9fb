// Package export renders processed documents into the four output
// formats: paginated PDF, reflowable EPUB, WordprocessingML DOCX and the
// multi-format archive bundle. The Service type orchestrates export
// requests end to end.
//
// Every encoder consumes only an ExecutionContext; none reads tenant
// state, the clock, or the original spine metrics. Given the same context
// an encoder always produces the same bytes.
package export

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/zariapress/zaria/docproc"
	"github.com/zariapress/zaria/render"
	"github.com/zariapress/zaria/spine"
)

// Format identifies an output format.
type Format string

const (
	FormatPDF    Format = "pdf"
	FormatEPUB   Format = "epub"
	FormatDOCX   Format = "docx"
	FormatBundle Format = "bundle"
)

// SubFormats are the formats a bundle can contain.
var SubFormats = []Format{FormatPDF, FormatEPUB, FormatDOCX}

// ParseFormat validates a wire-format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPDF, FormatEPUB, FormatDOCX, FormatBundle:
		return Format(s), nil
	}
	return "", errors.New("export: unknown format " + strings.TrimSpace(s))
}

// MimeType returns the asset content type for the format.
func (f Format) MimeType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatEPUB:
		return "application/epub+zip"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatBundle:
		return "application/zip"
	}
	return "application/octet-stream"
}

// ExecutionContext is everything an encoder may read.
type ExecutionContext struct {
	TenantID   string
	DocumentID string
	Render     *render.Model
	Processed  *docproc.ProcessedDocument
}

// GeneratedAsset is the product of one encoder invocation.
type GeneratedAsset struct {
	Format   Format
	Filename string
	MimeType string
	Buffer   []byte
}

// ManifestItem describes one asset inside a bundle.
type ManifestItem struct {
	Format    Format    `json:"format"`
	Filename  string    `json:"filename"`
	SHA256    string    `json:"sha256"`
	Bytes     int       `json:"bytes"`
	CreatedAt time.Time `json:"createdAt"`
}

// Manifest is the bundle's manifest.json document.
type Manifest struct {
	TenantID   string           `json:"tenantId"`
	DocumentID string           `json:"documentId"`
	Spine      spine.Metrics    `json:"spine"`
	TemplateID string           `json:"templateId"`
	Metadata   docproc.Metadata `json:"metadata"`
	Items      []ManifestItem   `json:"items"`
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// assetFilename lowercases the document title and joins whitespace runs
// with dashes, then appends the extension.
func assetFilename(title, ext string) string {
	return strings.ToLower(whitespaceRun.ReplaceAllString(strings.TrimSpace(title), "-")) + "." + ext
}
