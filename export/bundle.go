package export

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/zariapress/zaria/docproc"
	"github.com/zariapress/zaria/spine"
	"github.com/zariapress/zaria/template"
)

// BundleInput is everything the archive encoder needs: the already
// generated sub-format assets with their checksums, plus the manifest
// identity fields.
type BundleInput struct {
	TenantID   string
	DocumentID string
	Metadata   docproc.Metadata
	Template   *template.Spec
	Spine      spine.Metrics
	Assets     []*GeneratedAsset
	Checksums  map[string]string // filename → hex sha256
	CreatedAt  time.Time
}

// EncodeBundle packages the assets, a manifest.json and a template.json
// snapshot into one compressed archive. The bundle filename derives from
// the slugified document title.
func EncodeBundle(in BundleInput) (*GeneratedAsset, *Manifest, error) {
	if in.Template == nil {
		return nil, nil, fmt.Errorf("bundle: template snapshot missing")
	}

	items := make([]ManifestItem, 0, len(in.Assets))
	for _, asset := range in.Assets {
		items = append(items, ManifestItem{
			Format:    asset.Format,
			Filename:  asset.Filename,
			SHA256:    in.Checksums[asset.Filename],
			Bytes:     len(asset.Buffer),
			CreatedAt: in.CreatedAt,
		})
	}

	manifest := &Manifest{
		TenantID:   in.TenantID,
		DocumentID: in.DocumentID,
		Spine:      in.Spine,
		TemplateID: in.Template.ID,
		Metadata:   in.Metadata,
		Items:      items,
	}

	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("bundle: marshal manifest: %w", err)
	}
	templateJSON, err := json.MarshalIndent(in.Template, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("bundle: marshal template: %w", err)
	}

	var b archiveBuilder
	for _, asset := range in.Assets {
		b.add(asset.Filename, asset.Buffer)
	}
	b.add("manifest.json", manifestJSON)
	b.add("template.json", templateJSON)

	buf, err := b.finalize()
	if err != nil {
		return nil, nil, fmt.Errorf("bundle: %w", err)
	}

	slug := strings.TrimSuffix(assetFilename(in.Metadata.Title, "zip"), ".zip")
	return &GeneratedAsset{
		Format:   FormatBundle,
		Filename: slug + "-bundle.zip",
		MimeType: FormatBundle.MimeType(),
		Buffer:   buf,
	}, manifest, nil
}
