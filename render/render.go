// Package render merges a resolved template, a processed document and the
// spine profile into the single model every format encoder consumes.
// Encoders never see raw metrics or template lookup logic.
package render

import (
	"strings"

	"github.com/zariapress/zaria/docproc"
	"github.com/zariapress/zaria/spine"
	"github.com/zariapress/zaria/template"
)

// Cover carries the cover-page inputs shared by paginated formats.
type Cover struct {
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle,omitempty"`
	AccentBandHeight int    `json:"accentBandHeight"`
	BadgeText       string `json:"badgeText"`
}

// Model is the render-ready view of one document.
type Model struct {
	Template     *template.Spec            `json:"template"`
	SpineProfile spine.Profile             `json:"spineProfile"`
	Processed    *docproc.ProcessedDocument `json:"processed"`
	Cover        Cover                     `json:"cover"`
}

// Build derives the Model. Pure and deterministic: no I/O, no clock.
func Build(tpl *template.Spec, processed *docproc.ProcessedDocument, metrics spine.Metrics) *Model {
	profile := spine.Derive(metrics)

	bandHeight := 40
	if profile.Layout.AccentWeight == spine.AccentBold {
		bandHeight = 56
	}

	return &Model{
		Template:     tpl,
		SpineProfile: profile,
		Processed:    processed,
		Cover: Cover{
			Title:           processed.Metadata.Title,
			Subtitle:        processed.Metadata.Subtitle,
			AccentBandHeight: bandHeight,
			BadgeText: strings.ToUpper(string(profile.Rhythm)) + " • " +
				strings.ToUpper(string(profile.EmotionalMode)),
		},
	}
}
