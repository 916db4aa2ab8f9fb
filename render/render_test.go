package render

import (
	"testing"

	"github.com/zariapress/zaria/docproc"
	"github.com/zariapress/zaria/spine"
	"github.com/zariapress/zaria/template"
)

func testModel(t *testing.T, metrics spine.Metrics) *Model {
	t.Helper()
	tpl, ok := template.NewCatalog().ByID("zaria-imperial")
	if !ok {
		t.Fatal("system template missing")
	}
	processed := docproc.Process(docproc.Request{
		Title:   "Field Guide",
		RawText: "# Field Guide\n\nBody.",
		Metadata: docproc.ProvidedMetadata{
			Subtitle: "Second Edition",
		},
		Spine: metrics,
	})
	return Build(tpl, &processed, metrics)
}

func TestBuildCover(t *testing.T) {
	m := testModel(t, spine.Metrics{AD: 10, PM: 10, ESI: 10})
	if m.Cover.Title != "Field Guide" || m.Cover.Subtitle != "Second Edition" {
		t.Fatalf("cover = %+v", m.Cover)
	}
	if m.Cover.AccentBandHeight != 40 {
		t.Fatalf("band = %d, want 40 for subtle accent", m.Cover.AccentBandHeight)
	}
	if m.Cover.BadgeText != "MEASURED • CALM" {
		t.Fatalf("badge = %q", m.Cover.BadgeText)
	}
}

func TestBuildBoldAccentBand(t *testing.T) {
	m := testModel(t, spine.Metrics{AD: 90, PM: 90, ESI: 90})
	if m.Cover.AccentBandHeight != 56 {
		t.Fatalf("band = %d, want 56 for bold accent", m.Cover.AccentBandHeight)
	}
	if m.Cover.BadgeText != "KINETIC • INTENSE" {
		t.Fatalf("badge = %q", m.Cover.BadgeText)
	}
}

func TestBuildDeterministic(t *testing.T) {
	a := testModel(t, spine.Metrics{AD: 42, PM: 42, ESI: 42})
	b := testModel(t, spine.Metrics{AD: 42, PM: 42, ESI: 42})
	if a.Cover != b.Cover || a.SpineProfile != b.SpineProfile {
		t.Fatal("Build is not deterministic")
	}
}
