package template

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// System templates shipped with every deployment. Fixed constants: palette
// or typography changes here change export bytes for existing documents.
var systemTemplates = []Spec{
	{
		ID:          "zaria-imperial",
		Name:        "ZARIA Imperial",
		Description: "High-contrast editorial hierarchy for premium books and manuals.",
		Typography: Typography{
			HeadingFont: "Playfair Display",
			BodyFont:    "Source Serif 4",
			MonoFont:    "IBM Plex Mono",
		},
		Palette: Palette{
			White:      "#FFFFFF",
			Purple:     "#5B2ABF",
			PurpleDeep: "#3A177C",
			Gold:       "#D4AF37",
		},
		CoverStyle: "monolith",
		PageStyle:  "classic",
	},
	{
		ID:          "zaria-lumiere",
		Name:        "ZARIA Lumiere",
		Description: "Elegant readability tuned for mid-range AD/PM flow.",
		Typography: Typography{
			HeadingFont: "Cormorant Garamond",
			BodyFont:    "Inter",
			MonoFont:    "JetBrains Mono",
		},
		Palette: Palette{
			White:      "#FFFFFF",
			Purple:     "#7444D6",
			PurpleDeep: "#4A2496",
			Gold:       "#E0B95A",
		},
		CoverStyle: "crest",
		PageStyle:  "editorial",
	},
	{
		ID:          "zaria-vanguard",
		Name:        "ZARIA Vanguard",
		Description: "Dense and kinetic composition for tactical courses and bundles.",
		Typography: Typography{
			HeadingFont: "Manrope",
			BodyFont:    "Lora",
			MonoFont:    "Fira Code",
		},
		Palette: Palette{
			White:      "#FFFFFF",
			Purple:     "#632FD1",
			PurpleDeep: "#2E1167",
			Gold:       "#C9A227",
		},
		CoverStyle: "minimal",
		PageStyle:  "edge",
	},
}

// Catalog is the fixed in-memory set of system templates, optionally
// extended from a YAML file at startup.
type Catalog struct {
	specs []Spec
	index map[string]int
}

// NewCatalog returns a catalog seeded with the built-in system templates.
func NewCatalog() *Catalog {
	c := &Catalog{index: make(map[string]int, len(systemTemplates))}
	for _, s := range systemTemplates {
		c.add(s)
	}
	return c
}

func (c *Catalog) add(s Spec) {
	if i, ok := c.index[s.ID]; ok {
		c.specs[i] = s
		return
	}
	c.index[s.ID] = len(c.specs)
	c.specs = append(c.specs, s)
}

// ByID returns a copy of the spec for id. Exact match only.
func (c *Catalog) ByID(id string) (*Spec, bool) {
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	spec := c.specs[i]
	return &spec, true
}

// List returns all catalog specs in registration order.
func (c *Catalog) List() []Spec {
	out := make([]Spec, len(c.specs))
	copy(out, c.specs)
	return out
}

// LoadFile merges additional system templates from a YAML document of the
// form:
//
//	templates:
//	  - id: house-style
//	    name: House Style
//	    ...
//
// Entries with an existing id replace the built-in spec.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("template catalog: read %s: %w", path, err)
	}
	var file struct {
		Templates []Spec `yaml:"templates"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("template catalog: parse %s: %w", path, err)
	}
	for _, s := range file.Templates {
		if s.ID == "" {
			return fmt.Errorf("template catalog: %s: template with empty id", path)
		}
		c.add(s)
	}
	return nil
}
