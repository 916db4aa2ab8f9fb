// Package template resolves named visual templates (typography, palette,
// cover/page style) for document rendering.
//
// Resolution precedence is fixed: the in-memory system catalog is checked
// first, then an optional tenant-scoped Store. The package owns only the
// precedence rule and the shape contract; tenant template persistence lives
// behind the Store interface.
package template

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound reports that neither the system catalog nor the tenant store
// knows the template id.
var ErrNotFound = errors.New("template: not found")

// Typography names the font families a template uses.
type Typography struct {
	HeadingFont string `json:"headingFont" yaml:"headingFont"`
	BodyFont    string `json:"bodyFont" yaml:"bodyFont"`
	MonoFont    string `json:"monoFont" yaml:"monoFont"`
}

// Palette is the four-color scheme shared by all encoders. Values are
// #RRGGBB hex strings.
type Palette struct {
	White      string `json:"white" yaml:"white"`
	Purple     string `json:"purple" yaml:"purple"`
	PurpleDeep string `json:"purpleDeep" yaml:"purpleDeep"`
	Gold       string `json:"gold" yaml:"gold"`
}

// Spec is a fully resolved template.
type Spec struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Typography  Typography `json:"typography" yaml:"typography"`
	Palette     Palette    `json:"palette" yaml:"palette"`
	CoverStyle  string     `json:"coverStyle" yaml:"coverStyle"`
	PageStyle   string     `json:"pageStyle" yaml:"pageStyle"`
}

// Store looks up tenant-owned or system-flagged template records outside
// the fixed catalog. Implementations return ErrNotFound for unknown ids.
type Store interface {
	GetTemplate(ctx context.Context, tenantID, templateID string) (*Spec, error)
}

// Resolver applies the catalog-then-store precedence.
type Resolver struct {
	catalog *Catalog
	store   Store // nil when no tenant store is configured
}

// NewResolver builds a Resolver over the given catalog. store may be nil.
func NewResolver(catalog *Catalog, store Store) *Resolver {
	return &Resolver{catalog: catalog, store: store}
}

// Resolve returns the Spec for templateID within the tenant scope.
func (r *Resolver) Resolve(ctx context.Context, tenantID, templateID string) (*Spec, error) {
	if spec, ok := r.catalog.ByID(templateID); ok {
		return spec, nil
	}
	if r.store != nil {
		spec, err := r.store.GetTemplate(ctx, tenantID, templateID)
		if err == nil {
			return spec, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("template: tenant lookup %q: %w", templateID, err)
		}
	}
	return nil, fmt.Errorf("template %q: %w", templateID, ErrNotFound)
}
