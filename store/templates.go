package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zariapress/zaria/template"
)

// TemplateStore implements template.Store over SQLite. Tenant templates
// are scoped to their owner; system rows (is_system = 1) resolve for any
// tenant.
type TemplateStore struct {
	db *sql.DB
}

// NewTemplateStore wraps an opened database.
func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

func (s *TemplateStore) GetTemplate(ctx context.Context, tenantID, templateID string) (*template.Spec, error) {
	var specJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT spec_json FROM templates
		WHERE id = ? AND (tenant_id = ? OR is_system = 1)
		ORDER BY is_system ASC LIMIT 1`,
		templateID, tenantID).Scan(&specJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, template.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get template: %w", err)
	}

	var spec template.Spec
	if err := json.Unmarshal([]byte(specJSON), &spec); err != nil {
		return nil, fmt.Errorf("store: template %s: %w", templateID, err)
	}
	return &spec, nil
}

// PutTemplate inserts or replaces a template row. An empty tenantID with
// system set stores a shared template.
func (s *TemplateStore) PutTemplate(ctx context.Context, tenantID string, spec *template.Spec, system bool, now time.Time) error {
	if spec.ID == "" {
		return fmt.Errorf("store: template id is required")
	}
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("store: marshal template: %w", err)
	}
	isSystem := 0
	if system {
		isSystem = 1
	}
	_, err = execRetry(ctx, s.db, `
		INSERT INTO templates (id, tenant_id, is_system, spec_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (tenant_id, id) DO UPDATE SET
			is_system = excluded.is_system,
			spec_json = excluded.spec_json,
			updated_at = excluded.updated_at`,
		spec.ID, tenantID, isSystem, string(specJSON), millis(now), millis(now))
	if err != nil {
		return fmt.Errorf("store: put template: %w", err)
	}
	return nil
}

var _ template.Store = (*TemplateStore)(nil)
