package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zariapress/zaria/export"
)

// ArtifactStore implements export.ArtifactStore over SQLite.
type ArtifactStore struct {
	db *sql.DB
}

// NewArtifactStore wraps an opened database.
func NewArtifactStore(db *sql.DB) *ArtifactStore {
	return &ArtifactStore{db: db}
}

func (s *ArtifactStore) CreatePending(ctx context.Context, a *export.Artifact) error {
	_, err := execRetry(ctx, s.db, `
		INSERT INTO export_artifacts (id, tenant_id, document_id, format, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.TenantID, a.DocumentID, string(a.Format), string(a.Status),
		millis(a.CreatedAt), millis(a.UpdatedAt))
	if err != nil {
		return fmt.Errorf("store: insert artifact: %w", err)
	}
	return nil
}

func (s *ArtifactStore) MarkSuccess(ctx context.Context, a *export.Artifact) error {
	var manifestJSON sql.NullString
	if a.Manifest != nil {
		data, err := json.Marshal(a.Manifest)
		if err != nil {
			return fmt.Errorf("store: marshal manifest: %w", err)
		}
		manifestJSON = sql.NullString{String: string(data), Valid: true}
	}

	result, err := execRetry(ctx, s.db, `
		UPDATE export_artifacts
		SET status = ?, filename = ?, mime_type = ?, bytes = ?, sha256 = ?,
			storage_path = ?, error = '', manifest_json = ?, updated_at = ?
		WHERE tenant_id = ? AND id = ?`,
		string(export.StatusSuccess), a.Filename, a.MimeType, a.Bytes, a.SHA256,
		a.StoragePath, manifestJSON, millis(a.UpdatedAt), a.TenantID, a.ID)
	if err != nil {
		return fmt.Errorf("store: mark success: %w", err)
	}
	return requireArtifactRow(result)
}

func (s *ArtifactStore) MarkFailed(ctx context.Context, tenantID, exportID, message string, at time.Time) error {
	result, err := execRetry(ctx, s.db, `
		UPDATE export_artifacts SET status = ?, error = ?, updated_at = ?
		WHERE tenant_id = ? AND id = ?`,
		string(export.StatusFailed), message, millis(at), tenantID, exportID)
	if err != nil {
		return fmt.Errorf("store: mark failed: %w", err)
	}
	return requireArtifactRow(result)
}

func (s *ArtifactStore) GetArtifact(ctx context.Context, tenantID, exportID string) (*export.Artifact, error) {
	var (
		a            export.Artifact
		format       string
		status       string
		manifestJSON sql.NullString
		createdAt    int64
		updatedAt    int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, document_id, format, status, filename, mime_type,
			bytes, sha256, storage_path, error, manifest_json, created_at, updated_at
		FROM export_artifacts WHERE tenant_id = ? AND id = ?`,
		tenantID, exportID).
		Scan(&a.ID, &a.TenantID, &a.DocumentID, &format, &status, &a.Filename,
			&a.MimeType, &a.Bytes, &a.SHA256, &a.StoragePath, &a.Error,
			&manifestJSON, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, export.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get artifact: %w", err)
	}

	a.Format = export.Format(format)
	a.Status = export.Status(status)
	if manifestJSON.Valid && manifestJSON.String != "" {
		var manifest export.Manifest
		if err := json.Unmarshal([]byte(manifestJSON.String), &manifest); err != nil {
			return nil, fmt.Errorf("store: manifest for %s: %w", a.ID, err)
		}
		a.Manifest = &manifest
	}
	a.CreatedAt = fromMillis(createdAt)
	a.UpdatedAt = fromMillis(updatedAt)
	return &a, nil
}

// ListArtifacts returns a document's exports, newest first.
func (s *ArtifactStore) ListArtifacts(ctx context.Context, tenantID, documentID string) ([]*export.Artifact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM export_artifacts
		WHERE tenant_id = ? AND document_id = ?
		ORDER BY created_at DESC, id DESC`,
		tenantID, documentID)
	if err != nil {
		return nil, fmt.Errorf("store: list artifacts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("store: scan artifact id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*export.Artifact, 0, len(ids))
	for _, id := range ids {
		a, err := s.GetArtifact(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func requireArtifactRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return export.ErrNotFound
	}
	return nil
}

var _ export.ArtifactStore = (*ArtifactStore)(nil)
