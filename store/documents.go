package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zariapress/zaria/docproc"
	"github.com/zariapress/zaria/documents"
)

// DocumentStore implements documents.Store over SQLite.
type DocumentStore struct {
	db *sql.DB
}

// NewDocumentStore wraps an opened database.
func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

func (s *DocumentStore) InsertDocument(ctx context.Context, doc *documents.Document) error {
	spineJSON, err := json.Marshal(doc.Spine)
	if err != nil {
		return fmt.Errorf("store: marshal spine: %w", err)
	}
	providedJSON, err := json.Marshal(doc.Provided)
	if err != nil {
		return fmt.Errorf("store: marshal provided metadata: %w", err)
	}

	_, err = execRetry(ctx, s.db, `
		INSERT INTO documents (id, tenant_id, created_by, input_type, title, raw_text,
			source_reference, template_id, spine_json, provided_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.TenantID, doc.CreatedBy, string(doc.InputType), doc.Title, doc.RawText,
		doc.SourceReference, doc.TemplateID, string(spineJSON), string(providedJSON),
		millis(doc.CreatedAt), millis(doc.UpdatedAt))
	if err != nil {
		return fmt.Errorf("store: insert document: %w", err)
	}
	return nil
}

const documentColumns = `id, tenant_id, created_by, input_type, title, raw_text,
	source_reference, template_id, spine_json, provided_json, processed_json,
	processing_digest, processed_at, created_at, updated_at`

func (s *DocumentStore) GetDocument(ctx context.Context, tenantID, documentID string) (*documents.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE tenant_id = ? AND id = ?`,
		tenantID, documentID)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, documents.ErrNotFound
	}
	return doc, err
}

func (s *DocumentStore) ListDocuments(ctx context.Context, tenantID string) ([]*documents.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE tenant_id = ? ORDER BY created_at DESC, id DESC`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("store: list documents: %w", err)
	}
	defer rows.Close()

	var out []*documents.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (s *DocumentStore) UpdateProcessed(ctx context.Context, doc *documents.Document) error {
	processedJSON, err := json.Marshal(doc.Processed)
	if err != nil {
		return fmt.Errorf("store: marshal processed: %w", err)
	}
	result, err := execRetry(ctx, s.db, `
		UPDATE documents
		SET processed_json = ?, processing_digest = ?, processed_at = ?, updated_at = ?
		WHERE tenant_id = ? AND id = ?`,
		string(processedJSON), doc.ProcessingDigest, millis(doc.ProcessedAt),
		millis(doc.UpdatedAt), doc.TenantID, doc.ID)
	if err != nil {
		return fmt.Errorf("store: update processed: %w", err)
	}
	return requireRow(result)
}

func (s *DocumentStore) UpdateSpine(ctx context.Context, doc *documents.Document) error {
	spineJSON, err := json.Marshal(doc.Spine)
	if err != nil {
		return fmt.Errorf("store: marshal spine: %w", err)
	}
	result, err := execRetry(ctx, s.db, `
		UPDATE documents
		SET spine_json = ?, processed_json = NULL, processing_digest = '', processed_at = 0, updated_at = ?
		WHERE tenant_id = ? AND id = ?`,
		string(spineJSON), millis(doc.UpdatedAt), doc.TenantID, doc.ID)
	if err != nil {
		return fmt.Errorf("store: update spine: %w", err)
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return documents.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*documents.Document, error) {
	var (
		doc           documents.Document
		inputType     string
		spineJSON     string
		providedJSON  string
		processedJSON sql.NullString
		processedAt   int64
		createdAt     int64
		updatedAt     int64
	)
	err := row.Scan(&doc.ID, &doc.TenantID, &doc.CreatedBy, &inputType, &doc.Title,
		&doc.RawText, &doc.SourceReference, &doc.TemplateID, &spineJSON, &providedJSON,
		&processedJSON, &doc.ProcessingDigest, &processedAt, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("store: scan document: %w", err)
	}

	doc.InputType = documents.InputType(inputType)
	if err := json.Unmarshal([]byte(spineJSON), &doc.Spine); err != nil {
		return nil, fmt.Errorf("store: spine for %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal([]byte(providedJSON), &doc.Provided); err != nil {
		return nil, fmt.Errorf("store: provided metadata for %s: %w", doc.ID, err)
	}
	if processedJSON.Valid && processedJSON.String != "" && processedJSON.String != "null" {
		var processed docproc.ProcessedDocument
		if err := json.Unmarshal([]byte(processedJSON.String), &processed); err != nil {
			return nil, fmt.Errorf("store: processed for %s: %w", doc.ID, err)
		}
		doc.Processed = &processed
	}
	doc.ProcessedAt = fromMillis(processedAt)
	doc.CreatedAt = fromMillis(createdAt)
	doc.UpdatedAt = fromMillis(updatedAt)
	return &doc, nil
}

var _ documents.Store = (*DocumentStore)(nil)
