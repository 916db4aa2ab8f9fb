// Package documents owns the document lifecycle: creation, digest-cached
// processing, and spine updates. Persistence sits behind the Store
// interface; processing itself is delegated to docproc.
package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zariapress/zaria/docproc"
	"github.com/zariapress/zaria/spine"
	"github.com/zariapress/zaria/webhook"
)

var (
	// ErrNotFound reports an unknown (tenant, document) pair.
	ErrNotFound = errors.New("documents: not found")
	// ErrValidation reports malformed or missing required input.
	ErrValidation = errors.New("documents: validation failed")
)

// InputType records how the raw text entered the system.
type InputType string

const (
	InputRaw        InputType = "raw"
	InputStructured InputType = "structured"
	InputImported   InputType = "imported"
	InputCopywriter InputType = "copywriter"
)

func (t InputType) valid() bool {
	switch t {
	case InputRaw, InputStructured, InputImported, InputCopywriter:
		return true
	}
	return false
}

// Document is the persistent record. Processed fields are nil/zero until
// Process has run; they are always recomputable from the input fields.
type Document struct {
	ID              string
	TenantID        string
	CreatedBy       string
	InputType       InputType
	Title           string
	RawText         string
	SourceReference string
	TemplateID      string
	Spine           spine.Metrics
	Provided        docproc.ProvidedMetadata

	Processed        *docproc.ProcessedDocument
	ProcessingDigest string
	ProcessedAt      time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists documents. Implementations return ErrNotFound for
// unknown ids.
type Store interface {
	InsertDocument(ctx context.Context, doc *Document) error
	GetDocument(ctx context.Context, tenantID, documentID string) (*Document, error)
	ListDocuments(ctx context.Context, tenantID string) ([]*Document, error)
	UpdateProcessed(ctx context.Context, doc *Document) error
	UpdateSpine(ctx context.Context, doc *Document) error
}

// Config configures a Service.
type Config struct {
	Store  Store
	Events webhook.Emitter
	Logger *slog.Logger
	Clock  func() time.Time
	NewID  func() string
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.Events == nil {
		c.Events = webhook.LogEmitter{Logger: c.Logger}
	}
}

// Service is the document lifecycle service.
type Service struct {
	store  Store
	events webhook.Emitter
	logger *slog.Logger
	clock  func() time.Time
	newID  func() string
}

// NewService creates a Service. Config.Store and Config.NewID are required.
func NewService(cfg Config) *Service {
	cfg.defaults()
	return &Service{
		store:  cfg.Store,
		events: cfg.Events,
		logger: cfg.Logger,
		clock:  cfg.Clock,
		newID:  cfg.NewID,
	}
}

// CreateRequest carries the input contract for a new document.
type CreateRequest struct {
	TenantID        string
	CreatedBy       string
	InputType       InputType
	Title           string
	RawText         string
	SourceReference string
	TemplateID      string
	Spine           spine.Metrics
	Metadata        docproc.ProvidedMetadata
}

func (r *CreateRequest) validate() error {
	if r.TenantID == "" {
		return fmt.Errorf("tenantId is required: %w", ErrValidation)
	}
	if r.Title == "" {
		return fmt.Errorf("title is required: %w", ErrValidation)
	}
	if r.RawText == "" {
		return fmt.Errorf("rawText is required: %w", ErrValidation)
	}
	if r.TemplateID == "" {
		return fmt.Errorf("templateId is required: %w", ErrValidation)
	}
	if !r.InputType.valid() {
		return fmt.Errorf("inputType %q is unknown: %w", r.InputType, ErrValidation)
	}
	if err := r.Spine.Validate(); err != nil {
		return fmt.Errorf("%s: %w", err, ErrValidation)
	}
	return nil
}

// Create stores a new unprocessed document.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Document, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	now := s.clock()
	doc := &Document{
		ID:              s.newID(),
		TenantID:        req.TenantID,
		CreatedBy:       req.CreatedBy,
		InputType:       req.InputType,
		Title:           req.Title,
		RawText:         req.RawText,
		SourceReference: req.SourceReference,
		TemplateID:      req.TemplateID,
		Spine:           req.Spine,
		Provided:        req.Metadata,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.InsertDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("documents: insert: %w", err)
	}
	return doc, nil
}

// Get fetches one document within the tenant scope.
func (s *Service) Get(ctx context.Context, tenantID, documentID string) (*Document, error) {
	return s.store.GetDocument(ctx, tenantID, documentID)
}

// List returns all documents of a tenant, newest first.
func (s *Service) List(ctx context.Context, tenantID string) ([]*Document, error) {
	return s.store.ListDocuments(ctx, tenantID)
}

// Process runs the structuring pipeline over the document's raw text.
// When the content digest matches the stored one the cached result is
// returned untouched, unless force is set. Emits document.processed after
// a real run.
func (s *Service) Process(ctx context.Context, tenantID, documentID string, force bool) (*Document, error) {
	doc, err := s.store.GetDocument(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	digest := docproc.Digest(doc.RawText, doc.Title, doc.TemplateID, doc.Spine)
	if !force && doc.ProcessingDigest == digest && !doc.ProcessedAt.IsZero() {
		s.logger.Debug("processing skipped, digest unchanged",
			"document_id", doc.ID, "digest", digest)
		return doc, nil
	}

	processed := docproc.Process(docproc.Request{
		Title:    doc.Title,
		RawText:  doc.RawText,
		Metadata: doc.Provided,
		Spine:    doc.Spine,
	})

	doc.Processed = &processed
	doc.ProcessingDigest = digest
	doc.ProcessedAt = s.clock()
	doc.UpdatedAt = doc.ProcessedAt
	if err := s.store.UpdateProcessed(ctx, doc); err != nil {
		return nil, fmt.Errorf("documents: update processed: %w", err)
	}

	s.events.Emit(ctx, webhook.Event{
		TenantID: tenantID,
		Type:     webhook.DocumentProcessed,
		Payload: webhook.DocumentProcessedPayload{
			DocumentID: doc.ID,
			Title:      doc.Title,
			Metadata:   processed.Metadata,
			SpineScore: spine.Score(doc.Spine),
			Spine:      doc.Spine,
		},
	})

	s.logger.Info("document processed",
		"document_id", doc.ID,
		"tenant_id", tenantID,
		"chapters", len(processed.Chapters),
		"words", processed.Metadata.WordCount)
	return doc, nil
}

// UpdateSpine replaces the metrics and clears the processing digest so the
// next Process call recomputes layout.
func (s *Service) UpdateSpine(ctx context.Context, tenantID, documentID string, metrics spine.Metrics) (*Document, error) {
	if err := metrics.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", err, ErrValidation)
	}
	doc, err := s.store.GetDocument(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	doc.Spine = metrics
	doc.Processed = nil
	doc.ProcessingDigest = ""
	doc.ProcessedAt = time.Time{}
	doc.UpdatedAt = s.clock()
	if err := s.store.UpdateSpine(ctx, doc); err != nil {
		return nil, fmt.Errorf("documents: update spine: %w", err)
	}
	return doc, nil
}
