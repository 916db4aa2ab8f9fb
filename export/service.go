package export

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/zariapress/zaria/documents"
	"github.com/zariapress/zaria/render"
	"github.com/zariapress/zaria/spine"
	"github.com/zariapress/zaria/template"
	"github.com/zariapress/zaria/webhook"
)

var (
	// ErrNotFound reports an unknown export artifact.
	ErrNotFound = errors.New("export: not found")
	// ErrNotProcessed reports an export attempt against a document whose
	// structuring pipeline has not run yet.
	ErrNotProcessed = errors.New("export: document not processed")
	// ErrValidation reports a malformed export request.
	ErrValidation = errors.New("export: validation failed")
)

// Status is the artifact lifecycle state.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Artifact is the persistent record of one export request. Manifest is
// set for bundles only.
type Artifact struct {
	ID          string
	TenantID    string
	DocumentID  string
	Format      Format
	Status      Status
	Filename    string
	MimeType    string
	Bytes       int
	SHA256      string
	StoragePath string
	Error       string
	Manifest    *Manifest
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DocumentSource reads document records. Satisfied by *documents.Service.
type DocumentSource interface {
	Get(ctx context.Context, tenantID, documentID string) (*documents.Document, error)
}

// ArtifactStore persists export artifacts.
type ArtifactStore interface {
	CreatePending(ctx context.Context, a *Artifact) error
	MarkSuccess(ctx context.Context, a *Artifact) error
	MarkFailed(ctx context.Context, tenantID, exportID, message string, at time.Time) error
	GetArtifact(ctx context.Context, tenantID, exportID string) (*Artifact, error)
}

// BlobStore writes and reads generated asset bytes. Put returns the
// storage path the bytes landed at.
type BlobStore interface {
	Put(ctx context.Context, tenantID, documentID, exportID, filename string, data []byte) (string, error)
	Get(ctx context.Context, storagePath string) ([]byte, error)
}

// Config configures a Service.
type Config struct {
	Documents DocumentSource
	Artifacts ArtifactStore
	Blobs     BlobStore
	Templates *template.Resolver
	Events    webhook.Emitter
	Logger    *slog.Logger
	Clock     func() time.Time
	NewID     func() string
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

// Service orchestrates export requests: it resolves the document and
// template, runs the encoders, persists the bytes and drives the artifact
// state machine PENDING → SUCCESS | FAILED.
type Service struct {
	documents DocumentSource
	artifacts ArtifactStore
	blobs     BlobStore
	templates *template.Resolver
	events    webhook.Emitter
	logger    *slog.Logger
	clock     func() time.Time
	newID     func() string
}

// NewService creates a Service. Documents, Artifacts, Blobs, Templates
// and NewID are required.
func NewService(cfg Config) *Service {
	cfg.defaults()
	return &Service{
		documents: cfg.Documents,
		artifacts: cfg.Artifacts,
		blobs:     cfg.Blobs,
		templates: cfg.Templates,
		events:    cfg.Events,
		logger:    cfg.Logger,
		clock:     cfg.Clock,
		newID:     cfg.NewID,
	}
}

// Request asks for one export. IncludeFormats applies to bundles only;
// empty means all sub-formats. Spine overrides the document's stored
// metrics for this export without persisting them.
type Request struct {
	TenantID       string
	DocumentID     string
	Format         Format
	IncludeFormats []Format
	Spine          *spine.Metrics
}

func (r *Request) validate() error {
	if r.TenantID == "" {
		return fmt.Errorf("tenantId is required: %w", ErrValidation)
	}
	if r.DocumentID == "" {
		return fmt.Errorf("documentId is required: %w", ErrValidation)
	}
	if _, err := ParseFormat(string(r.Format)); err != nil {
		return fmt.Errorf("%s: %w", err, ErrValidation)
	}
	for _, f := range r.IncludeFormats {
		if f == FormatBundle {
			return fmt.Errorf("bundle cannot include itself: %w", ErrValidation)
		}
		if _, err := ParseFormat(string(f)); err != nil {
			return fmt.Errorf("%s: %w", err, ErrValidation)
		}
	}
	if r.Spine != nil {
		if err := r.Spine.Validate(); err != nil {
			return fmt.Errorf("%s: %w", err, ErrValidation)
		}
	}
	return nil
}

// Get fetches one artifact within the tenant scope.
func (s *Service) Get(ctx context.Context, tenantID, exportID string) (*Artifact, error) {
	return s.artifacts.GetArtifact(ctx, tenantID, exportID)
}

// File returns the stored bytes of a successful export.
func (s *Service) File(ctx context.Context, tenantID, exportID string) (*Artifact, []byte, error) {
	artifact, err := s.artifacts.GetArtifact(ctx, tenantID, exportID)
	if err != nil {
		return nil, nil, err
	}
	if artifact.Status != StatusSuccess {
		return nil, nil, fmt.Errorf("export %s is %s: %w", exportID, artifact.Status, ErrNotFound)
	}
	data, err := s.blobs.Get(ctx, artifact.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("export: read blob: %w", err)
	}
	return artifact, data, nil
}

// Create runs one export end to end. The artifact is persisted PENDING
// before any encoding starts, so a crash mid-export leaves an inspectable
// record. Any failure marks the artifact FAILED, emits export.failed and
// returns the error.
func (s *Service) Create(ctx context.Context, req Request) (*Artifact, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	doc, err := s.documents.Get(ctx, req.TenantID, req.DocumentID)
	if err != nil {
		return nil, err
	}
	if !processedComplete(doc) {
		return nil, fmt.Errorf("document %s: %w", req.DocumentID, ErrNotProcessed)
	}

	metrics := doc.Spine
	if req.Spine != nil {
		metrics = *req.Spine
	}

	now := s.clock()
	artifact := &Artifact{
		ID:         s.newID(),
		TenantID:   req.TenantID,
		DocumentID: req.DocumentID,
		Format:     req.Format,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.artifacts.CreatePending(ctx, artifact); err != nil {
		return nil, fmt.Errorf("export: create artifact: %w", err)
	}

	var asset *GeneratedAsset
	if req.Format == FormatBundle {
		asset, artifact.Manifest, err = s.buildBundle(ctx, doc, metrics, req.IncludeFormats)
	} else {
		asset, err = s.buildAsset(ctx, doc, metrics, req.Format)
	}
	if err != nil {
		return nil, s.fail(ctx, artifact, err)
	}

	storagePath, err := s.blobs.Put(ctx, req.TenantID, req.DocumentID, artifact.ID, asset.Filename, asset.Buffer)
	if err != nil {
		return nil, s.fail(ctx, artifact, fmt.Errorf("store asset: %w", err))
	}

	sum := sha256.Sum256(asset.Buffer)
	artifact.Status = StatusSuccess
	artifact.Filename = asset.Filename
	artifact.MimeType = asset.MimeType
	artifact.Bytes = len(asset.Buffer)
	artifact.SHA256 = hex.EncodeToString(sum[:])
	artifact.StoragePath = storagePath
	artifact.UpdatedAt = s.clock()
	if err := s.artifacts.MarkSuccess(ctx, artifact); err != nil {
		return nil, s.fail(ctx, artifact, fmt.Errorf("mark success: %w", err))
	}

	s.events.Emit(ctx, webhook.Event{
		TenantID: req.TenantID,
		Type:     webhook.ExportCompleted,
		Payload: webhook.ExportCompletedPayload{
			ExportID:   artifact.ID,
			DocumentID: req.DocumentID,
			Format:     string(req.Format),
			Filename:   artifact.Filename,
			Bytes:      artifact.Bytes,
		},
	})

	s.logger.Info("export completed",
		"export_id", artifact.ID,
		"document_id", req.DocumentID,
		"format", req.Format,
		"bytes", artifact.Bytes)
	return artifact, nil
}

// fail drives the FAILED transition: persists the message, emits
// export.failed and wraps the cause.
func (s *Service) fail(ctx context.Context, artifact *Artifact, cause error) error {
	if err := s.artifacts.MarkFailed(ctx, artifact.TenantID, artifact.ID, cause.Error(), s.clock()); err != nil {
		s.logger.Error("marking export failed", "export_id", artifact.ID, "error", err)
	}
	s.events.Emit(ctx, webhook.Event{
		TenantID: artifact.TenantID,
		Type:     webhook.ExportFailed,
		Payload: webhook.ExportFailedPayload{
			ExportID:   artifact.ID,
			DocumentID: artifact.DocumentID,
			Format:     string(artifact.Format),
			Error:      cause.Error(),
		},
	})
	s.logger.Error("export failed",
		"export_id", artifact.ID,
		"document_id", artifact.DocumentID,
		"format", artifact.Format,
		"error", cause)
	return fmt.Errorf("export %s: %w", artifact.ID, cause)
}

// buildAsset resolves the template, builds the render model and runs the
// encoder for one concrete format.
func (s *Service) buildAsset(ctx context.Context, doc *documents.Document, metrics spine.Metrics, format Format) (*GeneratedAsset, error) {
	tpl, err := s.templates.Resolve(ctx, doc.TenantID, doc.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("resolve template %s: %w", doc.TemplateID, err)
	}

	ec := ExecutionContext{
		TenantID:   doc.TenantID,
		DocumentID: doc.ID,
		Render:     render.Build(tpl, doc.Processed, metrics),
		Processed:  doc.Processed,
	}

	switch format {
	case FormatPDF:
		return EncodePDF(ec)
	case FormatEPUB:
		return EncodeEPUB(ec)
	case FormatDOCX:
		return EncodeDOCX(ec)
	}
	return nil, fmt.Errorf("format %s has no encoder", format)
}

// buildBundle fans the sub-format encoders out in parallel and joins on
// all of them; one failure fails the whole bundle. Asset order in the
// archive follows the requested format order.
func (s *Service) buildBundle(ctx context.Context, doc *documents.Document, metrics spine.Metrics, include []Format) (*GeneratedAsset, *Manifest, error) {
	if len(include) == 0 {
		include = SubFormats
	}

	tpl, err := s.templates.Resolve(ctx, doc.TenantID, doc.TemplateID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve template %s: %w", doc.TemplateID, err)
	}

	assets := make([]*GeneratedAsset, len(include))
	errs := make([]error, len(include))

	var wg sync.WaitGroup
	for i, format := range include {
		wg.Add(1)
		go func(i int, format Format) {
			defer wg.Done()
			assets[i], errs[i] = s.buildAsset(ctx, doc, metrics, format)
		}(i, format)
	}
	wg.Wait()

	for i, e := range errs {
		if e != nil {
			return nil, nil, fmt.Errorf("bundle sub-format %s: %w", include[i], e)
		}
	}

	checksums := make(map[string]string, len(assets))
	for _, asset := range assets {
		sum := sha256.Sum256(asset.Buffer)
		checksums[asset.Filename] = hex.EncodeToString(sum[:])
	}

	return EncodeBundle(BundleInput{
		TenantID:   doc.TenantID,
		DocumentID: doc.ID,
		Metadata:   doc.Processed.Metadata,
		Template:   tpl,
		Spine:      metrics,
		Assets:     assets,
		Checksums:  checksums,
		CreatedAt:  s.clock().UTC(),
	})
}

// processedComplete reports whether every field the encoders read is
// present on the document.
func processedComplete(doc *documents.Document) bool {
	p := doc.Processed
	return p != nil &&
		p.NormalizedText != "" &&
		len(p.Chapters) > 0 &&
		len(p.Toc) > 0 &&
		p.Layout.PageSize != "" &&
		p.Metadata.Title != ""
}
