package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/zariapress/zaria/docproc"
	"github.com/zariapress/zaria/spine"
	"github.com/zariapress/zaria/webhook"
)

type memStore struct {
	docs map[string]*Document
}

func (m *memStore) key(tenantID, id string) string { return tenantID + "/" + id }

func (m *memStore) InsertDocument(_ context.Context, doc *Document) error {
	cp := *doc
	m.docs[m.key(doc.TenantID, doc.ID)] = &cp
	return nil
}

func (m *memStore) GetDocument(_ context.Context, tenantID, documentID string) (*Document, error) {
	doc, ok := m.docs[m.key(tenantID, documentID)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (m *memStore) ListDocuments(_ context.Context, tenantID string) ([]*Document, error) {
	var out []*Document
	for _, doc := range m.docs {
		if doc.TenantID == tenantID {
			cp := *doc
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) UpdateProcessed(_ context.Context, doc *Document) error {
	if _, ok := m.docs[m.key(doc.TenantID, doc.ID)]; !ok {
		return ErrNotFound
	}
	cp := *doc
	m.docs[m.key(doc.TenantID, doc.ID)] = &cp
	return nil
}

func (m *memStore) UpdateSpine(_ context.Context, doc *Document) error {
	return m.UpdateProcessed(nil, doc)
}

type captureEmitter struct {
	events []webhook.Event
}

func (c *captureEmitter) Emit(_ context.Context, event webhook.Event) {
	c.events = append(c.events, event)
}

func newTestService(t *testing.T) (*Service, *memStore, *captureEmitter) {
	t.Helper()
	store := &memStore{docs: map[string]*Document{}}
	events := &captureEmitter{}
	seq := 0
	svc := NewService(Config{
		Store:  store,
		Events: events,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock: func() time.Time {
			seq++
			return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC).Add(time.Duration(seq) * time.Second)
		},
		NewID: func() string {
			return fmt.Sprintf("doc_%d", len(store.docs)+1)
		},
	})
	return svc, store, events
}

func validCreate() CreateRequest {
	return CreateRequest{
		TenantID:   "ten_1",
		InputType:  InputRaw,
		Title:      "Field Notes",
		RawText:    "# Field Notes\n\nBody paragraph.",
		TemplateID: "zaria-imperial",
		Spine:      spine.Metrics{AD: 40, PM: 60, ESI: 55},
	}
}

func TestCreateAndGet(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Create(ctx, validCreate())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if doc.ID == "" {
		t.Error("document has no id")
	}
	if doc.Processed != nil || doc.ProcessingDigest != "" {
		t.Error("new document should be unprocessed")
	}

	got, err := svc.Get(ctx, "ten_1", doc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Field Notes" {
		t.Errorf("title = %q", got.Title)
	}

	if _, err := svc.Get(ctx, "ten_2", doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-tenant read: err = %v, want ErrNotFound", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*CreateRequest)
	}{
		{"missing tenant", func(r *CreateRequest) { r.TenantID = "" }},
		{"missing title", func(r *CreateRequest) { r.Title = "" }},
		{"missing text", func(r *CreateRequest) { r.RawText = "" }},
		{"missing template", func(r *CreateRequest) { r.TemplateID = "" }},
		{"bad input type", func(r *CreateRequest) { r.InputType = "telepathy" }},
		{"spine out of range", func(r *CreateRequest) { r.Spine.PM = 120 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreate()
			tt.mutate(&req)
			if _, err := svc.Create(ctx, req); !errors.Is(err, ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestProcessPopulatesDocument(t *testing.T) {
	svc, _, events := newTestService(t)
	ctx := context.Background()

	doc, _ := svc.Create(ctx, validCreate())
	processed, err := svc.Process(ctx, "ten_1", doc.ID, false)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if processed.Processed == nil {
		t.Fatal("document not processed")
	}
	if len(processed.Processed.Chapters) != 1 {
		t.Errorf("chapters = %d", len(processed.Processed.Chapters))
	}
	if processed.ProcessingDigest == "" || processed.ProcessedAt.IsZero() {
		t.Error("digest or timestamp missing after processing")
	}

	if len(events.events) != 1 || events.events[0].Type != webhook.DocumentProcessed {
		t.Fatalf("events = %+v", events.events)
	}
	payload, ok := events.events[0].Payload.(webhook.DocumentProcessedPayload)
	if !ok {
		t.Fatalf("payload type %T", events.events[0].Payload)
	}
	if payload.DocumentID != doc.ID {
		t.Errorf("payload document = %q", payload.DocumentID)
	}
	if payload.SpineScore <= 0 {
		t.Errorf("spine score = %v", payload.SpineScore)
	}
}

func TestProcessSkipsWhenDigestUnchanged(t *testing.T) {
	svc, _, events := newTestService(t)
	ctx := context.Background()

	doc, _ := svc.Create(ctx, validCreate())
	first, err := svc.Process(ctx, "ten_1", doc.ID, false)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	second, err := svc.Process(ctx, "ten_1", doc.ID, false)
	if err != nil {
		t.Fatalf("second Process: %v", err)
	}

	if !second.ProcessedAt.Equal(first.ProcessedAt) {
		t.Error("unchanged content was reprocessed")
	}
	if len(events.events) != 1 {
		t.Errorf("%d events emitted, want 1", len(events.events))
	}
}

func TestProcessForceReprocesses(t *testing.T) {
	svc, _, events := newTestService(t)
	ctx := context.Background()

	doc, _ := svc.Create(ctx, validCreate())
	first, _ := svc.Process(ctx, "ten_1", doc.ID, false)
	second, err := svc.Process(ctx, "ten_1", doc.ID, true)
	if err != nil {
		t.Fatalf("forced Process: %v", err)
	}

	if second.ProcessedAt.Equal(first.ProcessedAt) {
		t.Error("force did not rerun the pipeline")
	}
	if len(events.events) != 2 {
		t.Errorf("%d events emitted, want 2", len(events.events))
	}
}

func TestUpdateSpineClearsDigest(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	doc, _ := svc.Create(ctx, validCreate())
	if _, err := svc.Process(ctx, "ten_1", doc.ID, false); err != nil {
		t.Fatalf("Process: %v", err)
	}

	updated, err := svc.UpdateSpine(ctx, "ten_1", doc.ID, spine.Metrics{AD: 90, PM: 10, ESI: 20})
	if err != nil {
		t.Fatalf("UpdateSpine: %v", err)
	}
	if updated.Processed != nil || updated.ProcessingDigest != "" || !updated.ProcessedAt.IsZero() {
		t.Error("spine update did not clear processing state")
	}

	// Next Process must run the pipeline with the new metrics.
	reprocessed, err := svc.Process(ctx, "ten_1", doc.ID, false)
	if err != nil {
		t.Fatalf("reprocess: %v", err)
	}
	if reprocessed.Processed == nil {
		t.Fatal("document not reprocessed")
	}
	if reprocessed.Processed.Layout.AccentWeight != spine.AccentSubtle {
		t.Errorf("accent weight = %q after esi drop", reprocessed.Processed.Layout.AccentWeight)
	}

	if _, err := svc.UpdateSpine(ctx, "ten_1", doc.ID, spine.Metrics{AD: -1}); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestProcessDigestReflectsInputs(t *testing.T) {
	base := docproc.Digest("text", "title", "tpl", spine.Metrics{AD: 1, PM: 2, ESI: 3})
	changed := docproc.Digest("text", "title", "tpl", spine.Metrics{AD: 1, PM: 2, ESI: 4})
	if base == changed {
		t.Error("digest ignores spine metrics")
	}
}
