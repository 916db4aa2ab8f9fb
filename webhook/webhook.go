// Package webhook defines the event contract the pipeline exposes to
// external listeners. Delivery (HTTP, signing of outbound requests,
// retries) is an external concern; the pipeline only invokes an Emitter
// with typed payloads.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	"github.com/zariapress/zaria/docproc"
	"github.com/zariapress/zaria/spine"
)

// EventType enumerates the emitted events.
type EventType string

const (
	DocumentProcessed EventType = "document.processed"
	ExportCompleted   EventType = "export.completed"
	ExportFailed      EventType = "export.failed"
)

// Event is one emitted occurrence, scoped to a tenant.
type Event struct {
	TenantID string    `json:"tenantId"`
	Type     EventType `json:"event"`
	Payload  any       `json:"payload"`
}

// DocumentProcessedPayload accompanies DocumentProcessed.
type DocumentProcessedPayload struct {
	DocumentID string           `json:"documentId"`
	Title      string           `json:"title"`
	Metadata   docproc.Metadata `json:"metadata"`
	SpineScore float64          `json:"spineScore"`
	Spine      spine.Metrics    `json:"spine"`
}

// ExportCompletedPayload accompanies ExportCompleted.
type ExportCompletedPayload struct {
	ExportID   string `json:"exportId"`
	DocumentID string `json:"documentId"`
	Format     string `json:"format"`
	Filename   string `json:"filename"`
	Bytes      int    `json:"bytes"`
}

// ExportFailedPayload accompanies ExportFailed.
type ExportFailedPayload struct {
	ExportID   string `json:"exportId"`
	DocumentID string `json:"documentId"`
	Format     string `json:"format"`
	Error      string `json:"error"`
}

// Emitter receives events at the pipeline boundary. Implementations must
// not block the export path on delivery; queue or log instead.
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

// LogEmitter writes events to a structured logger. The default when no
// delivery mechanism is wired.
type LogEmitter struct {
	Logger *slog.Logger
}

func (l LogEmitter) Emit(_ context.Context, event Event) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("webhook event",
		"event", string(event.Type),
		"tenant_id", event.TenantID,
		"payload", event.Payload)
}

// Sign computes the hex HMAC-SHA256 signature listeners use to verify a
// delivered payload body against their endpoint secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
