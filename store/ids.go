package store

import "github.com/google/uuid"

// Prefixed UUIDv7 ids: time-ordered, so primary-key inserts stay append
// mostly and listings sort by creation without an extra column.

// NewDocumentID returns a doc_-prefixed id.
func NewDocumentID() string {
	return "doc_" + uuid.Must(uuid.NewV7()).String()
}

// NewExportID returns an exp_-prefixed id.
func NewExportID() string {
	return "exp_" + uuid.Must(uuid.NewV7()).String()
}
