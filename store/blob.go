package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zariapress/zaria/export"
)

// FileBlobStore keeps generated asset bytes on the local filesystem under
// <root>/<tenant>/<document>/<exportID>-<filename>. Paths handed back to
// callers are relative to root so the root can move between hosts.
type FileBlobStore struct {
	root string
}

// NewFileBlobStore roots a blob store at dir.
func NewFileBlobStore(dir string) *FileBlobStore {
	return &FileBlobStore{root: dir}
}

func (s *FileBlobStore) Put(_ context.Context, tenantID, documentID, exportID, filename string, data []byte) (string, error) {
	for _, part := range []string{tenantID, documentID, exportID, filename} {
		if part == "" || strings.ContainsAny(part, `/\`) || strings.Contains(part, "..") {
			return "", fmt.Errorf("blob: unsafe path segment %q", part)
		}
	}

	rel := filepath.Join(tenantID, documentID, exportID+"-"+filename)
	abs := filepath.Join(s.root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("blob: mkdir: %w", err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return "", fmt.Errorf("blob: write %s: %w", rel, err)
	}
	return rel, nil
}

func (s *FileBlobStore) Get(_ context.Context, storagePath string) ([]byte, error) {
	if filepath.IsAbs(storagePath) || strings.Contains(storagePath, "..") {
		return nil, fmt.Errorf("blob: unsafe storage path %q", storagePath)
	}
	data, err := os.ReadFile(filepath.Join(s.root, storagePath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, export.ErrNotFound
		}
		return nil, fmt.Errorf("blob: read %s: %w", storagePath, err)
	}
	return data, nil
}

var _ export.BlobStore = (*FileBlobStore)(nil)
