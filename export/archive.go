package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"
)

// archiveBuilder accumulates named byte buffers and finalizes them into a
// zip in one pass. Entries are written in insertion order with zeroed
// modification times so identical content always yields identical bytes.
type archiveBuilder struct {
	entries []archiveEntry
}

type archiveEntry struct {
	name   string
	data   []byte
	method uint16
}

// add queues a deflate-compressed entry.
func (b *archiveBuilder) add(name string, data []byte) {
	b.entries = append(b.entries, archiveEntry{name: name, data: data, method: zip.Deflate})
}

// addStored queues an uncompressed entry. EPUB requires the mimetype entry
// stored first so readers can sniff it at a fixed offset.
func (b *archiveBuilder) addStored(name string, data []byte) {
	b.entries = append(b.entries, archiveEntry{name: name, data: data, method: zip.Store})
}

// finalize writes the archive.
func (b *archiveBuilder) finalize() ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	for _, e := range b.entries {
		fw, err := w.CreateHeader(&zip.FileHeader{
			Name:     e.name,
			Method:   e.method,
			Modified: time.Time{},
		})
		if err != nil {
			return nil, fmt.Errorf("archive: create %s: %w", e.name, err)
		}
		if _, err := fw.Write(e.data); err != nil {
			return nil, fmt.Errorf("archive: write %s: %w", e.name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("archive: close: %w", err)
	}
	return buf.Bytes(), nil
}
