package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kmiya/newsbrief/pkg/domain"
)

// Writer persists the ranked batch as the current snapshot document.
// The write is atomic with respect to partial writes: content goes to a
// temp file in the target directory first and is renamed over the old
// snapshot, so a reader never observes a half-written document.
type Writer struct {
	path string
}

// NewWriter creates a snapshot writer targeting path
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the snapshot location
func (w *Writer) Path() string {
	return w.path
}

// Write assigns ids, stamps the document and replaces the snapshot on disk
func (w *Writer) Write(items []domain.NewsItem) (*Document, error) {
	doc := &Document{UpdatedAt: time.Now(), Items: make([]Item, 0, len(items))}
	for _, item := range items {
		doc.Items = append(doc.Items, FromNewsItem(item))
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".news-*.json")
	if err != nil {
		return nil, fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return nil, fmt.Errorf("replace snapshot %s: %w", w.path, err)
	}
	return doc, nil
}
