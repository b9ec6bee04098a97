// Package file implements the document store on a single JSON file on disk,
// matching the db.json layout the board has always used.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tablerohq/tablero/pkg/models"
	"github.com/tablerohq/tablero/pkg/store"
)

const filePerm = 0o644

// Store persists the document as indented JSON in one file. The whole file
// is rewritten on every Save.
//
// The store itself does no locking. Within one process the repository
// serializes all load→mutate→save cycles; two processes pointed at the same
// file race with last-write-wins at whole-document granularity.
type Store struct {
	path string
}

// New returns a file store backed by the JSON document at path. The file is
// not touched until Ensure, Load, or Save is called.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the backing file.
func (s *Store) Path() string { return s.path }

// Ensure creates the parent directory and an empty document if the file does
// not exist yet. An existing file is left untouched, so calling Ensure at
// every process start is safe.
func (s *Store) Ensure(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: create data directory: %v", store.ErrWrite, err)
	}
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: stat %s: %v", store.ErrRead, s.path, err)
	}
	return s.Save(ctx, models.NewDocument())
}

// Load reads and decodes the whole document.
func (s *Store) Load(ctx context.Context) (*models.Document, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", store.ErrRead, s.path, err)
	}
	var doc models.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", store.ErrRead, s.path, err)
	}
	if doc.Tasks == nil {
		doc.Tasks = []models.Task{}
	}
	if doc.Responsibles == nil {
		doc.Responsibles = []models.Responsible{}
	}
	return &doc, nil
}

// Save rewrites the whole file with the indented JSON encoding of doc.
func (s *Store) Save(ctx context.Context, doc *models.Document) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode document: %v", store.ErrWrite, err)
	}
	if err := os.WriteFile(s.path, raw, filePerm); err != nil {
		return fmt.Errorf("%w: write %s: %v", store.ErrWrite, s.path, err)
	}
	return nil
}

// Close is a no-op; the store holds no open handles between operations.
func (s *Store) Close() error { return nil }
