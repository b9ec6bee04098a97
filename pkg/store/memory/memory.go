// Package memory implements the document store in process memory. It exists
// for tests and ephemeral runs; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/tablerohq/tablero/pkg/models"
	"github.com/tablerohq/tablero/pkg/store"
)

// Store keeps the document in memory. Load hands out deep copies and Save
// stores a deep copy, so callers can never alias the internal document.
type Store struct {
	mu  sync.Mutex
	doc *models.Document

	// FailSave, when set, makes every Save return a write error. Tests use
	// it to exercise the storage-failure paths.
	FailSave bool
}

// New returns an empty memory store. Load fails until Ensure or Save runs,
// mirroring a missing file on the file backend.
func New() *Store {
	return &Store{}
}

func (s *Store) Ensure(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		s.doc = models.NewDocument()
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, fmt.Errorf("%w: document not initialized", store.ErrRead)
	}
	return s.doc.Clone(), nil
}

func (s *Store) Save(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSave {
		return fmt.Errorf("%w: save disabled", store.ErrWrite)
	}
	s.doc = doc.Clone()
	return nil
}

func (s *Store) Close() error { return nil }
