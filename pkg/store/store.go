// Package store defines the persistence contract for the board document.
//
// The [Store] interface abstracts where the single Document lives so the
// application can run against a JSON file (the canonical backend), an
// in-memory copy (tests and ephemeral runs), or a SQLite database that keeps
// the serialized document in one row. All backends share the same
// whole-document semantics: Load returns the entire aggregate and Save
// replaces it entirely. There are no partial reads or writes.
//
// Stores provide no locking of their own. Serializing the load→mutate→save
// cycle is the repository's job; a store only promises that an individual
// Load or Save is internally consistent.
package store

import (
	"context"
	"errors"

	"github.com/tablerohq/tablero/pkg/models"
)

// ErrRead marks a failure to load the document: the backing file or row is
// missing, unreadable, or does not decode as a Document.
var ErrRead = errors.New("storage read failed")

// ErrWrite marks a failure to persist the document. Callers must treat a
// write failure as requiring operator attention, not automatic retry: a
// failure mid-write may leave the previous content, or on the file backend
// may corrupt it. No transactional guarantee is provided.
var ErrWrite = errors.New("storage write failed")

// Store owns the persisted Document.
type Store interface {
	// Ensure initializes the backing storage with an empty document if it
	// does not exist yet. It is idempotent and must be called once before
	// any repository operation runs.
	Ensure(ctx context.Context) error

	// Load reads and decodes the whole document. Errors wrap [ErrRead].
	Load(ctx context.Context) (*models.Document, error)

	// Save encodes and writes the whole document, replacing prior content
	// entirely. Errors wrap [ErrWrite].
	Save(ctx context.Context, doc *models.Document) error

	// Close releases any resources held by the store.
	Close() error
}
