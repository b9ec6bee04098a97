// Package sqlite implements the document store on a SQLite database.
//
// The whole-document persistence contract is preserved: the serialized
// Document lives in a single row of a one-row table, and every Save replaces
// that row. This backend trades the file store's human-readable db.json for
// crash-safe writes (SQLite journals the row replacement), without changing
// the granularity of persistence.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/tablerohq/tablero/pkg/models"
	"github.com/tablerohq/tablero/pkg/store"
)

// Store keeps the serialized document in the single row of the document
// table.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// WAL keeps readers from blocking the single writer.
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	return &Store{db: db}, nil
}

// Ensure creates the document table and seeds it with an empty document if
// no row exists yet. Idempotent.
func (s *Store) Ensure(ctx context.Context) error {
	schema := `CREATE TABLE IF NOT EXISTS document (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		body TEXT NOT NULL
	)`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: create schema: %v", store.ErrWrite, err)
	}
	raw, err := json.Marshal(models.NewDocument())
	if err != nil {
		return fmt.Errorf("%w: encode empty document: %v", store.ErrWrite, err)
	}
	insert := `INSERT INTO document (id, body) VALUES (1, ?) ON CONFLICT (id) DO NOTHING`
	if _, err := s.db.ExecContext(ctx, insert, string(raw)); err != nil {
		return fmt.Errorf("%w: seed document: %v", store.ErrWrite, err)
	}
	return nil
}

// Load reads and decodes the document row.
func (s *Store) Load(ctx context.Context) (*models.Document, error) {
	var body string
	row := s.db.QueryRowContext(ctx, `SELECT body FROM document WHERE id = 1`)
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: document not initialized", store.ErrRead)
		}
		return nil, fmt.Errorf("%w: read document: %v", store.ErrRead, err)
	}
	var doc models.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("%w: decode document: %v", store.ErrRead, err)
	}
	if doc.Tasks == nil {
		doc.Tasks = []models.Task{}
	}
	if doc.Responsibles == nil {
		doc.Responsibles = []models.Responsible{}
	}
	return &doc, nil
}

// Save replaces the document row with the encoding of doc.
func (s *Store) Save(ctx context.Context, doc *models.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: encode document: %v", store.ErrWrite, err)
	}
	upsert := `INSERT INTO document (id, body) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET body = excluded.body`
	if _, err := s.db.ExecContext(ctx, upsert, string(raw)); err != nil {
		return fmt.Errorf("%w: write document: %v", store.ErrWrite, err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }
