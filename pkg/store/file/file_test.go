package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablerohq/tablero/pkg/models"
	"github.com/tablerohq/tablero/pkg/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "data", "db.json"))
}

func TestEnsureCreatesEmptyDocument(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Ensure(ctx))

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, doc.Tasks)
	assert.Empty(t, doc.Responsibles)

	// The file itself must serialize the empty sequences, not nulls.
	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"tasks": []`)
	assert.Contains(t, string(raw), `"responsibles": []`)
}

func TestEnsureIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Ensure(ctx))

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	doc.Tasks = append(doc.Tasks, models.Task{ID: models.NewTaskID(), Title: "keep me", Status: models.StatusCreated})
	require.NoError(t, s.Save(ctx, doc))

	// A second Ensure must not reset existing content.
	require.NoError(t, s.Ensure(ctx))
	doc, err = s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Tasks, 1)
	assert.Equal(t, "keep me", doc.Tasks[0].Title)
}

func TestLoadMissingFileIsReadError(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, store.ErrRead)
}

func TestLoadCorruptFileIsReadError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Ensure(ctx))
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o644))

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, store.ErrRead)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Ensure(ctx))

	assignee := models.NewResponsibleID()
	email := "ana@example.com"
	doc := models.NewDocument()
	doc.Responsibles = append(doc.Responsibles, models.Responsible{
		ID: assignee, Name: "Ana", Email: &email,
	})
	doc.Tasks = append(doc.Tasks,
		models.Task{ID: models.NewTaskID(), Title: "first", Status: models.StatusCreated, AssigneeID: &assignee},
		models.Task{ID: models.NewTaskID(), Title: "second", Description: "d", Status: models.StatusBlocked},
	)
	require.NoError(t, s.Save(ctx, doc))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, doc.Tasks, loaded.Tasks)
	assert.Equal(t, doc.Responsibles, loaded.Responsibles)

	// save(load()) must be a no-op on content: the file bytes are stable.
	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, loaded))
	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestSavePreservesSequenceOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Ensure(ctx))

	doc := models.NewDocument()
	titles := []string{"a", "b", "c", "d"}
	for _, title := range titles {
		doc.Tasks = append(doc.Tasks, models.Task{ID: models.NewTaskID(), Title: title, Status: models.StatusCreated})
	}
	require.NoError(t, s.Save(ctx, doc))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	for i, title := range titles {
		assert.Equal(t, title, loaded.Tasks[i].Title)
	}
}
