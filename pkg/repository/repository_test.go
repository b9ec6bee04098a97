package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablerohq/tablero/pkg/models"
	"github.com/tablerohq/tablero/pkg/notify"
	"github.com/tablerohq/tablero/pkg/store"
	"github.com/tablerohq/tablero/pkg/store/memory"
)

func newTestRepo(t *testing.T) (*Repository, *memory.Store, *notify.Recorder) {
	t.Helper()
	st := memory.New()
	require.NoError(t, st.Ensure(context.Background()))
	rec := &notify.Recorder{}
	return New(st, rec), st, rec
}

func TestCreateTaskDefaults(t *testing.T) {
	ctx := context.Background()
	repo, _, rec := newTestRepo(t)

	task, err := repo.CreateTask(ctx, CreateTaskInput{Title: "write report"})
	require.NoError(t, err)

	assert.Equal(t, "write report", task.Title)
	assert.Equal(t, "", task.Description)
	assert.Equal(t, models.DefaultStatus, task.Status)
	assert.Nil(t, task.AssigneeID)
	assert.False(t, task.ID.IsZero())
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)
	assert.Equal(t, []string{EventTaskCreated}, rec.Types())
}

func TestCreateTaskInvalidStatusFallsBackToDefault(t *testing.T) {
	// An unrecognized status on create is treated as absent rather than
	// rejected.
	ctx := context.Background()
	repo, _, _ := newTestRepo(t)

	task, err := repo.CreateTask(ctx, CreateTaskInput{Title: "t", Status: "NotAStatus"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultStatus, task.Status)
}

func TestCreateTaskRequiresTitle(t *testing.T) {
	ctx := context.Background()
	repo, st, rec := newTestRepo(t)

	for _, title := range []string{"", "   "} {
		_, err := repo.CreateTask(ctx, CreateTaskInput{Title: title})
		assert.ErrorIs(t, err, ErrMissingField)
	}

	doc, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, doc.Tasks, "rejected creates must not touch the document")
	assert.Empty(t, rec.Events())
}

func TestCreateTaskAssignsUniqueIDs(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newTestRepo(t)

	seen := map[models.TaskID]bool{}
	for i := 0; i < 20; i++ {
		task, err := repo.CreateTask(ctx, CreateTaskInput{Title: fmt.Sprintf("task %d", i)})
		require.NoError(t, err)
		assert.False(t, seen[task.ID], "duplicate id %s", task.ID)
		seen[task.ID] = true
	}
}

func TestSetTaskStatusRoundTripAllStatuses(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newTestRepo(t)

	task, err := repo.CreateTask(ctx, CreateTaskInput{Title: "t"})
	require.NoError(t, err)

	// Any status may follow any other, including moves out of Finalizado
	// and Cancelada.
	for _, s := range models.Statuses() {
		updated, err := repo.SetTaskStatus(ctx, task.ID, s)
		require.NoError(t, err)
		assert.Equal(t, s, updated.Status)

		got, err := repo.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, s, got.Status)
	}
}

func TestSetTaskStatusRefreshesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	repo, _, rec := newTestRepo(t)

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return base }
	task, err := repo.CreateTask(ctx, CreateTaskInput{Title: "t"})
	require.NoError(t, err)

	repo.now = func() time.Time { return base.Add(time.Minute) }
	updated, err := repo.SetTaskStatus(ctx, task.ID, models.StatusBlocked)
	require.NoError(t, err)

	assert.Equal(t, base, updated.CreatedAt)
	assert.Equal(t, base.Add(time.Minute), updated.UpdatedAt)
	assert.Equal(t, []string{EventTaskCreated, EventTaskStatusChanged}, rec.Types())

	events := rec.Events()
	change, ok := events[1].Payload.(StatusChange)
	require.True(t, ok)
	assert.Equal(t, task.ID, change.ID)
	assert.Equal(t, models.StatusBlocked, change.Status)
}

func TestSetTaskStatusInvalidNeverMutates(t *testing.T) {
	ctx := context.Background()
	repo, st, rec := newTestRepo(t)

	task, err := repo.CreateTask(ctx, CreateTaskInput{Title: "t"})
	require.NoError(t, err)
	before, err := st.Load(ctx)
	require.NoError(t, err)

	_, err = repo.SetTaskStatus(ctx, task.ID, "NotAStatus")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = repo.SetTaskStatus(ctx, task.ID, "")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	after, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after, "invalid status must leave the document untouched")
	assert.Equal(t, []string{EventTaskCreated}, rec.Types())
}

func TestSetTaskStatusUnknownTaskIsNotFound(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newTestRepo(t)

	_, err := repo.SetTaskStatus(ctx, models.NewTaskID(), models.StatusBlocked)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTaskPartialMerge(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newTestRepo(t)

	assignee := models.NewResponsibleID()
	task, err := repo.CreateTask(ctx, CreateTaskInput{
		Title:       "original",
		Description: "desc",
		Status:      models.StatusInProgress,
		AssigneeID:  &assignee,
	})
	require.NoError(t, err)

	updated, err := repo.UpdateTask(ctx, task.ID, models.TaskPatch{
		Description: models.Some("x"),
	})
	require.NoError(t, err)

	assert.Equal(t, "x", updated.Description)
	assert.Equal(t, task.Title, updated.Title)
	assert.Equal(t, task.Status, updated.Status)
	assert.Equal(t, task.AssigneeID, updated.AssigneeID)
	assert.True(t, updated.UpdatedAt.After(task.UpdatedAt) || updated.UpdatedAt.Equal(task.UpdatedAt))
}

func TestUpdateTaskInvalidStatusRejectedBeforeMutation(t *testing.T) {
	ctx := context.Background()
	repo, st, _ := newTestRepo(t)

	task, err := repo.CreateTask(ctx, CreateTaskInput{Title: "t"})
	require.NoError(t, err)
	before, err := st.Load(ctx)
	require.NoError(t, err)

	_, err = repo.UpdateTask(ctx, task.ID, models.TaskPatch{
		Title:  models.Some("new"),
		Status: models.Some(models.Status("bogus")),
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	after, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdateTaskUnknownIsNotFound(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newTestRepo(t)

	_, err := repo.UpdateTask(ctx, models.NewTaskID(), models.TaskPatch{Title: models.Some("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTaskThenGetIsNotFound(t *testing.T) {
	ctx := context.Background()
	repo, _, rec := newTestRepo(t)

	task, err := repo.CreateTask(ctx, CreateTaskInput{Title: "t"})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteTask(ctx, task.ID))

	_, err = repo.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.DeleteTask(ctx, task.ID), ErrNotFound)
	assert.Equal(t, []string{EventTaskCreated, EventTaskDeleted}, rec.Types())
}

func TestDeleteTaskPreservesOrderOfOthers(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newTestRepo(t)

	var ids []models.TaskID
	for _, title := range []string{"a", "b", "c"} {
		task, err := repo.CreateTask(ctx, CreateTaskInput{Title: title})
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}

	require.NoError(t, repo.DeleteTask(ctx, ids[1]))

	tasks, err := repo.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "a", tasks[0].Title)
	assert.Equal(t, "c", tasks[1].Title)
}

func TestConcurrentCreatesLoseNothing(t *testing.T) {
	// Two creates dispatched concurrently must both survive: the
	// repository mutex serializes the load→mutate→save cycles, so a later
	// save can never overwrite an earlier create.
	ctx := context.Background()
	repo, _, _ := newTestRepo(t)

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.CreateTask(ctx, CreateTaskInput{Title: fmt.Sprintf("task %d", i)})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "create %d", i)
	}
	tasks, err := repo.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, n)

	seen := map[models.TaskID]bool{}
	for _, task := range tasks {
		assert.False(t, seen[task.ID])
		seen[task.ID] = true
	}
}

func TestStorageWriteFailureAbortsAndEmitsNothing(t *testing.T) {
	ctx := context.Background()
	repo, st, rec := newTestRepo(t)

	st.FailSave = true
	_, err := repo.CreateTask(ctx, CreateTaskInput{Title: "t"})
	assert.ErrorIs(t, err, store.ErrWrite)
	assert.Empty(t, rec.Events())

	st.FailSave = false
	task, err := repo.CreateTask(ctx, CreateTaskInput{Title: "t"})
	require.NoError(t, err)

	st.FailSave = true
	_, err = repo.SetTaskStatus(ctx, task.ID, models.StatusBlocked)
	assert.ErrorIs(t, err, store.ErrWrite)

	st.FailSave = false
	got, err := repo.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultStatus, got.Status, "failed save must not be visible")
	assert.Equal(t, []string{EventTaskCreated}, rec.Types())
}

func TestResponsibleLifecycle(t *testing.T) {
	ctx := context.Background()
	repo, _, rec := newTestRepo(t)

	_, err := repo.CreateResponsible(ctx, CreateResponsibleInput{Name: "  "})
	assert.ErrorIs(t, err, ErrMissingField)

	email := "ana@example.com"
	resp, err := repo.CreateResponsible(ctx, CreateResponsibleInput{Name: "Ana", Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "Ana", resp.Name)
	require.NotNil(t, resp.Email)
	assert.Equal(t, email, *resp.Email)

	updated, err := repo.UpdateResponsible(ctx, resp.ID, models.ResponsiblePatch{Name: models.Some("Ana M.")})
	require.NoError(t, err)
	assert.Equal(t, "Ana M.", updated.Name)
	assert.Equal(t, resp.Email, updated.Email)

	require.NoError(t, repo.DeleteResponsible(ctx, resp.ID))
	_, err = repo.GetResponsible(ctx, resp.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{EventResponsibleCreated, EventResponsibleUpdated, EventResponsibleDeleted}, rec.Types())
}

func TestDeleteResponsibleLeavesDanglingAssignee(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newTestRepo(t)

	resp, err := repo.CreateResponsible(ctx, CreateResponsibleInput{Name: "Ana"})
	require.NoError(t, err)
	task, err := repo.CreateTask(ctx, CreateTaskInput{Title: "t", AssigneeID: &resp.ID})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteResponsible(ctx, resp.ID))

	got, err := repo.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssigneeID)
	assert.Equal(t, resp.ID, *got.AssigneeID, "dangling reference is tolerated, not cascaded")
}
