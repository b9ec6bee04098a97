// Package boardstate maintains a client-local mirror of the task board and
// implements the optimistic move protocol used by drag-and-drop UIs.
//
// A Board holds the last known tasks and responsibles, serves a
// grouped-by-status projection for rendering, and applies status moves
// optimistically: the local mirror changes immediately, the server is asked
// to confirm, and on any failure the move is reverted exactly. The task thus
// always ends either in the new status confirmed by the server, or back in
// its previous status with nothing else changed.
package boardstate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tablerohq/tablero/pkg/models"
)

// API is the server surface the board needs. *client.Client implements it.
type API interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	ListResponsibles(ctx context.Context) ([]models.Responsible, error)
	SetTaskStatus(ctx context.Context, id models.TaskID, status models.Status) (*models.Task, error)
}

// Column is one board column: a status and the tasks currently shown in it.
type Column struct {
	Status models.Status
	Tasks  []models.Task
}

// Board is the in-memory mirror of the server's board.
//
// All methods are safe for concurrent use. Moves on distinct tasks may be in
// flight simultaneously; concurrent moves on the same task are not
// serialized and resolve last-response-wins.
type Board struct {
	api API

	mu           sync.Mutex
	tasks        []models.Task
	responsibles []models.Responsible

	search   string
	assignee *models.ResponsibleID
}

// New returns an empty board backed by the given API.
func New(api API) *Board {
	return &Board{api: api}
}

// Refresh reloads tasks and responsibles from the server, replacing the
// mirror wholesale.
func (b *Board) Refresh(ctx context.Context) error {
	tasks, err := b.api.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("refresh tasks: %w", err)
	}
	responsibles, err := b.api.ListResponsibles(ctx)
	if err != nil {
		return fmt.Errorf("refresh responsibles: %w", err)
	}

	b.mu.Lock()
	b.tasks = tasks
	b.responsibles = responsibles
	b.mu.Unlock()
	return nil
}

// SetSearch sets the title filter applied by Columns. Matching is a
// case-insensitive substring test; empty clears the filter.
func (b *Board) SetSearch(text string) {
	b.mu.Lock()
	b.search = text
	b.mu.Unlock()
}

// SetAssigneeFilter restricts Columns to tasks assigned to the given
// responsible. Nil clears the filter.
func (b *Board) SetAssigneeFilter(id *models.ResponsibleID) {
	b.mu.Lock()
	if id == nil {
		b.assignee = nil
	} else {
		v := *id
		b.assignee = &v
	}
	b.mu.Unlock()
}

// Tasks returns a snapshot of the unfiltered mirror.
func (b *Board) Tasks() []models.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Task, len(b.tasks))
	copy(out, b.tasks)
	return out
}

// Responsibles returns a snapshot of the known responsibles.
func (b *Board) Responsibles() []models.Responsible {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Responsible, len(b.responsibles))
	copy(out, b.responsibles)
	return out
}

// Task returns the mirrored task with the given id, if present.
func (b *Board) Task(id models.TaskID) (models.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.find(id); i >= 0 {
		return b.tasks[i], true
	}
	return models.Task{}, false
}

// Columns groups the mirrored tasks by status in the fixed column order,
// applying the current search and assignee filters. It is a pure projection:
// it never mutates the mirror and is recomputed on every call, so it is
// always consistent with the latest mirror state.
func (b *Board) Columns() []Column {
	b.mu.Lock()
	defer b.mu.Unlock()

	needle := strings.ToLower(b.search)
	columns := make([]Column, 0, 5)
	for _, status := range models.Statuses() {
		col := Column{Status: status, Tasks: []models.Task{}}
		for _, t := range b.tasks {
			if t.Status != status {
				continue
			}
			if needle != "" && !strings.Contains(strings.ToLower(t.Title), needle) {
				continue
			}
			if b.assignee != nil && (t.AssigneeID == nil || *t.AssigneeID != *b.assignee) {
				continue
			}
			col.Tasks = append(col.Tasks, t)
		}
		columns = append(columns, col)
	}
	return columns
}

// Move applies a drag-initiated status change for the task with the given
// id:
//
//  1. The local mirror is updated immediately (optimistic apply).
//  2. The server is asked to confirm the change.
//  3. On success the local task is replaced with the server's authoritative
//     entity (covering updatedAt and any other server-computed fields).
//  4. On any failure the local status is reverted to its previous value and
//     the error is returned; nothing else about the task is touched.
//
// Moving a task to the status it already holds is a no-op and performs no
// network call. An id that is not in the mirror (a drop outside any valid
// target) mutates nothing and performs no call either.
//
// Move blocks until the server resolves; run it in a goroutine per drag to
// keep the UI responsive. Moves on distinct tasks are independent.
func (b *Board) Move(ctx context.Context, id models.TaskID, to models.Status) error {
	b.mu.Lock()
	i := b.find(id)
	if i < 0 {
		b.mu.Unlock()
		return nil
	}
	from := b.tasks[i].Status
	if from == to {
		b.mu.Unlock()
		return nil
	}
	b.tasks[i].Status = to
	b.mu.Unlock()

	confirmed, err := b.api.SetTaskStatus(ctx, id, to)

	b.mu.Lock()
	defer b.mu.Unlock()
	i = b.find(id)
	if i < 0 {
		// The task disappeared from the mirror while the call was in
		// flight (e.g. a Refresh after a server-side delete).
		return err
	}
	if err != nil {
		// Compensate with the exact inverse of the optimistic apply.
		if b.tasks[i].Status == to {
			b.tasks[i].Status = from
		}
		return err
	}
	b.tasks[i] = *confirmed
	return nil
}

// Upsert merges a task into the mirror, replacing an existing entry with the
// same id or appending. UIs call it with entities returned by create/update
// calls so the mirror tracks server state without a full refresh.
func (b *Board) Upsert(task models.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.find(task.ID); i >= 0 {
		b.tasks[i] = task
		return
	}
	b.tasks = append(b.tasks, task)
}

// Remove drops a task from the mirror after a confirmed server-side delete.
func (b *Board) Remove(id models.TaskID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.find(id); i >= 0 {
		b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
	}
}

// find returns the index of the task with the given id, or -1. Callers must
// hold b.mu.
func (b *Board) find(id models.TaskID) int {
	for i := range b.tasks {
		if b.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
