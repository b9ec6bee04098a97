// Package repository implements entity CRUD over the shared board document.
//
// Every mutating operation is one atomic load→mutate→save cycle: the whole
// document is read from the store, transformed in memory, and written back
// in full. A single repository-wide mutex serializes these cycles, which
// eliminates lost updates between concurrent requests in one process.
// Cross-process writers racing on the same backing file remain
// last-write-wins and out of scope.
//
// Validation (missing fields, invalid status) and existence checks run
// before the mutation, so a rejected call leaves the document untouched and
// emits nothing. After a successful save the operation hands an event to the
// notification sink, which never blocks and never fails the operation.
package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tablerohq/tablero/pkg/models"
	"github.com/tablerohq/tablero/pkg/notify"
	"github.com/tablerohq/tablero/pkg/store"
)

// Event types emitted after successful mutations.
const (
	EventTaskCreated        = "TASK_CREATED"
	EventTaskUpdated        = "TASK_UPDATED"
	EventTaskStatusChanged  = "TASK_STATUS_CHANGED"
	EventTaskDeleted        = "TASK_DELETED"
	EventResponsibleCreated = "RESPONSIBLE_CREATED"
	EventResponsibleUpdated = "RESPONSIBLE_UPDATED"
	EventResponsibleDeleted = "RESPONSIBLE_DELETED"
)

// Repository exposes task and responsible operations over a document store.
type Repository struct {
	mu    sync.Mutex
	store store.Store
	sink  notify.Notifier

	// Injection points for deterministic tests.
	now              func() time.Time
	newTaskID        func() models.TaskID
	newResponsibleID func() models.ResponsibleID
}

// New returns a repository over the given store, emitting events into sink.
// Pass notify.Nop{} when no sink is wanted.
func New(st store.Store, sink notify.Notifier) *Repository {
	return &Repository{
		store:            st,
		sink:             sink,
		now:              func() time.Time { return time.Now().UTC() },
		newTaskID:        models.NewTaskID,
		newResponsibleID: models.NewResponsibleID,
	}
}

// CreateTaskInput carries the caller-supplied fields for a new task.
type CreateTaskInput struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      models.Status         `json:"status"`
	AssigneeID  *models.ResponsibleID `json:"assigneeId"`
}

// CreateResponsibleInput carries the caller-supplied fields for a new
// responsible person.
type CreateResponsibleInput struct {
	Name  string  `json:"name"`
	Email *string `json:"email"`
}

// StatusChange is the payload of a TASK_STATUS_CHANGED event.
type StatusChange struct {
	ID     models.TaskID `json:"id"`
	Status models.Status `json:"status"`
}

// deletedRef is the payload of *_DELETED events.
type deletedRef struct {
	ID string `json:"id"`
}

// ListTasks returns all tasks in creation order.
func (r *Repository) ListTasks(ctx context.Context) ([]models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Tasks, nil
}

// GetTask returns the task with the given id.
func (r *Repository) GetTask(ctx context.Context, id models.TaskID) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	i := doc.FindTask(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: task %s", ErrNotFound, id)
	}
	task := doc.Tasks[i]
	return &task, nil
}

// CreateTask validates the input, appends a new task to the document, and
// persists it. A missing or invalid status silently falls back to the
// default initial status; only an empty title is an error.
func (r *Repository) CreateTask(ctx context.Context, in CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title", ErrMissingField)
	}
	status := in.Status
	if !status.Valid() {
		status = models.DefaultStatus
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	doc, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	now := r.now()
	task := models.Task{
		ID:          r.newTaskID(),
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		AssigneeID:  in.AssigneeID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	doc.Tasks = append(doc.Tasks, task)
	if err := r.store.Save(ctx, doc); err != nil {
		return nil, err
	}
	r.sink.Notify(notify.NewEvent(EventTaskCreated, task))
	return &task, nil
}

// UpdateTask merges the provided fields into the task. Absent fields are
// left untouched; a provided status outside the fixed set is rejected before
// anything is written.
func (r *Repository) UpdateTask(ctx context.Context, id models.TaskID, patch models.TaskPatch) (*models.Task, error) {
	if s, ok := patch.Status.Get(); ok && !s.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	doc, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	i := doc.FindTask(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: task %s", ErrNotFound, id)
	}
	updated := patch.Apply(doc.Tasks[i], r.now())
	doc.Tasks[i] = updated
	if err := r.store.Save(ctx, doc); err != nil {
		return nil, err
	}
	r.sink.Notify(notify.NewEvent(EventTaskUpdated, updated))
	return &updated, nil
}

// SetTaskStatus overwrites the task's status unconditionally. There is no
// transition graph: any member of the fixed set may follow any other.
func (r *Repository) SetTaskStatus(ctx context.Context, id models.TaskID, status models.Status) (*models.Task, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	doc, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	i := doc.FindTask(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: task %s", ErrNotFound, id)
	}
	doc.Tasks[i].Status = status
	doc.Tasks[i].UpdatedAt = r.now()
	if err := r.store.Save(ctx, doc); err != nil {
		return nil, err
	}
	task := doc.Tasks[i]
	r.sink.Notify(notify.NewEvent(EventTaskStatusChanged, StatusChange{ID: id, Status: status}))
	return &task, nil
}

// DeleteTask removes the task from the document. Tasks assigned to a
// responsible are deleted like any other; nothing references a task.
func (r *Repository) DeleteTask(ctx context.Context, id models.TaskID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, err := r.store.Load(ctx)
	if err != nil {
		return err
	}
	i := doc.FindTask(id)
	if i < 0 {
		return fmt.Errorf("%w: task %s", ErrNotFound, id)
	}
	doc.Tasks = append(doc.Tasks[:i], doc.Tasks[i+1:]...)
	if err := r.store.Save(ctx, doc); err != nil {
		return err
	}
	r.sink.Notify(notify.NewEvent(EventTaskDeleted, deletedRef{ID: id.String()}))
	return nil
}

// ListResponsibles returns all responsible persons in creation order.
func (r *Repository) ListResponsibles(ctx context.Context) ([]models.Responsible, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Responsibles, nil
}

// GetResponsible returns the responsible with the given id.
func (r *Repository) GetResponsible(ctx context.Context, id models.ResponsibleID) (*models.Responsible, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	i := doc.FindResponsible(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: responsible %s", ErrNotFound, id)
	}
	resp := doc.Responsibles[i]
	return &resp, nil
}

// CreateResponsible validates the input, appends a new responsible, and
// persists the document.
func (r *Repository) CreateResponsible(ctx context.Context, in CreateResponsibleInput) (*models.Responsible, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name", ErrMissingField)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	doc, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	now := r.now()
	resp := models.Responsible{
		ID:        r.newResponsibleID(),
		Name:      in.Name,
		Email:     in.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	doc.Responsibles = append(doc.Responsibles, resp)
	if err := r.store.Save(ctx, doc); err != nil {
		return nil, err
	}
	r.sink.Notify(notify.NewEvent(EventResponsibleCreated, resp))
	return &resp, nil
}

// UpdateResponsible merges the provided fields into the responsible.
func (r *Repository) UpdateResponsible(ctx context.Context, id models.ResponsibleID, patch models.ResponsiblePatch) (*models.Responsible, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	i := doc.FindResponsible(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: responsible %s", ErrNotFound, id)
	}
	updated := patch.Apply(doc.Responsibles[i], r.now())
	doc.Responsibles[i] = updated
	if err := r.store.Save(ctx, doc); err != nil {
		return nil, err
	}
	r.sink.Notify(notify.NewEvent(EventResponsibleUpdated, updated))
	return &updated, nil
}

// DeleteResponsible removes the responsible from the document. Tasks that
// referenced it keep their now-dangling assigneeId; the board tolerates
// dangling references everywhere rather than cascading.
func (r *Repository) DeleteResponsible(ctx context.Context, id models.ResponsibleID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, err := r.store.Load(ctx)
	if err != nil {
		return err
	}
	i := doc.FindResponsible(id)
	if i < 0 {
		return fmt.Errorf("%w: responsible %s", ErrNotFound, id)
	}
	doc.Responsibles = append(doc.Responsibles[:i], doc.Responsibles[i+1:]...)
	if err := r.store.Save(ctx, doc); err != nil {
		return err
	}
	r.sink.Notify(notify.NewEvent(EventResponsibleDeleted, deletedRef{ID: id.String()}))
	return nil
}
