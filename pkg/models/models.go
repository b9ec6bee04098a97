// Package models defines the entities persisted on the task board: tasks,
// responsible persons, and the single Document aggregate that holds both.
//
// The Document is the unit of persistence. Every mutation anywhere in the
// system is realized by loading the whole Document, transforming it in
// memory, and writing the whole Document back. Entities therefore carry no
// database-specific state; they are plain JSON-tagged structs whose wire
// field names match the persisted layout (camelCase, as in db.json).
package models

import "time"

// Task is a single card on the board.
type Task struct {
	ID          TaskID         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      Status         `json:"status"`
	AssigneeID  *ResponsibleID `json:"assigneeId"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Responsible is a person who may be assigned to tasks. Tasks reference a
// Responsible by id only; deleting a Responsible leaves dangling assigneeId
// references in place, which every consumer tolerates.
type Responsible struct {
	ID        ResponsibleID `json:"id"`
	Name      string        `json:"name"`
	Email     *string       `json:"email"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Document is the persisted aggregate. Both sequences keep insertion order,
// which is the only ordering the system guarantees.
type Document struct {
	Tasks        []Task        `json:"tasks"`
	Responsibles []Responsible `json:"responsibles"`
}

// NewDocument returns an empty document with non-nil sequences so it
// serializes as {"tasks":[],"responsibles":[]} rather than nulls.
func NewDocument() *Document {
	return &Document{
		Tasks:        []Task{},
		Responsibles: []Responsible{},
	}
}

// Clone returns a deep copy of the document. Stores that keep the document
// in memory hand out clones so callers can never mutate shared state.
func (d *Document) Clone() *Document {
	out := &Document{
		Tasks:        make([]Task, len(d.Tasks)),
		Responsibles: make([]Responsible, len(d.Responsibles)),
	}
	for i, t := range d.Tasks {
		if t.AssigneeID != nil {
			id := *t.AssigneeID
			t.AssigneeID = &id
		}
		out.Tasks[i] = t
	}
	for i, r := range d.Responsibles {
		if r.Email != nil {
			email := *r.Email
			r.Email = &email
		}
		out.Responsibles[i] = r
	}
	return out
}

// FindTask returns the index of the task with the given id, or -1.
func (d *Document) FindTask(id TaskID) int {
	for i := range d.Tasks {
		if d.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// FindResponsible returns the index of the responsible with the given id, or -1.
func (d *Document) FindResponsible(id ResponsibleID) int {
	for i := range d.Responsibles {
		if d.Responsibles[i].ID == id {
			return i
		}
	}
	return -1
}
