package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Optional wraps a patch field so that "absent", "null", and "present with a
// value" are three distinguishable states after JSON decoding. encoding/json
// only calls UnmarshalJSON for keys that appear in the payload, so Set is
// true exactly when the caller mentioned the field.
type Optional[T any] struct {
	value T
	set   bool
	null  bool
}

// Some returns an Optional carrying a value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Null returns an Optional that is present but explicitly null.
func Null[T any]() Optional[T] {
	return Optional[T]{set: true, null: true}
}

// IsSet reports whether the field appeared in the payload at all.
func (o Optional[T]) IsSet() bool { return o.set }

// IsNull reports whether the field appeared and was JSON null.
func (o Optional[T]) IsNull() bool { return o.set && o.null }

// Get returns the value and whether a non-null value is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set && !o.null
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if bytes.Equal(data, []byte("null")) {
		o.null = true
		return nil
	}
	return json.Unmarshal(data, &o.value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set || o.null {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// TaskPatch is a partial update to a task. Only fields present in the
// request are applied; absent fields never clobber existing values. A null
// assigneeId clears the assignment, which is the one field where null and
// absent mean different things.
type TaskPatch struct {
	Title       Optional[string]        `json:"title"`
	Description Optional[string]        `json:"description"`
	Status      Optional[Status]        `json:"status"`
	AssigneeID  Optional[ResponsibleID] `json:"assigneeId"`
}

// IsEmpty reports whether the patch mentions no fields at all.
func (p TaskPatch) IsEmpty() bool {
	return !p.Title.IsSet() && !p.Description.IsSet() && !p.Status.IsSet() && !p.AssigneeID.IsSet()
}

// MarshalJSON emits only the fields the patch actually mentions. Without
// this, unset fields would serialize as null and a round-tripped patch
// would clear values the caller never touched.
func (p TaskPatch) MarshalJSON() ([]byte, error) {
	fields := map[string]any{}
	if p.Title.IsSet() {
		fields["title"] = p.Title
	}
	if p.Description.IsSet() {
		fields["description"] = p.Description
	}
	if p.Status.IsSet() {
		fields["status"] = p.Status
	}
	if p.AssigneeID.IsSet() {
		fields["assigneeId"] = p.AssigneeID
	}
	return json.Marshal(fields)
}

// Apply merges the patch into a copy of t, refreshing UpdatedAt. It does no
// validation; the repository rejects invalid statuses before calling it.
func (p TaskPatch) Apply(t Task, now time.Time) Task {
	if v, ok := p.Title.Get(); ok {
		t.Title = v
	}
	if v, ok := p.Description.Get(); ok {
		t.Description = v
	}
	if v, ok := p.Status.Get(); ok {
		t.Status = v
	}
	if p.AssigneeID.IsNull() {
		t.AssigneeID = nil
	} else if v, ok := p.AssigneeID.Get(); ok {
		t.AssigneeID = &v
	}
	t.UpdatedAt = now
	return t
}

// ResponsiblePatch is a partial update to a responsible person.
type ResponsiblePatch struct {
	Name  Optional[string] `json:"name"`
	Email Optional[string] `json:"email"`
}

// MarshalJSON emits only the fields the patch actually mentions, mirroring
// TaskPatch.MarshalJSON.
func (p ResponsiblePatch) MarshalJSON() ([]byte, error) {
	fields := map[string]any{}
	if p.Name.IsSet() {
		fields["name"] = p.Name
	}
	if p.Email.IsSet() {
		fields["email"] = p.Email
	}
	return json.Marshal(fields)
}

// Apply merges the patch into a copy of r, refreshing UpdatedAt.
func (p ResponsiblePatch) Apply(r Responsible, now time.Time) Responsible {
	if v, ok := p.Name.Get(); ok {
		r.Name = v
	}
	if p.Email.IsNull() {
		r.Email = nil
	} else if v, ok := p.Email.Get(); ok {
		r.Email = &v
	}
	r.UpdatedAt = now
	return r
}
