package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// TaskID is a typed ID for tasks
type TaskID struct {
	uuid uuid.UUID
}

func NewTaskID() TaskID {
	return TaskID{uuid: uuid.New()}
}

func ParseTaskID(s string) (TaskID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return TaskID{}, fmt.Errorf("invalid task ID: %w", err)
	}
	return TaskID{uuid: id}, nil
}

func (t TaskID) UUID() uuid.UUID { return t.uuid }
func (t TaskID) String() string  { return t.uuid.String() }
func (t TaskID) IsZero() bool    { return t.uuid == uuid.Nil }

func (t TaskID) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.uuid.String())
}

func (t *TaskID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	t.uuid = id
	return nil
}

func (t TaskID) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.uuid.String(), nil
}

func (t *TaskID) Scan(value any) error {
	return scanUUID(value, &t.uuid)
}

// ResponsibleID is a typed ID for responsible persons
type ResponsibleID struct {
	uuid uuid.UUID
}

func NewResponsibleID() ResponsibleID {
	return ResponsibleID{uuid: uuid.New()}
}

func ParseResponsibleID(s string) (ResponsibleID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return ResponsibleID{}, fmt.Errorf("invalid responsible ID: %w", err)
	}
	return ResponsibleID{uuid: id}, nil
}

func (r ResponsibleID) UUID() uuid.UUID { return r.uuid }
func (r ResponsibleID) String() string  { return r.uuid.String() }
func (r ResponsibleID) IsZero() bool    { return r.uuid == uuid.Nil }

func (r ResponsibleID) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.uuid.String())
}

func (r *ResponsibleID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	r.uuid = id
	return nil
}

func (r ResponsibleID) Value() (driver.Value, error) {
	if r.IsZero() {
		return nil, nil
	}
	return r.uuid.String(), nil
}

func (r *ResponsibleID) Scan(value any) error {
	return scanUUID(value, &r.uuid)
}

// scanUUID is a helper for implementing sql.Scanner on typed IDs.
func scanUUID(value any, target *uuid.UUID) error {
	if value == nil {
		*target = uuid.Nil
		return nil
	}
	switch v := value.(type) {
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return err
		}
		*target = id
	case []byte:
		id, err := uuid.Parse(string(v))
		if err != nil {
			return err
		}
		*target = id
	default:
		return fmt.Errorf("cannot scan %T into uuid", value)
	}
	return nil
}
