package models

// Status represents the column a task sits in on the board.
//
// The wire values are the Spanish labels used by the persisted document and
// the HTTP API; renaming them would break every stored db.json.
type Status string

const (
	StatusCreated    Status = "Creado"
	StatusInProgress Status = "En progreso"
	StatusBlocked    Status = "Bloqueada"
	StatusFinished   Status = "Finalizado"
	StatusCancelled  Status = "Cancelada"
)

// DefaultStatus is assigned to a task created without an explicit status.
const DefaultStatus = StatusCreated

// statusOrder is the fixed display order of the board columns. It is the
// order GET /statuses reports and the order board columns render in.
var statusOrder = []Status{
	StatusCreated,
	StatusInProgress,
	StatusBlocked,
	StatusFinished,
	StatusCancelled,
}

// Statuses returns the fixed ordered status set. The returned slice is a
// copy; callers may reorder or filter it freely.
func Statuses() []Status {
	out := make([]Status, len(statusOrder))
	copy(out, statusOrder)
	return out
}

// Valid reports whether s is a member of the fixed status set. There is no
// transition graph: any valid status may follow any other. Finalizado and
// Cancelada are not terminal.
func (s Status) Valid() bool {
	for _, v := range statusOrder {
		if s == v {
			return true
		}
	}
	return false
}

func (s Status) String() string { return string(s) }
