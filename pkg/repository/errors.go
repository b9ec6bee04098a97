package repository

import "errors"

// Validation and lookup errors are detected before any mutation happens, so
// a caller seeing one of these knows the document was not touched. Handlers
// match them with errors.Is to pick HTTP status codes.
var (
	// ErrNotFound marks a referenced id that does not exist in the document.
	ErrNotFound = errors.New("not found")

	// ErrInvalidStatus marks a status value outside the fixed status set.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrMissingField marks a required input that is absent or empty.
	ErrMissingField = errors.New("missing required field")
)
