package database

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist
	ErrNotFound = errors.New("entity not found")

	// ErrStageConflict is returned when a stage transition precondition no
	// longer holds (the PENDING from-row is absent or the labour already
	// moved past the from-stage). Callers surface this as a 409.
	ErrStageConflict = errors.New("stage transition conflict")
)
