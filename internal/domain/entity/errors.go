package entity

import "errors"

// Workflow failure taxonomy. Callers wrap these with identifying context
// (fmt.Errorf("course %d: %w", id, entity.ErrNotFound)) and the HTTP layer
// unwraps them with errors.Is to pick a status code. All four prevent any
// state mutation; notification failures are deliberately not part of this
// set and never fail a transition.
var (
	// ErrNotFound is returned when a referenced id does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned for structurally wrong input,
	// e.g. proposing a makeup course for a non-teacher user.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState is returned when an entity is not in the status
	// the requested transition requires.
	ErrInvalidState = errors.New("invalid state for this action")

	// ErrPermissionMismatch is returned when the acting teacher is not
	// the teacher assigned to the entity.
	ErrPermissionMismatch = errors.New("actor does not match assigned teacher")

	// ErrConflict is returned when a unique constraint would be violated,
	// e.g. inviting an already registered email.
	ErrConflict = errors.New("already exists")
)
