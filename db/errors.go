package db

import "errors"

var (
	// ErrConstraintUnique is returned when an insert or update violates a
	// UNIQUE constraint (duplicate email, duplicate queued job).
	ErrConstraintUnique = errors.New("unique constraint violation")

	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrProofNotFound is returned when a proof consumption matched zero
	// rows: the value was wrong, already consumed, or past its expiry.
	// Callers cannot tell which.
	ErrProofNotFound = errors.New("proof invalid or expired")

	// ErrMissingFields is returned when a record lacks required fields.
	ErrMissingFields = errors.New("missing required fields")
)
