package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist (or is not visible to the acting user).
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. empty plate, malformed identifier).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a write would break a uniqueness rule,
// most importantly starting a second active session on the same vehicle.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrInvalidState is returned when an operation is not allowed in the
// resource's current state, e.g. stopping a session that is already settled.
// Handlers should map this to HTTP 409 with a distinct error code.
var ErrInvalidState = errors.New("invalid state")
