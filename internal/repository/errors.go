// Package repository implements data access over database/sql.  The
// sentinel values defined here let handlers distinguish failure
// scenarios: ErrNotFound covers both absent rows and rows owned by a
// different trainer when the query is ownership-scoped, ErrForbidden
// marks an explicit cross-tenant access attempt, and ConflictError
// carries enough context about a scheduling clash for a human to
// resolve it.
package repository

import (
    "errors"
    "fmt"
    "time"
)

// ErrNotFound is returned when a requested row does not exist or is
// not visible to the calling trainer.  Handlers translate this into an
// HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned on registration with an already used
// email address.
var ErrEmailExists = errors.New("email already exists")

// ConflictError reports a scheduling overlap with an existing session.
// Handlers translate it into HTTP 409 with the clashing session's
// title and start time in the message.
type ConflictError struct {
    SessionID uint64
    Title     string
    StartsAt  time.Time
}

func (e *ConflictError) Error() string {
    return fmt.Sprintf("scheduling conflict with session %q at %s", e.Title, e.StartsAt.Format(time.RFC3339))
}
