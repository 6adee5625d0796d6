// Package repository defines error types that are reused across multiple
// repositories and the casting engine. These sentinel values allow higher
// layers such as handlers to distinguish between different failure
// scenarios. Callers wrap them with fmt.Errorf("%w: ...") to add a
// user-facing message and test them with errors.Is.
package repository

import (
	"errors"

	"github.com/iliyamo/theatre-production/internal/database"
)

// ErrValidation marks malformed or missing input. The wrapped message is
// safe to show to the user.
var ErrValidation = errors.New("validation failed")

// ErrDuplicate is returned when a uniqueness invariant would be violated,
// for example a second role with the same name for one owner. It is the
// same value the data access layer produces for unique-constraint
// violations.
var ErrDuplicate = database.ErrDuplicate

// ErrForbidden is returned when the caller references a resource owned by
// someone else. Handlers must not reveal whether the id exists.
var ErrForbidden = errors.New("forbidden")

// ErrNotFound is returned when a referenced id does not exist.
var ErrNotFound = errors.New("not found")

// ErrUnavailable signals a transient store failure that survived the
// bounded retries. Handlers translate it into HTTP 503.
var ErrUnavailable = database.ErrUnavailable
