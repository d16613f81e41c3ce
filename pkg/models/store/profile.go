package store

import (
	"errors"
	"time"
)

// ErrSchemaMissing reports that the remote profiles relation does not exist
// yet, i.e. the backend has never been provisioned.
var ErrSchemaMissing = errors.New("profile schema missing")

// ErrProfileNotFound reports that no profile row matches the requested id.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRow is a profile record as stored in the remote backend.
type ProfileRow struct {
	ID          string
	Email       string
	DisplayName string
	Role        string
	CreatedAt   time.Time
}
