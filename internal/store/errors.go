package store

import (
	apperr "github.com/bluestormapp/bluestorm-server/internal/errors"
)

// Sentinel errors returned by store operations. They are the shared
// coded errors so callers match them with errors.Is across package
// boundaries.
var (
	ErrNotFound      = apperr.ErrNotFound
	ErrAlreadyExists = apperr.ErrAlreadyExists
)

// storageErr wraps a failed database operation as a storage error.
// Store failures always surface to the caller; silent data loss in a
// sync-critical path is unacceptable.
func storageErr(op string, err error) error {
	return apperr.Storage("store "+op+" failed", err)
}
