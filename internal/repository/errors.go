package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist or is not
	// owned by the caller. The two cases are indistinguishable on purpose.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates a uniqueness constraint was violated.
	ErrDuplicate = errors.New("repository: duplicate")
)
