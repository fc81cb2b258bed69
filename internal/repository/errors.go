package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicateKey indicates a uniqueness violation on the normalized
	// username or email.
	ErrDuplicateKey = errors.New("repository: duplicate key")
)
