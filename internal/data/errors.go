package data

import "errors"

// Sentinel errors returned by the stores. Handlers map these onto HTTP
// status codes; anything else is treated as a server failure.
var (
	// ErrNotFound means the referenced document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate means a unique constraint was violated (e.g. an email
	// that is already registered).
	ErrDuplicate = errors.New("already exists")

	// ErrNotOwner means the acting user does not own the resource it is
	// trying to mutate.
	ErrNotOwner = errors.New("not the owner")
)
