package repo

import "errors"

// Sentinel errors returned by the repositories. Handlers translate these to
// HTTP status codes; repos never touch the response.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
)
