package common

import "errors"

// ErrInvalidArgument marks a caller mistake, mapped to a 400 at the API
// boundary.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrNotFound marks a resource that does not exist for the requesting
// user. Inaccessible resources return the same error so existence never
// leaks across tenants.
var ErrNotFound = errors.New("not found")
