// Package repository holds the persistence layer: the reservation record
// store, the registration stores and the admin user stores.  The sentinel
// values below let handlers distinguish failure scenarios without knowing
// which backend is active.
package repository

import "errors"

// ErrNotFound is returned when a lookup by key matches nothing.  Handlers
// translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert collides with the unique email
// constraint.  Handlers translate it into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrReadOnly is returned by stores that cannot be written to, such as the
// bootstrap admin configured through the environment.
var ErrReadOnly = errors.New("store is read-only")

// ErrDuplicateNumber is returned when an insert collides with an existing
// registration number.  Callers regenerate the number and retry.
var ErrDuplicateNumber = errors.New("registration number already exists")
