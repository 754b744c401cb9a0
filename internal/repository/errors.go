// Package repository provides raw-SQL data access to the yard database.
// Sentinel errors defined here let handlers distinguish failure scenarios
// without string comparison: ErrNotFound maps to HTTP 404, ErrConflict to
// 409 (e.g. a placement row colliding on its slot's unique key).
package repository

import "errors"

// ErrNotFound is returned when an operation references a row that does not
// exist, such as an unknown work order or container entry.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert or update collides with existing
// state, such as a second placement targeting an occupied slot.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned by user creation when the email is taken.
var ErrEmailExists = errors.New("email already exists")
