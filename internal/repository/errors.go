// Package repository defines the data access layer and the error values
// shared by it.  Handlers and services distinguish failure scenarios by
// these sentinels instead of driver specific errors.
package repository

import "github.com/cockroachdb/errors"

// ErrNotFound is returned when a row addressed by id does not exist.
// Handlers should translate this into a "not found" message.
var ErrNotFound = errors.New("not found")
