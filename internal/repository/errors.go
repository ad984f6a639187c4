// Package repository provides the data-access boundary over MongoDB
// collections. Repositories expose found/not-found results through
// sentinel errors and hold no business rules; callers pass in `now`
// for every validity filter.
package repository

import "errors"

var (
	// ErrNotFound is returned when no document matches the filter.
	ErrNotFound = errors.New("document not found")

	// ErrDuplicate is returned when an insert violates a unique index.
	ErrDuplicate = errors.New("duplicate document")
)
