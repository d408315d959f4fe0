package repository

import "errors"

var (
	// ErrNotFound signals an unknown (groupID, id) pair.
	ErrNotFound = errors.New("record not found")

	// ErrConflict signals a failed compare-and-swap: the stored status no
	// longer matches the expected prior value.
	ErrConflict = errors.New("status conflict")
)
