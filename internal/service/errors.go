package service

import (
	"fmt"

	"backend/internal/model"
)

// ValidationError rejects malformed create input before any write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError signals an unknown (groupID, id) pair.
type NotFoundError struct {
	GroupID string
	ID      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("approval request %s not found in group %s", e.ID, e.GroupID)
}

// AlreadyResolvedError is the CAS conflict on resolve: the request reached a
// terminal status before this call. Callers must treat it as a no-op
// failure and refresh, never retry to overwrite.
type AlreadyResolvedError struct {
	ID     string
	Status model.ApprovalStatus
}

func (e *AlreadyResolvedError) Error() string {
	return fmt.Sprintf("approval request %s is already %s", e.ID, e.Status)
}

// InvalidTransitionError rejects any action outside the legal state machine
// (pending -> approved, pending -> rejected).
type InvalidTransitionError struct {
	Action string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid resolution action %q", e.Action)
}

// StorageError wraps an I/O failure in the underlying store. It is surfaced
// to the caller as-is; retry policy belongs to the caller.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
