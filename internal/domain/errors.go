package domain

import (
	"errors"
	"fmt"
)

// ValidationError indicates malformed or semantically invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// NotFoundError indicates a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// NewNotFoundError creates a NotFoundError for the given entity and identifier.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError indicates the requested window overlaps an existing booking,
// or a concurrent write won the race. BlockingBookingID is empty when the
// conflict was detected at the storage layer without a candidate row.
type ConflictError struct {
	Message           string
	BlockingBookingID string
}

func (e *ConflictError) Error() string { return e.Message }

// NewConflictError creates a ConflictError with the given message.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// NewBookingConflictError creates a ConflictError naming the blocking booking.
func NewBookingConflictError(message, blockingBookingID string) *ConflictError {
	return &ConflictError{Message: message, BlockingBookingID: blockingBookingID}
}

// InvalidStateError indicates a lifecycle transition was requested from a
// state that does not permit it.
type InvalidStateError struct {
	From string
	To   string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state transition: %s -> %s", e.From, e.To)
}

// NewInvalidStateError creates an InvalidStateError for the attempted transition.
func NewInvalidStateError(from, to string) *InvalidStateError {
	return &InvalidStateError{From: from, To: to}
}

// ForbiddenError indicates the caller is not allowed to perform the operation.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// NewForbiddenError creates a ForbiddenError with the given message.
func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

// TransientStoreError indicates a persistence timeout or connection failure.
// The whole operation is safe to retry from the caller.
type TransientStoreError struct {
	Op  string
	Err error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("transient store failure during %s: %v", e.Op, e.Err)
}

func (e *TransientStoreError) Unwrap() error { return e.Err }

// NewTransientStoreError wraps a driver error as a retryable store failure.
func NewTransientStoreError(op string, err error) *TransientStoreError {
	return &TransientStoreError{Op: op, Err: err}
}

// NotificationError indicates a confirmation dispatch failure. It is always
// logged and swallowed by the caller, never surfaced.
type NotificationError struct {
	Err error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification dispatch failed: %v", e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

// NewNotificationError wraps a dispatch failure.
func NewNotificationError(err error) *NotificationError {
	return &NotificationError{Err: err}
}

// IsRetryable reports whether the error is a TransientStoreError anywhere in
// its chain.
func IsRetryable(err error) bool {
	var tse *TransientStoreError
	return errors.As(err, &tse)
}
