// Package persistence provides standardized error types for storage drivers.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence errors every driver returns for the same conditions,
// so callers can errors.Is without knowing the driver.
var (
	// ErrWorkflowNotFound indicates no workflow exists for the identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrExecutionNotFound indicates no execution exists for the identifier.
	ErrExecutionNotFound = errors.New("execution not found")

	// ErrPendingInputNotFound indicates no pending input exists for the
	// (execution, node) pair.
	ErrPendingInputNotFound = errors.New("pending input not found")

	// ErrPendingInputNotWaiting indicates a completion was attempted on a
	// record that already left the waiting state.
	ErrPendingInputNotWaiting = errors.New("pending input is not waiting")
)

// StoreError wraps a driver error with the operation and entity it concerns.
type StoreError struct {
	Op     string
	Entity string
	ID     string
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError builds a wrapped driver error.
func NewStoreError(op, entity, id string, err error) *StoreError {
	return &StoreError{Op: op, Entity: entity, ID: id, Err: err}
}
