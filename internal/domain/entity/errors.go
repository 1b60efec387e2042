package entity

import (
	"fmt"
	"strings"
)

// ValidationError aggregates every rule violation for one form submission.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// NotFoundError reports a record that was expected to exist, locally or
// remotely, but does not.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("flight %s not found", e.ID)
}

// DuplicateError reports a single-insert fast path colliding with an
// existing remote id. Recoverable by falling back to a full reconcile.
type DuplicateError struct {
	ID string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("flight %s already exists remotely", e.ID)
}

// FormatError reports a malformed owner identifier. It points at an
// identity-provider defect, not a user mistake.
type FormatError struct {
	Field string
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed %s: %q", e.Field, e.Value)
}

// StorageError reports a durable local write failure. The in-memory
// collection may already hold the mutation when this surfaces.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("local storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ConnectivityError wraps a transport failure talking to the remote
// datastore. Never fatal to the session.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("remote %s failed: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// ConfirmationRequiredError guards destructive operations that need an
// explicit user confirmation before taking effect.
type ConfirmationRequiredError struct {
	Action string
}

func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("%s requires explicit confirmation", e.Action)
}
