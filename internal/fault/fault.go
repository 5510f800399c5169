// Package fault defines the error taxonomy the persistence engine surfaces
// to its callers. The service layer maps these onto wire responses; nothing
// below this package ever leaks a raw driver error.
package fault

import (
	"errors"
	"fmt"
)

// NotFoundError reports an operation that referenced a key with no row.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

// Is enables errors.Is() comparison regardless of entity/key.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// ConflictError reports a uniqueness violation: create on an existing key,
// or assign of an already-assigned relationship.
type ConflictError struct {
	Entity string
	Key    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Entity, e.Key)
}

func (e *ConflictError) Is(target error) bool {
	_, ok := target.(*ConflictError)
	return ok
}

// AmbiguousError reports a key modeled as unique that matched more than one
// row. This is a data-integrity fault, distinct from NotFound and Conflict,
// and is never resolved by silently picking a row.
type AmbiguousError struct {
	Entity string
	Key    string
	Count  int
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%s %q is ambiguous: %d rows match a unique key", e.Entity, e.Key, e.Count)
}

func (e *AmbiguousError) Is(target error) bool {
	_, ok := target.(*AmbiguousError)
	return ok
}

// StoreError wraps a failure from the store during a read or write. For
// writes, RolledBack records whether the best-effort rollback was issued and
// RollbackErr its outcome, so callers can tell "write failed, rollback also
// failed" from "write failed, rollback succeeded". The primary failure is
// always Err.
type StoreError struct {
	Op          string
	Err         error
	RolledBack  bool
	RollbackErr error
}

func (e *StoreError) Error() string {
	if e.RolledBack && e.RollbackErr != nil {
		return fmt.Sprintf("store %s failed: %v (rollback also failed: %v)", e.Op, e.Err, e.RollbackErr)
	}
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool {
	_, ok := target.(*StoreError)
	return ok
}

// ConnectionError reports a failure to acquire a store handle.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to acquire store handle: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool {
	_, ok := target.(*ConnectionError)
	return ok
}

// TransactionError reports a commit or rollback failure on the handle.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

func (e *TransactionError) Is(target error) bool {
	t, ok := target.(*TransactionError)
	if !ok {
		return false
	}
	return t.Op == "" || t.Op == e.Op
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	return errors.Is(err, &NotFoundError{})
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	return errors.Is(err, &ConflictError{})
}

// IsAmbiguous reports whether err is an AmbiguousError.
func IsAmbiguous(err error) bool {
	return errors.Is(err, &AmbiguousError{})
}
