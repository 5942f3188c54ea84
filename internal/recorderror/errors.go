// Package recorderror defines the error types shared by the import,
// categorization and persistence layers.
package recorderror

import "fmt"

// ValidationError represents a malformed or incomplete input record.
// Records failing validation are skipped and counted, never fatal.
type ValidationError struct {
	Row    int
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("row %d: invalid %s='%s': %s", e.Row, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// ReferenceError represents an operation naming a subcategory or rule
// target that does not exist. The enclosing operation is aborted with no
// partial mutation.
type ReferenceError struct {
	Entity string
	ID     int64
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("no %s found with ID %d", e.Entity, e.ID)
}

// PersistenceError represents a rejected commit. Everything attempted in
// the failed unit of work has been rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: changes rolled back: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// DuplicateError represents an identity hash already seen in the current
// import batch. The duplicate row is skipped, not treated as fatal.
type DuplicateError struct {
	ID string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate transaction %.8s...", e.ID)
}
