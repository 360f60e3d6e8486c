package litedao

import (
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/litedao/schema"
)

// Standard sentinel errors.
var (
	// ErrNotInitialized is the cause recorded on an access object whose
	// table or statements could not be created.
	ErrNotInitialized = errors.New("litedao: access object not initialized")

	// ErrClosed is returned when using a closed Database.
	ErrClosed = errors.New("litedao: database closed")
)

// OpenError is returned when the database cannot be opened.
type OpenError struct {
	URL        string
	AllowWrite bool
	Err        error // Underlying engine error
}

// Error returns the error string.
func (e *OpenError) Error() string {
	mode := "read-only"
	if e.AllowWrite {
		mode = "read-write"
	}
	return fmt.Sprintf("litedao: open %q (%s): %v", e.URL, mode, e.Err)
}

// Unwrap returns the underlying error.
func (e *OpenError) Unwrap() error {
	return e.Err
}

// IsOpenError returns true if the error is an OpenError.
func IsOpenError(err error) bool {
	if err == nil {
		return false
	}
	var e *OpenError
	return errors.As(err, &e)
}

// InitError records why the access object of a table is not initialized.
type InitError struct {
	Table string
	Op    string // Step that failed, e.g. "create table"
	Err   error
}

// Error returns the error string.
func (e *InitError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("litedao: %s: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("litedao: %s: %s: %v", e.Table, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *InitError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches InitError.
// This allows errors.Is(initErr, ErrNotInitialized) to return true.
func (e *InitError) Is(err error) bool {
	return err == ErrNotInitialized
}

// IsNotInitialized returns true if the error reports an access object that
// is not initialized.
func IsNotInitialized(err error) bool {
	return err != nil && errors.Is(err, ErrNotInitialized)
}

// IsValidationError returns true if the error rejects a record type
// description.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *schema.ValidationError
	return errors.As(err, &e)
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "litedao: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("litedao: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}
