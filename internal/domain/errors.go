package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("resource conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")

	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrCategoryNotFound    = fmt.Errorf("category %w", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)

	ErrCategoryNameTaken   = fmt.Errorf("category name already exists: %w", ErrConflict)
	ErrCategoryTypeLocked  = fmt.Errorf("category type cannot change while transactions exist: %w", ErrConflict)
	ErrCategoryHasEntries  = fmt.Errorf("category has transactions: %w", ErrConflict)
	ErrExportNotConfigured = errors.New("report export is not configured")
)

// FieldError is a single user-correctable problem with one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every field failure of a request so callers can
// report them together.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Is lets errors.Is(err, ErrInvalidInput) match any ValidationErrors.
func (v ValidationErrors) Is(target error) bool {
	return target == ErrInvalidInput
}

// Add appends a field failure.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

// Has reports whether a failure was recorded for field.
func (v ValidationErrors) Has(field string) bool {
	for _, fe := range v {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Err returns nil when nothing was collected.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// DependentTransactionsError is returned when a category delete is refused.
type DependentTransactionsError struct {
	CategoryID int32
	Count      int64
}

func (e *DependentTransactionsError) Error() string {
	return fmt.Sprintf("category %d has %d transaction(s)", e.CategoryID, e.Count)
}

func (e *DependentTransactionsError) Unwrap() error {
	return ErrCategoryHasEntries
}

// StorageError wraps a persistence failure. Its detail is for logs only.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
