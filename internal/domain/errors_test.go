package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Err() != nil {
		t.Fatal("Expected nil error when nothing was collected")
	}

	errs.Add("name", "required")
	errs.Add("color", "invalid")
	err := errs.Err()

	if !errors.Is(err, ErrInvalidInput) {
		t.Error("Expected ValidationErrors to match ErrInvalidInput")
	}
	if !errs.Has("color") || errs.Has("type") {
		t.Error("Has() reported the wrong fields")
	}
	if err.Error() != "validation failed: name: required; color: invalid" {
		t.Errorf("Unexpected message %q", err.Error())
	}

	wrapped := fmt.Errorf("create: %w", err)
	var got ValidationErrors
	if !errors.As(wrapped, &got) || len(got) != 2 {
		t.Error("Expected ValidationErrors to survive wrapping")
	}
}

func TestDependentTransactionsError(t *testing.T) {
	err := error(&DependentTransactionsError{CategoryID: 7, Count: 3})

	if !errors.Is(err, ErrCategoryHasEntries) || !errors.Is(err, ErrConflict) {
		t.Error("Expected error to match ErrCategoryHasEntries and ErrConflict")
	}
	if err.Error() != "category 7 has 3 transaction(s)" {
		t.Errorf("Unexpected message %q", err.Error())
	}
}

func TestSentinelHierarchy(t *testing.T) {
	tests := []struct {
		err    error
		target error
	}{
		{ErrCategoryNotFound, ErrNotFound},
		{ErrTransactionNotFound, ErrNotFound},
		{ErrUserNotFound, ErrNotFound},
		{ErrCategoryNameTaken, ErrConflict},
		{ErrCategoryTypeLocked, ErrConflict},
	}

	for _, tt := range tests {
		if !errors.Is(tt.err, tt.target) {
			t.Errorf("Expected %v to match %v", tt.err, tt.target)
		}
	}
}

func TestStorageErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &StorageError{Op: "list categories", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("Expected StorageError to unwrap to its cause")
	}
	if err.Error() != "list categories: connection refused" {
		t.Errorf("Unexpected message %q", err.Error())
	}
}
