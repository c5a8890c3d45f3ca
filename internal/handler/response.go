package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/dafibh/tally/tally-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`

	// Set when a category delete is refused
	TransactionCount *int64 `json:"transactionCount,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://tally.app/errors/validation"
	ErrorTypeNotFound     = "https://tally.app/errors/not-found"
	ErrorTypeUnauthorized = "https://tally.app/errors/unauthorized"
	ErrorTypeConflict     = "https://tally.app/errors/conflict"
	ErrorTypeUnavailable  = "https://tally.app/errors/unavailable"
	ErrorTypeInternal     = "https://tally.app/errors/internal"
)

func problem(c echo.Context, status int, typ, title, detail string) ProblemDetails {
	return ProblemDetails{
		Type:     typ,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	}
}

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	p := problem(c, http.StatusBadRequest, ErrorTypeValidation, "Validation Error", detail)
	p.Errors = errors
	return c.JSON(http.StatusBadRequest, p)
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, problem(c, http.StatusNotFound, ErrorTypeNotFound, "Not Found", detail))
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, problem(c, http.StatusUnauthorized, ErrorTypeUnauthorized, "Unauthorized", detail))
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, problem(c, http.StatusConflict, ErrorTypeConflict, "Conflict", detail))
}

// NewServiceUnavailableError creates a service unavailable error response
func NewServiceUnavailableError(c echo.Context, detail string) error {
	return c.JSON(http.StatusServiceUnavailable, problem(c, http.StatusServiceUnavailable, ErrorTypeUnavailable, "Service Unavailable", detail))
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, problem(c, http.StatusInternalServerError, ErrorTypeInternal, "Internal Server Error", detail))
}

// respondError maps a service error to its problem response. Unexpected
// errors are logged with op and never leak their detail to the client.
func respondError(c echo.Context, err error, op string) error {
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]ValidationError, len(verrs))
		for i, fe := range verrs {
			fields[i] = ValidationError{Field: fe.Field, Message: fe.Message}
		}
		return NewValidationError(c, "Validation failed", fields)
	}

	var dependents *domain.DependentTransactionsError
	if errors.As(err, &dependents) {
		p := problem(c, http.StatusConflict, ErrorTypeConflict, "Conflict",
			fmt.Sprintf("Cannot delete category: it has %d transaction(s)", dependents.Count))
		p.TransactionCount = &dependents.Count
		return c.JSON(http.StatusConflict, p)
	}

	switch {
	case errors.Is(err, domain.ErrCategoryNameTaken):
		return NewConflictError(c, "A category with this name already exists")
	case errors.Is(err, domain.ErrCategoryTypeLocked):
		return NewConflictError(c, "Category type cannot be changed while it has transactions")
	case errors.Is(err, domain.ErrCategoryNotFound):
		return NewNotFoundError(c, "Category not found")
	case errors.Is(err, domain.ErrTransactionNotFound):
		return NewNotFoundError(c, "Transaction not found")
	case errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(c, "Resource not found")
	case errors.Is(err, domain.ErrUnauthorized):
		return NewUnauthorizedError(c, "Authentication required")
	case errors.Is(err, domain.ErrExportNotConfigured):
		return NewServiceUnavailableError(c, "Report export is not configured")
	}

	log.Error().
		Err(err).
		Int32("user_id", middleware.GetUserID(c)).
		Str("op", op).
		Msg("Request failed")
	return NewInternalError(c, "Something went wrong, please try again")
}

// parseID reads a positive int32 path parameter
func parseID(c echo.Context, name string) (int32, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int32(id), true
}
