package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/dafibh/tally/tally-backend/internal/middleware"
	"github.com/dafibh/tally/tally-backend/internal/service"
	"github.com/dafibh/tally/tally-backend/internal/util"
	"github.com/labstack/echo/v4"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// TransactionRequest is the body of create and update requests
type TransactionRequest struct {
	CategoryID      int32  `json:"categoryId"`
	Amount          string `json:"amount"`
	Description     string `json:"description"`
	TransactionDate string `json:"transactionDate"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID              int32  `json:"id"`
	CategoryID      int32  `json:"categoryId"`
	CategoryName    string `json:"categoryName"`
	CategoryType    string `json:"categoryType"`
	CategoryColor   string `json:"categoryColor"`
	Amount          string `json:"amount"`
	Description     string `json:"description"`
	TransactionDate string `json:"transactionDate"`
	CreatedAt       string `json:"createdAt"`
}

// PaginatedTransactionsResponse represents one page of transactions
type PaginatedTransactionsResponse struct {
	Data       []TransactionResponse `json:"data"`
	Page       int32                 `json:"page"`
	PageSize   int32                 `json:"pageSize"`
	TotalItems int64                 `json:"totalItems"`
	TotalPages int32                 `json:"totalPages"`
}

func (r TransactionRequest) input() service.TransactionInput {
	return service.TransactionInput{
		CategoryID:      r.CategoryID,
		Amount:          r.Amount,
		Description:     r.Description,
		TransactionDate: r.TransactionDate,
	}
}

func toTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		CategoryID:      t.CategoryID,
		CategoryName:    t.CategoryName,
		CategoryType:    string(t.CategoryType),
		CategoryColor:   t.CategoryColor,
		Amount:          t.Amount.StringFixed(domain.AmountPlaces),
		Description:     t.Description,
		TransactionDate: t.TransactionDate.Format(domain.DateLayout),
		CreatedAt:       t.CreatedAt.Format(time.RFC3339),
	}
}

func toTransactionResponses(txns []*domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txns))
	for i, t := range txns {
		out[i] = toTransactionResponse(t)
	}
	return out
}

// CreateTransaction godoc
// @Summary Create a transaction
// @Description Record an income or expense against one of the user's categories
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TransactionRequest true "Transaction creation request"
// @Success 201 {object} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 429 {object} ProblemDetails
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	transaction, err := h.transactionService.CreateTransaction(userID, req.input())
	if err != nil {
		return respondError(c, err, "create transaction")
	}
	return c.JSON(http.StatusCreated, toTransactionResponse(transaction))
}

// GetTransaction godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	transaction, err := h.transactionService.GetTransaction(userID, id)
	if err != nil {
		return respondError(c, err, "get transaction")
	}
	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// GetTransactions godoc
// @Summary List transactions
// @Description Get paginated transactions, newest first, with optional filters
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param search query string false "Description contains (case-insensitive)"
// @Param categoryId query int false "Filter by category ID"
// @Param month query string false "Calendar month (YYYY-MM)"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(15)
// @Success 200 {object} PaginatedTransactionsResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /transactions [get]
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	filters, fieldErrs := parseTransactionFilters(c)
	if len(fieldErrs) > 0 {
		return NewValidationError(c, "Invalid query parameters", fieldErrs)
	}

	page, err := h.transactionService.GetTransactions(userID, filters)
	if err != nil {
		return respondError(c, err, "query transactions")
	}

	return c.JSON(http.StatusOK, PaginatedTransactionsResponse{
		Data:       toTransactionResponses(page.Data),
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	})
}

func parseTransactionFilters(c echo.Context) (*domain.TransactionFilters, []ValidationError) {
	var errs []ValidationError
	filters := &domain.TransactionFilters{}

	if search := strings.TrimSpace(c.QueryParam("search")); search != "" {
		filters.DescriptionContains = &search
	}
	if raw := c.QueryParam("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || id <= 0 {
			errs = append(errs, ValidationError{Field: "categoryId", Message: "Must be a positive integer"})
		} else {
			categoryID := int32(id)
			filters.CategoryID = &categoryID
		}
	}
	if raw := c.QueryParam("month"); raw != "" {
		month, ok := util.ParseMonth(raw)
		if !ok {
			errs = append(errs, ValidationError{Field: "month", Message: "Must be in YYYY-MM format"})
		} else {
			filters.Month = &month
		}
	}
	if raw := c.QueryParam("page"); raw != "" {
		page, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			errs = append(errs, ValidationError{Field: "page", Message: "Must be an integer"})
		}
		filters.Page = int32(page)
	}
	if raw := c.QueryParam("pageSize"); raw != "" {
		size, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			errs = append(errs, ValidationError{Field: "pageSize", Message: "Must be an integer"})
		}
		filters.PageSize = int32(size)
	}
	return filters, errs
}

// UpdateTransaction godoc
// @Summary Update a transaction
// @Description Replace category, amount, description and date
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Param request body TransactionRequest true "Transaction update request"
// @Success 200 {object} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, id, req.input())
	if err != nil {
		return respondError(c, err, "update transaction")
	}
	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// DeleteTransaction godoc
// @Summary Delete a transaction
// @Tags transactions
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 204 "No Content"
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.transactionService.DeleteTransaction(userID, id); err != nil {
		return respondError(c, err, "delete transaction")
	}
	return c.NoContent(http.StatusNoContent)
}
