package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/dafibh/tally/tally-backend/internal/service"
	"github.com/dafibh/tally/tally-backend/internal/testutil"
	"github.com/labstack/echo/v4"
)

func newTransactionHandler() (*testutil.MockLedger, *TransactionHandler, *domain.Category) {
	ledger := testutil.NewMockLedger()
	food := ledger.AddCategory(1, "Food", domain.CategoryTypeExpense, "#dc3545")
	svc := service.NewTransactionService(ledger.Transactions(), ledger.Categories())
	return ledger, NewTransactionHandler(svc), food
}

func TestCreateTransaction_Success(t *testing.T) {
	e := echo.New()
	_, handler, food := newTransactionHandler()

	body := `{"categoryId": 1, "amount": "150", "description": "Groceries", "transactionDate": "2024-03-05"}`
	c, rec := newRequest(e, http.MethodPost, "/api/v1/transactions", body, 1)
	if err := handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Amount != "150.00" {
		t.Errorf("Expected amount '150.00', got %s", response.Amount)
	}
	if response.TransactionDate != "2024-03-05" {
		t.Errorf("Expected date 2024-03-05, got %s", response.TransactionDate)
	}
	if response.CategoryID != food.ID || response.CategoryName != "Food" || response.CategoryType != "expense" {
		t.Errorf("Expected joined category, got %+v", response)
	}
}

func TestCreateTransaction_ValidationErrors(t *testing.T) {
	e := echo.New()
	_, handler, _ := newTransactionHandler()

	body := `{"categoryId": 0, "amount": "-1", "transactionDate": "March 5"}`
	c, rec := newRequest(e, http.MethodPost, "/api/v1/transactions", body, 1)
	_ = handler.CreateTransaction(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
	p := decodeProblem(t, rec)
	for _, field := range []string{"categoryId", "amount", "transactionDate"} {
		if !hasField(p.Errors, field) {
			t.Errorf("Expected error for %s, got %+v", field, p.Errors)
		}
	}
}

func TestCreateTransaction_MalformedBody(t *testing.T) {
	e := echo.New()
	_, handler, _ := newTransactionHandler()

	c, rec := newRequest(e, http.MethodPost, "/api/v1/transactions", `{"categoryId": "one"`, 1)
	_ = handler.CreateTransaction(c)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetTransactions_FiltersAndPagination(t *testing.T) {
	e := echo.New()
	ledger, handler, food := newTransactionHandler()
	ledger.AddTransaction(1, food.ID, "1.00", "2024-03-01", "Coffee beans")
	ledger.AddTransaction(1, food.ID, "2.00", "2024-03-02", "coffee shop")
	ledger.AddTransaction(1, food.ID, "3.00", "2024-02-02", "coffee")
	ledger.AddTransaction(1, food.ID, "4.00", "2024-03-03", "lunch")

	c, rec := newRequest(e, http.MethodGet, "/api/v1/transactions?search=coffee&month=2024-03&page=1&pageSize=1", "", 1)
	if err := handler.GetTransactions(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response PaginatedTransactionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.TotalItems != 2 || response.TotalPages != 2 || response.PageSize != 1 {
		t.Errorf("Expected 2 items over 2 pages of 1, got %+v", response)
	}
	if len(response.Data) != 1 || response.Data[0].Description != "coffee shop" {
		t.Errorf("Expected newest match first, got %+v", response.Data)
	}
}

func TestGetTransactions_EmptyIsArray(t *testing.T) {
	e := echo.New()
	_, handler, _ := newTransactionHandler()

	c, rec := newRequest(e, http.MethodGet, "/api/v1/transactions?month=2024-02", "", 1)
	_ = handler.GetTransactions(c)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if string(raw["data"]) != "[]" {
		t.Errorf("Expected empty data array, got %s", raw["data"])
	}
}

func TestGetTransactions_InvalidQuery(t *testing.T) {
	e := echo.New()
	_, handler, _ := newTransactionHandler()

	c, rec := newRequest(e, http.MethodGet, "/api/v1/transactions?month=2024-13&categoryId=x&page=two", "", 1)
	_ = handler.GetTransactions(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
	p := decodeProblem(t, rec)
	for _, field := range []string{"month", "categoryId", "page"} {
		if !hasField(p.Errors, field) {
			t.Errorf("Expected error for %s, got %+v", field, p.Errors)
		}
	}
}

func TestUpdateTransaction_NotFound(t *testing.T) {
	e := echo.New()
	_, handler, _ := newTransactionHandler()

	body := `{"categoryId": 1, "amount": "1.00", "transactionDate": "2024-03-05"}`
	c, rec := newRequest(e, http.MethodPut, "/api/v1/transactions/42", body, 1)
	withID(c, "42")
	_ = handler.UpdateTransaction(c)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestUpdateTransaction_Success(t *testing.T) {
	e := echo.New()
	ledger, handler, food := newTransactionHandler()
	txn := ledger.AddTransaction(1, food.ID, "1.00", "2024-03-01", "old")

	body := `{"categoryId": 1, "amount": "9.99", "description": "new", "transactionDate": "2024-03-09"}`
	c, rec := newRequest(e, http.MethodPut, "/api/v1/transactions/1", body, 1)
	withID(c, "1")
	if err := handler.UpdateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var response TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.ID != txn.ID || response.Amount != "9.99" || response.Description != "new" {
		t.Errorf("Unexpected response %+v", response)
	}
}

func TestDeleteTransaction_OtherUser(t *testing.T) {
	e := echo.New()
	ledger, handler, food := newTransactionHandler()
	ledger.AddTransaction(1, food.ID, "1.00", "2024-03-01", "")

	c, rec := newRequest(e, http.MethodDelete, "/api/v1/transactions/1", "", 2)
	withID(c, "1")
	_ = handler.DeleteTransaction(c)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
	if ledger.TransactionCount() != 1 {
		t.Error("Expected transaction to survive")
	}
}
