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

func newCategoryHandler() (*testutil.MockLedger, *CategoryHandler) {
	ledger := testutil.NewMockLedger()
	return ledger, NewCategoryHandler(service.NewCategoryService(ledger.Categories()))
}

func TestCreateCategory_Success(t *testing.T) {
	e := echo.New()
	_, handler := newCategoryHandler()

	c, rec := newRequest(e, http.MethodPost, "/api/v1/categories", `{"name":"Pets","type":"expense","color":"#123abc"}`, 1)
	if err := handler.CreateCategory(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response CategoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Name != "Pets" || response.Type != "expense" || response.Color != "#123abc" {
		t.Errorf("Unexpected response %+v", response)
	}
}

func TestCreateCategory_ValidationError(t *testing.T) {
	e := echo.New()
	_, handler := newCategoryHandler()

	c, rec := newRequest(e, http.MethodPost, "/api/v1/categories", `{"name":"P","type":"gift","color":"blue"}`, 1)
	if err := handler.CreateCategory(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
	p := decodeProblem(t, rec)
	if p.Type != ErrorTypeValidation {
		t.Errorf("Expected validation type, got %s", p.Type)
	}
	for _, field := range []string{"name", "type", "color"} {
		if !hasField(p.Errors, field) {
			t.Errorf("Expected error for %s, got %+v", field, p.Errors)
		}
	}
}

func TestCreateCategory_Duplicate(t *testing.T) {
	e := echo.New()
	ledger, handler := newCategoryHandler()
	ledger.AddCategory(1, "Pets", domain.CategoryTypeExpense, "#123abc")

	c, rec := newRequest(e, http.MethodPost, "/api/v1/categories", `{"name":"Pets","type":"expense","color":"#123abc"}`, 1)
	_ = handler.CreateCategory(c)

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}

func TestCreateCategory_Unauthorized(t *testing.T) {
	e := echo.New()
	_, handler := newCategoryHandler()

	c, rec := newRequest(e, http.MethodPost, "/api/v1/categories", `{"name":"Pets","type":"expense","color":"#123abc"}`, 0)
	_ = handler.CreateCategory(c)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestGetCategories_WithStats(t *testing.T) {
	e := echo.New()
	ledger, handler := newCategoryHandler()
	food := ledger.AddCategory(1, "Food", domain.CategoryTypeExpense, "#dc3545")
	ledger.AddCategory(1, "Salary", domain.CategoryTypeIncome, "#28a745")
	ledger.AddTransaction(1, food.ID, "10.5", "2024-03-01", "")

	c, rec := newRequest(e, http.MethodGet, "/api/v1/categories", "", 1)
	if err := handler.GetCategories(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var response []CategoryWithStatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(response))
	}
	if response[0].Name != "Food" || response[0].TransactionCount != 1 || response[0].TotalAmount != "10.50" {
		t.Errorf("Unexpected first row %+v", response[0])
	}
	if response[1].TotalAmount != "0.00" {
		t.Errorf("Expected unused total 0.00, got %s", response[1].TotalAmount)
	}
}

func TestGetCategory_InvalidID(t *testing.T) {
	e := echo.New()
	_, handler := newCategoryHandler()

	c, rec := newRequest(e, http.MethodGet, "/api/v1/categories/abc", "", 1)
	withID(c, "abc")
	_ = handler.GetCategory(c)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetCategory_OtherUser(t *testing.T) {
	e := echo.New()
	ledger, handler := newCategoryHandler()
	ledger.AddCategory(2, "Food", domain.CategoryTypeExpense, "#dc3545")

	c, rec := newRequest(e, http.MethodGet, "/api/v1/categories/1", "", 1)
	withID(c, "1")
	_ = handler.GetCategory(c)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestUpdateCategory_TypeLocked(t *testing.T) {
	e := echo.New()
	ledger, handler := newCategoryHandler()
	food := ledger.AddCategory(1, "Food", domain.CategoryTypeExpense, "#dc3545")
	ledger.AddTransaction(1, food.ID, "1.00", "2024-03-01", "")

	c, rec := newRequest(e, http.MethodPut, "/api/v1/categories/1", `{"name":"Food","type":"income","color":"#dc3545"}`, 1)
	withID(c, "1")
	_ = handler.UpdateCategory(c)

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}

func TestDeleteCategory_Success(t *testing.T) {
	e := echo.New()
	ledger, handler := newCategoryHandler()
	ledger.AddCategory(1, "Food", domain.CategoryTypeExpense, "#dc3545")

	c, rec := newRequest(e, http.MethodDelete, "/api/v1/categories/1", "", 1)
	withID(c, "1")
	if err := handler.DeleteCategory(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
}

func TestDeleteCategory_WithTransactions(t *testing.T) {
	e := echo.New()
	ledger, handler := newCategoryHandler()
	food := ledger.AddCategory(1, "Food", domain.CategoryTypeExpense, "#dc3545")
	for i := 0; i < 3; i++ {
		ledger.AddTransaction(1, food.ID, "1.00", "2024-03-01", "")
	}

	c, rec := newRequest(e, http.MethodDelete, "/api/v1/categories/1", "", 1)
	withID(c, "1")
	_ = handler.DeleteCategory(c)

	if rec.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d", rec.Code)
	}
	p := decodeProblem(t, rec)
	if p.TransactionCount == nil || *p.TransactionCount != 3 {
		t.Errorf("Expected transactionCount 3, got %v", p.TransactionCount)
	}
}

func TestCanDeleteCategory(t *testing.T) {
	e := echo.New()
	ledger, handler := newCategoryHandler()
	food := ledger.AddCategory(1, "Food", domain.CategoryTypeExpense, "#dc3545")
	ledger.AddTransaction(1, food.ID, "1.00", "2024-03-01", "")

	c, rec := newRequest(e, http.MethodGet, "/api/v1/categories/1/can-delete", "", 1)
	withID(c, "1")
	if err := handler.CanDeleteCategory(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var response CanDeleteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.CanDelete || response.TransactionCount != 1 {
		t.Errorf("Expected canDelete=false count=1, got %+v", response)
	}
}
