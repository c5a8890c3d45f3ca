package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/dafibh/tally/tally-backend/internal/middleware"
	"github.com/dafibh/tally/tally-backend/internal/service"
	"github.com/dafibh/tally/tally-backend/internal/testutil"
	"github.com/labstack/echo/v4"
)

// tokenTable maps bearer tokens to Auth0 subjects
type tokenTable map[string]string

func (t tokenTable) ValidateToken(ctx context.Context, token string) (interface{}, error) {
	sub, ok := t[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: sub},
		CustomClaims:     &middleware.CustomClaims{Email: sub + "@example.com"},
	}, nil
}

func newTestServer(t *testing.T, limiter *middleware.RateLimiter) (*echo.Echo, *testutil.MockLedger) {
	t.Helper()
	ledger := testutil.NewMockLedger()

	authService := service.NewAuthService(ledger.Users())
	categoryService := service.NewCategoryService(ledger.Categories())
	transactionService := service.NewTransactionService(ledger.Transactions(), ledger.Categories())
	reportService := service.NewReportService(ledger.Transactions())
	exportService := service.NewExportService(ledger.Transactions(), nil)
	dashboardService := service.NewDashboardService(ledger.Transactions())

	tokens := tokenTable{"alice-token": "alice", "bob-token": "bob"}
	authMiddleware := middleware.NewAuthMiddlewareWithValidator(tokens, authService)

	e := echo.New()
	RegisterRoutes(e, authMiddleware, limiter, Handlers{
		Auth:        NewAuthHandler(authService),
		Category:    NewCategoryHandler(categoryService),
		Transaction: NewTransactionHandler(transactionService),
		Report:      NewReportHandler(reportService, exportService),
		Dashboard:   NewDashboardHandler(dashboardService),
		APIDocs:     true,
	})
	return e, ledger
}

func do(e *echo.Echo, method, target, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_Health(t *testing.T) {
	e, _ := newTestServer(t, nil)

	if rec := do(e, http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
}

func TestRoutes_LedgerRequiresRegisteredUser(t *testing.T) {
	e, _ := newTestServer(t, nil)

	if rec := do(e, http.MethodGet, "/api/v1/categories", "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/api/v1/categories", "forged", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for unknown token, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/api/v1/categories", "alice-token", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 before registration, got %d", rec.Code)
	}
}

func TestRoutes_RegisterThenUseLedger(t *testing.T) {
	e, _ := newTestServer(t, nil)

	if rec := do(e, http.MethodPost, "/api/v1/auth/callback", "alice-token", ""); rec.Code != http.StatusOK {
		t.Fatalf("Expected callback 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec := do(e, http.MethodGet, "/api/v1/categories", "alice-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var categories []CategoryWithStatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &categories); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(categories) != len(domain.DefaultCategories) {
		t.Fatalf("Expected %d seeded categories, got %d", len(domain.DefaultCategories), len(categories))
	}

	var salaryID int32
	for _, c := range categories {
		if c.Name == "Salary" {
			salaryID = c.ID
		}
	}

	body := `{"categoryId": ` + itoa(salaryID) + `, "amount": "1500", "transactionDate": "2024-03-01"}`
	if rec := do(e, http.MethodPost, "/api/v1/transactions", "alice-token", body); rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodGet, "/api/v1/categories/"+itoa(salaryID)+"/can-delete", "alice-token", "")
	var canDelete CanDeleteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &canDelete); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if canDelete.CanDelete {
		t.Error("Expected a referenced category to be undeletable")
	}

	// Bob registers and cannot see Alice's category
	do(e, http.MethodPost, "/api/v1/auth/callback", "bob-token", "")
	if rec := do(e, http.MethodGet, "/api/v1/categories/"+itoa(salaryID), "bob-token", ""); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for another user's category, got %d", rec.Code)
	}
}

func TestRoutes_RateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(60, 1)
	defer limiter.Stop()
	e, _ := newTestServer(t, limiter)
	do(e, http.MethodPost, "/api/v1/auth/callback", "alice-token", "")

	if rec := do(e, http.MethodGet, "/api/v1/dashboard", "alice-token", ""); rec.Code != http.StatusOK {
		t.Fatalf("Expected first request to pass, got %d", rec.Code)
	}
	rec := do(e, http.MethodGet, "/api/v1/dashboard", "alice-token", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}
}

func itoa(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}
