package handler

import (
	"net/http"

	"github.com/dafibh/tally/tally-backend/internal/middleware"
	"github.com/dafibh/tally/tally-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// DashboardResponse represents the current-month dashboard
type DashboardResponse struct {
	Window             ReportWindowResponse        `json:"window"`
	Summary            SummaryResponse             `json:"summary"`
	RecentTransactions []TransactionResponse       `json:"recentTransactions"`
	TopExpenses        []CategoryBreakdownResponse `json:"topExpenses"`
}

// GetDashboard godoc
// @Summary Get the dashboard
// @Description Current month summary, five most recent transactions and top expense categories
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DashboardResponse
// @Failure 401 {object} ProblemDetails
// @Failure 429 {object} ProblemDetails
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	dashboard, err := h.dashboardService.GetDashboard(userID)
	if err != nil {
		return respondError(c, err, "get dashboard")
	}

	return c.JSON(http.StatusOK, DashboardResponse{
		Window:             toWindowResponse(dashboard.Window),
		Summary:            toSummaryResponse(dashboard.Summary),
		RecentTransactions: toTransactionResponses(dashboard.RecentTransactions),
		TopExpenses:        toBreakdownResponses(dashboard.TopExpenses),
	})
}
