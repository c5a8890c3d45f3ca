package handler

import (
	"net/http"
	"time"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/dafibh/tally/tally-backend/internal/middleware"
	"github.com/dafibh/tally/tally-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ReportHandler serves windowed reports and their CSV exports
type ReportHandler struct {
	reportService *service.ReportService
	exportService *service.ExportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService, exportService *service.ExportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		exportService: exportService,
	}
}

// ReportWindowResponse is the resolved date range of a report
type ReportWindowResponse struct {
	Type      string `json:"type"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// SummaryResponse holds the window totals
type SummaryResponse struct {
	TotalIncome      string `json:"totalIncome"`
	TotalExpenses    string `json:"totalExpenses"`
	NetIncome        string `json:"netIncome"`
	AvgExpense       string `json:"avgExpense"`
	TransactionCount int64  `json:"transactionCount"`
}

// CategoryBreakdownResponse is one category's share of its type total
type CategoryBreakdownResponse struct {
	CategoryID int32  `json:"categoryId"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	Total      string `json:"total"`
	Count      int64  `json:"count"`
	Percentage string `json:"percentage"`
}

// DailyTrendResponse is one day with activity
type DailyTrendResponse struct {
	Date          string `json:"date"`
	DailyIncome   string `json:"dailyIncome"`
	DailyExpenses string `json:"dailyExpenses"`
}

// MonthlyTrendResponse is one month of the trailing comparison
type MonthlyTrendResponse struct {
	Month        string `json:"month"`
	IncomeTotal  string `json:"incomeTotal"`
	ExpenseTotal string `json:"expenseTotal"`
}

// ReportResponse is the full report for a window
type ReportResponse struct {
	Window            ReportWindowResponse        `json:"window"`
	Summary           SummaryResponse             `json:"summary"`
	IncomeBreakdown   []CategoryBreakdownResponse `json:"incomeBreakdown"`
	ExpenseBreakdown  []CategoryBreakdownResponse `json:"expenseBreakdown"`
	DailyTrend        []DailyTrendResponse        `json:"dailyTrend"`
	MonthlyComparison []MonthlyTrendResponse      `json:"monthlyComparison"`
}

// ExportReportRequest selects the window to export
type ExportReportRequest struct {
	ReportType string `json:"report_type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

// ExportReportResponse points at the uploaded CSV
type ExportReportResponse struct {
	Window    ReportWindowResponse `json:"window"`
	URL       string               `json:"url"`
	ExpiresAt string               `json:"expiresAt"`
	RowCount  int                  `json:"rowCount"`
}

func toWindowResponse(w domain.ReportWindow) ReportWindowResponse {
	return ReportWindowResponse{
		Type:      string(w.Type),
		StartDate: w.Start.Format(domain.DateLayout),
		EndDate:   w.End.Format(domain.DateLayout),
	}
}

func toSummaryResponse(s domain.Summary) SummaryResponse {
	return SummaryResponse{
		TotalIncome:      s.TotalIncome.StringFixed(domain.AmountPlaces),
		TotalExpenses:    s.TotalExpenses.StringFixed(domain.AmountPlaces),
		NetIncome:        s.NetIncome.StringFixed(domain.AmountPlaces),
		AvgExpense:       s.AvgExpense.StringFixed(domain.AmountPlaces),
		TransactionCount: s.TransactionCount,
	}
}

func toBreakdownResponses(rows []*domain.CategoryBreakdown) []CategoryBreakdownResponse {
	out := make([]CategoryBreakdownResponse, len(rows))
	for i, r := range rows {
		out[i] = CategoryBreakdownResponse{
			CategoryID: r.CategoryID,
			Name:       r.Name,
			Color:      r.Color,
			Total:      r.Total.StringFixed(domain.AmountPlaces),
			Count:      r.Count,
			Percentage: r.Percentage.StringFixed(2),
		}
	}
	return out
}

func toReportResponse(r *domain.Report) ReportResponse {
	daily := make([]DailyTrendResponse, len(r.DailyTrend))
	for i, d := range r.DailyTrend {
		daily[i] = DailyTrendResponse{
			Date:          d.Date.Format(domain.DateLayout),
			DailyIncome:   d.DailyIncome.StringFixed(domain.AmountPlaces),
			DailyExpenses: d.DailyExpenses.StringFixed(domain.AmountPlaces),
		}
	}
	monthly := make([]MonthlyTrendResponse, len(r.MonthlyComparison))
	for i, m := range r.MonthlyComparison {
		monthly[i] = MonthlyTrendResponse{
			Month:        m.Month.Format(domain.MonthLayout),
			IncomeTotal:  m.IncomeTotal.StringFixed(domain.AmountPlaces),
			ExpenseTotal: m.ExpenseTotal.StringFixed(domain.AmountPlaces),
		}
	}

	return ReportResponse{
		Window:            toWindowResponse(r.Window),
		Summary:           toSummaryResponse(r.Summary),
		IncomeBreakdown:   toBreakdownResponses(r.IncomeBreakdown),
		ExpenseBreakdown:  toBreakdownResponses(r.ExpenseBreakdown),
		DailyTrend:        daily,
		MonthlyComparison: monthly,
	}
}

// GetReport godoc
// @Summary Get a report
// @Description Summary, category breakdowns, daily trend and trailing six-month comparison. An unknown or incomplete window falls back to the current month
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param report_type query string false "monthly, weekly, yearly or custom" default(monthly)
// @Param start_date query string false "Custom window start (YYYY-MM-DD)"
// @Param end_date query string false "Custom window end (YYYY-MM-DD)"
// @Success 200 {object} ReportResponse
// @Failure 401 {object} ProblemDetails
// @Failure 429 {object} ProblemDetails
// @Router /reports [get]
func (h *ReportHandler) GetReport(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	window := h.reportService.ResolveWindow(
		domain.ReportType(c.QueryParam("report_type")),
		c.QueryParam("start_date"),
		c.QueryParam("end_date"),
	)

	report, err := h.reportService.GetReport(userID, window)
	if err != nil {
		return respondError(c, err, "get report")
	}
	return c.JSON(http.StatusOK, toReportResponse(report))
}

// ExportReport godoc
// @Summary Export a report as CSV
// @Description Upload the window's transactions as CSV and return a presigned download URL
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ExportReportRequest true "Report window"
// @Success 201 {object} ExportReportResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /reports/export [post]
func (h *ReportHandler) ExportReport(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}
	if !h.exportService.IsEnabled() {
		return NewServiceUnavailableError(c, "Report export is not configured")
	}

	var req ExportReportRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	window := h.reportService.ResolveWindow(domain.ReportType(req.ReportType), req.StartDate, req.EndDate)

	export, err := h.exportService.ExportReport(c.Request().Context(), userID, window)
	if err != nil {
		return respondError(c, err, "export report")
	}

	log.Info().
		Int32("user_id", userID).
		Str("object_key", export.ObjectKey).
		Int("rows", export.RowCount).
		Msg("Report exported")

	return c.JSON(http.StatusCreated, ExportReportResponse{
		Window:    toWindowResponse(export.Window),
		URL:       export.URL,
		ExpiresAt: export.ExpiresAt.Format(time.RFC3339),
		RowCount:  export.RowCount,
	})
}
