package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReportType string

const (
	ReportTypeWeekly  ReportType = "weekly"
	ReportTypeMonthly ReportType = "monthly"
	ReportTypeYearly  ReportType = "yearly"
	ReportTypeCustom  ReportType = "custom"
)

// ReportWindow is an inclusive range of calendar dates.
type ReportWindow struct {
	Type  ReportType `json:"type"`
	Start time.Time  `json:"start"`
	End   time.Time  `json:"end"`
}

// Contains reports whether date falls inside the window, ignoring time of day.
func (w ReportWindow) Contains(date time.Time) bool {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	s := time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(w.End.Year(), w.End.Month(), w.End.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(s) && !d.After(e)
}

type Summary struct {
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	TotalExpenses    decimal.Decimal `json:"totalExpenses"`
	NetIncome        decimal.Decimal `json:"netIncome"`
	AvgExpense       decimal.Decimal `json:"avgExpense"`
	TransactionCount int64           `json:"transactionCount"`
}

type CategoryBreakdown struct {
	CategoryID int32           `json:"categoryId"`
	Name       string          `json:"name"`
	Color      string          `json:"color"`
	Total      decimal.Decimal `json:"total"`
	Count      int64           `json:"count"`
	Percentage decimal.Decimal `json:"percentage"`
}

type DailyTrend struct {
	Date          time.Time       `json:"date"`
	DailyIncome   decimal.Decimal `json:"dailyIncome"`
	DailyExpenses decimal.Decimal `json:"dailyExpenses"`
}

type MonthlyTrend struct {
	Month        time.Time       `json:"month"` // first day of the month
	IncomeTotal  decimal.Decimal `json:"incomeTotal"`
	ExpenseTotal decimal.Decimal `json:"expenseTotal"`
}

// ComparisonMonths is the length of the trailing monthly comparison.
const ComparisonMonths = 6

// Report is the full aggregate view of one window.
type Report struct {
	Window            ReportWindow         `json:"window"`
	Summary           Summary              `json:"summary"`
	IncomeBreakdown   []*CategoryBreakdown `json:"incomeBreakdown"`
	ExpenseBreakdown  []*CategoryBreakdown `json:"expenseBreakdown"`
	DailyTrend        []*DailyTrend        `json:"dailyTrend"`
	MonthlyComparison []*MonthlyTrend      `json:"monthlyComparison"`
}

// Dashboard sizes
const (
	DashboardRecentLimit   = 5
	DashboardTopCategories = 6
)

// Dashboard is the current-month snapshot.
type Dashboard struct {
	Window             ReportWindow         `json:"window"`
	Summary            Summary              `json:"summary"`
	RecentTransactions []*Transaction       `json:"recentTransactions"`
	TopExpenses        []*CategoryBreakdown `json:"topExpenses"`
}

// ReportExport is the stored CSV of a window.
type ReportExport struct {
	Window    ReportWindow `json:"window"`
	ObjectKey string       `json:"objectKey"`
	URL       string       `json:"url"`
	ExpiresAt time.Time    `json:"expiresAt"`
	RowCount  int          `json:"rowCount"`
}
