package service

import (
	"sort"
	"strings"
	"time"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/dafibh/tally/tally-backend/internal/util"
	"github.com/shopspring/decimal"
)

// The functions in this file are pure: they depend only on their arguments.

var hundred = decimal.NewFromInt(100)

// ResolveWindow maps a report type and optional custom bounds to a concrete
// inclusive date range relative to now. Custom windows with missing,
// unparseable or inverted dates, and unknown types, resolve as monthly.
func ResolveWindow(reportType domain.ReportType, startDate, endDate string, now time.Time) domain.ReportWindow {
	today := util.DateOnly(now)

	switch reportType {
	case domain.ReportTypeWeekly:
		start, end := util.WeekBounds(today)
		return domain.ReportWindow{Type: domain.ReportTypeWeekly, Start: start, End: end}
	case domain.ReportTypeYearly:
		start, end := util.YearBounds(today.Year())
		return domain.ReportWindow{Type: domain.ReportTypeYearly, Start: start, End: end}
	case domain.ReportTypeCustom:
		start, okStart := util.ParseDate(startDate)
		end, okEnd := util.ParseDate(endDate)
		if okStart && okEnd && !start.After(end) {
			return domain.ReportWindow{Type: domain.ReportTypeCustom, Start: start, End: end}
		}
	}

	start, end := util.MonthBounds(today.Year(), today.Month())
	return domain.ReportWindow{Type: domain.ReportTypeMonthly, Start: start, End: end}
}

// FilterWindow keeps the transactions dated inside window.
func FilterWindow(txns []*domain.Transaction, window domain.ReportWindow) []*domain.Transaction {
	out := make([]*domain.Transaction, 0, len(txns))
	for _, t := range txns {
		if window.Contains(t.TransactionDate) {
			out = append(out, t)
		}
	}
	return out
}

// Summarize totals income and expenses. NetIncome is exactly
// TotalIncome - TotalExpenses; AvgExpense is zero without expenses.
func Summarize(txns []*domain.Transaction) domain.Summary {
	income := decimal.Zero
	expenses := decimal.Zero
	var expenseCount int64

	for _, t := range txns {
		switch t.CategoryType {
		case domain.CategoryTypeIncome:
			income = income.Add(t.Amount)
		case domain.CategoryTypeExpense:
			expenses = expenses.Add(t.Amount)
			expenseCount++
		}
	}

	avg := decimal.Zero
	if expenseCount > 0 {
		avg = expenses.Div(decimal.NewFromInt(expenseCount)).Round(domain.AmountPlaces)
	}

	return domain.Summary{
		TotalIncome:      income,
		TotalExpenses:    expenses,
		NetIncome:        income.Sub(expenses),
		AvgExpense:       avg,
		TransactionCount: int64(len(txns)),
	}
}

// Breakdown groups the transactions of one category type by category,
// sorted by total descending with ties broken by name.
func Breakdown(txns []*domain.Transaction, categoryType domain.CategoryType) []*domain.CategoryBreakdown {
	byCategory := make(map[int32]*domain.CategoryBreakdown)
	typeTotal := decimal.Zero

	for _, t := range txns {
		if t.CategoryType != categoryType {
			continue
		}
		row, ok := byCategory[t.CategoryID]
		if !ok {
			row = &domain.CategoryBreakdown{
				CategoryID: t.CategoryID,
				Name:       t.CategoryName,
				Color:      t.CategoryColor,
				Total:      decimal.Zero,
			}
			byCategory[t.CategoryID] = row
		}
		row.Total = row.Total.Add(t.Amount)
		row.Count++
		typeTotal = typeTotal.Add(t.Amount)
	}

	rows := make([]*domain.CategoryBreakdown, 0, len(byCategory))
	for _, row := range byCategory {
		row.Percentage = decimal.Zero
		if typeTotal.IsPositive() {
			row.Percentage = row.Total.Mul(hundred).Div(typeTotal).Round(2)
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].Total.Cmp(rows[j].Total); c != 0 {
			return c > 0
		}
		if rows[i].Name != rows[j].Name {
			return strings.Compare(rows[i].Name, rows[j].Name) < 0
		}
		return rows[i].CategoryID < rows[j].CategoryID
	})
	return rows
}

// DailyTrend returns one row per date with activity, ascending.
func DailyTrend(txns []*domain.Transaction) []*domain.DailyTrend {
	byDate := make(map[time.Time]*domain.DailyTrend)

	for _, t := range txns {
		day := util.DateOnly(t.TransactionDate)
		row, ok := byDate[day]
		if !ok {
			row = &domain.DailyTrend{Date: day, DailyIncome: decimal.Zero, DailyExpenses: decimal.Zero}
			byDate[day] = row
		}
		addByType(t, &row.DailyIncome, &row.DailyExpenses)
	}

	rows := make([]*domain.DailyTrend, 0, len(byDate))
	for _, row := range byDate {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows
}

// MonthlyComparison returns one row per month with activity among the
// trailing ComparisonMonths calendar months ending with now's month.
func MonthlyComparison(txns []*domain.Transaction, now time.Time) []*domain.MonthlyTrend {
	start, end := util.TrailingMonths(util.DateOnly(now), domain.ComparisonMonths)
	window := domain.ReportWindow{Start: start, End: end}
	byMonth := make(map[time.Time]*domain.MonthlyTrend)

	for _, t := range txns {
		if !window.Contains(t.TransactionDate) {
			continue
		}
		month := util.MonthStart(t.TransactionDate)
		row, ok := byMonth[month]
		if !ok {
			row = &domain.MonthlyTrend{Month: month, IncomeTotal: decimal.Zero, ExpenseTotal: decimal.Zero}
			byMonth[month] = row
		}
		addByType(t, &row.IncomeTotal, &row.ExpenseTotal)
	}

	rows := make([]*domain.MonthlyTrend, 0, len(byMonth))
	for _, row := range byMonth {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Month.Before(rows[j].Month) })
	return rows
}

func addByType(t *domain.Transaction, income, expenses *decimal.Decimal) {
	switch t.CategoryType {
	case domain.CategoryTypeIncome:
		*income = income.Add(t.Amount)
	case domain.CategoryTypeExpense:
		*expenses = expenses.Add(t.Amount)
	}
}
