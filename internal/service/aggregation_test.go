package service

import (
	"testing"
	"time"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func txn(id, categoryID int32, name string, categoryType domain.CategoryType, amount string, date time.Time) *domain.Transaction {
	return &domain.Transaction{
		ID:              id,
		CategoryID:      categoryID,
		CategoryName:    name,
		CategoryType:    categoryType,
		CategoryColor:   "#000000",
		Amount:          decimal.RequireFromString(amount),
		TransactionDate: date,
	}
}

// marchLedger has one salary, one food expense in March and one food
// expense in February.
func marchLedger() []*domain.Transaction {
	return []*domain.Transaction{
		txn(1, 1, "Salary", domain.CategoryTypeIncome, "1500.00", day(2024, time.March, 1)),
		txn(2, 4, "Food & Dining", domain.CategoryTypeExpense, "500.00", day(2024, time.March, 10)),
		txn(3, 4, "Food & Dining", domain.CategoryTypeExpense, "250.00", day(2024, time.February, 20)),
	}
}

func TestResolveWindow(t *testing.T) {
	now := time.Date(2024, time.March, 15, 18, 30, 0, 0, time.UTC) // Friday

	tests := []struct {
		name       string
		reportType domain.ReportType
		start, end string
		wantType   domain.ReportType
		wantStart  time.Time
		wantEnd    time.Time
	}{
		{"weekly", domain.ReportTypeWeekly, "", "", domain.ReportTypeWeekly, day(2024, time.March, 11), day(2024, time.March, 17)},
		{"monthly", domain.ReportTypeMonthly, "", "", domain.ReportTypeMonthly, day(2024, time.March, 1), day(2024, time.March, 31)},
		{"yearly", domain.ReportTypeYearly, "", "", domain.ReportTypeYearly, day(2024, time.January, 1), day(2024, time.December, 31)},
		{"custom", domain.ReportTypeCustom, "2024-01-05", "2024-02-10", domain.ReportTypeCustom, day(2024, time.January, 5), day(2024, time.February, 10)},
		{"custom single day", domain.ReportTypeCustom, "2024-02-29", "2024-02-29", domain.ReportTypeCustom, day(2024, time.February, 29), day(2024, time.February, 29)},
		{"custom inverted falls back", domain.ReportTypeCustom, "2024-03-10", "2024-03-01", domain.ReportTypeMonthly, day(2024, time.March, 1), day(2024, time.March, 31)},
		{"custom missing end falls back", domain.ReportTypeCustom, "2024-03-10", "", domain.ReportTypeMonthly, day(2024, time.March, 1), day(2024, time.March, 31)},
		{"unknown type falls back", domain.ReportType("quarterly"), "", "", domain.ReportTypeMonthly, day(2024, time.March, 1), day(2024, time.March, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ResolveWindow(tt.reportType, tt.start, tt.end, now)
			assert.Equal(t, tt.wantType, w.Type)
			assert.True(t, tt.wantStart.Equal(w.Start), "start %s", w.Start)
			assert.True(t, tt.wantEnd.Equal(w.End), "end %s", w.End)
		})
	}
}

func TestResolveWindow_WeeklyOnSunday(t *testing.T) {
	w := ResolveWindow(domain.ReportTypeWeekly, "", "", day(2024, time.March, 17))
	assert.True(t, day(2024, time.March, 11).Equal(w.Start))
	assert.True(t, day(2024, time.March, 17).Equal(w.End))
}

func TestSummarize_March(t *testing.T) {
	march := FilterWindow(marchLedger(), domain.ReportWindow{Start: day(2024, time.March, 1), End: day(2024, time.March, 31)})
	s := Summarize(march)

	assert.Equal(t, "1500.00", s.TotalIncome.StringFixed(2))
	assert.Equal(t, "500.00", s.TotalExpenses.StringFixed(2))
	assert.Equal(t, "1000.00", s.NetIncome.StringFixed(2))
	assert.Equal(t, "500.00", s.AvgExpense.StringFixed(2))
	assert.Equal(t, int64(2), s.TransactionCount)
	assert.True(t, s.NetIncome.Equal(s.TotalIncome.Sub(s.TotalExpenses)))
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.True(t, s.TotalIncome.IsZero())
	assert.True(t, s.TotalExpenses.IsZero())
	assert.True(t, s.NetIncome.IsZero())
	assert.True(t, s.AvgExpense.IsZero())
	assert.Equal(t, int64(0), s.TransactionCount)
}

func TestSummarize_AvgExpenseRounded(t *testing.T) {
	txns := []*domain.Transaction{
		txn(1, 4, "Food", domain.CategoryTypeExpense, "10.00", day(2024, time.March, 1)),
		txn(2, 4, "Food", domain.CategoryTypeExpense, "10.00", day(2024, time.March, 2)),
		txn(3, 4, "Food", domain.CategoryTypeExpense, "10.01", day(2024, time.March, 3)),
	}
	assert.Equal(t, "10.00", Summarize(txns).AvgExpense.StringFixed(2))
}

func TestBreakdown_SingleCategoryIsWhole(t *testing.T) {
	march := FilterWindow(marchLedger(), domain.ReportWindow{Start: day(2024, time.March, 1), End: day(2024, time.March, 31)})
	rows := Breakdown(march, domain.CategoryTypeExpense)

	require.Len(t, rows, 1)
	assert.Equal(t, "Food & Dining", rows[0].Name)
	assert.Equal(t, int64(1), rows[0].Count)
	assert.Equal(t, "100.00", rows[0].Percentage.StringFixed(2))
}

func TestBreakdown_OrderAndPercentages(t *testing.T) {
	txns := []*domain.Transaction{
		txn(1, 2, "Rent", domain.CategoryTypeExpense, "100.00", day(2024, time.March, 1)),
		txn(2, 3, "Books", domain.CategoryTypeExpense, "100.00", day(2024, time.March, 2)),
		txn(3, 4, "Food", domain.CategoryTypeExpense, "100.00", day(2024, time.March, 3)),
		txn(4, 4, "Food", domain.CategoryTypeExpense, "50.00", day(2024, time.March, 4)),
		txn(5, 1, "Salary", domain.CategoryTypeIncome, "900.00", day(2024, time.March, 5)),
	}

	rows := Breakdown(txns, domain.CategoryTypeExpense)
	require.Len(t, rows, 3)
	assert.Equal(t, "Food", rows[0].Name)
	assert.Equal(t, "Books", rows[1].Name, "ties break by name")
	assert.Equal(t, "Rent", rows[2].Name)

	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(r.Percentage)
	}
	assert.True(t, sum.Sub(decimal.NewFromInt(100)).Abs().LessThanOrEqual(decimal.RequireFromString("0.05")), "sum %s", sum)
	assert.Equal(t, "42.86", rows[0].Percentage.StringFixed(2))
}

func TestBreakdown_NoTransactionsOfType(t *testing.T) {
	rows := Breakdown(marchLedger(), domain.CategoryType("other"))
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestDailyTrend_NoZeroFill(t *testing.T) {
	txns := append(marchLedger(),
		txn(4, 4, "Food & Dining", domain.CategoryTypeExpense, "20.00", day(2024, time.March, 10)),
	)
	rows := DailyTrend(txns)

	require.Len(t, rows, 3)
	assert.True(t, day(2024, time.February, 20).Equal(rows[0].Date))
	assert.True(t, day(2024, time.March, 1).Equal(rows[1].Date))
	assert.Equal(t, "1500.00", rows[1].DailyIncome.StringFixed(2))
	assert.True(t, rows[1].DailyExpenses.IsZero())
	assert.True(t, day(2024, time.March, 10).Equal(rows[2].Date))
	assert.Equal(t, "520.00", rows[2].DailyExpenses.StringFixed(2))
}

func TestMonthlyComparison_TrailingMonths(t *testing.T) {
	now := day(2024, time.March, 15)
	txns := append(marchLedger(),
		// Outside the trailing six months
		txn(9, 4, "Food & Dining", domain.CategoryTypeExpense, "75.00", day(2023, time.September, 30)),
	)

	rows := MonthlyComparison(txns, now)
	require.Len(t, rows, 2)
	assert.True(t, day(2024, time.February, 1).Equal(rows[0].Month))
	assert.Equal(t, "250.00", rows[0].ExpenseTotal.StringFixed(2))
	assert.True(t, rows[0].IncomeTotal.IsZero())
	assert.True(t, day(2024, time.March, 1).Equal(rows[1].Month))
	assert.Equal(t, "1500.00", rows[1].IncomeTotal.StringFixed(2))
	assert.Equal(t, "500.00", rows[1].ExpenseTotal.StringFixed(2))
}

func TestMonthlyComparison_IncludesOldestMonth(t *testing.T) {
	now := day(2024, time.March, 15)
	txns := []*domain.Transaction{
		txn(1, 4, "Food", domain.CategoryTypeExpense, "5.00", day(2023, time.October, 1)),
	}
	rows := MonthlyComparison(txns, now)
	require.Len(t, rows, 1)
	assert.True(t, day(2023, time.October, 1).Equal(rows[0].Month))
}

func TestFilterWindow_InclusiveBounds(t *testing.T) {
	w := domain.ReportWindow{Start: day(2024, time.March, 1), End: day(2024, time.March, 10)}
	kept := FilterWindow(marchLedger(), w)
	require.Len(t, kept, 2)
	assert.Equal(t, int32(1), kept[0].ID)
	assert.Equal(t, int32(2), kept[1].ID)
}

func TestReport_SalaryFreelanceFoodScenario(t *testing.T) {
	txns := []*domain.Transaction{
		txn(1, 1, "Salary", domain.CategoryTypeIncome, "1000.00", day(2024, time.March, 1)),
		txn(2, 2, "Freelance", domain.CategoryTypeIncome, "500.00", day(2024, time.March, 12)),
		txn(3, 4, "Food", domain.CategoryTypeExpense, "200.00", day(2024, time.March, 3)),
		txn(4, 4, "Food", domain.CategoryTypeExpense, "300.00", day(2024, time.March, 20)),
	}
	window := ResolveWindow(domain.ReportTypeCustom, "2024-03-01", "2024-03-31", day(2024, time.June, 1))
	inWindow := FilterWindow(txns, window)

	first := Summarize(inWindow)
	second := Summarize(inWindow)
	assert.Equal(t, first, second)

	assert.Equal(t, "1500.00", first.TotalIncome.StringFixed(2))
	assert.Equal(t, "500.00", first.TotalExpenses.StringFixed(2))
	assert.Equal(t, "1000.00", first.NetIncome.StringFixed(2))
	assert.Equal(t, "250.00", first.AvgExpense.StringFixed(2))

	expenses := Breakdown(inWindow, domain.CategoryTypeExpense)
	require.Len(t, expenses, 1)
	assert.Equal(t, "Food", expenses[0].Name)
	assert.Equal(t, "500.00", expenses[0].Total.StringFixed(2))
	assert.Equal(t, int64(2), expenses[0].Count)
	assert.Equal(t, "100.00", expenses[0].Percentage.StringFixed(2))

	income := Breakdown(inWindow, domain.CategoryTypeIncome)
	require.Len(t, income, 2)
	assert.Equal(t, "Salary", income[0].Name)
	assert.Equal(t, "66.67", income[0].Percentage.StringFixed(2))
	assert.Equal(t, "33.33", income[1].Percentage.StringFixed(2))
}

func TestMonthlyComparison_OmitsQuietMonths(t *testing.T) {
	now := day(2024, time.June, 10)
	txns := []*domain.Transaction{
		txn(1, 4, "Food", domain.CategoryTypeExpense, "40.00", day(2024, time.May, 2)),
		txn(2, 1, "Salary", domain.CategoryTypeIncome, "900.00", day(2024, time.March, 28)),
		txn(3, 4, "Food", domain.CategoryTypeExpense, "10.00", day(2024, time.March, 1)),
	}

	rows := MonthlyComparison(txns, now)
	require.Len(t, rows, 2)
	assert.True(t, day(2024, time.March, 1).Equal(rows[0].Month))
	assert.Equal(t, "900.00", rows[0].IncomeTotal.StringFixed(2))
	assert.Equal(t, "10.00", rows[0].ExpenseTotal.StringFixed(2))
	assert.True(t, day(2024, time.May, 1).Equal(rows[1].Month))
	assert.True(t, rows[1].IncomeTotal.IsZero())
}
