package service

import (
	"time"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/dafibh/tally/tally-backend/internal/util"
	"golang.org/x/sync/errgroup"
)

// ReportService builds windowed aggregate reports. Nothing is cached; every
// call recomputes from stored transactions.
type ReportService struct {
	transactionRepo domain.TransactionRepository
	now             func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(transactionRepo domain.TransactionRepository) *ReportService {
	return &ReportService{
		transactionRepo: transactionRepo,
		now:             time.Now,
	}
}

// SetClock overrides the clock used to resolve windows
func (s *ReportService) SetClock(now func() time.Time) {
	s.now = now
}

// ResolveWindow resolves a named report type against the service clock
func (s *ReportService) ResolveWindow(reportType domain.ReportType, startDate, endDate string) domain.ReportWindow {
	return ResolveWindow(reportType, startDate, endDate, s.now())
}

// GetReport computes the summary, breakdowns, daily trend and trailing
// monthly comparison for the resolved window
func (s *ReportService) GetReport(userID int32, window domain.ReportWindow) (*domain.Report, error) {
	if userID == 0 {
		return nil, domain.ErrUnauthorized
	}

	now := s.now()
	trailingStart, trailingEnd := util.TrailingMonths(util.DateOnly(now), domain.ComparisonMonths)

	var inWindow, trailing []*domain.Transaction
	var g errgroup.Group
	g.Go(func() error {
		var err error
		inWindow, err = s.transactionRepo.ListByDateRange(userID, window.Start, window.End)
		return err
	})
	g.Go(func() error {
		var err error
		trailing, err = s.transactionRepo.ListByDateRange(userID, trailingStart, trailingEnd)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	inWindow = FilterWindow(inWindow, window)

	return &domain.Report{
		Window:            window,
		Summary:           Summarize(inWindow),
		IncomeBreakdown:   Breakdown(inWindow, domain.CategoryTypeIncome),
		ExpenseBreakdown:  Breakdown(inWindow, domain.CategoryTypeExpense),
		DailyTrend:        DailyTrend(inWindow),
		MonthlyComparison: MonthlyComparison(trailing, now),
	}, nil
}
