package service

import (
	"time"

	"github.com/dafibh/tally/tally-backend/internal/domain"
)

// DashboardService handles dashboard-related business logic
type DashboardService struct {
	transactionRepo domain.TransactionRepository
	now             func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(transactionRepo domain.TransactionRepository) *DashboardService {
	return &DashboardService{
		transactionRepo: transactionRepo,
		now:             time.Now,
	}
}

// SetClock overrides the clock used to pick the current month
func (s *DashboardService) SetClock(now func() time.Time) {
	s.now = now
}

// GetDashboard returns the current month's totals, the most recent
// transactions and the largest expense categories
func (s *DashboardService) GetDashboard(userID int32) (*domain.Dashboard, error) {
	if userID == 0 {
		return nil, domain.ErrUnauthorized
	}

	window := ResolveWindow(domain.ReportTypeMonthly, "", "", s.now())

	txns, err := s.transactionRepo.ListByDateRange(userID, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	txns = FilterWindow(txns, window)

	recent, err := s.transactionRepo.ListRecent(userID, domain.DashboardRecentLimit)
	if err != nil {
		return nil, err
	}

	top := Breakdown(txns, domain.CategoryTypeExpense)
	if len(top) > domain.DashboardTopCategories {
		top = top[:domain.DashboardTopCategories]
	}

	return &domain.Dashboard{
		Window:             window,
		Summary:            Summarize(txns),
		RecentTransactions: recent,
		TopExpenses:        top,
	}, nil
}
