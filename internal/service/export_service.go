package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/dafibh/tally/tally-backend/internal/repository/storage"
	"github.com/google/uuid"
)

const (
	ExportURLExpiry   = 15 * time.Minute
	exportContentType = "text/csv"
)

var exportHeader = []string{"date", "category", "type", "description", "amount"}

// ExportService writes report windows as CSV to object storage
type ExportService struct {
	transactionRepo domain.TransactionRepository
	storage         storage.ReportStorage
	now             func() time.Time
}

// NewExportService creates a new ExportService. A nil storage disables exports.
func NewExportService(transactionRepo domain.TransactionRepository, storage storage.ReportStorage) *ExportService {
	return &ExportService{
		transactionRepo: transactionRepo,
		storage:         storage,
		now:             time.Now,
	}
}

// IsEnabled indicates whether exports are supported (storage configured).
func (s *ExportService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// ExportReport uploads every transaction of the window as CSV and returns
// a presigned download link
func (s *ExportService) ExportReport(ctx context.Context, userID int32, window domain.ReportWindow) (*domain.ReportExport, error) {
	if userID == 0 {
		return nil, domain.ErrUnauthorized
	}
	if !s.IsEnabled() {
		return nil, domain.ErrExportNotConfigured
	}

	txns, err := s.transactionRepo.ListByDateRange(userID, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	txns = FilterWindow(txns, window)

	body, err := encodeCSV(txns)
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	key := fmt.Sprintf("users/%d/exports/%s.csv", userID, uuid.New().String())
	if _, err := s.storage.Upload(ctx, key, bytes.NewReader(body), exportContentType, int64(len(body))); err != nil {
		return nil, err
	}

	url, err := s.storage.GeneratePresignedURL(ctx, key, ExportURLExpiry)
	if err != nil {
		return nil, err
	}

	return &domain.ReportExport{
		Window:    window,
		ObjectKey: key,
		URL:       url,
		ExpiresAt: s.now().Add(ExportURLExpiry).UTC(),
		RowCount:  len(txns),
	}, nil
}

// safeCell prefixes text a spreadsheet would evaluate as a formula
func safeCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

func encodeCSV(txns []*domain.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, t := range txns {
		record := []string{
			t.TransactionDate.Format(domain.DateLayout),
			safeCell(t.CategoryName),
			string(t.CategoryType),
			safeCell(t.Description),
			t.Amount.StringFixed(domain.AmountPlaces),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
