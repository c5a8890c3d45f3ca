package service

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/dafibh/tally/tally-backend/internal/util"
	"github.com/dafibh/tally/tally-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// TransactionService handles transaction-related business logic
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	categoryRepo    domain.CategoryRepository
	eventPublisher  websocket.EventPublisher
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository, categoryRepo domain.CategoryRepository) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
	}
}

// SetEventPublisher sets the event publisher for ledger change notifications
func (s *TransactionService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// TransactionInput holds the raw, replaceable fields of a transaction.
// Amount and date arrive as strings so that parse failures are reported
// together with every other field failure.
type TransactionInput struct {
	CategoryID      int32
	Amount          string
	Description     string
	TransactionDate string
}

// amountPattern admits plain decimal notation only. Exponent forms such as
// "1e50000000" would make decimal rounding expand the coefficient.
var amountPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

const maxAmountInputLength = 32

// parseAmount returns the amount rounded to cents, or a field message
func parseAmount(raw string) (decimal.Decimal, string) {
	raw = strings.TrimSpace(raw)
	if len(raw) > maxAmountInputLength || !amountPattern.MatchString(raw) {
		return decimal.Zero, "Amount must be a valid decimal number"
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, "Amount must be a valid decimal number"
	}
	amount = amount.Round(domain.AmountPlaces)
	if !amount.IsPositive() {
		return decimal.Zero, "Amount must be greater than zero"
	}
	if amount.GreaterThan(domain.MaxAmount) {
		return decimal.Zero, "Amount is too large"
	}
	return amount, ""
}

// parse validates the input and converts it to a change set
func (s *TransactionService) parse(userID int32, input TransactionInput) (domain.TransactionChange, error) {
	var errs domain.ValidationErrors
	var change domain.TransactionChange

	if input.CategoryID <= 0 {
		errs.Add("categoryId", "Please select a category")
	}

	amount, msg := parseAmount(input.Amount)
	if msg != "" {
		errs.Add("amount", msg)
	}

	description := strings.TrimSpace(input.Description)
	if utf8.RuneCountInString(description) > domain.MaxDescriptionLength {
		errs.Add("description", "Description must be 255 characters or less")
	}

	var date time.Time
	if strings.TrimSpace(input.TransactionDate) == "" {
		errs.Add("transactionDate", "Transaction date is required")
	} else if parsed, ok := util.ParseDate(input.TransactionDate); !ok {
		errs.Add("transactionDate", "Transaction date must be in YYYY-MM-DD format")
	} else {
		date = parsed
	}

	// The category must exist and belong to the same user
	if input.CategoryID > 0 {
		if _, err := s.categoryRepo.GetByID(userID, input.CategoryID); err != nil {
			if !errors.Is(err, domain.ErrCategoryNotFound) {
				return change, err
			}
			errs.Add("categoryId", "Invalid category selected")
		}
	}

	if err := errs.Err(); err != nil {
		return change, err
	}

	change = domain.TransactionChange{
		CategoryID:      input.CategoryID,
		Amount:          amount,
		Description:     description,
		TransactionDate: date,
	}
	return change, nil
}

// CreateTransaction creates a new transaction with validation
func (s *TransactionService) CreateTransaction(userID int32, input TransactionInput) (*domain.Transaction, error) {
	if userID == 0 {
		return nil, domain.ErrUnauthorized
	}

	change, err := s.parse(userID, input)
	if err != nil {
		return nil, err
	}

	transaction, err := s.transactionRepo.Create(&domain.Transaction{
		UserID:          userID,
		CategoryID:      change.CategoryID,
		Amount:          change.Amount,
		Description:     change.Description,
		TransactionDate: change.TransactionDate,
	})
	if err != nil {
		return nil, invalidCategoryOr(err)
	}

	s.publish(userID, websocket.TransactionCreated(transaction))
	return transaction, nil
}

// GetTransaction retrieves a transaction by ID for a user
func (s *TransactionService) GetTransaction(userID int32, id int32) (*domain.Transaction, error) {
	if userID == 0 {
		return nil, domain.ErrUnauthorized
	}
	return s.transactionRepo.GetByID(userID, id)
}

// GetTransactions retrieves a filtered page of the user's transactions
func (s *TransactionService) GetTransactions(userID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	if userID == 0 {
		return nil, domain.ErrUnauthorized
	}
	if filters == nil {
		filters = &domain.TransactionFilters{}
	}
	if filters.DescriptionContains != nil && strings.TrimSpace(*filters.DescriptionContains) == "" {
		filters.DescriptionContains = nil
	}
	filters.Normalize()
	return s.transactionRepo.Query(userID, filters)
}

// UpdateTransaction replaces category, amount, description and date
func (s *TransactionService) UpdateTransaction(userID int32, id int32, input TransactionInput) (*domain.Transaction, error) {
	if userID == 0 {
		return nil, domain.ErrUnauthorized
	}

	if _, err := s.transactionRepo.GetByID(userID, id); err != nil {
		return nil, err
	}

	change, err := s.parse(userID, input)
	if err != nil {
		return nil, err
	}

	transaction, err := s.transactionRepo.Update(userID, id, change)
	if err != nil {
		return nil, invalidCategoryOr(err)
	}

	s.publish(userID, websocket.TransactionUpdated(transaction))
	return transaction, nil
}

// DeleteTransaction removes a transaction
func (s *TransactionService) DeleteTransaction(userID int32, id int32) error {
	if userID == 0 {
		return domain.ErrUnauthorized
	}
	if err := s.transactionRepo.Delete(userID, id); err != nil {
		return err
	}

	s.publish(userID, websocket.TransactionDeleted(map[string]int32{"id": id}))
	return nil
}

// invalidCategoryOr turns a category vanishing between validation and the
// locked write into the same field error validation would have produced.
func invalidCategoryOr(err error) error {
	if errors.Is(err, domain.ErrCategoryNotFound) {
		return domain.ValidationErrors{{Field: "categoryId", Message: "Invalid category selected"}}
	}
	return err
}

func (s *TransactionService) publish(userID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}
