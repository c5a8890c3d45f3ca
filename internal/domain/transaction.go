package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage format of calendar dates
const DateLayout = "2006-01-02"

// MonthLayout is the format of a calendar year-month filter
const MonthLayout = "2006-01"

// Validation constants
const (
	MaxDescriptionLength = 255
	AmountPlaces         = 2
)

// MaxAmount is the largest amount NUMERIC(12,2) can hold.
var MaxAmount = decimal.RequireFromString("9999999999.99")

type Transaction struct {
	ID              int32           `json:"id"`
	UserID          int32           `json:"userId"`
	CategoryID      int32           `json:"categoryId"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	TransactionDate time.Time       `json:"transactionDate"`
	CreatedAt       time.Time       `json:"createdAt"`

	// Joined from the owning category on reads.
	CategoryName  string       `json:"categoryName,omitempty"`
	CategoryType  CategoryType `json:"categoryType,omitempty"`
	CategoryColor string       `json:"categoryColor,omitempty"`
}

// TransactionFilters is the set of optional predicates for a transaction
// query. Nil fields do not filter.
type TransactionFilters struct {
	DescriptionContains *string
	CategoryID          *int32
	Month               *time.Time // first day of the month
	Page                int32
	PageSize            int32
}

const (
	DefaultPageSize = 15
	MaxPageSize     = 100
)

// Normalize clamps page and page size into their valid ranges.
func (f *TransactionFilters) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

// Offset is the number of rows skipped before the current page.
func (f *TransactionFilters) Offset() int64 {
	return int64(f.Page-1) * int64(f.PageSize)
}

type PaginatedTransactions struct {
	Data       []*Transaction `json:"data"`
	Page       int32          `json:"page"`
	PageSize   int32          `json:"pageSize"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int32          `json:"totalPages"`
}

// CalculateTotalPages returns ceil(total/pageSize).
func CalculateTotalPages(total int64, pageSize int32) int32 {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int32((total + int64(pageSize) - 1) / int64(pageSize))
}

// TransactionChange carries the replaceable fields of a transaction.
type TransactionChange struct {
	CategoryID      int32
	Amount          decimal.Decimal
	Description     string
	TransactionDate time.Time
}

type TransactionRepository interface {
	// Create inserts under a shared lock on the category and returns
	// ErrCategoryNotFound when it is missing or owned by another user.
	Create(transaction *Transaction) (*Transaction, error)
	GetByID(userID int32, id int32) (*Transaction, error)
	Update(userID int32, id int32, change TransactionChange) (*Transaction, error)
	Delete(userID int32, id int32) error
	Query(userID int32, filters *TransactionFilters) (*PaginatedTransactions, error)
	// ListByDateRange returns all transactions with a date in [start, end],
	// joined with their categories, ordered by date ascending.
	ListByDateRange(userID int32, start, end time.Time) ([]*Transaction, error)
	ListRecent(userID int32, limit int32) ([]*Transaction, error)
}
