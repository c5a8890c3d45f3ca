package domain

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Valid reports whether t is one of the two ledger sides.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// Validation constants
const (
	MinCategoryNameLength = 2
	MaxCategoryNameLength = 100
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidColor reports whether color is '#' followed by six hex digits.
func ValidColor(color string) bool {
	return colorPattern.MatchString(color)
}

type Category struct {
	ID        int32        `json:"id"`
	UserID    int32        `json:"userId"`
	Name      string       `json:"name"`
	Type      CategoryType `json:"type"`
	Color     string       `json:"color"`
	CreatedAt time.Time    `json:"createdAt"`
}

// CategoryWithStats is a category with its lifetime usage.
type CategoryWithStats struct {
	Category
	TransactionCount int64           `json:"transactionCount"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
}

// CategorySeed is a default category created for every new user.
type CategorySeed struct {
	Name  string
	Type  CategoryType
	Color string
}

// DefaultCategories is the fixed seed list applied on user creation.
// Clients rely on these names and colors.
var DefaultCategories = []CategorySeed{
	{Name: "Salary", Type: CategoryTypeIncome, Color: "#28a745"},
	{Name: "Freelance", Type: CategoryTypeIncome, Color: "#17a2b8"},
	{Name: "Investment", Type: CategoryTypeIncome, Color: "#20c997"},
	{Name: "Food & Dining", Type: CategoryTypeExpense, Color: "#dc3545"},
	{Name: "Transportation", Type: CategoryTypeExpense, Color: "#ffc107"},
	{Name: "Utilities", Type: CategoryTypeExpense, Color: "#6f42c1"},
	{Name: "Entertainment", Type: CategoryTypeExpense, Color: "#fd7e14"},
	{Name: "Healthcare", Type: CategoryTypeExpense, Color: "#e83e8c"},
	{Name: "Shopping", Type: CategoryTypeExpense, Color: "#6610f2"},
}

// CategoryChange carries the replacement fields for an update.
type CategoryChange struct {
	Name  string
	Type  CategoryType
	Color string
}

type CategoryRepository interface {
	Create(category *Category) (*Category, error)
	GetByID(userID int32, id int32) (*Category, error)
	GetByName(userID int32, name string) (*Category, error)
	ListWithStats(userID int32) ([]*CategoryWithStats, error)
	// Update applies change under a row lock. It returns ErrCategoryTypeLocked
	// when the type differs and the category is referenced.
	Update(userID int32, id int32, change CategoryChange) (*Category, error)
	// Delete removes an unreferenced category under a row lock, or returns a
	// *DependentTransactionsError.
	Delete(userID int32, id int32) error
	CountTransactions(userID int32, id int32) (int64, error)
}
