package testutil

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/dafibh/tally/tally-backend/internal/util"
	"github.com/shopspring/decimal"
)

// MockLedger is an in-memory store shared by the category, transaction and
// user mocks so that joins, ownership and reference checks behave like the
// database. CreatedAt values increase by one second per insert.
type MockLedger struct {
	mu           sync.Mutex
	users        map[int32]*domain.User
	categories   map[int32]*domain.Category
	transactions map[int32]*domain.Transaction
	nextUserID   int32
	nextCatID    int32
	nextTxID     int32
	clock        time.Time
}

// NewMockLedger creates an empty MockLedger
func NewMockLedger() *MockLedger {
	return &MockLedger{
		users:        make(map[int32]*domain.User),
		categories:   make(map[int32]*domain.Category),
		transactions: make(map[int32]*domain.Transaction),
		clock:        time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (l *MockLedger) tick() time.Time {
	l.clock = l.clock.Add(time.Second)
	return l.clock
}

// AddCategory inserts a category directly, bypassing validation
func (l *MockLedger) AddCategory(userID int32, name string, categoryType domain.CategoryType, color string) *domain.Category {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.addCategory(userID, name, categoryType, color)
}

func (l *MockLedger) addCategory(userID int32, name string, categoryType domain.CategoryType, color string) *domain.Category {
	l.nextCatID++
	c := &domain.Category{
		ID:        l.nextCatID,
		UserID:    userID,
		Name:      name,
		Type:      categoryType,
		Color:     color,
		CreatedAt: l.tick(),
	}
	l.categories[c.ID] = c
	cp := *c
	return &cp
}

// AddTransaction inserts a transaction directly. amount and date use the
// wire formats ("12.50", "2024-03-05").
func (l *MockLedger) AddTransaction(userID, categoryID int32, amount, date, description string) *domain.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	d, _ := util.ParseDate(date)
	l.nextTxID++
	t := &domain.Transaction{
		ID:              l.nextTxID,
		UserID:          userID,
		CategoryID:      categoryID,
		Amount:          decimal.RequireFromString(amount),
		Description:     description,
		TransactionDate: d,
		CreatedAt:       l.tick(),
	}
	l.transactions[t.ID] = t
	return l.joined(t)
}

// joined returns a copy of t carrying its category's current fields
func (l *MockLedger) joined(t *domain.Transaction) *domain.Transaction {
	cp := *t
	if c, ok := l.categories[t.CategoryID]; ok {
		cp.CategoryName = c.Name
		cp.CategoryType = c.Type
		cp.CategoryColor = c.Color
	}
	return &cp
}

func (l *MockLedger) ownedCategory(userID, id int32) (*domain.Category, bool) {
	c, ok := l.categories[id]
	if !ok || c.UserID != userID {
		return nil, false
	}
	return c, true
}

func (l *MockLedger) references(categoryID int32) int64 {
	var n int64
	for _, t := range l.transactions {
		if t.CategoryID == categoryID {
			n++
		}
	}
	return n
}

// CategoryCount returns the number of categories owned by userID
func (l *MockLedger) CategoryCount(userID int32) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.categories {
		if c.UserID == userID {
			n++
		}
	}
	return n
}

// TransactionCount returns the number of stored transactions
func (l *MockLedger) TransactionCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.transactions)
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	*MockLedger
	// Err, when set, is returned by every method
	Err error
}

// Categories returns a category repository over the ledger
func (l *MockLedger) Categories() *MockCategoryRepository {
	return &MockCategoryRepository{MockLedger: l}
}

// Create creates a new category, enforcing per-user name uniqueness
func (m *MockCategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.categories {
		if c.UserID == category.UserID && c.Name == category.Name {
			return nil, domain.ErrCategoryNameTaken
		}
	}
	return m.addCategory(category.UserID, category.Name, category.Type, category.Color), nil
}

// GetByID retrieves a category owned by userID
func (m *MockCategoryRepository) GetByID(userID int32, id int32) (*domain.Category, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.ownedCategory(userID, id)
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

// GetByName retrieves a category by exact name
func (m *MockCategoryRepository) GetByName(userID int32, name string) (*domain.Category, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.categories {
		if c.UserID == userID && c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

// ListWithStats lists categories with usage, ordered by type then name
func (m *MockCategoryRepository) ListWithStats(userID int32) ([]*domain.CategoryWithStats, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*domain.CategoryWithStats, 0)
	for _, c := range m.categories {
		if c.UserID != userID {
			continue
		}
		item := &domain.CategoryWithStats{Category: *c, TotalAmount: decimal.Zero}
		for _, t := range m.transactions {
			if t.CategoryID == c.ID {
				item.TransactionCount++
				item.TotalAmount = item.TotalAmount.Add(t.Amount)
			}
		}
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Type != result[j].Type {
			return result[i].Type < result[j].Type
		}
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Update applies change, refusing a type change while referenced
func (m *MockCategoryRepository) Update(userID int32, id int32, change domain.CategoryChange) (*domain.Category, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.ownedCategory(userID, id)
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	if c.Type != change.Type && m.references(id) > 0 {
		return nil, domain.ErrCategoryTypeLocked
	}
	for _, other := range m.categories {
		if other.ID != id && other.UserID == userID && other.Name == change.Name {
			return nil, domain.ErrCategoryNameTaken
		}
	}

	c.Name = change.Name
	c.Type = change.Type
	c.Color = change.Color
	cp := *c
	return &cp, nil
}

// Delete removes an unreferenced category
func (m *MockCategoryRepository) Delete(userID int32, id int32) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ownedCategory(userID, id); !ok {
		return domain.ErrCategoryNotFound
	}
	if n := m.references(id); n > 0 {
		return &domain.DependentTransactionsError{CategoryID: id, Count: n}
	}
	delete(m.categories, id)
	return nil
}

// CountTransactions counts the transactions referencing the category
func (m *MockCategoryRepository) CountTransactions(userID int32, id int32) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.references(id), nil
}

// MockTransactionRepository is a mock implementation of domain.TransactionRepository
type MockTransactionRepository struct {
	*MockLedger
	// Err, when set, is returned by every method
	Err error
}

// Transactions returns a transaction repository over the ledger
func (l *MockLedger) Transactions() *MockTransactionRepository {
	return &MockTransactionRepository{MockLedger: l}
}

// Create inserts a transaction referencing a category of the same user
func (m *MockTransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ownedCategory(transaction.UserID, transaction.CategoryID); !ok {
		return nil, domain.ErrCategoryNotFound
	}
	m.nextTxID++
	t := &domain.Transaction{
		ID:              m.nextTxID,
		UserID:          transaction.UserID,
		CategoryID:      transaction.CategoryID,
		Amount:          transaction.Amount,
		Description:     transaction.Description,
		TransactionDate: transaction.TransactionDate,
		CreatedAt:       m.tick(),
	}
	m.transactions[t.ID] = t
	return m.joined(t), nil
}

// GetByID retrieves a transaction owned by userID
func (m *MockTransactionRepository) GetByID(userID int32, id int32) (*domain.Transaction, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.transactions[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrTransactionNotFound
	}
	return m.joined(t), nil
}

// Update replaces the editable fields
func (m *MockTransactionRepository) Update(userID int32, id int32, change domain.TransactionChange) (*domain.Transaction, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ownedCategory(userID, change.CategoryID); !ok {
		return nil, domain.ErrCategoryNotFound
	}
	t, ok := m.transactions[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrTransactionNotFound
	}
	t.CategoryID = change.CategoryID
	t.Amount = change.Amount
	t.Description = change.Description
	t.TransactionDate = change.TransactionDate
	return m.joined(t), nil
}

// Delete removes a transaction
func (m *MockTransactionRepository) Delete(userID int32, id int32) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.transactions[id]
	if !ok || t.UserID != userID {
		return domain.ErrTransactionNotFound
	}
	delete(m.transactions, id)
	return nil
}

func (m *MockTransactionRepository) matching(userID int32, keep func(*domain.Transaction) bool) []*domain.Transaction {
	out := make([]*domain.Transaction, 0)
	for _, t := range m.transactions {
		if t.UserID == userID && keep(t) {
			out = append(out, m.joined(t))
		}
	}
	return out
}

func newestFirst(txns []*domain.Transaction) {
	sort.Slice(txns, func(i, j int) bool {
		a, b := txns[i], txns[j]
		if !a.TransactionDate.Equal(b.TransactionDate) {
			return a.TransactionDate.After(b.TransactionDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

// Query filters, orders and paginates like the SQL implementation
func (m *MockTransactionRepository) Query(userID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if filters == nil {
		filters = &domain.TransactionFilters{}
	}
	filters.Normalize()

	m.mu.Lock()
	defer m.mu.Unlock()

	all := m.matching(userID, func(t *domain.Transaction) bool {
		if filters.DescriptionContains != nil &&
			!strings.Contains(strings.ToLower(t.Description), strings.ToLower(*filters.DescriptionContains)) {
			return false
		}
		if filters.CategoryID != nil && t.CategoryID != *filters.CategoryID {
			return false
		}
		if filters.Month != nil {
			if t.TransactionDate.Year() != filters.Month.Year() || t.TransactionDate.Month() != filters.Month.Month() {
				return false
			}
		}
		return true
	})
	newestFirst(all)

	total := int64(len(all))
	start := filters.Offset()
	if start > total {
		start = total
	}
	end := start + int64(filters.PageSize)
	if end > total {
		end = total
	}

	return &domain.PaginatedTransactions{
		Data:       all[start:end],
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalItems: total,
		TotalPages: domain.CalculateTotalPages(total, filters.PageSize),
	}, nil
}

// ListByDateRange returns transactions dated within [start, end], oldest first
func (m *MockTransactionRepository) ListByDateRange(userID int32, start, end time.Time) ([]*domain.Transaction, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	window := domain.ReportWindow{Start: start, End: end}
	out := m.matching(userID, func(t *domain.Transaction) bool { return window.Contains(t.TransactionDate) })
	newestFirst(out)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// ListRecent returns the newest transactions
func (m *MockTransactionRepository) ListRecent(userID int32, limit int32) ([]*domain.Transaction, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.matching(userID, func(*domain.Transaction) bool { return true })
	newestFirst(out)
	if int32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	*MockLedger
	// CreateErr, when set, is returned by CreateWithCategories
	CreateErr error
	// CreateCalls counts CreateWithCategories invocations
	CreateCalls int
}

// Users returns a user repository over the ledger
func (l *MockLedger) Users() *MockUserRepository {
	return &MockUserRepository{MockLedger: l}
}

// AddUser inserts a user directly
func (l *MockLedger) AddUser(auth0ID, username, email string) *domain.User {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.addUser(auth0ID, username, email)
}

func (l *MockLedger) addUser(auth0ID, username, email string) *domain.User {
	l.nextUserID++
	u := &domain.User{ID: l.nextUserID, Auth0ID: auth0ID, Username: username, Email: email, CreatedAt: l.tick()}
	l.users[u.ID] = u
	cp := *u
	return &cp
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id int32) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByAuth0ID retrieves a user by Auth0 subject
func (m *MockUserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Auth0ID == auth0ID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// CreateWithCategories creates the user and its seed categories
func (m *MockUserRepository) CreateWithCategories(user *domain.User, seeds []domain.CategorySeed) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls++
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	for _, u := range m.users {
		if u.Auth0ID == user.Auth0ID {
			return nil, domain.ErrConflict
		}
	}

	created := m.addUser(user.Auth0ID, user.Username, user.Email)
	for _, seed := range seeds {
		m.addCategory(created.ID, seed.Name, seed.Type, seed.Color)
	}
	return created, nil
}
