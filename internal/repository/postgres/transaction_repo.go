package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	store
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool, timeout time.Duration) *TransactionRepository {
	return &TransactionRepository{store: newStore(pool, timeout)}
}

// querier is satisfied by both the pool and a transaction
type querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var amount pgtype.Numeric
	var date pgtype.Date
	var categoryType string
	err := row.Scan(&t.ID, &t.UserID, &t.CategoryID, &amount, &t.Description, &date, &t.CreatedAt,
		&t.CategoryName, &categoryType, &t.CategoryColor)
	if err != nil {
		return nil, err
	}
	t.Amount = pgNumericToDecimal(amount)
	t.TransactionDate = date.Time
	t.CategoryType = domain.CategoryType(categoryType)
	return &t, nil
}

func collectTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	defer rows.Close()

	result := make([]*domain.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func getTransaction(ctx context.Context, q querier, userID, id int32) (*domain.Transaction, error) {
	t, err := scanTransaction(q.QueryRow(ctx, transactionSelect+` WHERE t.id = $1 AND t.user_id = $2`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	return t, err
}

// shareLockCategory blocks concurrent type changes and deletes of the
// category until the surrounding transaction ends
func shareLockCategory(ctx context.Context, tx pgx.Tx, userID, categoryID int32) error {
	var id int32
	err := tx.QueryRow(ctx,
		`SELECT id FROM categories WHERE id = $1 AND user_id = $2 FOR SHARE`, categoryID, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrCategoryNotFound
	}
	return err
}

// Create inserts a transaction referencing a category of the same user
func (r *TransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, &domain.StorageError{Op: "encode amount", Err: err}
	}

	ctx, cancel := r.ctx()
	defer cancel()

	var created *domain.Transaction
	err = r.inTx(ctx, func(tx pgx.Tx) error {
		if err := shareLockCategory(ctx, tx, transaction.UserID, transaction.CategoryID); err != nil {
			return err
		}

		var id int32
		err := tx.QueryRow(ctx,
			`INSERT INTO transactions (user_id, category_id, amount, description, transaction_date)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			transaction.UserID, transaction.CategoryID, amount, transaction.Description,
			dateToPg(transaction.TransactionDate)).Scan(&id)
		if err != nil {
			return err
		}

		created, err = getTransaction(ctx, tx, transaction.UserID, id)
		return err
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, &domain.StorageError{Op: "create transaction", Err: err}
	}
	return created, nil
}

// GetByID retrieves a transaction owned by userID
func (r *TransactionRepository) GetByID(userID int32, id int32) (*domain.Transaction, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	t, err := getTransaction(ctx, r.pool, userID, id)
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, &domain.StorageError{Op: "get transaction", Err: err}
	}
	return t, nil
}

// Update replaces the editable fields of a transaction
func (r *TransactionRepository) Update(userID int32, id int32, change domain.TransactionChange) (*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(change.Amount)
	if err != nil {
		return nil, &domain.StorageError{Op: "encode amount", Err: err}
	}

	ctx, cancel := r.ctx()
	defer cancel()

	var updated *domain.Transaction
	err = r.inTx(ctx, func(tx pgx.Tx) error {
		if err := shareLockCategory(ctx, tx, userID, change.CategoryID); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx,
			`UPDATE transactions
			 SET category_id = $3, amount = $4, description = $5, transaction_date = $6
			 WHERE id = $1 AND user_id = $2`,
			id, userID, change.CategoryID, amount, change.Description, dateToPg(change.TransactionDate))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrTransactionNotFound
		}

		updated, err = getTransaction(ctx, tx, userID, id)
		return err
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, &domain.StorageError{Op: "update transaction", Err: err}
	}
	return updated, nil
}

// Delete removes a transaction
func (r *TransactionRepository) Delete(userID int32, id int32) error {
	ctx, cancel := r.ctx()
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return &domain.StorageError{Op: "delete transaction", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// Query returns one page of the filtered transactions and the filtered count
func (r *TransactionRepository) Query(userID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	if filters == nil {
		filters = &domain.TransactionFilters{}
	}
	filters.Normalize()

	ctx, cancel := r.ctx()
	defer cancel()

	where := buildTransactionWhere(userID, filters)

	var total int64
	countSQL := `SELECT COUNT(*) FROM transactions t` + where.String()
	if err := r.pool.QueryRow(ctx, countSQL, where.args...).Scan(&total); err != nil {
		return nil, &domain.StorageError{Op: "count transactions", Err: err}
	}

	data := make([]*domain.Transaction, 0)
	if filters.Offset() < total {
		pageSQL := transactionSelect + where.String() + transactionOrder +
			` LIMIT ` + where.placeholder(filters.PageSize) +
			` OFFSET ` + where.placeholder(filters.Offset())
		rows, err := r.pool.Query(ctx, pageSQL, where.args...)
		if err != nil {
			return nil, &domain.StorageError{Op: "query transactions", Err: err}
		}
		if data, err = collectTransactions(rows); err != nil {
			return nil, &domain.StorageError{Op: "scan transactions", Err: err}
		}
	}

	return &domain.PaginatedTransactions{
		Data:       data,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalItems: total,
		TotalPages: domain.CalculateTotalPages(total, filters.PageSize),
	}, nil
}

// ListByDateRange returns every transaction dated within [start, end]
func (r *TransactionRepository) ListByDateRange(userID int32, start, end time.Time) ([]*domain.Transaction, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	rows, err := r.pool.Query(ctx, transactionSelect+`
		WHERE t.user_id = $1 AND t.transaction_date BETWEEN $2 AND $3
		ORDER BY t.transaction_date, t.created_at, t.id`,
		userID, dateToPg(start), dateToPg(end))
	if err != nil {
		return nil, &domain.StorageError{Op: "list transactions by date", Err: err}
	}
	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, &domain.StorageError{Op: "scan transactions", Err: err}
	}
	return txns, nil
}

// ListRecent returns the newest transactions in query order
func (r *TransactionRepository) ListRecent(userID int32, limit int32) ([]*domain.Transaction, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	rows, err := r.pool.Query(ctx, transactionSelect+` WHERE t.user_id = $1`+transactionOrder+` LIMIT $2`, userID, limit)
	if err != nil {
		return nil, &domain.StorageError{Op: "list recent transactions", Err: err}
	}
	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, &domain.StorageError{Op: "scan transactions", Err: err}
	}
	return txns, nil
}
