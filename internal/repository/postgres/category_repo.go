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

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	store
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool, timeout time.Duration) *CategoryRepository {
	return &CategoryRepository{store: newStore(pool, timeout)}
}

const categoryColumns = `id, user_id, name, type, color, created_at`

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	var categoryType string
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &categoryType, &c.Color, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Type = domain.CategoryType(categoryType)
	return &c, nil
}

// Create creates a new category
func (r *CategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	created, err := scanCategory(r.pool.QueryRow(ctx,
		`INSERT INTO categories (user_id, name, type, color) VALUES ($1, $2, $3, $4) RETURNING `+categoryColumns,
		category.UserID, category.Name, string(category.Type), category.Color))
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrCategoryNameTaken
		}
		return nil, &domain.StorageError{Op: "create category", Err: err}
	}
	return created, nil
}

// GetByID retrieves a category owned by userID
func (r *CategoryRepository) GetByID(userID int32, id int32) (*domain.Category, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	category, err := scanCategory(r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, &domain.StorageError{Op: "get category", Err: err}
	}
	return category, nil
}

// GetByName retrieves a category by its exact name
func (r *CategoryRepository) GetByName(userID int32, name string) (*domain.Category, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	category, err := scanCategory(r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = $1 AND name = $2`, userID, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, &domain.StorageError{Op: "get category by name", Err: err}
	}
	return category, nil
}

// ListWithStats returns every category of the user with lifetime usage,
// ordered by type then name
func (r *CategoryRepository) ListWithStats(userID int32) ([]*domain.CategoryWithStats, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.user_id, c.name, c.type, c.color, c.created_at,
		       COUNT(t.id), COALESCE(SUM(t.amount), 0)
		FROM categories c
		LEFT JOIN transactions t ON t.category_id = c.id AND t.user_id = c.user_id
		WHERE c.user_id = $1
		GROUP BY c.id
		ORDER BY c.type, c.name, c.id`, userID)
	if err != nil {
		return nil, &domain.StorageError{Op: "list categories", Err: err}
	}
	defer rows.Close()

	result := make([]*domain.CategoryWithStats, 0)
	for rows.Next() {
		var item domain.CategoryWithStats
		var categoryType string
		var total pgtype.Numeric
		if err := rows.Scan(&item.ID, &item.UserID, &item.Name, &categoryType, &item.Color, &item.CreatedAt,
			&item.TransactionCount, &total); err != nil {
			return nil, &domain.StorageError{Op: "scan category", Err: err}
		}
		item.Type = domain.CategoryType(categoryType)
		item.TotalAmount = pgNumericToDecimal(total)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "list categories", Err: err}
	}
	return result, nil
}

// lockCategory takes a row lock on the category and returns its current type
func lockCategory(ctx context.Context, tx pgx.Tx, userID, id int32) (domain.CategoryType, error) {
	var categoryType string
	err := tx.QueryRow(ctx,
		`SELECT type FROM categories WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, userID).Scan(&categoryType)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrCategoryNotFound
	}
	return domain.CategoryType(categoryType), err
}

func countReferences(ctx context.Context, q pgx.Tx, id int32) (int64, error) {
	var n int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE category_id = $1`, id).Scan(&n)
	return n, err
}

// Update applies change while holding the category row lock
func (r *CategoryRepository) Update(userID int32, id int32, change domain.CategoryChange) (*domain.Category, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	var updated *domain.Category
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		current, err := lockCategory(ctx, tx, userID, id)
		if err != nil {
			return err
		}

		if current != change.Type {
			n, err := countReferences(ctx, tx, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return domain.ErrCategoryTypeLocked
			}
		}

		updated, err = scanCategory(tx.QueryRow(ctx,
			`UPDATE categories SET name = $3, type = $4, color = $5
			 WHERE id = $1 AND user_id = $2 RETURNING `+categoryColumns,
			id, userID, change.Name, string(change.Type), change.Color))
		return err
	})
	switch {
	case err == nil:
		return updated, nil
	case isPgUniqueViolation(err):
		return nil, domain.ErrCategoryNameTaken
	case isDomainError(err):
		return nil, err
	default:
		return nil, &domain.StorageError{Op: "update category", Err: err}
	}
}

// Delete removes the category unless a transaction references it
func (r *CategoryRepository) Delete(userID int32, id int32) error {
	ctx, cancel := r.ctx()
	defer cancel()

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := lockCategory(ctx, tx, userID, id); err != nil {
			return err
		}

		n, err := countReferences(ctx, tx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return &domain.DependentTransactionsError{CategoryID: id, Count: n}
		}

		_, err = tx.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
		return err
	})
	switch {
	case err == nil:
		return nil
	case isPgForeignKeyViolation(err):
		return domain.ErrCategoryHasEntries
	case isDomainError(err):
		return err
	default:
		return &domain.StorageError{Op: "delete category", Err: err}
	}
}

// CountTransactions returns how many transactions reference the category
func (r *CategoryRepository) CountTransactions(userID int32, id int32) (int64, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = $1 AND user_id = $2`, id, userID).Scan(&n)
	if err != nil {
		return 0, &domain.StorageError{Op: "count category transactions", Err: err}
	}
	return n, nil
}

// isDomainError reports errors produced inside a transaction body that must
// reach the caller unwrapped
func isDomainError(err error) bool {
	return errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict)
}
