package postgres

import (
	"errors"
	"time"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	store
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool, timeout time.Duration) *UserRepository {
	return &UserRepository{store: newStore(pool, timeout)}
}

const userColumns = `id, auth0_id, username, email, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Auth0ID, &u.Username, &u.Email, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id int32) (*domain.User, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, &domain.StorageError{Op: "get user", Err: err}
	}
	return user, nil
}

// GetByAuth0ID retrieves a user by their Auth0 subject
func (r *UserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE auth0_id = $1`, auth0ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, &domain.StorageError{Op: "get user by auth0 id", Err: err}
	}
	return user, nil
}

// CreateWithCategories inserts the user and the seed categories in one
// transaction. A concurrent registration of the same subject yields
// domain.ErrConflict.
func (r *UserRepository) CreateWithCategories(user *domain.User, seeds []domain.CategorySeed) (*domain.User, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	var created *domain.User
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		u, err := scanUser(tx.QueryRow(ctx,
			`INSERT INTO users (auth0_id, username, email) VALUES ($1, $2, $3) RETURNING `+userColumns,
			user.Auth0ID, user.Username, user.Email))
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, seed := range seeds {
			batch.Queue(`INSERT INTO categories (user_id, name, type, color) VALUES ($1, $2, $3, $4)`,
				u.ID, seed.Name, string(seed.Type), seed.Color)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}

		created = u
		return nil
	})
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, &domain.StorageError{Op: "create user", Err: err}
	}
	return created, nil
}
