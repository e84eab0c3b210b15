// internal/auth/repository.go
package auth

import (
	"context"
	"database/sql"
	"fmt"

	"jobtrail/internal/common/database"
	"jobtrail/internal/common/errors"
	"jobtrail/internal/common/logger"
	"jobtrail/internal/models"
)

// Repository persists user accounts in Postgres.
type Repository struct {
	db     *sql.DB
	logger logger.Logger
}

// NewRepository creates the user repository.
func NewRepository(pg *database.PostgresClient, log logger.Logger) *Repository {
	return &Repository{db: pg.DB, logger: log}
}

const userColumns = `id, email, username, first_name, last_name, password_hash, verified, created_at`

// Create inserts a new user row.
func (r *Repository) Create(ctx context.Context, user models.User) error {
	query := `
		INSERT INTO users (id, email, username, first_name, last_name, password_hash, verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Username, user.FirstName, user.LastName,
		user.PasswordHash, user.Verified, user.CreatedAt)
	if err != nil {
		return errors.NewStorageError(fmt.Errorf("failed to insert user: %w", err))
	}
	return nil
}

// GetByEmail loads a user by email address. Returns nil without error when
// no account matches, so uniqueness checks can tell absence from failures.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", email)
}

// GetByUsername loads a user by username; nil when no account matches.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "username", username)
}

// GetByID loads a user by id; nil when no account matches.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *Repository) getBy(ctx context.Context, column, value string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, userColumns, column)

	var user models.User
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID, &user.Email, &user.Username, &user.FirstName, &user.LastName,
		&user.PasswordHash, &user.Verified, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStorageError(fmt.Errorf("failed to load user by %s: %w", column, err))
	}
	return &user, nil
}

// MarkVerified flips the verified flag after the email round-trip.
func (r *Repository) MarkVerified(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET verified = TRUE WHERE id = $1`, id)
	if err != nil {
		return errors.NewStorageError(fmt.Errorf("failed to mark user verified: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.NewStorageError(fmt.Errorf("failed to read affected rows: %w", err))
	}
	if affected == 0 {
		return errors.NewNotFoundError("user")
	}
	return nil
}
