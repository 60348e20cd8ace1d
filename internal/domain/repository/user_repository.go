package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"miniblog/internal/common"
	"miniblog/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)

	// RecordFailedLogin increments the consecutive-failure counter and, when the
	// incremented value reaches threshold, arms the lock for lockFor. The whole
	// transition is a single statement so concurrent failures serialize on the
	// row lock instead of losing updates.
	RecordFailedLogin(ctx context.Context, id string, threshold int, lockFor time.Duration) (int, *time.Time, error)

	// ResetLoginAttempts zeroes the failure counter and clears any lock.
	ResetLoginAttempts(ctx context.Context, id string) error
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, username, email, hashed_password, is_admin, login_attempts, lock_until, created_at, updated_at`

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, username, email, hashed_password, is_admin)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Username, user.Email, user.HashedPassword, user.IsAdmin)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("username or email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email), "FindByEmail")
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, username), "FindByUsername")
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id), "FindByID")
}

func (r *pgUserRepository) scanUser(row *sql.Row, op string) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.IsAdmin,
		&user.LoginAttempts, &user.LockUntil, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.%s: %w", op, err)
	}
	return user, nil
}

func (r *pgUserRepository) RecordFailedLogin(ctx context.Context, id string, threshold int, lockFor time.Duration) (int, *time.Time, error) {
	query := `UPDATE users
	          SET login_attempts = login_attempts + 1,
	              lock_until = CASE WHEN login_attempts + 1 >= $2
	                                THEN NOW() + make_interval(mins => $3)
	                                ELSE lock_until END,
	              updated_at = NOW()
	          WHERE id = $1
	          RETURNING login_attempts, lock_until`

	var attempts int
	var lockUntil *time.Time
	err := r.db.QueryRowContext(ctx, query, id, threshold, int(lockFor.Minutes())).Scan(&attempts, &lockUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil, common.ErrNotFound
		}
		return 0, nil, fmt.Errorf("pgUserRepository.RecordFailedLogin: %w", err)
	}
	return attempts, lockUntil, nil
}

func (r *pgUserRepository) ResetLoginAttempts(ctx context.Context, id string) error {
	query := `UPDATE users SET login_attempts = 0, lock_until = NULL, updated_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("pgUserRepository.ResetLoginAttempts: %w", err)
	}
	return nil
}
