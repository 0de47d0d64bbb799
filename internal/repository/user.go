package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/everkeep/backend/internal/db"
	"github.com/everkeep/backend/internal/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type userRepository struct {
	db *sqlx.DB
}

func newUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
	INSERT INTO users (id, email, password_hash, full_name)
	VALUES (uuid_to_bin(:id), :email, :password_hash, :full_name);
	`

	result, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		//nolint:errorlint
		if mysqlError, ok := err.(*mysql.MySQLError); ok && mysqlError.Number == db.DuplicateEntry {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("db insert user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected failed: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrNoRowsAffected
	}

	return nil
}

func (r *userRepository) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `
	SELECT id, email, password_hash, full_name, email_verified, last_check_in, next_check_in_due, created_at, updated_at, deleted_at
	FROM users WHERE id = uuid_to_bin(?) AND deleted_at IS NULL;
	`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select from users by id failed: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
	SELECT id, email, password_hash, full_name, email_verified, last_check_in, next_check_in_due, created_at, updated_at, deleted_at
	FROM users WHERE email = ? AND deleted_at IS NULL;
	`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select from users by email failed: %w", err)
	}
	return &user, nil
}

func (r *userRepository) SetEmailVerifiedWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	const op = "repository.users.SetEmailVerifiedWithTx"

	const query = `
	UPDATE users SET email_verified = true WHERE id = uuid_to_bin(?);
	`
	res, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: update failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	if rows != 1 {
		return fmt.Errorf("%s: expected 1 row affected, got %d", op, rows)
	}

	return nil
}

func (r *userRepository) AdvanceCheckIn(ctx context.Context, id uuid.UUID, lastCheckIn, nextDue time.Time) error {
	const query = `
	UPDATE users SET last_check_in = ?, next_check_in_due = ? WHERE id = uuid_to_bin(?);
	`
	_, err := r.db.ExecContext(ctx, query, lastCheckIn, nextDue, id)
	if err != nil {
		return fmt.Errorf("advance check-in failed: %w", err)
	}
	return nil
}

func (r *userRepository) AdvanceCheckInWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, lastCheckIn, nextDue time.Time) error {
	const query = `
	UPDATE users SET last_check_in = ?, next_check_in_due = ? WHERE id = uuid_to_bin(?);
	`
	_, err := tx.ExecContext(ctx, query, lastCheckIn, nextDue, id)
	if err != nil {
		return fmt.Errorf("advance check-in failed: %w", err)
	}
	return nil
}

// SelectCheckInDue returns every verified user whose check-in clock is
// overdue or never started.
func (r *userRepository) SelectCheckInDue(ctx context.Context, now time.Time) ([]domain.User, error) {
	const query = `
	SELECT id, email, password_hash, full_name, email_verified, last_check_in, next_check_in_due, created_at, updated_at, deleted_at
	FROM users
	WHERE email_verified = true
	  AND (next_check_in_due IS NULL OR next_check_in_due < ?)
	  AND deleted_at IS NULL;
	`
	var users []domain.User
	if err := r.db.SelectContext(ctx, &users, query, now); err != nil {
		return nil, fmt.Errorf("select check-in due users failed: %w", err)
	}
	return users, nil
}
