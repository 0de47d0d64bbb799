package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/everkeep/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type userVerificationRepository struct {
	db *sqlx.DB
}

func newUserVerificationRepository(db *sqlx.DB) *userVerificationRepository {
	return &userVerificationRepository{
		db: db,
	}
}

func (r *userVerificationRepository) Create(ctx context.Context, verification *domain.UserVerification) error {
	const op = "repository.userVerifications.Create"

	const query = `
	INSERT INTO user_verifications (id, user_id, email, code)
	VALUES (uuid_to_bin(:id), uuid_to_bin(:user_id), :email, :code);
	`

	res, err := r.db.NamedExecContext(ctx, query, verification)
	if err != nil {
		return fmt.Errorf("%s: insert user verification failed: %w", op, err)
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

func (r *userVerificationRepository) GetLatestByUser(ctx context.Context, userID uuid.UUID) (*domain.UserVerification, error) {
	const query = `
	SELECT id, user_id, email, code, attempts, confirmed, confirmed_at, created_at, updated_at, deleted_at
	FROM user_verifications
	WHERE user_id = uuid_to_bin(?) AND deleted_at IS NULL
	ORDER BY created_at DESC
	LIMIT 1;
	`
	var verification domain.UserVerification
	if err := r.db.GetContext(ctx, &verification, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select user verification failed: %w", err)
	}
	return &verification, nil
}

func (r *userVerificationRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	const query = `
	UPDATE user_verifications SET attempts = attempts + 1 WHERE id = uuid_to_bin(?);
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("increment verification attempts failed: %w", err)
	}
	return nil
}

func (r *userVerificationRepository) ConfirmWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, confirmedAt time.Time) error {
	const op = "repository.userVerifications.ConfirmWithTx"

	const query = `
	UPDATE user_verifications SET confirmed = true, confirmed_at = ?
	WHERE id = uuid_to_bin(?) AND confirmed = false;
	`
	res, err := tx.ExecContext(ctx, query, confirmedAt, id)
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
