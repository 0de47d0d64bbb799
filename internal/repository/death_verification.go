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

type deathVerificationOTPRepository struct {
	db *sqlx.DB
}

func newDeathVerificationOTPRepository(db *sqlx.DB) *deathVerificationOTPRepository {
	return &deathVerificationOTPRepository{
		db: db,
	}
}

func (r *deathVerificationOTPRepository) Create(ctx context.Context, otp *domain.DeathVerificationOTP) error {
	const op = "repository.deathVerificationOTPs.Create"

	const query = `
	INSERT INTO death_verification_otps (id, user_id, contact_id, code_hash, expires_at)
	VALUES (uuid_to_bin(:id), uuid_to_bin(:user_id), uuid_to_bin(:contact_id), :code_hash, :expires_at);
	`

	res, err := r.db.NamedExecContext(ctx, query, otp)
	if err != nil {
		//nolint:errorlint
		if mysqlError, ok := err.(*mysql.MySQLError); ok && mysqlError.Number == db.DuplicateEntry {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("%s: insert otp failed: %w", op, err)
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

// GetOpenByUserAndContact returns the newest unconfirmed, unexpired OTP
// for the verifier.
func (r *deathVerificationOTPRepository) GetOpenByUserAndContact(ctx context.Context, userID, contactID uuid.UUID) (*domain.DeathVerificationOTP, error) {
	const query = `
	SELECT id, user_id, contact_id, code_hash, attempts, expires_at, confirmed_at, created_at, updated_at
	FROM death_verification_otps
	WHERE user_id = uuid_to_bin(?) AND contact_id = uuid_to_bin(?)
	  AND confirmed_at IS NULL AND expires_at > now()
	ORDER BY created_at DESC
	LIMIT 1;
	`
	var otp domain.DeathVerificationOTP
	if err := r.db.GetContext(ctx, &otp, query, userID, contactID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select open otp failed: %w", err)
	}
	return &otp, nil
}

func (r *deathVerificationOTPRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	const query = `
	UPDATE death_verification_otps SET attempts = attempts + 1 WHERE id = uuid_to_bin(?);
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("increment otp attempts failed: %w", err)
	}
	return nil
}

func (r *deathVerificationOTPRepository) ConfirmWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, confirmedAt time.Time) error {
	const op = "repository.deathVerificationOTPs.ConfirmWithTx"

	const query = `
	UPDATE death_verification_otps SET confirmed_at = ?
	WHERE id = uuid_to_bin(?) AND confirmed_at IS NULL;
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

func (r *deathVerificationOTPRepository) CountConfirmedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	const query = `
	SELECT COUNT(*) FROM death_verification_otps
	WHERE user_id = uuid_to_bin(?) AND confirmed_at IS NOT NULL AND confirmed_at >= ?;
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, since); err != nil {
		return 0, fmt.Errorf("count confirmed otps failed: %w", err)
	}
	return count, nil
}

func (r *deathVerificationOTPRepository) CountConfirmedSinceWithTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, since time.Time) (int, error) {
	const query = `
	SELECT COUNT(*) FROM death_verification_otps
	WHERE user_id = uuid_to_bin(?) AND confirmed_at IS NOT NULL AND confirmed_at >= ?;
	`
	var count int
	if err := tx.GetContext(ctx, &count, query, userID, since); err != nil {
		return 0, fmt.Errorf("count confirmed otps failed: %w", err)
	}
	return count, nil
}
