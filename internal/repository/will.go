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

const willColumns = `id, user_id, title, body, status, released_at, created_at, updated_at, deleted_at`

type willRepository struct {
	db *sqlx.DB
}

func newWillRepository(db *sqlx.DB) *willRepository {
	return &willRepository{
		db: db,
	}
}

func (r *willRepository) Create(ctx context.Context, will *domain.Will) error {
	const query = `
	INSERT INTO wills (id, user_id, title, body, status)
	VALUES (uuid_to_bin(:id), uuid_to_bin(:user_id), :title, :body, :status);
	`

	result, err := r.db.NamedExecContext(ctx, query, will)
	if err != nil {
		return fmt.Errorf("db insert will: %w", err)
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

func (r *willRepository) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.Will, error) {
	const query = `
	SELECT ` + willColumns + ` FROM wills WHERE id = uuid_to_bin(?) AND deleted_at IS NULL;
	`
	var will domain.Will
	if err := r.db.GetContext(ctx, &will, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select will by id failed: %w", err)
	}
	return &will, nil
}

func (r *willRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]domain.Will, error) {
	const query = `
	SELECT ` + willColumns + ` FROM wills WHERE user_id = uuid_to_bin(?) AND deleted_at IS NULL;
	`
	var wills []domain.Will
	if err := r.db.SelectContext(ctx, &wills, query, userID); err != nil {
		return nil, fmt.Errorf("select wills by user failed: %w", err)
	}
	return wills, nil
}

func (r *willRepository) Update(ctx context.Context, will *domain.Will) error {
	const query = `
	UPDATE wills SET title = :title, body = :body, status = :status WHERE id = uuid_to_bin(:id);
	`
	res, err := r.db.NamedExecContext(ctx, query, will)
	if err != nil {
		return fmt.Errorf("update will failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected failed: %w", err)
	}

	if rows == 0 {
		return domain.ErrNoRowsAffected
	}

	return nil
}

// MarkPendingVerificationWithTx flips every will of the user that is
// not already released into pending_verification.
func (r *willRepository) MarkPendingVerificationWithTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error {
	const query = `
	UPDATE wills SET status = ?
	WHERE user_id = uuid_to_bin(?) AND status != ? AND deleted_at IS NULL;
	`
	_, err := tx.ExecContext(ctx, query, domain.WillStatusPendingVerification, userID, domain.WillStatusReleased)
	if err != nil {
		return fmt.Errorf("mark wills pending verification failed: %w", err)
	}
	return nil
}

// ReleaseAllWithTx moves every pending_verification will of the user to
// released. Only the quorum unlock path may call this.
func (r *willRepository) ReleaseAllWithTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, releasedAt time.Time) error {
	const query = `
	UPDATE wills SET status = ?, released_at = ?
	WHERE user_id = uuid_to_bin(?) AND status = ? AND deleted_at IS NULL;
	`
	_, err := tx.ExecContext(ctx, query, domain.WillStatusReleased, releasedAt, userID, domain.WillStatusPendingVerification)
	if err != nil {
		return fmt.Errorf("release wills failed: %w", err)
	}
	return nil
}
