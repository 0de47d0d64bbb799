package repository

import (
	"context"
	"fmt"

	"github.com/everkeep/backend/internal/db"
	"github.com/everkeep/backend/internal/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type checkInResponseRepository struct {
	db *sqlx.DB
}

func newCheckInResponseRepository(db *sqlx.DB) *checkInResponseRepository {
	return &checkInResponseRepository{
		db: db,
	}
}

// CreateWithTx appends one attestation row. token_id is unique, so a
// replayed token surfaces as domain.ErrDuplicateEntry instead of a
// second row.
func (r *checkInResponseRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, response *domain.CheckInResponse) error {
	const op = "repository.checkInResponses.CreateWithTx"

	const query = `
	INSERT INTO check_in_responses (id, user_id, contact_id, responder_role, alive, token_id, responded_at)
	VALUES (uuid_to_bin(:id), uuid_to_bin(:user_id), uuid_to_bin(:contact_id), :responder_role, :alive, :token_id, :responded_at);
	`

	res, err := tx.NamedExecContext(ctx, query, response)
	if err != nil {
		//nolint:errorlint
		if mysqlError, ok := err.(*mysql.MySQLError); ok && mysqlError.Number == db.DuplicateEntry {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("%s: insert check-in response failed: %w", op, err)
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

func (r *checkInResponseRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]domain.CheckInResponse, error) {
	const query = `
	SELECT id, user_id, contact_id, responder_role, alive, token_id, responded_at
	FROM check_in_responses WHERE user_id = uuid_to_bin(?) ORDER BY responded_at DESC;
	`
	var responses []domain.CheckInResponse
	if err := r.db.SelectContext(ctx, &responses, query, userID); err != nil {
		return nil, fmt.Errorf("select check-in responses failed: %w", err)
	}
	return responses, nil
}
