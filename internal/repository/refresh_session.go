package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/everkeep/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type refreshSessionRepository struct {
	db *sqlx.DB
}

func newRefreshSessionRepository(db *sqlx.DB) *refreshSessionRepository {
	return &refreshSessionRepository{
		db: db,
	}
}

func (r *refreshSessionRepository) Create(ctx context.Context, session *domain.RefreshSession) error {
	const query = `
	INSERT INTO refresh_sessions (id, user_id, refresh_token, user_agent, ip, expires_in)
	VALUES (uuid_to_bin(:id), uuid_to_bin(:user_id), uuid_to_bin(:refresh_token), :user_agent, :ip, :expires_in);
	`

	res, err := r.db.NamedExecContext(ctx, query, session)
	if err != nil {
		return fmt.Errorf("insert refresh session failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected failed: %w", err)
	}

	if rows != 1 {
		return fmt.Errorf("expected 1 row affected, got %d", rows)
	}

	return nil
}

func (r *refreshSessionRepository) GetByToken(ctx context.Context, token uuid.UUID) (*domain.RefreshSession, error) {
	const query = `
	SELECT id, user_id, refresh_token, user_agent, ip, expires_in, created_at, updated_at, deleted_at
	FROM refresh_sessions
	WHERE refresh_token = uuid_to_bin(?) AND deleted_at IS NULL;
	`
	var session domain.RefreshSession
	if err := r.db.GetContext(ctx, &session, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select refresh session failed: %w", err)
	}
	return &session, nil
}

func (r *refreshSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `
	UPDATE refresh_sessions SET deleted_at = now() WHERE id = uuid_to_bin(?) AND deleted_at IS NULL;
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete refresh session failed: %w", err)
	}
	return nil
}
