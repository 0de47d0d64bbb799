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

type willDocumentRepository struct {
	db *sqlx.DB
}

func newWillDocumentRepository(db *sqlx.DB) *willDocumentRepository {
	return &willDocumentRepository{
		db: db,
	}
}

func (r *willDocumentRepository) Create(ctx context.Context, doc *domain.WillDocument) error {
	const query = `
	INSERT INTO will_documents (id, will_id, file_name, content_type, storage_key)
	VALUES (uuid_to_bin(:id), uuid_to_bin(:will_id), :file_name, :content_type, :storage_key);
	`

	result, err := r.db.NamedExecContext(ctx, query, doc)
	if err != nil {
		return fmt.Errorf("db insert will document: %w", err)
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

func (r *willDocumentRepository) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.WillDocument, error) {
	const query = `
	SELECT id, will_id, file_name, content_type, storage_key, created_at, deleted_at
	FROM will_documents WHERE id = uuid_to_bin(?) AND deleted_at IS NULL;
	`
	var doc domain.WillDocument
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select will document by id failed: %w", err)
	}
	return &doc, nil
}

func (r *willDocumentRepository) GetAllByWill(ctx context.Context, willID uuid.UUID) ([]domain.WillDocument, error) {
	const query = `
	SELECT id, will_id, file_name, content_type, storage_key, created_at, deleted_at
	FROM will_documents WHERE will_id = uuid_to_bin(?) AND deleted_at IS NULL;
	`
	var docs []domain.WillDocument
	if err := r.db.SelectContext(ctx, &docs, query, willID); err != nil {
		return nil, fmt.Errorf("select will documents failed: %w", err)
	}
	return docs, nil
}
