package repository

import (
	"context"
	"fmt"

	"github.com/everkeep/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type assetRepository struct {
	db *sqlx.DB
}

func newAssetRepository(db *sqlx.DB) *assetRepository {
	return &assetRepository{
		db: db,
	}
}

func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	const query = `
	INSERT INTO assets (id, will_id, kind, name, description, instructions)
	VALUES (uuid_to_bin(:id), uuid_to_bin(:will_id), :kind, :name, :description, :instructions);
	`

	result, err := r.db.NamedExecContext(ctx, query, asset)
	if err != nil {
		return fmt.Errorf("db insert asset: %w", err)
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

func (r *assetRepository) GetAllByWill(ctx context.Context, willID uuid.UUID) ([]domain.Asset, error) {
	const query = `
	SELECT id, will_id, kind, name, description, instructions, created_at, updated_at, deleted_at
	FROM assets WHERE will_id = uuid_to_bin(?) AND deleted_at IS NULL;
	`
	var assets []domain.Asset
	if err := r.db.SelectContext(ctx, &assets, query, willID); err != nil {
		return nil, fmt.Errorf("select assets by will failed: %w", err)
	}
	return assets, nil
}

func (r *assetRepository) Update(ctx context.Context, asset *domain.Asset) error {
	const query = `
	UPDATE assets SET kind = :kind, name = :name, description = :description, instructions = :instructions
	WHERE id = uuid_to_bin(:id);
	`
	res, err := r.db.NamedExecContext(ctx, query, asset)
	if err != nil {
		return fmt.Errorf("update asset failed: %w", err)
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

func (r *assetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `
	UPDATE assets SET deleted_at = now() WHERE id = uuid_to_bin(?) AND deleted_at IS NULL;
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete asset failed: %w", err)
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
