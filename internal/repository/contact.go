package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/everkeep/backend/internal/db"
	"github.com/everkeep/backend/internal/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const contactColumns = `id, user_id, role, full_name, email, relationship, status, is_death_verifier, created_at, updated_at, deleted_at`

type contactRepository struct {
	db *sqlx.DB
}

func newContactRepository(db *sqlx.DB) *contactRepository {
	return &contactRepository{
		db: db,
	}
}

func (r *contactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	const query = `
	INSERT INTO contacts (id, user_id, role, full_name, email, relationship, status, is_death_verifier)
	VALUES (uuid_to_bin(:id), uuid_to_bin(:user_id), :role, :full_name, :email, :relationship, :status, :is_death_verifier);
	`

	result, err := r.db.NamedExecContext(ctx, query, contact)
	if err != nil {
		//nolint:errorlint
		if mysqlError, ok := err.(*mysql.MySQLError); ok && mysqlError.Number == db.DuplicateEntry {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("db insert contact: %w", err)
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

func (r *contactRepository) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.Contact, error) {
	const query = `
	SELECT ` + contactColumns + ` FROM contacts WHERE id = uuid_to_bin(?) AND deleted_at IS NULL;
	`
	var contact domain.Contact
	if err := r.db.GetContext(ctx, &contact, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select contact by id failed: %w", err)
	}
	return &contact, nil
}

func (r *contactRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]domain.Contact, error) {
	const query = `
	SELECT ` + contactColumns + ` FROM contacts WHERE user_id = uuid_to_bin(?) AND deleted_at IS NULL;
	`
	var contacts []domain.Contact
	if err := r.db.SelectContext(ctx, &contacts, query, userID); err != nil {
		return nil, fmt.Errorf("select contacts by user failed: %w", err)
	}
	return contacts, nil
}

func (r *contactRepository) GetVerifiedByUser(ctx context.Context, userID uuid.UUID) ([]domain.Contact, error) {
	const query = `
	SELECT ` + contactColumns + ` FROM contacts
	WHERE user_id = uuid_to_bin(?) AND status = ? AND deleted_at IS NULL;
	`
	var contacts []domain.Contact
	if err := r.db.SelectContext(ctx, &contacts, query, userID, domain.ContactStatusVerified); err != nil {
		return nil, fmt.Errorf("select verified contacts failed: %w", err)
	}
	return contacts, nil
}

func (r *contactRepository) GetDeathVerifiers(ctx context.Context, userID uuid.UUID) ([]domain.Contact, error) {
	const query = `
	SELECT ` + contactColumns + ` FROM contacts
	WHERE user_id = uuid_to_bin(?) AND status = ? AND is_death_verifier = true AND deleted_at IS NULL;
	`
	var contacts []domain.Contact
	if err := r.db.SelectContext(ctx, &contacts, query, userID, domain.ContactStatusVerified); err != nil {
		return nil, fmt.Errorf("select death verifiers failed: %w", err)
	}
	return contacts, nil
}

func (r *contactRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ContactStatus) error {
	const query = `
	UPDATE contacts SET status = ? WHERE id = uuid_to_bin(?);
	`
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update contact status failed: %w", err)
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

func (r *contactRepository) CountDeathVerifiers(ctx context.Context, userID uuid.UUID) (int, error) {
	const query = `
	SELECT COUNT(*) FROM contacts
	WHERE user_id = uuid_to_bin(?) AND is_death_verifier = true AND deleted_at IS NULL;
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count death verifiers failed: %w", err)
	}
	return count, nil
}

func (r *contactRepository) CountVerifiedDeathVerifiers(ctx context.Context, userID uuid.UUID) (int, error) {
	const query = `
	SELECT COUNT(*) FROM contacts
	WHERE user_id = uuid_to_bin(?) AND status = ? AND is_death_verifier = true AND deleted_at IS NULL;
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, domain.ContactStatusVerified); err != nil {
		return 0, fmt.Errorf("count verified death verifiers failed: %w", err)
	}
	return count, nil
}
