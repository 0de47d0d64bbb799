package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/everkeep/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	db *sqlx.DB

	Users                 Users
	Contacts              Contacts
	Wills                 Wills
	Assets                Assets
	WillDocuments         WillDocuments
	CheckInResponses      CheckInResponses
	DeathVerificationOTPs DeathVerificationOTPs
	UserVerifications     UserVerifications
	RefreshSessions       RefreshSessions
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		db:                    db,
		Users:                 newUserRepository(db),
		Contacts:              newContactRepository(db),
		Wills:                 newWillRepository(db),
		Assets:                newAssetRepository(db),
		WillDocuments:         newWillDocumentRepository(db),
		CheckInResponses:      newCheckInResponseRepository(db),
		DeathVerificationOTPs: newDeathVerificationOTPRepository(db),
		UserVerifications:     newUserVerificationRepository(db),
		RefreshSessions:       newRefreshSessionRepository(db),
	}
}

// BeginTx opens a transaction for multi-step mutations (the death
// report path, OTP confirmation, account verification).
func (r *Repositories) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx failed: %w", err)
	}
	return tx, nil
}

type Users interface {
	Create(ctx context.Context, user *domain.User) error
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SetEmailVerifiedWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error
	AdvanceCheckIn(ctx context.Context, id uuid.UUID, lastCheckIn, nextDue time.Time) error
	AdvanceCheckInWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, lastCheckIn, nextDue time.Time) error
	SelectCheckInDue(ctx context.Context, now time.Time) ([]domain.User, error)
}

type Contacts interface {
	Create(ctx context.Context, contact *domain.Contact) error
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.Contact, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]domain.Contact, error)
	GetVerifiedByUser(ctx context.Context, userID uuid.UUID) ([]domain.Contact, error)
	GetDeathVerifiers(ctx context.Context, userID uuid.UUID) ([]domain.Contact, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ContactStatus) error
	CountDeathVerifiers(ctx context.Context, userID uuid.UUID) (int, error)
	CountVerifiedDeathVerifiers(ctx context.Context, userID uuid.UUID) (int, error)
}

type Wills interface {
	Create(ctx context.Context, will *domain.Will) error
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.Will, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]domain.Will, error)
	Update(ctx context.Context, will *domain.Will) error
	MarkPendingVerificationWithTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error
	ReleaseAllWithTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, releasedAt time.Time) error
}

type Assets interface {
	Create(ctx context.Context, asset *domain.Asset) error
	GetAllByWill(ctx context.Context, willID uuid.UUID) ([]domain.Asset, error)
	Update(ctx context.Context, asset *domain.Asset) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type WillDocuments interface {
	Create(ctx context.Context, doc *domain.WillDocument) error
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.WillDocument, error)
	GetAllByWill(ctx context.Context, willID uuid.UUID) ([]domain.WillDocument, error)
}

type CheckInResponses interface {
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, response *domain.CheckInResponse) error
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]domain.CheckInResponse, error)
}

type DeathVerificationOTPs interface {
	Create(ctx context.Context, otp *domain.DeathVerificationOTP) error
	GetOpenByUserAndContact(ctx context.Context, userID, contactID uuid.UUID) (*domain.DeathVerificationOTP, error)
	IncrementAttempts(ctx context.Context, id uuid.UUID) error
	ConfirmWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, confirmedAt time.Time) error
	CountConfirmedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
	CountConfirmedSinceWithTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, since time.Time) (int, error)
}

type UserVerifications interface {
	Create(ctx context.Context, verification *domain.UserVerification) error
	GetLatestByUser(ctx context.Context, userID uuid.UUID) (*domain.UserVerification, error)
	IncrementAttempts(ctx context.Context, id uuid.UUID) error
	ConfirmWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, confirmedAt time.Time) error
}

type RefreshSessions interface {
	Create(ctx context.Context, session *domain.RefreshSession) error
	GetByToken(ctx context.Context, token uuid.UUID) (*domain.RefreshSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
