package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/everkeep/backend/internal/cache"
	"github.com/everkeep/backend/internal/config"
	"github.com/everkeep/backend/internal/domain"
	"github.com/everkeep/backend/internal/queue/client"
	"github.com/everkeep/backend/internal/repository"
	"github.com/everkeep/backend/internal/storage"
	"github.com/everkeep/backend/pkg/auth"
	"github.com/everkeep/backend/pkg/hash"
	"github.com/everkeep/backend/pkg/otp"
	"github.com/everkeep/backend/pkg/pdf"
)

// Enqueuer hands a task to the queue; swapped out in tests.
type Enqueuer func(ctx context.Context, t *asynq.Task) error

type Services struct {
	Users              Users
	Contacts           Contacts
	Wills              Wills
	CheckIns           CheckIns
	DeathVerifications DeathVerifications
}

type Deps struct {
	Config        *config.Config
	Hasher        hash.PasswordHasher
	TokenManager  auth.TokenManager
	CheckInTokens *auth.CheckInTokenManager
	OtpGenerator  otp.Generator
	Repos         *repository.Repositories
	ReplayGuard   cache.ReplayGuard
	Storage       *storage.Client
	PDFGenerator  *pdf.Generator
	Enqueue       Enqueuer
}

func NewServices(deps Deps) *Services {
	if deps.Enqueue == nil {
		deps.Enqueue = client.Enqueue
	}

	deathVerifications := newDeathVerificationService(
		deps.Repos,
		deps.Hasher,
		deps.OtpGenerator,
		deps.Enqueue,
		deps.Config.CheckIn,
	)

	return &Services{
		Users: newUserService(
			deps.Repos,
			deps.Hasher,
			deps.TokenManager,
			deps.OtpGenerator,
			deps.Enqueue,
			deps.Config.Auth,
		),
		Contacts: newContactService(
			deps.Repos,
			deps.CheckInTokens,
			deps.Enqueue,
			deps.Config.Email.BaseURL,
		),
		Wills: newWillService(
			deps.Repos,
			deps.Storage,
			deps.PDFGenerator,
		),
		CheckIns: newCheckInService(
			deps.Repos,
			deps.CheckInTokens,
			deps.ReplayGuard,
			deathVerifications,
			deps.Config.CheckIn,
		),
		DeathVerifications: deathVerifications,
	}
}

type Users interface {
	SignUp(ctx context.Context, input SignUpInput) error
	VerifyEmail(ctx context.Context, email string, code string) error
	SignIn(ctx context.Context, input SignInInput) (*Tokens, error)
	Refresh(ctx context.Context, refreshToken string, userAgent string, userIP string) (*Tokens, error)
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type Contacts interface {
	Add(ctx context.Context, userID uuid.UUID, input AddContactInput) (*domain.Contact, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]domain.Contact, error)
	Accept(ctx context.Context, token string) error
	Decline(ctx context.Context, token string) error
}

type Wills interface {
	Create(ctx context.Context, userID uuid.UUID, input WillInput) (*domain.Will, error)
	GetOneByID(ctx context.Context, userID, willID uuid.UUID) (*domain.Will, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]domain.Will, error)
	Update(ctx context.Context, userID, willID uuid.UUID, input WillInput) error
	AddAsset(ctx context.Context, userID, willID uuid.UUID, input AssetInput) (*domain.Asset, error)
	GetAssets(ctx context.Context, userID, willID uuid.UUID) ([]domain.Asset, error)
	UpdateAsset(ctx context.Context, userID, willID, assetID uuid.UUID, input AssetInput) error
	DeleteAsset(ctx context.Context, userID, willID, assetID uuid.UUID) error
	ExportPDF(ctx context.Context, userID, willID uuid.UUID) ([]byte, error)
	DocumentUploadURL(ctx context.Context, userID, willID uuid.UUID, fileName, contentType string) (*DocumentUpload, error)
	DocumentDownloadURL(ctx context.Context, userID, docID uuid.UUID) (string, error)
}

type CheckIns interface {
	Confirm(ctx context.Context, input ConfirmCheckInInput) (*ConfirmCheckInResult, error)
	History(ctx context.Context, userID uuid.UUID) ([]domain.CheckInResponse, error)
}

type DeathVerifications interface {
	StartRound(ctx context.Context, userID uuid.UUID) error
	Confirm(ctx context.Context, userID, contactID uuid.UUID, code string) (released bool, err error)
}

type Tokens struct {
	AccessToken  string
	AccessTTL    time.Duration
	RefreshToken uuid.UUID
	RefreshTTL   time.Duration
}
