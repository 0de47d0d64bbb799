package worker

import (
	"context"

	"github.com/everkeep/backend/internal/cache"
	"github.com/everkeep/backend/internal/config"
	"github.com/everkeep/backend/internal/repository"
	"github.com/everkeep/backend/pkg/auth"
	emailProvider "github.com/everkeep/backend/pkg/email"
)

type Workers struct {
	EmailSender      EmailSender
	CheckInScheduler CheckInScheduler
}

type Deps struct {
	Repos         *repository.Repositories
	CheckInTokens *auth.CheckInTokenManager
	RunLock       cache.RunLock
	EmailProvider emailProvider.Sender
	Config        *config.Config
	Enqueue       Enqueuer
}

type EmailSender interface {
	SendUserVerificationEmail(ctx context.Context, email string, verificationCode string) error
	SendCheckInEmail(ctx context.Context, input CheckInEmailInput) error
	SendInvitationEmail(ctx context.Context, input InvitationEmailInput) error
	SendDeathOTPEmail(ctx context.Context, input DeathOTPEmailInput) error
	SendWillReleasedEmail(ctx context.Context, input WillReleasedEmailInput) error
}

// CheckInScheduler performs one sweep over users whose check-in is due.
type CheckInScheduler interface {
	Run(ctx context.Context) error
}

func NewWorkers(deps Deps) *Workers {
	return &Workers{
		EmailSender: newEmailSender(deps.EmailProvider, deps.Config.Email),
		CheckInScheduler: newCheckInScheduler(
			deps.Repos.Users,
			deps.Repos.Contacts,
			deps.CheckInTokens,
			deps.RunLock,
			deps.Enqueue,
			deps.Config.CheckIn,
			deps.Config.Email.BaseURL,
		),
	}
}
