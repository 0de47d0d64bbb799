package worker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/everkeep/backend/internal/config"
	emailProvider "github.com/everkeep/backend/pkg/email"
	mockEmail "github.com/everkeep/backend/pkg/email/mock"
)

func emailConfig(enabled bool) config.EmailConfig {
	return config.EmailConfig{
		Enabled: enabled,
		Templates: config.EmailTemplates{
			Verification: "verification.html",
			CheckIn:      "checkin.html",
			Invitation:   "invitation.html",
			DeathOTP:     "death_otp.html",
			WillReleased: "released.html",
		},
	}
}

func writeTemplates(t *testing.T, cfg config.EmailConfig) {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "templates"), 0o755))

	for _, name := range []string{
		cfg.Templates.Verification,
		cfg.Templates.CheckIn,
		cfg.Templates.Invitation,
		cfg.Templates.DeathOTP,
		cfg.Templates.WillReleased,
	} {
		err := os.WriteFile(filepath.Join(dir, "templates", name), []byte("<p>body</p>"), 0o644)
		require.NoError(t, err)
	}
}

func TestEmailSenderDisabledSkipsDelivery(t *testing.T) {
	provider := new(mockEmail.EmailSender)
	sender := newEmailSender(provider, emailConfig(false))

	ctx := context.Background()
	assert.NoError(t, sender.SendUserVerificationEmail(ctx, "user@example.com", "123456"))
	assert.NoError(t, sender.SendCheckInEmail(ctx, CheckInEmailInput{Email: "user@example.com"}))
	assert.NoError(t, sender.SendInvitationEmail(ctx, InvitationEmailInput{Email: "contact@example.com"}))
	assert.NoError(t, sender.SendDeathOTPEmail(ctx, DeathOTPEmailInput{Email: "contact@example.com"}))
	assert.NoError(t, sender.SendWillReleasedEmail(ctx, WillReleasedEmailInput{Email: "contact@example.com"}))

	provider.AssertNotCalled(t, "Send")
}

func TestEmailSenderEnabledDelivers(t *testing.T) {
	cfg := emailConfig(true)
	writeTemplates(t, cfg)

	provider := new(mockEmail.EmailSender)
	provider.On("Send", mock.MatchedBy(func(input emailProvider.SendEmailInput) bool {
		return input.To == "user@example.com" && input.Body != ""
	})).Return(nil).Once()

	sender := newEmailSender(provider, cfg)

	err := sender.SendCheckInEmail(context.Background(), CheckInEmailInput{
		Email:         "user@example.com",
		RecipientName: "Owner",
	})
	require.NoError(t, err)

	provider.AssertExpectations(t)
}
