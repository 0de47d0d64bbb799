package worker

import (
	"context"
	"fmt"

	"github.com/everkeep/backend/internal/config"
	emailProvider "github.com/everkeep/backend/pkg/email"
)

type emailSender struct {
	sender  emailProvider.Sender
	config  config.EmailConfig
	enabled bool
}

func newEmailSender(
	sender emailProvider.Sender,
	config config.EmailConfig,
) *emailSender {
	return &emailSender{
		enabled: config.Enabled,
		sender:  sender,
		config:  config,
	}
}

type CheckInEmailInput struct {
	Email         string
	RecipientName string
	UserFullName  string
	AliveURL      string
	DeceasedURL   string
}

type InvitationEmailInput struct {
	Email        string
	ContactName  string
	UserFullName string
	Role         string
	AcceptURL    string
	DeclineURL   string
}

type DeathOTPEmailInput struct {
	Email        string
	ContactName  string
	UserFullName string
	Code         string
}

type WillReleasedEmailInput struct {
	Email        string
	ContactName  string
	UserFullName string
}

type verificationEmailInput struct {
	VerificationCode string
}

func (s *emailSender) SendUserVerificationEmail(ctx context.Context, email string, verificationCode string) error {
	if !s.enabled {
		return nil
	}

	subject := "Your verification code"

	templateInput := verificationEmailInput{verificationCode}
	sendInput := emailProvider.SendEmailInput{Subject: subject, To: email}

	if err := sendInput.GenerateBodyFromHTML(s.config.Templates.Verification, templateInput); err != nil {
		return fmt.Errorf("generate email failed: %w", err)
	}

	if err := s.sender.Send(sendInput); err != nil {
		return fmt.Errorf("send email failed: %w", err)
	}

	return nil
}

func (s *emailSender) SendCheckInEmail(ctx context.Context, input CheckInEmailInput) error {
	if !s.enabled {
		return nil
	}

	subject := "Weekly check-in: please confirm"

	sendInput := emailProvider.SendEmailInput{Subject: subject, To: input.Email}

	if err := sendInput.GenerateBodyFromHTML(s.config.Templates.CheckIn, input); err != nil {
		return fmt.Errorf("generate email failed: %w", err)
	}

	if err := s.sender.Send(sendInput); err != nil {
		return fmt.Errorf("send email failed: %w", err)
	}

	return nil
}

func (s *emailSender) SendInvitationEmail(ctx context.Context, input InvitationEmailInput) error {
	if !s.enabled {
		return nil
	}

	subject := fmt.Sprintf("%s named you as their %s", input.UserFullName, input.Role)

	sendInput := emailProvider.SendEmailInput{Subject: subject, To: input.Email}

	if err := sendInput.GenerateBodyFromHTML(s.config.Templates.Invitation, input); err != nil {
		return fmt.Errorf("generate email failed: %w", err)
	}

	if err := s.sender.Send(sendInput); err != nil {
		return fmt.Errorf("send email failed: %w", err)
	}

	return nil
}

func (s *emailSender) SendDeathOTPEmail(ctx context.Context, input DeathOTPEmailInput) error {
	if !s.enabled {
		return nil
	}

	subject := "Death verification code"

	sendInput := emailProvider.SendEmailInput{Subject: subject, To: input.Email}

	if err := sendInput.GenerateBodyFromHTML(s.config.Templates.DeathOTP, input); err != nil {
		return fmt.Errorf("generate email failed: %w", err)
	}

	if err := s.sender.Send(sendInput); err != nil {
		return fmt.Errorf("send email failed: %w", err)
	}

	return nil
}

func (s *emailSender) SendWillReleasedEmail(ctx context.Context, input WillReleasedEmailInput) error {
	if !s.enabled {
		return nil
	}

	subject := fmt.Sprintf("The will of %s has been released", input.UserFullName)

	sendInput := emailProvider.SendEmailInput{Subject: subject, To: input.Email}

	if err := sendInput.GenerateBodyFromHTML(s.config.Templates.WillReleased, input); err != nil {
		return fmt.Errorf("generate email failed: %w", err)
	}

	if err := s.sender.Send(sendInput); err != nil {
		return fmt.Errorf("send email failed: %w", err)
	}

	return nil
}
