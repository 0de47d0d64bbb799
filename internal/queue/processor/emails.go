package processor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/everkeep/backend/internal/queue/task"
	"github.com/everkeep/backend/internal/worker"
)

type sendVerificationEmailProcessor struct {
	workers *worker.Workers
}

func NewSendVerificationEmailProcessor(workers *worker.Workers) *sendVerificationEmailProcessor {
	return &sendVerificationEmailProcessor{workers: workers}
}

func (p *sendVerificationEmailProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var data task.SendVerificationEmail
	if err := json.Unmarshal(t.Payload(), &data); err != nil {
		return fmt.Errorf("process verification email task json unmarshal failed: %w", err)
	}

	if err := p.workers.EmailSender.SendUserVerificationEmail(ctx, data.Email, data.VerificationCode); err != nil {
		return fmt.Errorf("send user verification email failed: %w", err)
	}

	return nil
}

type sendCheckInEmailProcessor struct {
	workers *worker.Workers
}

func NewSendCheckInEmailProcessor(workers *worker.Workers) *sendCheckInEmailProcessor {
	return &sendCheckInEmailProcessor{workers: workers}
}

func (p *sendCheckInEmailProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var data task.SendCheckInEmail
	if err := json.Unmarshal(t.Payload(), &data); err != nil {
		return fmt.Errorf("process check-in email task json unmarshal failed: %w", err)
	}

	input := worker.CheckInEmailInput{
		Email:         data.Email,
		RecipientName: data.RecipientName,
		UserFullName:  data.UserFullName,
		AliveURL:      data.AliveURL,
		DeceasedURL:   data.DeceasedURL,
	}
	if err := p.workers.EmailSender.SendCheckInEmail(ctx, input); err != nil {
		return fmt.Errorf("send check-in email failed: %w", err)
	}

	return nil
}

type sendInvitationEmailProcessor struct {
	workers *worker.Workers
}

func NewSendInvitationEmailProcessor(workers *worker.Workers) *sendInvitationEmailProcessor {
	return &sendInvitationEmailProcessor{workers: workers}
}

func (p *sendInvitationEmailProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var data task.SendInvitationEmail
	if err := json.Unmarshal(t.Payload(), &data); err != nil {
		return fmt.Errorf("process invitation email task json unmarshal failed: %w", err)
	}

	input := worker.InvitationEmailInput{
		Email:        data.Email,
		ContactName:  data.ContactName,
		UserFullName: data.UserFullName,
		Role:         data.Role,
		AcceptURL:    data.AcceptURL,
		DeclineURL:   data.DeclineURL,
	}
	if err := p.workers.EmailSender.SendInvitationEmail(ctx, input); err != nil {
		return fmt.Errorf("send invitation email failed: %w", err)
	}

	return nil
}

type sendDeathOTPEmailProcessor struct {
	workers *worker.Workers
}

func NewSendDeathOTPEmailProcessor(workers *worker.Workers) *sendDeathOTPEmailProcessor {
	return &sendDeathOTPEmailProcessor{workers: workers}
}

func (p *sendDeathOTPEmailProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var data task.SendDeathOTPEmail
	if err := json.Unmarshal(t.Payload(), &data); err != nil {
		return fmt.Errorf("process death otp email task json unmarshal failed: %w", err)
	}

	input := worker.DeathOTPEmailInput{
		Email:        data.Email,
		ContactName:  data.ContactName,
		UserFullName: data.UserFullName,
		Code:         data.Code,
	}
	if err := p.workers.EmailSender.SendDeathOTPEmail(ctx, input); err != nil {
		return fmt.Errorf("send death otp email failed: %w", err)
	}

	return nil
}

type sendWillReleasedEmailProcessor struct {
	workers *worker.Workers
}

func NewSendWillReleasedEmailProcessor(workers *worker.Workers) *sendWillReleasedEmailProcessor {
	return &sendWillReleasedEmailProcessor{workers: workers}
}

func (p *sendWillReleasedEmailProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var data task.SendWillReleasedEmail
	if err := json.Unmarshal(t.Payload(), &data); err != nil {
		return fmt.Errorf("process will released email task json unmarshal failed: %w", err)
	}

	input := worker.WillReleasedEmailInput{
		Email:        data.Email,
		ContactName:  data.ContactName,
		UserFullName: data.UserFullName,
	}
	if err := p.workers.EmailSender.SendWillReleasedEmail(ctx, input); err != nil {
		return fmt.Errorf("send will released email failed: %w", err)
	}

	return nil
}
