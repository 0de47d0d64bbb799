package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/everkeep/backend/internal/domain"
	"github.com/everkeep/backend/internal/queue/task"
	"github.com/everkeep/backend/internal/repository"
	"github.com/everkeep/backend/pkg/auth"
	"github.com/everkeep/backend/pkg/logger"
)

type contactService struct {
	repos   *repository.Repositories
	tokens  *auth.CheckInTokenManager
	enqueue Enqueuer
	baseURL string
}

func newContactService(
	repos *repository.Repositories,
	tokens *auth.CheckInTokenManager,
	enqueue Enqueuer,
	baseURL string,
) *contactService {
	return &contactService{
		repos:   repos,
		tokens:  tokens,
		enqueue: enqueue,
		baseURL: baseURL,
	}
}

type AddContactInput struct {
	Role            domain.ContactRole
	FullName        string
	Email           string
	Relationship    string
	IsDeathVerifier bool
}

func (s *contactService) Add(ctx context.Context, userID uuid.UUID, input AddContactInput) (*domain.Contact, error) {
	user, err := s.repos.Users.GetOneByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user failed: %w", err)
	}

	if input.IsDeathVerifier {
		count, err := s.repos.Contacts.CountDeathVerifiers(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("count death verifiers failed: %w", err)
		}
		if count >= domain.MaxDeathVerifiers {
			return nil, ErrTooManyVerifiers
		}
	}

	contactID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate contact id failed: %w", err)
	}

	contact := &domain.Contact{
		ID:              contactID,
		UserID:          userID,
		Role:            input.Role,
		FullName:        input.FullName,
		Email:           input.Email,
		Relationship:    input.Relationship,
		Status:          domain.ContactStatusPending,
		IsDeathVerifier: input.IsDeathVerifier,
	}

	if err := s.repos.Contacts.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("create contact failed: %w", err)
	}

	invitationToken, err := s.tokens.NewInvitationToken(contactID)
	if err != nil {
		return nil, fmt.Errorf("mint invitation token failed: %w", err)
	}

	t, err := task.NewSendInvitationEmailTask(task.SendInvitationEmail{
		Email:        contact.Email,
		ContactName:  contact.FullName,
		UserFullName: user.FullName,
		Role:         string(contact.Role),
		AcceptURL:    s.invitationURL("accept", invitationToken),
		DeclineURL:   s.invitationURL("decline", invitationToken),
	})
	if err != nil {
		return nil, fmt.Errorf("build invitation email task failed: %w", err)
	}
	if err := s.enqueue(ctx, t); err != nil {
		// Contact row exists; the invitation can be re-sent.
		logger.Error("enqueue invitation email failed", zap.Error(err))
	}

	return contact, nil
}

func (s *contactService) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]domain.Contact, error) {
	return s.repos.Contacts.GetAllByUser(ctx, userID)
}

func (s *contactService) Accept(ctx context.Context, token string) error {
	return s.resolveInvitation(ctx, token, domain.ContactStatusVerified)
}

func (s *contactService) Decline(ctx context.Context, token string) error {
	return s.resolveInvitation(ctx, token, domain.ContactStatusDeclined)
}

func (s *contactService) resolveInvitation(ctx context.Context, token string, status domain.ContactStatus) error {
	contactID, err := s.tokens.ParseInvitationToken(token)
	if err != nil {
		return ErrInvitationInvalid
	}

	contact, err := s.repos.Contacts.GetOneByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrInvitationInvalid
		}
		return fmt.Errorf("get contact failed: %w", err)
	}

	// A declined invitation stays declined.
	if contact.Status == domain.ContactStatusDeclined {
		return ErrInvitationInvalid
	}

	if contact.Status == status {
		return nil
	}

	if err := s.repos.Contacts.UpdateStatus(ctx, contactID, status); err != nil {
		return fmt.Errorf("update contact status failed: %w", err)
	}

	return nil
}

func (s *contactService) invitationURL(action string, token string) string {
	values := url.Values{}
	values.Set("token", token)
	return fmt.Sprintf("%s/api/v1/contacts/invitations/%s?%s", s.baseURL, action, values.Encode())
}
