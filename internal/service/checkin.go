package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/everkeep/backend/internal/cache"
	"github.com/everkeep/backend/internal/config"
	"github.com/everkeep/backend/internal/domain"
	"github.com/everkeep/backend/internal/repository"
	"github.com/everkeep/backend/pkg/auth"
	"github.com/everkeep/backend/pkg/logger"
)

type checkInService struct {
	repos         *repository.Repositories
	tokens        *auth.CheckInTokenManager
	replayGuard   cache.ReplayGuard
	verifications DeathVerifications
	cfg           config.CheckInConfig
}

func newCheckInService(
	repos *repository.Repositories,
	tokens *auth.CheckInTokenManager,
	replayGuard cache.ReplayGuard,
	verifications DeathVerifications,
	cfg config.CheckInConfig,
) *checkInService {
	return &checkInService{
		repos:         repos,
		tokens:        tokens,
		replayGuard:   replayGuard,
		verifications: verifications,
		cfg:           cfg,
	}
}

type ConfirmCheckInInput struct {
	UserID uuid.UUID
	Alive  bool
	Token  string

	// ExpectRole is empty for the user's own endpoint and
	// beneficiary/executor for the contact variants.
	ExpectRole string
}

type ConfirmCheckInResult struct {
	Alive bool
	// Replayed means the token was already consumed; nothing was written.
	Replayed bool
	// WillsPending means this request moved the user's wills into
	// pending verification.
	WillsPending bool
}

// Confirm records one attestation. The attestation row, the user's
// check-in clock and any will transition are committed in a single
// transaction; a replayed token is answered without writes.
func (s *checkInService) Confirm(ctx context.Context, input ConfirmCheckInInput) (*ConfirmCheckInResult, error) {
	claims, err := s.tokens.Parse(input.Token)
	if err != nil {
		return nil, err
	}

	// The signed claim is authoritative; the query parameters merely
	// have to agree with it.
	if claims.Subject != input.UserID.String() || claims.Alive != input.Alive {
		return nil, ErrCheckInTokenMismatch
	}

	expectRole := input.ExpectRole
	if expectRole == "" {
		expectRole = auth.CheckInRoleUser
	}
	if claims.Role != expectRole {
		return nil, ErrCheckInTokenMismatch
	}

	user, err := s.repos.Users.GetOneByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user failed: %w", err)
	}

	var (
		contactID     *uuid.UUID
		responderRole = domain.ResponderRole(claims.Role)
	)
	if claims.Role != auth.CheckInRoleUser {
		id, err := uuid.Parse(claims.ContactID)
		if err != nil {
			return nil, auth.ErrCheckInTokenInvalid
		}

		contact, err := s.repos.Contacts.GetOneByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, ErrCheckInTokenMismatch
			}
			return nil, fmt.Errorf("get contact failed: %w", err)
		}
		if contact.UserID != user.ID || string(contact.Role) != claims.Role {
			return nil, ErrCheckInTokenMismatch
		}
		contactID = &contact.ID
	}

	used, err := s.replayGuard.IsUsed(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("replay check failed: %w", err)
	}
	if used {
		return &ConfirmCheckInResult{Alive: input.Alive, Replayed: true}, nil
	}

	responseID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate response id failed: %w", err)
	}

	now := time.Now()
	response := &domain.CheckInResponse{
		ID:            responseID,
		UserID:        user.ID,
		ContactID:     contactID,
		ResponderRole: responderRole,
		Alive:         input.Alive,
		TokenID:       claims.ID,
		RespondedAt:   now,
	}

	tx, err := s.repos.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck

	if err := s.repos.CheckInResponses.CreateWithTx(ctx, tx, response); err != nil {
		// The unique token_id backs up the redis guard.
		if errors.Is(err, domain.ErrDuplicateEntry) {
			s.markUsed(ctx, claims.ID)
			return &ConfirmCheckInResult{Alive: input.Alive, Replayed: true}, nil
		}
		return nil, fmt.Errorf("record attestation failed: %w", err)
	}

	result := &ConfirmCheckInResult{Alive: input.Alive}

	if input.Alive {
		if err := s.repos.Users.AdvanceCheckInWithTx(ctx, tx, user.ID, now, now.Add(s.cfg.Period)); err != nil {
			return nil, fmt.Errorf("advance check-in failed: %w", err)
		}
	} else {
		if err := s.repos.Wills.MarkPendingVerificationWithTx(ctx, tx, user.ID); err != nil {
			return nil, fmt.Errorf("mark wills pending failed: %w", err)
		}
		result.WillsPending = true
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit check-in failed: %w", err)
	}

	// Marked only after the attestation is durable, so a transient failure
	// before commit leaves the link retryable. The unique token_id column
	// covers the window between commit and mark.
	s.markUsed(ctx, claims.ID)

	if !input.Alive {
		// Best effort: the wills are already pending; a failed OTP round
		// can be restarted by an operator.
		if err := s.verifications.StartRound(ctx, user.ID); err != nil {
			logger.Error("start death verification round failed",
				zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}

	return result, nil
}

func (s *checkInService) markUsed(ctx context.Context, tokenID string) {
	if _, err := s.replayGuard.MarkUsed(ctx, tokenID, s.tokens.TTL()); err != nil {
		logger.Error("mark token used failed",
			zap.String("token_id", tokenID), zap.Error(err))
	}
}

func (s *checkInService) History(ctx context.Context, userID uuid.UUID) ([]domain.CheckInResponse, error) {
	return s.repos.CheckInResponses.GetAllByUser(ctx, userID)
}
