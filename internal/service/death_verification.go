package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/everkeep/backend/internal/config"
	"github.com/everkeep/backend/internal/domain"
	"github.com/everkeep/backend/internal/queue/task"
	"github.com/everkeep/backend/internal/repository"
	"github.com/everkeep/backend/pkg/hash"
	"github.com/everkeep/backend/pkg/logger"
	"github.com/everkeep/backend/pkg/otp"
)

const maxOTPAttempts = 5

type deathVerificationService struct {
	repos        *repository.Repositories
	hasher       hash.PasswordHasher
	otpGenerator otp.Generator
	enqueue      Enqueuer
	cfg          config.CheckInConfig
}

func newDeathVerificationService(
	repos *repository.Repositories,
	hasher hash.PasswordHasher,
	otpGenerator otp.Generator,
	enqueue Enqueuer,
	cfg config.CheckInConfig,
) *deathVerificationService {
	return &deathVerificationService{
		repos:        repos,
		hasher:       hasher,
		otpGenerator: otpGenerator,
		enqueue:      enqueue,
		cfg:          cfg,
	}
}

// StartRound issues a one-time code to every registered death verifier.
// A verifier whose code could not be stored or mailed is skipped so the
// remaining verifiers still get theirs.
func (s *deathVerificationService) StartRound(ctx context.Context, userID uuid.UUID) error {
	user, err := s.repos.Users.GetOneByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get user failed: %w", err)
	}

	verifiers, err := s.repos.Contacts.GetDeathVerifiers(ctx, userID)
	if err != nil {
		return fmt.Errorf("get death verifiers failed: %w", err)
	}
	if len(verifiers) == 0 {
		logger.Warn("death reported but no verifiers registered",
			zap.String("user_id", userID.String()))
		return nil
	}

	now := time.Now()
	for _, verifier := range verifiers {
		if err := s.issueCode(ctx, user, verifier, now); err != nil {
			logger.Error("issue verification code failed",
				zap.String("user_id", userID.String()),
				zap.String("contact_id", verifier.ID.String()),
				zap.Error(err))
		}
	}

	return nil
}

func (s *deathVerificationService) issueCode(ctx context.Context, user *domain.User, verifier domain.Contact, now time.Time) error {
	code := s.otpGenerator.RandomCode(s.cfg.OTPCodeLength)

	codeHash, err := s.hasher.Hash(code)
	if err != nil {
		return fmt.Errorf("hash otp failed: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate otp id failed: %w", err)
	}

	record := &domain.DeathVerificationOTP{
		ID:        id,
		UserID:    user.ID,
		ContactID: verifier.ID,
		CodeHash:  codeHash,
		ExpiresAt: now.Add(s.cfg.OTPTTL),
		CreatedAt: now,
	}
	if err := s.repos.DeathVerificationOTPs.Create(ctx, record); err != nil {
		return fmt.Errorf("store otp failed: %w", err)
	}

	t, err := task.NewSendDeathOTPEmailTask(task.SendDeathOTPEmail{
		Email:        verifier.Email,
		ContactName:  verifier.FullName,
		UserFullName: user.FullName,
		Code:         code,
	})
	if err != nil {
		return fmt.Errorf("build otp email task failed: %w", err)
	}
	if err := s.enqueue(ctx, t); err != nil {
		return fmt.Errorf("enqueue otp email failed: %w", err)
	}

	return nil
}

// Confirm checks one verifier's code and, once enough distinct verifiers
// have confirmed inside the quorum window, releases the user's wills.
// The confirmation, the quorum count and the release happen in one
// transaction so two concurrent confirms cannot both observe a partial
// quorum.
func (s *deathVerificationService) Confirm(ctx context.Context, userID, contactID uuid.UUID, code string) (bool, error) {
	record, err := s.repos.DeathVerificationOTPs.GetOpenByUserAndContact(ctx, userID, contactID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, ErrOTPInvalid
		}
		return false, fmt.Errorf("get otp failed: %w", err)
	}

	if record.Attempts >= maxOTPAttempts {
		return false, ErrOTPInvalid
	}

	codeHash, err := s.hasher.Hash(code)
	if err != nil {
		return false, fmt.Errorf("hash otp failed: %w", err)
	}
	if codeHash != record.CodeHash {
		if err := s.repos.DeathVerificationOTPs.IncrementAttempts(ctx, record.ID); err != nil {
			logger.Error("increment otp attempts failed",
				zap.String("otp_id", record.ID.String()), zap.Error(err))
		}
		return false, ErrOTPInvalid
	}

	// Only verified verifiers can ever confirm, so only they may lower
	// the threshold; counting pending ones would leave the quorum
	// unreachable.
	verifierCount, err := s.repos.Contacts.CountVerifiedDeathVerifiers(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("count verifiers failed: %w", err)
	}

	now := time.Now()

	tx, err := s.repos.BeginTx(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback() //nolint:errcheck

	if err := s.repos.DeathVerificationOTPs.ConfirmWithTx(ctx, tx, record.ID, now); err != nil {
		if errors.Is(err, domain.ErrNoRowsAffected) {
			// Already confirmed by a concurrent request.
			return false, ErrOTPInvalid
		}
		return false, fmt.Errorf("confirm otp failed: %w", err)
	}

	since := now.Add(-s.cfg.QuorumWindow)
	confirmed, err := s.repos.DeathVerificationOTPs.CountConfirmedSinceWithTx(ctx, tx, userID, since)
	if err != nil {
		return false, fmt.Errorf("count confirmations failed: %w", err)
	}

	threshold := s.cfg.QuorumThreshold
	if verifierCount < threshold {
		threshold = verifierCount
	}
	if threshold < 1 {
		threshold = 1
	}

	if confirmed < threshold {
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("commit confirmation failed: %w", err)
		}
		return false, nil
	}

	if err := s.repos.Wills.ReleaseAllWithTx(ctx, tx, userID, now); err != nil {
		return false, fmt.Errorf("release wills failed: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit release failed: %w", err)
	}

	s.notifyReleased(ctx, userID)

	return true, nil
}

func (s *deathVerificationService) notifyReleased(ctx context.Context, userID uuid.UUID) {
	user, err := s.repos.Users.GetOneByID(ctx, userID)
	if err != nil {
		logger.Error("get user for release notice failed",
			zap.String("user_id", userID.String()), zap.Error(err))
		return
	}

	contacts, err := s.repos.Contacts.GetVerifiedByUser(ctx, userID)
	if err != nil {
		logger.Error("get contacts for release notice failed",
			zap.String("user_id", userID.String()), zap.Error(err))
		return
	}

	for _, contact := range contacts {
		t, err := task.NewSendWillReleasedEmailTask(task.SendWillReleasedEmail{
			Email:        contact.Email,
			ContactName:  contact.FullName,
			UserFullName: user.FullName,
		})
		if err != nil {
			logger.Error("build release email task failed", zap.Error(err))
			continue
		}
		if err := s.enqueue(ctx, t); err != nil {
			logger.Error("enqueue release email failed",
				zap.String("contact_id", contact.ID.String()), zap.Error(err))
		}
	}
}
