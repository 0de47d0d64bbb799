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
	"github.com/everkeep/backend/pkg/auth"
	"github.com/everkeep/backend/pkg/hash"
	"github.com/everkeep/backend/pkg/logger"
	"github.com/everkeep/backend/pkg/otp"
)

const maxVerificationAttempts = 5

type userService struct {
	repos        *repository.Repositories
	hasher       hash.PasswordHasher
	tokenManager auth.TokenManager
	otpGenerator otp.Generator
	enqueue      Enqueuer
	authConfig   config.AuthConfig
}

func newUserService(
	repos *repository.Repositories,
	hasher hash.PasswordHasher,
	tokenManager auth.TokenManager,
	otpGenerator otp.Generator,
	enqueue Enqueuer,
	authConfig config.AuthConfig,
) *userService {
	return &userService{
		repos:        repos,
		hasher:       hasher,
		tokenManager: tokenManager,
		otpGenerator: otpGenerator,
		enqueue:      enqueue,
		authConfig:   authConfig,
	}
}

type SignUpInput struct {
	Email    string
	Password string
	FullName string
}

type SignInInput struct {
	Email     string
	Password  string
	UserAgent string
	UserIP    string
}

func (s *userService) SignUp(ctx context.Context, input SignUpInput) error {
	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return fmt.Errorf("hash password failed: %w", err)
	}

	userID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate user id failed: %w", err)
	}

	user := &domain.User{
		ID:           userID,
		Email:        input.Email,
		PasswordHash: passwordHash,
		FullName:     input.FullName,
	}

	if err := s.repos.Users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEntry) {
			return ErrUserAlreadyExist
		}
		return fmt.Errorf("create user failed: %w", err)
	}

	code := s.otpGenerator.RandomCode(s.authConfig.VerificationCodeLength)

	verificationID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate verification id failed: %w", err)
	}

	verification := &domain.UserVerification{
		ID:     verificationID,
		UserID: userID,
		Email:  input.Email,
		Code:   code,
	}
	if err := s.repos.UserVerifications.Create(ctx, verification); err != nil {
		return fmt.Errorf("create user verification failed: %w", err)
	}

	t, err := task.NewSendVerificationEmailTask(input.Email, code)
	if err != nil {
		return fmt.Errorf("build verification email task failed: %w", err)
	}
	if err := s.enqueue(ctx, t); err != nil {
		// Account exists; the user can request a new code later.
		logger.Error("enqueue verification email failed", zap.Error(err))
	}

	return nil
}

func (s *userService) VerifyEmail(ctx context.Context, email string, code string) error {
	user, err := s.repos.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get user by email failed: %w", err)
	}

	if user.EmailVerified {
		return nil
	}

	verification, err := s.repos.UserVerifications.GetLatestByUser(ctx, user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrVerificationCode
		}
		return fmt.Errorf("get user verification failed: %w", err)
	}

	if verification.Confirmed || verification.Attempts >= maxVerificationAttempts {
		return ErrVerificationCode
	}

	if verification.Code != code {
		if err := s.repos.UserVerifications.IncrementAttempts(ctx, verification.ID); err != nil {
			return fmt.Errorf("increment verification attempts failed: %w", err)
		}
		return ErrVerificationCode
	}

	tx, err := s.repos.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now()
	if err := s.repos.UserVerifications.ConfirmWithTx(ctx, tx, verification.ID, now); err != nil {
		return fmt.Errorf("confirm verification failed: %w", err)
	}
	if err := s.repos.Users.SetEmailVerifiedWithTx(ctx, tx, user.ID); err != nil {
		return fmt.Errorf("set email verified failed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit verification failed: %w", err)
	}

	return nil
}

func (s *userService) SignIn(ctx context.Context, input SignInInput) (*Tokens, error) {
	user, err := s.repos.Users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrIncorrectCredentials
		}
		return nil, fmt.Errorf("get user by email failed: %w", err)
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	if passwordHash != user.PasswordHash {
		return nil, ErrIncorrectCredentials
	}

	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return s.createSession(ctx, &user.ID, &input.UserAgent, &input.UserIP)
}

func (s *userService) Refresh(ctx context.Context, refreshToken string, userAgent string, userIP string) (*Tokens, error) {
	token, err := s.tokenManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrSessionExpired
	}

	session, err := s.repos.RefreshSessions.GetByToken(ctx, *token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("get refresh session failed: %w", err)
	}

	if time.Now().After(session.ExpiresIn) {
		return nil, ErrSessionExpired
	}

	if err := s.repos.RefreshSessions.Delete(ctx, session.ID); err != nil {
		return nil, fmt.Errorf("delete refresh session failed: %w", err)
	}

	return s.createSession(ctx, &session.UserID, &userAgent, &userIP)
}

func (s *userService) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.repos.Users.GetOneByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) createSession(ctx context.Context, userID *uuid.UUID, userAgent *string, userIP *string) (*Tokens, error) {
	var (
		res Tokens
		err error
	)

	res.AccessToken, res.AccessTTL, err = s.tokenManager.NewJWT(userID)
	if err != nil {
		return &res, fmt.Errorf("generate access token failed: %w", err)
	}

	res.RefreshToken, res.RefreshTTL, err = s.tokenManager.NewRefreshToken()
	if err != nil {
		return &res, fmt.Errorf("generate refresh token failed: %w", err)
	}

	refreshSessionID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate refresh session id failed: %w", err)
	}
	refreshSession := &domain.RefreshSession{
		ID:           refreshSessionID,
		UserID:       *userID,
		RefreshToken: res.RefreshToken,
		UserAgent:    *userAgent,
		IP:           *userIP,
		ExpiresIn:    time.Now().Add(res.RefreshTTL),
	}

	if err := s.repos.RefreshSessions.Create(ctx, refreshSession); err != nil {
		return nil, fmt.Errorf("create refresh session failed: %w", err)
	}

	return &res, nil
}
