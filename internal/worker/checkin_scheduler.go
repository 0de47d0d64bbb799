package worker

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/everkeep/backend/internal/cache"
	"github.com/everkeep/backend/internal/config"
	"github.com/everkeep/backend/internal/domain"
	"github.com/everkeep/backend/internal/queue/client"
	"github.com/everkeep/backend/internal/queue/task"
	"github.com/everkeep/backend/internal/repository"
	"github.com/everkeep/backend/pkg/auth"
	"github.com/everkeep/backend/pkg/logger"
)

// Enqueuer hands a task to the queue; swapped out in tests.
type Enqueuer func(ctx context.Context, t *asynq.Task) error

const sweepLockTTL = 30 * time.Minute

type checkInScheduler struct {
	users    repository.Users
	contacts repository.Contacts
	tokens   *auth.CheckInTokenManager
	lock     cache.RunLock
	enqueue  Enqueuer
	cfg      config.CheckInConfig
	baseURL  string
}

func newCheckInScheduler(
	users repository.Users,
	contacts repository.Contacts,
	tokens *auth.CheckInTokenManager,
	lock cache.RunLock,
	enqueue Enqueuer,
	cfg config.CheckInConfig,
	baseURL string,
) *checkInScheduler {
	if enqueue == nil {
		enqueue = client.Enqueue
	}
	return &checkInScheduler{
		users:    users,
		contacts: contacts,
		tokens:   tokens,
		lock:     lock,
		enqueue:  enqueue,
		cfg:      cfg,
		baseURL:  baseURL,
	}
}

// Run processes every user whose check-in is overdue: one email for the
// user, one per verified contact, each carrying its own signed token
// pair. The check-in clock is advanced once the user's emails are
// queued; delivery retries are the queue's responsibility. A failure
// for one recipient is logged and does not abort the run; a repository
// error does.
func (s *checkInScheduler) Run(ctx context.Context) error {
	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx, sweepLockTTL)
		if err != nil {
			return fmt.Errorf("acquire sweep lock failed: %w", err)
		}
		if !acquired {
			logger.Warn("check-in sweep already running, skipping")
			return nil
		}
		defer func() {
			if err := s.lock.Release(ctx); err != nil {
				logger.Error("release sweep lock failed", zap.Error(err))
			}
		}()
	}

	now := time.Now()

	due, err := s.users.SelectCheckInDue(ctx, now)
	if err != nil {
		return fmt.Errorf("select due users failed: %w", err)
	}

	logger.Info("check-in sweep started", zap.Int("due_users", len(due)))

	for i := range due {
		user := &due[i]

		if err := s.processUser(ctx, user); err != nil {
			// Repository failures are not recoverable mid-run.
			return fmt.Errorf("process user %s failed: %w", user.ID, err)
		}

		if err := s.users.AdvanceCheckIn(ctx, user.ID, now, now.Add(s.cfg.Period)); err != nil {
			return fmt.Errorf("advance check-in for user %s failed: %w", user.ID, err)
		}
	}

	logger.Info("check-in sweep finished", zap.Int("processed", len(due)))

	return nil
}

func (s *checkInScheduler) processUser(ctx context.Context, user *domain.User) error {
	if err := s.enqueueRecipient(ctx, user, nil); err != nil {
		logger.Error("queue check-in email for user failed",
			zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	contacts, err := s.contacts.GetVerifiedByUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("get verified contacts failed: %w", err)
	}

	for i := range contacts {
		contact := &contacts[i]
		if err := s.enqueueRecipient(ctx, user, contact); err != nil {
			logger.Error("queue check-in email for contact failed",
				zap.String("user_id", user.ID.String()),
				zap.String("contact_id", contact.ID.String()),
				zap.Error(err))
		}
	}

	return nil
}

func (s *checkInScheduler) enqueueRecipient(ctx context.Context, user *domain.User, contact *domain.Contact) error {
	var (
		role      string
		contactID *uuid.UUID
		email     string
		name      string
	)

	if contact == nil {
		role = auth.CheckInRoleUser
		email = user.Email
		name = user.FullName
	} else {
		role = string(contact.Role)
		contactID = &contact.ID
		email = contact.Email
		name = contact.FullName
	}

	aliveToken, _, err := s.tokens.Issue(user.ID, true, role, contactID)
	if err != nil {
		return fmt.Errorf("issue alive token failed: %w", err)
	}

	deceasedToken, _, err := s.tokens.Issue(user.ID, false, role, contactID)
	if err != nil {
		return fmt.Errorf("issue deceased token failed: %w", err)
	}

	data := task.SendCheckInEmail{
		Email:         email,
		RecipientName: name,
		UserFullName:  user.FullName,
		AliveURL:      s.confirmURL(role, user.ID, true, aliveToken),
		DeceasedURL:   s.confirmURL(role, user.ID, false, deceasedToken),
	}

	t, err := task.NewSendCheckInEmailTask(data)
	if err != nil {
		return fmt.Errorf("build check-in email task failed: %w", err)
	}

	if err := s.enqueue(ctx, t); err != nil {
		return fmt.Errorf("enqueue check-in email task failed: %w", err)
	}

	return nil
}

func (s *checkInScheduler) confirmURL(role string, userID uuid.UUID, alive bool, token string) string {
	path := "/api/v1/check-in/confirm"
	if role != auth.CheckInRoleUser {
		path = fmt.Sprintf("/api/v1/check-in/%s/confirm", role)
	}

	values := url.Values{}
	values.Set("userId", userID.String())
	values.Set("alive", fmt.Sprintf("%t", alive))
	values.Set("token", token)

	return s.baseURL + path + "?" + values.Encode()
}
