package worker

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everkeep/backend/internal/cache"
	"github.com/everkeep/backend/internal/config"
	"github.com/everkeep/backend/internal/domain"
	"github.com/everkeep/backend/internal/queue/task"
	"github.com/everkeep/backend/internal/repository"
	"github.com/everkeep/backend/pkg/auth"
)

type advanceCall struct {
	userID  uuid.UUID
	last    time.Time
	nextDue time.Time
}

type fakeUsersRepo struct {
	repository.Users

	due      []domain.User
	dueErr   error
	advances []advanceCall
}

func (f *fakeUsersRepo) SelectCheckInDue(ctx context.Context, before time.Time) ([]domain.User, error) {
	return f.due, f.dueErr
}

func (f *fakeUsersRepo) AdvanceCheckIn(ctx context.Context, id uuid.UUID, lastCheckIn, nextDue time.Time) error {
	f.advances = append(f.advances, advanceCall{id, lastCheckIn, nextDue})
	return nil
}

type fakeContactsRepo struct {
	repository.Contacts

	verified map[uuid.UUID][]domain.Contact
}

func (f *fakeContactsRepo) GetVerifiedByUser(ctx context.Context, userID uuid.UUID) ([]domain.Contact, error) {
	return f.verified[userID], nil
}

type fakeRunLock struct {
	acquired bool
	held     bool
	releases int
}

func (f *fakeRunLock) Acquire(ctx context.Context, ttl time.Duration) (bool, error) {
	if f.held {
		return false, nil
	}
	f.acquired = true
	return true, nil
}

func (f *fakeRunLock) Release(ctx context.Context) error {
	f.releases++
	return nil
}

func testScheduler(t *testing.T, users *fakeUsersRepo, contacts *fakeContactsRepo, lock cache.RunLock, enqueue Enqueuer) *checkInScheduler {
	t.Helper()

	tokens, err := auth.NewCheckInTokenManager("sweep-test-key", 168*time.Hour)
	require.NoError(t, err)

	cfg := config.CheckInConfig{Period: 168 * time.Hour, TokenTTL: 168 * time.Hour}

	return newCheckInScheduler(users, contacts, tokens, lock, enqueue, cfg, "https://app.example.com")
}

func TestSweepQueuesUserAndContacts(t *testing.T) {
	userID := uuid.New()
	contactA := domain.Contact{ID: uuid.New(), UserID: userID, Role: domain.ContactRoleBeneficiary, Email: "a@example.com", FullName: "A"}
	contactB := domain.Contact{ID: uuid.New(), UserID: userID, Role: domain.ContactRoleExecutor, Email: "b@example.com", FullName: "B"}

	users := &fakeUsersRepo{due: []domain.User{{ID: userID, Email: "owner@example.com", FullName: "Owner"}}}
	contacts := &fakeContactsRepo{verified: map[uuid.UUID][]domain.Contact{
		userID: {contactA, contactB},
	}}
	lock := &fakeRunLock{}

	var queued []*asynq.Task
	enqueue := func(ctx context.Context, t *asynq.Task) error {
		queued = append(queued, t)
		return nil
	}

	s := testScheduler(t, users, contacts, lock, enqueue)

	require.NoError(t, s.Run(context.Background()))

	// One email per recipient: the user plus each verified contact.
	require.Len(t, queued, 3)
	for _, qt := range queued {
		assert.Equal(t, task.SendCheckInEmailTaskName, qt.Type())
	}

	assert.True(t, lock.acquired)
	assert.Equal(t, 1, lock.releases)
}

func TestSweepAdvancesClockByPeriod(t *testing.T) {
	userID := uuid.New()
	users := &fakeUsersRepo{due: []domain.User{{ID: userID, Email: "owner@example.com", FullName: "Owner"}}}
	contacts := &fakeContactsRepo{}

	s := testScheduler(t, users, contacts, nil, func(ctx context.Context, t *asynq.Task) error { return nil })

	require.NoError(t, s.Run(context.Background()))

	require.Len(t, users.advances, 1)
	adv := users.advances[0]
	assert.Equal(t, userID, adv.userID)
	assert.Equal(t, 168*time.Hour, adv.nextDue.Sub(adv.last))
	assert.WithinDuration(t, time.Now(), adv.last, time.Minute)
}

func TestSweepAdvancesEvenWhenEnqueueFails(t *testing.T) {
	userID := uuid.New()
	users := &fakeUsersRepo{due: []domain.User{{ID: userID, Email: "owner@example.com", FullName: "Owner"}}}
	contacts := &fakeContactsRepo{}

	s := testScheduler(t, users, contacts, nil, func(ctx context.Context, t *asynq.Task) error {
		return errors.New("queue down")
	})

	// Delivery retries belong to the queue; a failed enqueue must not
	// stall the clock and flood the user next run.
	require.NoError(t, s.Run(context.Background()))
	require.Len(t, users.advances, 1)
}

func TestSweepSkipsWhenLockHeld(t *testing.T) {
	users := &fakeUsersRepo{due: []domain.User{{ID: uuid.New()}}}
	contacts := &fakeContactsRepo{}
	lock := &fakeRunLock{held: true}

	var queued int
	s := testScheduler(t, users, contacts, lock, func(ctx context.Context, t *asynq.Task) error {
		queued++
		return nil
	})

	require.NoError(t, s.Run(context.Background()))
	assert.Zero(t, queued)
	assert.Empty(t, users.advances)
}

func TestSweepNoDueUsers(t *testing.T) {
	users := &fakeUsersRepo{}
	contacts := &fakeContactsRepo{}

	var queued int
	s := testScheduler(t, users, contacts, nil, func(ctx context.Context, t *asynq.Task) error {
		queued++
		return nil
	})

	require.NoError(t, s.Run(context.Background()))
	assert.Zero(t, queued)
	assert.Empty(t, users.advances)
}

func TestSweepEmailCarriesValidTokenPair(t *testing.T) {
	userID := uuid.New()
	users := &fakeUsersRepo{due: []domain.User{{ID: userID, Email: "owner@example.com", FullName: "Owner"}}}
	contacts := &fakeContactsRepo{}

	var queued []*asynq.Task
	s := testScheduler(t, users, contacts, nil, func(ctx context.Context, t *asynq.Task) error {
		queued = append(queued, t)
		return nil
	})

	require.NoError(t, s.Run(context.Background()))
	require.Len(t, queued, 1)

	var payload task.SendCheckInEmail
	require.NoError(t, json.Unmarshal(queued[0].Payload(), &payload))

	assert.Equal(t, "owner@example.com", payload.Email)
	assert.True(t, strings.HasPrefix(payload.AliveURL, "https://app.example.com/api/v1/check-in/confirm?"))

	aliveClaims := parseTokenFromURL(t, s, payload.AliveURL)
	assert.True(t, aliveClaims.Alive)
	assert.Equal(t, auth.CheckInRoleUser, aliveClaims.Role)
	assert.Equal(t, userID.String(), aliveClaims.Subject)

	deceasedClaims := parseTokenFromURL(t, s, payload.DeceasedURL)
	assert.False(t, deceasedClaims.Alive)
	assert.NotEqual(t, aliveClaims.ID, deceasedClaims.ID)
}

func parseTokenFromURL(t *testing.T, s *checkInScheduler, rawURL string) *auth.CheckInClaims {
	t.Helper()

	u, err := url.Parse(rawURL)
	require.NoError(t, err)

	claims, err := s.tokens.Parse(u.Query().Get("token"))
	require.NoError(t, err)

	return claims
}
