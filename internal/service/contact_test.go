package service

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everkeep/backend/internal/domain"
	"github.com/everkeep/backend/internal/queue/task"
	"github.com/everkeep/backend/internal/repository"
	"github.com/everkeep/backend/pkg/auth"
)

type fakeInviteContactsRepo struct {
	repository.Contacts

	byID          map[uuid.UUID]*domain.Contact
	verifierCount int
	statusUpdates map[uuid.UUID]domain.ContactStatus
}

func (f *fakeInviteContactsRepo) Create(ctx context.Context, contact *domain.Contact) error {
	f.byID[contact.ID] = contact
	return nil
}

func (f *fakeInviteContactsRepo) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.Contact, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeInviteContactsRepo) CountDeathVerifiers(ctx context.Context, userID uuid.UUID) (int, error) {
	return f.verifierCount, nil
}

func (f *fakeInviteContactsRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ContactStatus) error {
	if f.statusUpdates == nil {
		f.statusUpdates = map[uuid.UUID]domain.ContactStatus{}
	}
	f.statusUpdates[id] = status
	f.byID[id].Status = status
	return nil
}

type contactFixture struct {
	service  *contactService
	contacts *fakeInviteContactsRepo
	queued   *[]*asynq.Task

	userID uuid.UUID
}

func newContactFixture(t *testing.T) *contactFixture {
	t.Helper()

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userID := uuid.New()

	users := &fakeUsersRepo{users: map[uuid.UUID]*domain.User{
		userID: {ID: userID, Email: "owner@example.com", FullName: "Owner"},
	}}
	contacts := &fakeInviteContactsRepo{byID: map[uuid.UUID]*domain.Contact{}}

	repos := repository.NewRepositories(sqlx.NewDb(db, "sqlmock"))
	repos.Users = users
	repos.Contacts = contacts

	tokens, err := auth.NewCheckInTokenManager("invite-test-key", time.Hour)
	require.NoError(t, err)

	queued := []*asynq.Task{}
	enqueue := func(ctx context.Context, t *asynq.Task) error {
		queued = append(queued, t)
		return nil
	}

	return &contactFixture{
		service:  newContactService(repos, tokens, enqueue, "https://app.example.com"),
		contacts: contacts,
		queued:   &queued,
		userID:   userID,
	}
}

func TestAddContactSendsInvitation(t *testing.T) {
	f := newContactFixture(t)

	contact, err := f.service.Add(context.Background(), f.userID, AddContactInput{
		Role:            domain.ContactRoleBeneficiary,
		FullName:        "Jamie",
		Email:           "jamie@example.com",
		IsDeathVerifier: true,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ContactStatusPending, contact.Status)
	assert.True(t, contact.IsDeathVerifier)

	require.Len(t, *f.queued, 1)
	assert.Equal(t, task.SendInvitationEmailTaskName, (*f.queued)[0].Type())

	var payload task.SendInvitationEmail
	require.NoError(t, json.Unmarshal((*f.queued)[0].Payload(), &payload))
	assert.Equal(t, "jamie@example.com", payload.Email)
	assert.Equal(t, "beneficiary", payload.Role)
	assert.True(t, strings.HasPrefix(payload.AcceptURL, "https://app.example.com/api/v1/contacts/invitations/accept?"))
	assert.True(t, strings.HasPrefix(payload.DeclineURL, "https://app.example.com/api/v1/contacts/invitations/decline?"))
}

func TestAddContactVerifierLimit(t *testing.T) {
	f := newContactFixture(t)
	f.contacts.verifierCount = domain.MaxDeathVerifiers

	_, err := f.service.Add(context.Background(), f.userID, AddContactInput{
		Role:            domain.ContactRoleBeneficiary,
		FullName:        "Jamie",
		Email:           "jamie@example.com",
		IsDeathVerifier: true,
	})
	assert.ErrorIs(t, err, ErrTooManyVerifiers)
	assert.Empty(t, *f.queued)
}

func TestInvitationAcceptRoundTrip(t *testing.T) {
	f := newContactFixture(t)

	contact, err := f.service.Add(context.Background(), f.userID, AddContactInput{
		Role:     domain.ContactRoleExecutor,
		FullName: "Sam",
		Email:    "sam@example.com",
	})
	require.NoError(t, err)

	var payload task.SendInvitationEmail
	require.NoError(t, json.Unmarshal((*f.queued)[0].Payload(), &payload))

	acceptURL, err := url.Parse(payload.AcceptURL)
	require.NoError(t, err)
	token := acceptURL.Query().Get("token")
	require.NotEmpty(t, token)

	require.NoError(t, f.service.Accept(context.Background(), token))
	assert.Equal(t, domain.ContactStatusVerified, f.contacts.byID[contact.ID].Status)

	// Accepting twice is a no-op.
	require.NoError(t, f.service.Accept(context.Background(), token))
}

func TestInvitationDeclineIsFinal(t *testing.T) {
	f := newContactFixture(t)

	_, err := f.service.Add(context.Background(), f.userID, AddContactInput{
		Role:     domain.ContactRoleBeneficiary,
		FullName: "Sam",
		Email:    "sam@example.com",
	})
	require.NoError(t, err)

	var payload task.SendInvitationEmail
	require.NoError(t, json.Unmarshal((*f.queued)[0].Payload(), &payload))
	declineURL, err := url.Parse(payload.DeclineURL)
	require.NoError(t, err)
	token := declineURL.Query().Get("token")

	require.NoError(t, f.service.Decline(context.Background(), token))

	err = f.service.Accept(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvitationInvalid)
}

func TestInvitationGarbageToken(t *testing.T) {
	f := newContactFixture(t)

	err := f.service.Accept(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvitationInvalid)
}
