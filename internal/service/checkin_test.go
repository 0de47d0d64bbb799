package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everkeep/backend/internal/config"
	"github.com/everkeep/backend/internal/domain"
	"github.com/everkeep/backend/internal/repository"
	"github.com/everkeep/backend/pkg/auth"
)

// -------- test fakes --------

var errDatabaseDown = errors.New("database down")

type fakeUsersRepo struct {
	repository.Users

	users    map[uuid.UUID]*domain.User
	advances []uuid.UUID
}

func (f *fakeUsersRepo) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) AdvanceCheckInWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, lastCheckIn, nextDue time.Time) error {
	f.advances = append(f.advances, id)
	return nil
}

type fakeContactsRepo struct {
	repository.Contacts

	contacts map[uuid.UUID]*domain.Contact
}

func (f *fakeContactsRepo) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.Contact, error) {
	c, ok := f.contacts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

type fakeCheckInResponsesRepo struct {
	repository.CheckInResponses

	created   []*domain.CheckInResponse
	createErr error
}

func (f *fakeCheckInResponsesRepo) CreateWithTx(ctx context.Context, tx *sqlx.Tx, response *domain.CheckInResponse) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, response)
	return nil
}

type fakeWillsRepo struct {
	repository.Wills

	pendingFor []uuid.UUID
}

func (f *fakeWillsRepo) MarkPendingVerificationWithTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error {
	f.pendingFor = append(f.pendingFor, userID)
	return nil
}

type fakeReplayGuard struct {
	used map[string]bool
}

func (f *fakeReplayGuard) IsUsed(ctx context.Context, tokenID string) (bool, error) {
	return f.used[tokenID], nil
}

func (f *fakeReplayGuard) MarkUsed(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	if f.used == nil {
		f.used = map[string]bool{}
	}
	if f.used[tokenID] {
		return false, nil
	}
	f.used[tokenID] = true
	return true, nil
}

type fakeDeathVerifications struct {
	rounds []uuid.UUID
}

func (f *fakeDeathVerifications) StartRound(ctx context.Context, userID uuid.UUID) error {
	f.rounds = append(f.rounds, userID)
	return nil
}

func (f *fakeDeathVerifications) Confirm(ctx context.Context, userID, contactID uuid.UUID, code string) (bool, error) {
	return false, nil
}

// -------- fixture --------

type checkInFixture struct {
	service   *checkInService
	tokens    *auth.CheckInTokenManager
	mock      sqlmock.Sqlmock
	users     *fakeUsersRepo
	contacts  *fakeContactsRepo
	responses *fakeCheckInResponsesRepo
	wills     *fakeWillsRepo
	guard     *fakeReplayGuard
	rounds    *fakeDeathVerifications

	userID uuid.UUID
}

func newCheckInFixture(t *testing.T) *checkInFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userID := uuid.New()

	users := &fakeUsersRepo{users: map[uuid.UUID]*domain.User{
		userID: {ID: userID, Email: "owner@example.com", FullName: "Owner"},
	}}
	contacts := &fakeContactsRepo{contacts: map[uuid.UUID]*domain.Contact{}}
	responses := &fakeCheckInResponsesRepo{}
	wills := &fakeWillsRepo{}
	guard := &fakeReplayGuard{}
	rounds := &fakeDeathVerifications{}

	repos := repository.NewRepositories(sqlx.NewDb(db, "sqlmock"))
	repos.Users = users
	repos.Contacts = contacts
	repos.CheckInResponses = responses
	repos.Wills = wills

	tokens, err := auth.NewCheckInTokenManager("confirm-test-key", 168*time.Hour)
	require.NoError(t, err)

	cfg := config.CheckInConfig{Period: 168 * time.Hour, TokenTTL: 168 * time.Hour}

	return &checkInFixture{
		service:   newCheckInService(repos, tokens, guard, rounds, cfg),
		tokens:    tokens,
		mock:      mock,
		users:     users,
		contacts:  contacts,
		responses: responses,
		wills:     wills,
		guard:     guard,
		rounds:    rounds,
		userID:    userID,
	}
}

// -------- tests --------

func TestConfirmAliveRecordsAndAdvances(t *testing.T) {
	f := newCheckInFixture(t)

	token, jti, err := f.tokens.Issue(f.userID, true, auth.CheckInRoleUser, nil)
	require.NoError(t, err)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	result, err := f.service.Confirm(context.Background(), ConfirmCheckInInput{
		UserID: f.userID,
		Alive:  true,
		Token:  token,
	})
	require.NoError(t, err)

	assert.True(t, result.Alive)
	assert.False(t, result.Replayed)
	assert.False(t, result.WillsPending)

	require.Len(t, f.responses.created, 1)
	recorded := f.responses.created[0]
	assert.Equal(t, f.userID, recorded.UserID)
	assert.Equal(t, jti, recorded.TokenID)
	assert.True(t, recorded.Alive)
	assert.Nil(t, recorded.ContactID)

	assert.Equal(t, []uuid.UUID{f.userID}, f.users.advances)
	assert.Empty(t, f.wills.pendingFor)
	assert.Empty(t, f.rounds.rounds)

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestConfirmDeceasedFreezesWillsAndStartsRound(t *testing.T) {
	f := newCheckInFixture(t)

	token, _, err := f.tokens.Issue(f.userID, false, auth.CheckInRoleUser, nil)
	require.NoError(t, err)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	result, err := f.service.Confirm(context.Background(), ConfirmCheckInInput{
		UserID: f.userID,
		Alive:  false,
		Token:  token,
	})
	require.NoError(t, err)

	assert.False(t, result.Alive)
	assert.True(t, result.WillsPending)

	assert.Equal(t, []uuid.UUID{f.userID}, f.wills.pendingFor)
	assert.Equal(t, []uuid.UUID{f.userID}, f.rounds.rounds)
	assert.Empty(t, f.users.advances)

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestConfirmReplayedTokenWritesNothing(t *testing.T) {
	f := newCheckInFixture(t)

	token, _, err := f.tokens.Issue(f.userID, true, auth.CheckInRoleUser, nil)
	require.NoError(t, err)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	_, err = f.service.Confirm(context.Background(), ConfirmCheckInInput{
		UserID: f.userID, Alive: true, Token: token,
	})
	require.NoError(t, err)

	// Second click on the same link: answered politely, zero new rows.
	result, err := f.service.Confirm(context.Background(), ConfirmCheckInInput{
		UserID: f.userID, Alive: true, Token: token,
	})
	require.NoError(t, err)

	assert.True(t, result.Replayed)
	assert.Len(t, f.responses.created, 1)
	assert.Len(t, f.users.advances, 1)

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestConfirmDuplicateRowTreatedAsReplay(t *testing.T) {
	f := newCheckInFixture(t)

	token, _, err := f.tokens.Issue(f.userID, true, auth.CheckInRoleUser, nil)
	require.NoError(t, err)

	// The unique token_id column backs up the redis guard when redis
	// forgot the id.
	f.responses.createErr = domain.ErrDuplicateEntry

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	result, err := f.service.Confirm(context.Background(), ConfirmCheckInInput{
		UserID: f.userID, Alive: true, Token: token,
	})
	require.NoError(t, err)

	assert.True(t, result.Replayed)
	assert.Empty(t, f.users.advances)

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestConfirmRetryAfterTransientFailureRecords(t *testing.T) {
	f := newCheckInFixture(t)

	token, jti, err := f.tokens.Issue(f.userID, true, auth.CheckInRoleUser, nil)
	require.NoError(t, err)

	// First click hits a transient store failure; nothing is recorded and
	// the token must stay usable for the retry.
	f.responses.createErr = errDatabaseDown

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err = f.service.Confirm(context.Background(), ConfirmCheckInInput{
		UserID: f.userID, Alive: true, Token: token,
	})
	require.ErrorIs(t, err, errDatabaseDown)
	assert.Empty(t, f.responses.created)
	assert.False(t, f.guard.used[jti])

	// The fault clears; the same link records the attestation.
	f.responses.createErr = nil

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	result, err := f.service.Confirm(context.Background(), ConfirmCheckInInput{
		UserID: f.userID, Alive: true, Token: token,
	})
	require.NoError(t, err)

	assert.False(t, result.Replayed)
	require.Len(t, f.responses.created, 1)
	assert.Equal(t, jti, f.responses.created[0].TokenID)
	assert.True(t, f.guard.used[jti])

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestConfirmRejectsMismatchedClaims(t *testing.T) {
	f := newCheckInFixture(t)

	aliveToken, _, err := f.tokens.Issue(f.userID, true, auth.CheckInRoleUser, nil)
	require.NoError(t, err)

	tests := []struct {
		name  string
		input ConfirmCheckInInput
	}{
		{"alive flag flipped", ConfirmCheckInInput{UserID: f.userID, Alive: false, Token: aliveToken}},
		{"wrong user", ConfirmCheckInInput{UserID: uuid.New(), Alive: true, Token: aliveToken}},
		{"wrong role path", ConfirmCheckInInput{UserID: f.userID, Alive: true, Token: aliveToken, ExpectRole: auth.CheckInRoleBeneficiary}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Confirm(context.Background(), tt.input)
			assert.ErrorIs(t, err, ErrCheckInTokenMismatch)
		})
	}

	assert.Empty(t, f.responses.created)
}

func TestConfirmRejectsForgedAndExpiredTokens(t *testing.T) {
	f := newCheckInFixture(t)

	foreign, err := auth.NewCheckInTokenManager("other-key", time.Hour)
	require.NoError(t, err)
	forged, _, err := foreign.Issue(f.userID, true, auth.CheckInRoleUser, nil)
	require.NoError(t, err)

	_, err = f.service.Confirm(context.Background(), ConfirmCheckInInput{
		UserID: f.userID, Alive: true, Token: forged,
	})
	assert.ErrorIs(t, err, auth.ErrCheckInTokenInvalid)

	expiredIssuer, err := auth.NewCheckInTokenManager("confirm-test-key", -time.Minute)
	require.NoError(t, err)
	expired, _, err := expiredIssuer.Issue(f.userID, true, auth.CheckInRoleUser, nil)
	require.NoError(t, err)

	_, err = f.service.Confirm(context.Background(), ConfirmCheckInInput{
		UserID: f.userID, Alive: true, Token: expired,
	})
	assert.ErrorIs(t, err, auth.ErrCheckInTokenExpired)

	assert.Empty(t, f.responses.created)
}

func TestConfirmUnknownUser(t *testing.T) {
	f := newCheckInFixture(t)

	strangerID := uuid.New()
	token, _, err := f.tokens.Issue(strangerID, true, auth.CheckInRoleUser, nil)
	require.NoError(t, err)

	_, err = f.service.Confirm(context.Background(), ConfirmCheckInInput{
		UserID: strangerID, Alive: true, Token: token,
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestConfirmContactResponder(t *testing.T) {
	f := newCheckInFixture(t)

	contactID := uuid.New()
	f.contacts.contacts[contactID] = &domain.Contact{
		ID:     contactID,
		UserID: f.userID,
		Role:   domain.ContactRoleBeneficiary,
		Status: domain.ContactStatusVerified,
	}

	token, _, err := f.tokens.Issue(f.userID, true, auth.CheckInRoleBeneficiary, &contactID)
	require.NoError(t, err)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	result, err := f.service.Confirm(context.Background(), ConfirmCheckInInput{
		UserID:     f.userID,
		Alive:      true,
		Token:      token,
		ExpectRole: auth.CheckInRoleBeneficiary,
	})
	require.NoError(t, err)
	assert.True(t, result.Alive)

	require.Len(t, f.responses.created, 1)
	recorded := f.responses.created[0]
	require.NotNil(t, recorded.ContactID)
	assert.Equal(t, contactID, *recorded.ContactID)
	assert.Equal(t, domain.ResponderRole(auth.CheckInRoleBeneficiary), recorded.ResponderRole)

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestConfirmContactOfAnotherUser(t *testing.T) {
	f := newCheckInFixture(t)

	contactID := uuid.New()
	f.contacts.contacts[contactID] = &domain.Contact{
		ID:     contactID,
		UserID: uuid.New(), // belongs to someone else
		Role:   domain.ContactRoleBeneficiary,
	}

	token, _, err := f.tokens.Issue(f.userID, true, auth.CheckInRoleBeneficiary, &contactID)
	require.NoError(t, err)

	_, err = f.service.Confirm(context.Background(), ConfirmCheckInInput{
		UserID:     f.userID,
		Alive:      true,
		Token:      token,
		ExpectRole: auth.CheckInRoleBeneficiary,
	})
	assert.ErrorIs(t, err, ErrCheckInTokenMismatch)
}
