package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvitationTokenRoundTrip(t *testing.T) {
	t.Parallel()

	manager, err := NewCheckInTokenManager("test-key", time.Hour)
	require.NoError(t, err)

	contactID := uuid.New()

	token, err := manager.NewInvitationToken(contactID)
	require.NoError(t, err)

	parsed, err := manager.ParseInvitationToken(token)
	require.NoError(t, err)
	assert.Equal(t, contactID, parsed)
}

func TestInvitationTokenRejectsCheckInToken(t *testing.T) {
	t.Parallel()

	manager, err := NewCheckInTokenManager("test-key", time.Hour)
	require.NoError(t, err)

	// A check-in token carries no invitation purpose and must not open
	// the invitation path.
	token, _, err := manager.Issue(uuid.New(), true, CheckInRoleUser, nil)
	require.NoError(t, err)

	_, err = manager.ParseInvitationToken(token)
	assert.ErrorIs(t, err, ErrInvitationTokenInvalid)
}

func TestInvitationTokenWrongKey(t *testing.T) {
	t.Parallel()

	issuer, err := NewCheckInTokenManager("key-one", time.Hour)
	require.NoError(t, err)
	verifier, err := NewCheckInTokenManager("key-two", time.Hour)
	require.NoError(t, err)

	token, err := issuer.NewInvitationToken(uuid.New())
	require.NoError(t, err)

	_, err = verifier.ParseInvitationToken(token)
	assert.ErrorIs(t, err, ErrInvitationTokenInvalid)
}
