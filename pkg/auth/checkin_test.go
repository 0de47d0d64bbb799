package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckInTokenRoundTrip(t *testing.T) {
	t.Parallel()

	manager, err := NewCheckInTokenManager("test-key", time.Hour)
	require.NoError(t, err)

	userID := uuid.New()
	contactID := uuid.New()

	tests := []struct {
		name      string
		alive     bool
		role      string
		contactID *uuid.UUID
	}{
		{"user alive", true, CheckInRoleUser, nil},
		{"user deceased", false, CheckInRoleUser, nil},
		{"beneficiary alive", true, CheckInRoleBeneficiary, &contactID},
		{"executor deceased", false, CheckInRoleExecutor, &contactID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, jti, err := manager.Issue(userID, tt.alive, tt.role, tt.contactID)
			require.NoError(t, err)
			require.NotEmpty(t, jti)

			claims, err := manager.Parse(token)
			require.NoError(t, err)

			assert.Equal(t, userID.String(), claims.Subject)
			assert.Equal(t, tt.alive, claims.Alive)
			assert.Equal(t, tt.role, claims.Role)
			assert.Equal(t, jti, claims.ID)
			if tt.contactID != nil {
				assert.Equal(t, tt.contactID.String(), claims.ContactID)
			} else {
				assert.Empty(t, claims.ContactID)
			}
		})
	}
}

func TestCheckInTokenUniqueJTI(t *testing.T) {
	t.Parallel()

	manager, err := NewCheckInTokenManager("test-key", time.Hour)
	require.NoError(t, err)

	userID := uuid.New()

	_, jti1, err := manager.Issue(userID, true, CheckInRoleUser, nil)
	require.NoError(t, err)
	_, jti2, err := manager.Issue(userID, true, CheckInRoleUser, nil)
	require.NoError(t, err)

	assert.NotEqual(t, jti1, jti2)
}

func TestCheckInTokenTampered(t *testing.T) {
	t.Parallel()

	manager, err := NewCheckInTokenManager("test-key", time.Hour)
	require.NoError(t, err)

	token, _, err := manager.Issue(uuid.New(), true, CheckInRoleUser, nil)
	require.NoError(t, err)

	// Flip a character inside the payload segment.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = manager.Parse(tampered)
	assert.ErrorIs(t, err, ErrCheckInTokenInvalid)
}

func TestCheckInTokenWrongKey(t *testing.T) {
	t.Parallel()

	issuer, err := NewCheckInTokenManager("key-one", time.Hour)
	require.NoError(t, err)
	verifier, err := NewCheckInTokenManager("key-two", time.Hour)
	require.NoError(t, err)

	token, _, err := issuer.Issue(uuid.New(), false, CheckInRoleUser, nil)
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, ErrCheckInTokenInvalid)
}

func TestCheckInTokenExpired(t *testing.T) {
	t.Parallel()

	manager, err := NewCheckInTokenManager("test-key", -time.Minute)
	require.NoError(t, err)

	token, _, err := manager.Issue(uuid.New(), true, CheckInRoleUser, nil)
	require.NoError(t, err)

	_, err = manager.Parse(token)
	assert.ErrorIs(t, err, ErrCheckInTokenExpired)
}

func TestCheckInTokenGarbage(t *testing.T) {
	t.Parallel()

	manager, err := NewCheckInTokenManager("test-key", time.Hour)
	require.NoError(t, err)

	_, err = manager.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrCheckInTokenInvalid)
}

func TestNewCheckInTokenManagerValidation(t *testing.T) {
	t.Parallel()

	_, err := NewCheckInTokenManager("", time.Hour)
	assert.Error(t, err)

	_, err = NewCheckInTokenManager("key", 0)
	assert.Error(t, err)
}
