package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const invitationTokenTTL = 720 * time.Hour

var ErrInvitationTokenInvalid = errors.New("invitation token invalid")

type invitationClaims struct {
	Purpose string `json:"purpose"`

	jwt.RegisteredClaims
}

// NewInvitationToken mints the token embedded in contact invitation
// emails; subject is the contact id.
func (m *CheckInTokenManager) NewInvitationToken(contactID uuid.UUID) (string, error) {
	now := time.Now()
	claims := invitationClaims{
		Purpose: "invitation",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   contactID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(invitationTokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.signingKey))
	if err != nil {
		return "", fmt.Errorf("sign invitation token failed: %w", err)
	}

	return token, nil
}

// ParseInvitationToken returns the contact id an invitation token was
// issued for.
func (m *CheckInTokenManager) ParseInvitationToken(token string) (uuid.UUID, error) {
	var claims invitationClaims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(m.signingKey), nil
	})
	if err != nil || !parsed.Valid || claims.Purpose != "invitation" {
		return uuid.Nil, ErrInvitationTokenInvalid
	}

	contactID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvitationTokenInvalid
	}

	return contactID, nil
}
