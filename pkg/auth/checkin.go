package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Responder roles carried inside a check-in token.
const (
	CheckInRoleUser        = "user"
	CheckInRoleBeneficiary = "beneficiary"
	CheckInRoleExecutor    = "executor"
)

var (
	ErrCheckInTokenInvalid = errors.New("check-in token invalid")
	ErrCheckInTokenExpired = errors.New("check-in token expired")
)

// CheckInClaims is the payload of the signed check-in token embedded in
// email links. Subject is the user the attestation concerns, ID (jti)
// is the single-use identifier, ContactID is set for contact responders.
type CheckInClaims struct {
	Alive     bool   `json:"alive"`
	Role      string `json:"role"`
	ContactID string `json:"contact_id,omitempty"`

	jwt.RegisteredClaims
}

// CheckInTokenManager issues and verifies HMAC-signed check-in tokens.
// Tokens are URL-embeddable and authorize a confirmation request
// without login; the signature prevents forgery of subject, responder
// or claimed liveness.
type CheckInTokenManager struct {
	signingKey string
	ttl        time.Duration
}

func NewCheckInTokenManager(signingKey string, ttl time.Duration) (*CheckInTokenManager, error) {
	if signingKey == "" {
		return nil, errors.New("empty signing key")
	}
	if ttl == 0 {
		return nil, errors.New("empty check-in token ttl")
	}

	return &CheckInTokenManager{signingKey: signingKey, ttl: ttl}, nil
}

func (m *CheckInTokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue mints one token. contactID is nil for the user's own links.
// Returns the signed token and its jti.
func (m *CheckInTokenManager) Issue(userID uuid.UUID, alive bool, role string, contactID *uuid.UUID) (string, string, error) {
	jti, err := uuid.NewV7()
	if err != nil {
		return "", "", fmt.Errorf("generate token id failed: %w", err)
	}

	now := time.Now()
	claims := CheckInClaims{
		Alive: alive,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti.String(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	if contactID != nil {
		claims.ContactID = contactID.String()
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.signingKey))
	if err != nil {
		return "", "", fmt.Errorf("sign check-in token failed: %w", err)
	}

	return token, jti.String(), nil
}

// Parse verifies the signature and expiry and returns the claims.
func (m *CheckInTokenManager) Parse(token string) (*CheckInClaims, error) {
	var claims CheckInClaims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(m.signingKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrCheckInTokenExpired
		}
		return nil, ErrCheckInTokenInvalid
	}

	if !parsed.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, ErrCheckInTokenInvalid
	}

	switch claims.Role {
	case CheckInRoleUser, CheckInRoleBeneficiary, CheckInRoleExecutor:
	default:
		return nil, ErrCheckInTokenInvalid
	}

	return &claims, nil
}
