package domain

import (
	"time"

	"github.com/google/uuid"
)

// DeathVerificationOTP is one verifier's slot in an open verification
// round. The code is stored hashed; ConfirmedAt is set exactly once.
type DeathVerificationOTP struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	ContactID   uuid.UUID  `db:"contact_id" json:"contact_id"`
	CodeHash    string     `db:"code_hash" json:"-"`
	Attempts    int        `db:"attempts" json:"attempts"`
	ExpiresAt   time.Time  `db:"expires_at" json:"expires_at"`
	ConfirmedAt *time.Time `db:"confirmed_at" json:"confirmed_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}
