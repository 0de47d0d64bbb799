package domain

import (
	"time"

	"github.com/google/uuid"
)

type ResponderRole string

const (
	ResponderRoleUser        ResponderRole = "user"
	ResponderRoleBeneficiary ResponderRole = "beneficiary"
	ResponderRoleExecutor    ResponderRole = "executor"
)

// CheckInResponse is an append-only attestation record: one row per
// accepted confirmation click, never updated or deleted. TokenID is the
// jti of the check-in token and is unique, so a replayed link cannot
// produce a second row.
type CheckInResponse struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	UserID        uuid.UUID     `db:"user_id" json:"user_id"`
	ContactID     *uuid.UUID    `db:"contact_id" json:"contact_id,omitempty"`
	ResponderRole ResponderRole `db:"responder_role" json:"responder_role"`
	Alive         bool          `db:"alive" json:"alive"`
	TokenID       string        `db:"token_id" json:"-"`
	RespondedAt   time.Time     `db:"responded_at" json:"responded_at"`
}
