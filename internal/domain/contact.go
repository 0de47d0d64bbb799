package domain

import (
	"time"

	"github.com/google/uuid"
)

type ContactRole string

const (
	ContactRoleBeneficiary ContactRole = "beneficiary"
	ContactRoleExecutor    ContactRole = "executor"
)

type ContactStatus string

const (
	ContactStatusPending  ContactStatus = "pending"
	ContactStatusVerified ContactStatus = "verified"
	ContactStatusDeclined ContactStatus = "declined"
)

// MaxDeathVerifiers bounds the pool of contacts that may jointly
// authorize will release.
const MaxDeathVerifiers = 5

// Contact is a named third party attached to exactly one user. Only
// verified contacts receive check-in mail or count toward the death
// verification quorum.
type Contact struct {
	ID              uuid.UUID     `db:"id" json:"id"`
	UserID          uuid.UUID     `db:"user_id" json:"user_id"`
	Role            ContactRole   `db:"role" json:"role"`
	FullName        string        `db:"full_name" json:"full_name"`
	Email           string        `db:"email" json:"email"`
	Relationship    string        `db:"relationship" json:"relationship"`
	Status          ContactStatus `db:"status" json:"status"`
	IsDeathVerifier bool          `db:"is_death_verifier" json:"is_death_verifier"`

	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}
