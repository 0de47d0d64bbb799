package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	Email          string     `db:"email" json:"email"`
	PasswordHash   string     `db:"password_hash" json:"-"`
	FullName       string     `db:"full_name" json:"full_name"`
	EmailVerified  bool       `db:"email_verified" json:"email_verified"`
	LastCheckIn    *time.Time `db:"last_check_in" json:"last_check_in,omitempty"`
	NextCheckInDue *time.Time `db:"next_check_in_due" json:"next_check_in_due,omitempty"`

	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}
