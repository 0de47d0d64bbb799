package domain

import (
	"time"

	"github.com/google/uuid"
)

type WillStatus string

const (
	WillStatusDraft               WillStatus = "draft"
	WillStatusCompleted           WillStatus = "completed"
	WillStatusPendingVerification WillStatus = "pending_verification"
	WillStatusReleased            WillStatus = "released"
)

// Will is owned by exactly one user. Released is reachable only through
// the death verification quorum, never from a single attestation.
type Will struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	UserID     uuid.UUID  `db:"user_id" json:"user_id"`
	Title      string     `db:"title" json:"title"`
	Body       string     `db:"body" json:"body"`
	Status     WillStatus `db:"status" json:"status"`
	ReleasedAt *time.Time `db:"released_at" json:"released_at,omitempty"`

	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

type AssetKind string

const (
	AssetKindProperty  AssetKind = "property"
	AssetKindFinancial AssetKind = "financial"
	AssetKindDigital   AssetKind = "digital"
	AssetKindPersonal  AssetKind = "personal"
)

type Asset struct {
	ID           uuid.UUID `db:"id" json:"id"`
	WillID       uuid.UUID `db:"will_id" json:"will_id"`
	Kind         AssetKind `db:"kind" json:"kind"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	Instructions string    `db:"instructions" json:"instructions"`

	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// WillDocument references an attachment (scanned document, farewell
// video) stored in object storage under StorageKey.
type WillDocument struct {
	ID          uuid.UUID `db:"id" json:"id"`
	WillID      uuid.UUID `db:"will_id" json:"will_id"`
	FileName    string    `db:"file_name" json:"file_name"`
	ContentType string    `db:"content_type" json:"content_type"`
	StorageKey  string    `db:"storage_key" json:"storage_key"`

	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}
