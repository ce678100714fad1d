package types

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account in the system.
// It contains identity, privilege, ban state, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID uuid.UUID `json:"id" db:"id"`

	// Name is the user's display name.
	Name string `json:"name" db:"name"`

	// Email is the user's login address. It is stored trimmed and
	// lower-cased, and is unique across all users.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// IsAdmin grants access to the /api/admin endpoints.
	IsAdmin bool `json:"isAdmin" db:"is_admin"`

	// IsBanned suspends the user's ability to authenticate.
	IsBanned bool `json:"isBanned" db:"is_banned"`

	// BanReason is the free-text reason recorded by the banning admin.
	BanReason *string `json:"banReason,omitempty" db:"ban_reason"`

	// BannedAt is when the ban was issued.
	BannedAt *time.Time `json:"bannedAt,omitempty" db:"banned_at"`

	// BannedBy is the ID of the admin who issued the ban.
	BannedBy *uuid.UUID `json:"bannedBy,omitempty" db:"banned_by"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// UserFilter narrows user listings. A nil Banned matches every user.
type UserFilter struct {
	Banned *bool
}

// Dashboard aggregates counts for the admin overview.
type Dashboard struct {
	TotalUsers           int `json:"totalUsers"`
	ActiveUsers          int `json:"activeUsers"`
	BannedUsers          int `json:"bannedUsers"`
	TotalSongs           int `json:"totalSongs"`
	TotalVocalRecordings int `json:"totalVocalRecordings"`
}
