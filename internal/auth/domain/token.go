package domain

import "time"

// RefreshToken mirrors Session for the refresh class. At most one row per
// user is active at any time; storing a new one deactivates all prior ones.
type RefreshToken struct {
	ID                string
	UserID            string
	Token             string
	ExpiresAt         time.Time
	IsActive          bool
	DeactivatedAt     *time.Time
	DeactivatedReason *string
	CreatedAt         time.Time
}

// RevokedToken is a denylist entry. Presence overrides an otherwise valid
// signature/expiry check. UserID is best-effort (decoded from the token) and
// may be nil; ExpiresAt exists only so the sweep can delete stale rows.
type RevokedToken struct {
	Token     string
	UserID    *string
	ExpiresAt time.Time
	RevokedAt time.Time
}

// ResetToken is a single-use credential-recovery token. Creating a new one
// for a user deletes all prior ones.
type ResetToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}
