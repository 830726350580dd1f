package domain

import "time"

// Session records that an issued access token is currently considered live,
// independent of the token's own signature or expiry. Sessions are closed,
// never deleted.
type Session struct {
	ID                string
	UserID            string
	Token             string
	ExpiresAt         time.Time
	IsActive          bool
	DeactivatedAt     *time.Time
	DeactivatedReason *string
	LastActivity      time.Time
	CreatedAt         time.Time
}
