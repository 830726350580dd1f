package domain

import (
	"context"
	"time"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetAll(ctx context.Context) ([]User, error)
	Create(ctx context.Context, user *User) error
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
	SetActive(ctx context.Context, userID string, active bool) error
	SetRole(ctx context.Context, userID, role string) error
	CountAdmins(ctx context.Context) (int, error)
	// TemporarilyLogoutAllExcept sets logoutUntil on every active non-admin
	// user, excluding by both role and the given email, and returns the
	// affected user IDs.
	TemporarilyLogoutAllExcept(ctx context.Context, adminEmail string, until time.Time) ([]string, error)
}

type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	// Deactivate marks the session for the given raw token inactive. It
	// returns false when no active session matched (already closed or absent).
	Deactivate(ctx context.Context, token, reason string) (bool, error)
	DeactivateAllByUserID(ctx context.Context, userID, reason string) (int64, error)
	DeactivateByUserIDs(ctx context.Context, userIDs []string, reason string) (int64, error)
	DeactivateAll(ctx context.Context, reason string) (int64, error)
	DeactivateOldestByUserID(ctx context.Context, userID, reason string) error
	// IsActive reports whether the session is active and unexpired.
	IsActive(ctx context.Context, token string) (bool, error)
	ListActiveByUserID(ctx context.Context, userID string) ([]Session, error)
	CountActiveByUserID(ctx context.Context, userID string) (int, error)
	TouchActivity(ctx context.Context, token string) error
	// DeactivateExpired closes sessions whose expiry has passed but whose
	// active flag was never flipped.
	DeactivateExpired(ctx context.Context) (int64, error)
}

type RefreshTokenRepository interface {
	// Store inserts a new refresh token and, in the same statement,
	// deactivates every prior active token for the same user.
	Store(ctx context.Context, rt *RefreshToken) error
	GetByToken(ctx context.Context, token string) (*RefreshToken, error)
	IsValid(ctx context.Context, token string) (bool, error)
	DeactivateByToken(ctx context.Context, token, reason string) (bool, error)
	DeactivateAllByUserID(ctx context.Context, userID, reason string) (int64, error)
	DeactivateByUserIDs(ctx context.Context, userIDs []string, reason string) (int64, error)
	DeactivateExpired(ctx context.Context) (int64, error)
}

type RevokedTokenRepository interface {
	// Revoke is idempotent: re-revoking an already revoked token is a no-op.
	Revoke(ctx context.Context, token string, userID *string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
	DeleteExpired(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type ResetTokenRepository interface {
	// Replace deletes any prior reset tokens for the user and inserts rt.
	Replace(ctx context.Context, rt *ResetToken) error
	GetByToken(ctx context.Context, token string) (*ResetToken, error)
	Delete(ctx context.Context, token string) error
	DeleteByUserIDs(ctx context.Context, userIDs []string) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}
