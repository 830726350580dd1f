package errors

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DenyReason is the closed set of machine-readable codes a rejection can
// carry. These values are part of the API response contract and must stay
// stable.
type DenyReason string

const (
	DenyUserNotFound         DenyReason = "userNotFound"
	DenyMaintenanceMode      DenyReason = "maintenanceMode"
	DenyAccountDisabled      DenyReason = "accountDisabled"
	DenyTemporarilyLoggedOut DenyReason = "temporarilyLoggedOut"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailAlreadyInUse   = errors.New("email already in use")
	ErrRefreshTokenInvalid = errors.New("invalid refresh token")
	ErrTokenInvalid        = errors.New("invalid token")
	ErrResetTokenInvalid   = errors.New("invalid or expired reset token")
	ErrUserNotFound        = errors.New("user not found")
	ErrAdminRoleTaken      = errors.New("admin role is already assigned")
	ErrAdminEmailMismatch  = errors.New("admin role is restricted to the configured admin account")
	ErrAdminImmutable      = errors.New("the admin account cannot be modified")
	ErrInvalidRole         = errors.New("unknown role")
)

// AccountLockedError is returned when the login-attempt throttle has tripped.
type AccountLockedError struct {
	RetryAfter time.Duration
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("too many failed login attempts, retry after %d minute(s)", e.RetryAfterMinutes())
}

// RetryAfterMinutes rounds the remaining window up to whole minutes.
func (e *AccountLockedError) RetryAfterMinutes() int {
	m := int(math.Ceil(e.RetryAfter.Minutes()))
	if m < 1 {
		m = 1
	}
	return m
}

// AccessDeniedError carries the decision engine's deny verdict.
type AccessDeniedError struct {
	Reason         DenyReason
	RemainingHours int
}

func (e *AccessDeniedError) Error() string {
	if e.Reason == DenyTemporarilyLoggedOut {
		return fmt.Sprintf("access denied: %s (%dh remaining)", e.Reason, e.RemainingHours)
	}
	return fmt.Sprintf("access denied: %s", e.Reason)
}
