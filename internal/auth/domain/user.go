package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Deactivation reasons recorded on sessions and refresh tokens.
const (
	ReasonLogout           = "logout"
	ReasonRotated          = "rotated"
	ReasonExpired          = "expired"
	ReasonSessionLimit     = "session_limit"
	ReasonAdminAction      = "admin_action"
	ReasonGlobalLogout     = "global_logout"
	ReasonGlobalRevocation = "global_revocation"
	ReasonPasswordReset    = "password_reset"
	ReasonInvalidPresented = "invalid_presented"
	ReasonAccountDisabled  = "account_disabled"
)

// User is the principal record. PasswordHash is nil for accounts that were
// provisioned without a usable password and must go through the reset flow.
type User struct {
	ID           string
	Email        string
	PasswordHash *string
	Role         string
	IsActive     bool
	LogoutUntil  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
