package dto

import "time"

type UserOutput struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	LogoutUntil *time.Time `json:"logout_until,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type UpdateRoleInput struct {
	Role string `json:"role"`
}

type UpdateActiveInput struct {
	Active bool `json:"active"`
}

type MaintenanceInput struct {
	Enabled bool `json:"enabled"`
}

type SessionOutput struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	LastActivity time.Time `json:"last_activity"`
}
