package service

import (
	"context"
	"strings"
	"time"

	"github.com/consulio/auth-service/internal/auth/domain"
	"github.com/consulio/auth-service/internal/auth/dto"
	autherror "github.com/consulio/auth-service/internal/errors"
	"github.com/consulio/auth-service/internal/metrics"
)

// Administrative operations and the periodic cleanup entry points.

func (s *UserService) GetAllUsers(ctx context.Context) ([]dto.UserOutput, error) {
	users, err := s.users.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.UserOutput, 0, len(users))
	for _, u := range users {
		out = append(out, dto.UserOutput{
			ID:          u.ID,
			Email:       u.Email,
			Role:        u.Role,
			IsActive:    u.IsActive,
			LogoutUntil: u.LogoutUntil,
			CreatedAt:   u.CreatedAt,
			UpdatedAt:   u.UpdatedAt,
		})
	}

	return out, nil
}

func (s *UserService) GetUserSessions(ctx context.Context, userID string) ([]dto.SessionOutput, error) {
	sessions, err := s.sessions.ListActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.SessionOutput, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, dto.SessionOutput{
			ID:           sess.ID,
			CreatedAt:    sess.CreatedAt,
			ExpiresAt:    sess.ExpiresAt,
			LastActivity: sess.LastActivity,
		})
	}

	return out, nil
}

// LogoutUser force-closes every session and refresh token of one user.
func (s *UserService) LogoutUser(ctx context.Context, userID string) error {
	if _, err := s.sessions.DeactivateAllByUserID(ctx, userID, domain.ReasonAdminAction); err != nil {
		return err
	}
	if _, err := s.refreshTokens.DeactivateAllByUserID(ctx, userID, domain.ReasonAdminAction); err != nil {
		return err
	}

	return nil
}

// LogoutAll places a 24-hour temporary lockout on every active non-admin
// user and closes their credentials. The admin is excluded by role AND by
// the configured email, two independent predicates, and only an aggregate
// count is returned.
func (s *UserService) LogoutAll(ctx context.Context) (int, error) {
	until := time.Now().Add(tempLogoutDuration)

	ids, err := s.users.TemporarilyLogoutAllExcept(ctx, strings.ToLower(s.cfg.AdminEmail), until)
	if err != nil {
		return 0, err
	}

	if len(ids) > 0 {
		if _, err := s.sessions.DeactivateByUserIDs(ctx, ids, domain.ReasonGlobalLogout); err != nil {
			return 0, err
		}
		if _, err := s.refreshTokens.DeactivateByUserIDs(ctx, ids, domain.ReasonGlobalLogout); err != nil {
			return 0, err
		}
		if _, err := s.resetTokens.DeleteByUserIDs(ctx, ids); err != nil {
			return 0, err
		}
		for _, id := range ids {
			s.access.Invalidate(id)
		}
	}

	return len(ids), nil
}

// RevokeAllTokens flushes the revocation ledger and deactivates every
// session. Sessions are not implied by ledger entries, so both are done.
func (s *UserService) RevokeAllTokens(ctx context.Context) (int64, error) {
	if _, err := s.sessions.DeactivateAll(ctx, domain.ReasonGlobalRevocation); err != nil {
		return 0, err
	}

	count, err := s.revokedTokens.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// SetUserActive flips the active flag. The admin account cannot be disabled.
// Disabling a user also closes their credentials.
func (s *UserService) SetUserActive(ctx context.Context, userID string, active bool) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return autherror.ErrUserNotFound
	}
	if user.IsAdmin() || strings.EqualFold(user.Email, s.cfg.AdminEmail) {
		return autherror.ErrAdminImmutable
	}

	if err := s.users.SetActive(ctx, userID, active); err != nil {
		return err
	}
	s.access.Invalidate(userID)

	if !active {
		if _, err := s.sessions.DeactivateAllByUserID(ctx, userID, domain.ReasonAccountDisabled); err != nil {
			return err
		}
		if _, err := s.refreshTokens.DeactivateAllByUserID(ctx, userID, domain.ReasonAccountDisabled); err != nil {
			return err
		}
	}

	return nil
}

// UpdateUserRole is the single code path allowed to assign the admin role.
// Exactly one admin may exist and its email must match the configured admin
// identity; the configured admin itself can never be demoted here.
func (s *UserService) UpdateUserRole(ctx context.Context, userID, role string) error {
	if role != domain.RoleAdmin && role != domain.RoleUser {
		return autherror.ErrInvalidRole
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return autherror.ErrUserNotFound
	}

	if strings.EqualFold(user.Email, s.cfg.AdminEmail) && role != domain.RoleAdmin {
		return autherror.ErrAdminImmutable
	}

	if role == domain.RoleAdmin {
		if !strings.EqualFold(user.Email, s.cfg.AdminEmail) {
			return autherror.ErrAdminEmailMismatch
		}
		count, err := s.users.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if count > 0 && !user.IsAdmin() {
			return autherror.ErrAdminRoleTaken
		}
	}

	if err := s.users.SetRole(ctx, userID, role); err != nil {
		return err
	}
	s.access.Invalidate(userID)

	return nil
}

// CleanupExpiredSessions closes sessions whose expiry passed without being
// deactivated. Safe to run on any cadence.
func (s *UserService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeactivateExpired(ctx)
	if err != nil {
		return 0, err
	}
	metrics.SweepDeletions.WithLabelValues("sessions").Add(float64(n))

	return n, nil
}

// CleanupExpiredRevocations drops ledger entries past their natural expiry.
func (s *UserService) CleanupExpiredRevocations(ctx context.Context) (int64, error) {
	n, err := s.revokedTokens.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	metrics.SweepDeletions.WithLabelValues("revocations").Add(float64(n))

	return n, nil
}

// CleanupExpiredResetTokens removes stale recovery tokens.
func (s *UserService) CleanupExpiredResetTokens(ctx context.Context) (int64, error) {
	n, err := s.resetTokens.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	metrics.SweepDeletions.WithLabelValues("reset_tokens").Add(float64(n))

	return n, nil
}
