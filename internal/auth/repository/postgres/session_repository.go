package postgres

import (
	"context"
	"fmt"

	"github.com/consulio/auth-service/internal/auth/domain"
)

type SessionRepository struct {
	db Querier
}

func NewSessionRepository(db Querier) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (id, user_id, token, expires_at, is_active, last_activity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, s.ID, s.UserID, s.Token, s.ExpiresAt, s.IsActive, s.LastActivity, s.CreatedAt)

	return err
}

func (r *SessionRepository) Deactivate(ctx context.Context, token, reason string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE sessions
		SET is_active = false, deactivated_at = now(), deactivated_reason = $2
		WHERE token = $1 AND is_active = true
	`, token, reason)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

func (r *SessionRepository) DeactivateAllByUserID(ctx context.Context, userID, reason string) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE sessions
		SET is_active = false, deactivated_at = now(), deactivated_reason = $2
		WHERE user_id = $1 AND is_active = true
	`, userID, reason)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *SessionRepository) DeactivateByUserIDs(ctx context.Context, userIDs []string, reason string) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE sessions
		SET is_active = false, deactivated_at = now(), deactivated_reason = $2
		WHERE user_id = ANY($1) AND is_active = true
	`, userIDs, reason)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *SessionRepository) DeactivateAll(ctx context.Context, reason string) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE sessions
		SET is_active = false, deactivated_at = now(), deactivated_reason = $1
		WHERE is_active = true
	`, reason)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *SessionRepository) DeactivateOldestByUserID(ctx context.Context, userID, reason string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE sessions
		SET is_active = false, deactivated_at = now(), deactivated_reason = $2
		WHERE id = (
			SELECT id FROM sessions
			WHERE user_id = $1 AND is_active = true
			ORDER BY created_at ASC
			LIMIT 1
		)
	`, userID, reason)

	return err
}

func (r *SessionRepository) IsActive(ctx context.Context, token string) (bool, error) {
	var active bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM sessions
			WHERE token = $1 AND is_active = true AND expires_at > now()
		)
	`, token).Scan(&active)
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}

	return active, nil
}

func (r *SessionRepository) ListActiveByUserID(ctx context.Context, userID string) ([]domain.Session, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, token, expires_at, is_active, deactivated_at, deactivated_reason, last_activity, created_at
		FROM sessions
		WHERE user_id = $1 AND is_active = true AND expires_at > now()
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.Token, &s.ExpiresAt, &s.IsActive,
			&s.DeactivatedAt, &s.DeactivatedReason, &s.LastActivity, &s.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

func (r *SessionRepository) CountActiveByUserID(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM sessions
		WHERE user_id = $1 AND is_active = true AND expires_at > now()
	`, userID).Scan(&count)

	return count, err
}

func (r *SessionRepository) TouchActivity(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE sessions SET last_activity = now() WHERE token = $1 AND is_active = true
	`, token)

	return err
}

func (r *SessionRepository) DeactivateExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE sessions
		SET is_active = false, deactivated_at = now(), deactivated_reason = $1
		WHERE is_active = true AND expires_at <= now()
	`, domain.ReasonExpired)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
