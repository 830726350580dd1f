package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/consulio/auth-service/internal/auth/domain"
	"github.com/jackc/pgx/v5"
)

type RefreshTokenRepository struct {
	db Querier
}

func NewRefreshTokenRepository(db Querier) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Store rotates the user's refresh chain: a single statement deactivates all
// prior active tokens and inserts the new one, so two racing logins cannot
// both end up with an active chain.
func (r *RefreshTokenRepository) Store(ctx context.Context, rt *domain.RefreshToken) error {
	_, err := r.db.Exec(ctx, `
		WITH rotated AS (
			UPDATE refresh_tokens
			SET is_active = false, deactivated_at = now(), deactivated_reason = $7
			WHERE user_id = $2 AND is_active = true AND token <> $3
		)
		INSERT INTO refresh_tokens (id, user_id, token, expires_at, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rt.ID, rt.UserID, rt.Token, rt.ExpiresAt, rt.IsActive, rt.CreatedAt, domain.ReasonRotated)

	return err
}

func (r *RefreshTokenRepository) GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, token, expires_at, is_active, deactivated_at, deactivated_reason, created_at
		FROM refresh_tokens
		WHERE token = $1
		LIMIT 1
	`, token)

	var rt domain.RefreshToken
	err := row.Scan(&rt.ID, &rt.UserID, &rt.Token, &rt.ExpiresAt, &rt.IsActive,
		&rt.DeactivatedAt, &rt.DeactivatedReason, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	return &rt, nil
}

func (r *RefreshTokenRepository) IsValid(ctx context.Context, token string) (bool, error) {
	var valid bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM refresh_tokens
			WHERE token = $1 AND is_active = true AND expires_at > now()
		)
	`, token).Scan(&valid)
	if err != nil {
		return false, fmt.Errorf("failed to check refresh token: %w", err)
	}

	return valid, nil
}

func (r *RefreshTokenRepository) DeactivateByToken(ctx context.Context, token, reason string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE refresh_tokens
		SET is_active = false, deactivated_at = now(), deactivated_reason = $2
		WHERE token = $1 AND is_active = true
	`, token, reason)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

func (r *RefreshTokenRepository) DeactivateAllByUserID(ctx context.Context, userID, reason string) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE refresh_tokens
		SET is_active = false, deactivated_at = now(), deactivated_reason = $2
		WHERE user_id = $1 AND is_active = true
	`, userID, reason)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *RefreshTokenRepository) DeactivateByUserIDs(ctx context.Context, userIDs []string, reason string) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE refresh_tokens
		SET is_active = false, deactivated_at = now(), deactivated_reason = $2
		WHERE user_id = ANY($1) AND is_active = true
	`, userIDs, reason)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *RefreshTokenRepository) DeactivateExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE refresh_tokens
		SET is_active = false, deactivated_at = now(), deactivated_reason = $1
		WHERE is_active = true AND expires_at <= now()
	`, domain.ReasonExpired)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
