package postgres

import (
	"context"
	"fmt"
	"time"
)

type RevokedTokenRepository struct {
	db Querier
}

func NewRevokedTokenRepository(db Querier) *RevokedTokenRepository {
	return &RevokedTokenRepository{db: db}
}

// Revoke appends the token to the denylist. Re-revoking is a no-op, so a
// duplicate-key conflict is swallowed rather than surfaced.
func (r *RevokedTokenRepository) Revoke(ctx context.Context, token string, userID *string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO revoked_tokens (token, user_id, expires_at, revoked_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (token) DO NOTHING
	`, token, userID, expiresAt)

	return err
}

func (r *RevokedTokenRepository) IsRevoked(ctx context.Context, token string) (bool, error) {
	var revoked bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token = $1)
	`, token).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}

	return revoked, nil
}

func (r *RevokedTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM revoked_tokens WHERE expires_at <= now()
	`)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *RevokedTokenRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM revoked_tokens`)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
