package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/consulio/auth-service/internal/auth/domain"
	"github.com/jackc/pgx/v5"
)

type ResetTokenRepository struct {
	db Querier
}

func NewResetTokenRepository(db Querier) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

// Replace removes any prior reset tokens for the user and inserts the new
// one in a single statement, keeping at most one outstanding token per user.
func (r *ResetTokenRepository) Replace(ctx context.Context, rt *domain.ResetToken) error {
	_, err := r.db.Exec(ctx, `
		WITH purged AS (
			DELETE FROM reset_tokens WHERE user_id = $2
		)
		INSERT INTO reset_tokens (id, user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, rt.ID, rt.UserID, rt.Token, rt.ExpiresAt, rt.CreatedAt)

	return err
}

func (r *ResetTokenRepository) GetByToken(ctx context.Context, token string) (*domain.ResetToken, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, token, expires_at, created_at
		FROM reset_tokens
		WHERE token = $1
		LIMIT 1
	`, token)

	var rt domain.ResetToken
	err := row.Scan(&rt.ID, &rt.UserID, &rt.Token, &rt.ExpiresAt, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}

	return &rt, nil
}

func (r *ResetTokenRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM reset_tokens WHERE token = $1`, token)
	return err
}

func (r *ResetTokenRepository) DeleteByUserIDs(ctx context.Context, userIDs []string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM reset_tokens WHERE user_id = ANY($1)`, userIDs)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *ResetTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM reset_tokens WHERE expires_at <= now()`)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
