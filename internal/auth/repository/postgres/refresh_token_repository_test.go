package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/consulio/auth-service/internal/auth/domain"
	repo "github.com/consulio/auth-service/internal/auth/repository/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refreshColumns = []string{"id", "user_id", "token", "expires_at", "is_active", "deactivated_at", "deactivated_reason", "created_at"}

func TestRefreshTokenRepository_Store(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRefreshTokenRepository(mock)
	rt := &domain.RefreshToken{
		ID:        "rt-123",
		UserID:    "user-123",
		Token:     "refresh-token",
		ExpiresAt: time.Now().Add(20 * time.Minute),
		IsActive:  true,
		CreatedAt: time.Now(),
	}

	t.Run("success", func(t *testing.T) {
		// The rotation CTE carries the rotated reason as its last argument.
		mock.ExpectExec("WITH rotated AS").
			WithArgs(rt.ID, rt.UserID, rt.Token, rt.ExpiresAt, rt.IsActive, rt.CreatedAt, domain.ReasonRotated).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := r.Store(context.Background(), rt)
		assert.NoError(t, err)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectExec("WITH rotated AS").
			WithArgs(rt.ID, rt.UserID, rt.Token, rt.ExpiresAt, rt.IsActive, rt.CreatedAt, domain.ReasonRotated).
			WillReturnError(fmt.Errorf("db error"))

		err := r.Store(context.Background(), rt)
		assert.Error(t, err)
	})
}

func TestRefreshTokenRepository_GetByToken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRefreshTokenRepository(mock)

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, user_id, token").
			WithArgs("refresh-token").
			WillReturnRows(pgxmock.NewRows(refreshColumns).
				AddRow("rt-123", "user-123", "refresh-token", time.Now().Add(time.Hour), true,
					(*time.Time)(nil), (*string)(nil), time.Now()))

		rt, err := r.GetByToken(context.Background(), "refresh-token")
		require.NoError(t, err)
		assert.Equal(t, "rt-123", rt.ID)
		assert.True(t, rt.IsActive)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, user_id, token").
			WithArgs("missing").
			WillReturnError(pgx.ErrNoRows)

		rt, err := r.GetByToken(context.Background(), "missing")
		require.NoError(t, err)
		assert.Nil(t, rt)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, user_id, token").
			WithArgs("refresh-token").
			WillReturnError(fmt.Errorf("db error"))

		_, err := r.GetByToken(context.Background(), "refresh-token")
		assert.Error(t, err)
	})
}

func TestRefreshTokenRepository_IsValid(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRefreshTokenRepository(mock)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("refresh-token").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	valid, err := r.IsValid(context.Background(), "refresh-token")
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestRefreshTokenRepository_DeactivateByToken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRefreshTokenRepository(mock)

	t.Run("deactivated", func(t *testing.T) {
		mock.ExpectExec("UPDATE refresh_tokens").
			WithArgs("refresh-token", domain.ReasonRotated).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		ok, err := r.DeactivateByToken(context.Background(), "refresh-token", domain.ReasonRotated)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("already inactive", func(t *testing.T) {
		mock.ExpectExec("UPDATE refresh_tokens").
			WithArgs("refresh-token", domain.ReasonRotated).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		ok, err := r.DeactivateByToken(context.Background(), "refresh-token", domain.ReasonRotated)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestRefreshTokenRepository_DeactivateAllByUserID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRefreshTokenRepository(mock)

	mock.ExpectExec("UPDATE refresh_tokens").
		WithArgs("user-123", domain.ReasonLogout).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	n, err := r.DeactivateAllByUserID(context.Background(), "user-123", domain.ReasonLogout)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestRefreshTokenRepository_DeactivateByUserIDs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRefreshTokenRepository(mock)
	ids := []string{"u1", "u2"}

	mock.ExpectExec("UPDATE refresh_tokens").
		WithArgs(ids, domain.ReasonGlobalLogout).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	n, err := r.DeactivateByUserIDs(context.Background(), ids, domain.ReasonGlobalLogout)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestRefreshTokenRepository_DeactivateExpired(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewRefreshTokenRepository(mock)

	mock.ExpectExec("UPDATE refresh_tokens").
		WithArgs(domain.ReasonExpired).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := r.DeactivateExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
