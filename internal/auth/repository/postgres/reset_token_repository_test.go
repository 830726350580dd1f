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

func TestResetTokenRepository_Replace(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewResetTokenRepository(mock)
	rt := &domain.ResetToken{
		ID:        "reset-123",
		UserID:    "user-123",
		Token:     "reset-token",
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("WITH purged AS").
			WithArgs(rt.ID, rt.UserID, rt.Token, rt.ExpiresAt, rt.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := r.Replace(context.Background(), rt)
		assert.NoError(t, err)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectExec("WITH purged AS").
			WithArgs(rt.ID, rt.UserID, rt.Token, rt.ExpiresAt, rt.CreatedAt).
			WillReturnError(fmt.Errorf("db error"))

		err := r.Replace(context.Background(), rt)
		assert.Error(t, err)
	})
}

func TestResetTokenRepository_GetByToken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewResetTokenRepository(mock)
	columns := []string{"id", "user_id", "token", "expires_at", "created_at"}

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, user_id, token").
			WithArgs("reset-token").
			WillReturnRows(pgxmock.NewRows(columns).
				AddRow("reset-123", "user-123", "reset-token", time.Now().Add(time.Hour), time.Now()))

		rt, err := r.GetByToken(context.Background(), "reset-token")
		require.NoError(t, err)
		assert.Equal(t, "reset-123", rt.ID)
		assert.Equal(t, "user-123", rt.UserID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, user_id, token").
			WithArgs("missing").
			WillReturnError(pgx.ErrNoRows)

		rt, err := r.GetByToken(context.Background(), "missing")
		require.NoError(t, err)
		assert.Nil(t, rt)
	})
}

func TestResetTokenRepository_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewResetTokenRepository(mock)

	mock.ExpectExec("DELETE FROM reset_tokens").
		WithArgs("reset-token").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err = r.Delete(context.Background(), "reset-token")
	assert.NoError(t, err)
}

func TestResetTokenRepository_DeleteByUserIDs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewResetTokenRepository(mock)
	ids := []string{"u1", "u2"}

	mock.ExpectExec("DELETE FROM reset_tokens").
		WithArgs(ids).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	n, err := r.DeleteByUserIDs(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestResetTokenRepository_DeleteExpired(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewResetTokenRepository(mock)

	mock.ExpectExec("DELETE FROM reset_tokens").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := r.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
