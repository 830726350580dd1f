package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/consulio/auth-service/internal/auth/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool the repositories use; pgxmock
// satisfies it in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	db Querier
}

func NewUserRepository(db Querier) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, role, is_active, logout_until, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role,
		&user.IsActive, &user.LogoutUntil, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1;`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1;`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetAll(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at;`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role,
			&user.IsActive, &user.LogoutUntil, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO users (id, email, password_hash, role, is_active, logout_until, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, user.ID, user.Email, user.PasswordHash, user.Role, user.IsActive,
		user.LogoutUntil, user.CreatedAt, user.UpdatedAt)

	return err
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1
	`, userID, hash)

	return err
}

func (r *UserRepository) SetActive(ctx context.Context, userID string, active bool) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET is_active = $2, updated_at = now() WHERE id = $1
	`, userID, active)

	return err
}

func (r *UserRepository) SetRole(ctx context.Context, userID, role string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET role = $2, updated_at = now() WHERE id = $1
	`, userID, role)

	return err
}

func (r *UserRepository) CountAdmins(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM users WHERE role = $1
	`, domain.RoleAdmin).Scan(&count)

	return count, err
}

// TemporarilyLogoutAllExcept excludes the admin twice over, by role and by
// email, so a mislabelled row can never catch the admin in the sweep.
func (r *UserRepository) TemporarilyLogoutAllExcept(ctx context.Context, adminEmail string, until time.Time) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE users
		SET logout_until = $2, updated_at = now()
		WHERE is_active = true
		  AND role <> $3
		  AND lower(email) <> lower($1)
		RETURNING id
	`, adminEmail, until, domain.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to apply temporary logout: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
