package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	authDomain "utility-kpi/internal/domain/auth"
	authinfra "utility-kpi/internal/infrastructure/auth"
)

// AuthRepo 提供報表使用者的存取。
type AuthRepo struct {
	db *sql.DB
}

// NewAuthRepo 建立 AuthRepo。
func NewAuthRepo(db *sql.DB) *AuthRepo {
	return &AuthRepo{db: db}
}

// FindByEmail 依 email 查詢使用者。
func (r *AuthRepo) FindByEmail(ctx context.Context, email string) (authDomain.User, error) {
	const q = `
SELECT id, email, display_name, password_hash, status, role
FROM users
WHERE email = $1
LIMIT 1;
`
	return r.scanUser(r.db.QueryRowContext(ctx, q, authDomain.NormalizeEmail(email)))
}

// FindByID 依 ID 查詢使用者。
func (r *AuthRepo) FindByID(ctx context.Context, id string) (authDomain.User, error) {
	const q = `
SELECT id, email, display_name, password_hash, status, role
FROM users
WHERE id = $1
LIMIT 1;
`
	return r.scanUser(r.db.QueryRowContext(ctx, q, id))
}

func (r *AuthRepo) scanUser(row *sql.Row) (authDomain.User, error) {
	var u authDomain.User
	var status, role string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Password, &status, &role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return authDomain.User{}, authDomain.ErrUserNotFound
		}
		return authDomain.User{}, fmt.Errorf("scan user: %w", err)
	}
	parsed, err := authDomain.ParseRole(role)
	if err != nil {
		return authDomain.User{}, fmt.Errorf("user %s: %w", u.ID, err)
	}
	u.Role = parsed
	u.Status = authDomain.Status(status)
	return u, nil
}

// SeedDefaults 寫入每個角色的預設帳號；已存在的帳號只更新名稱與角色，不覆寫密碼。
func (r *AuthRepo) SeedDefaults(ctx context.Context) error {
	hash, err := authinfra.HashPassword(authDomain.DefaultPassword)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const q = `
INSERT INTO users (email, display_name, password_hash, status, role)
VALUES ($1, $2, $3, 'active', $4)
ON CONFLICT (email) DO UPDATE SET display_name = EXCLUDED.display_name, role = EXCLUDED.role;
`
	for _, a := range authDomain.DefaultAccounts {
		if _, err := tx.ExecContext(ctx, q, a.Email, a.Name, hash, string(a.Role)); err != nil {
			return fmt.Errorf("seed %s: %w", a.Email, err)
		}
	}
	return tx.Commit()
}
