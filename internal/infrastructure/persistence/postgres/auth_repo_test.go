package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	authDomain "utility-kpi/internal/domain/auth"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestAuthRepo_FindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	repo := NewAuthRepo(db)

	rows := sqlmock.NewRows([]string{"id", "email", "display_name", "password_hash", "status", "role"}).
		AddRow("u-1", "admin@example.com", "Admin", "hash", "active", "admin")

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("admin@example.com").
		WillReturnRows(rows)

	u, err := repo.FindByEmail(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if u.ID != "u-1" || u.Role != authDomain.RoleAdmin || !u.IsActive() {
		t.Errorf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %s", err)
	}
}

func TestAuthRepo_FindByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	if _, err := NewAuthRepo(db).FindByID(context.Background(), "missing"); !errors.Is(err, authDomain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthRepo_UnknownRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "email", "display_name", "password_hash", "status", "role"}).
		AddRow("u-9", "trader@example.com", "Trader", "hash", "active", "trader")
	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("trader@example.com").
		WillReturnRows(rows)

	if _, err := NewAuthRepo(db).FindByEmail(context.Background(), " Trader@Example.com"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestAuthRepo_SeedDefaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	for _, u := range []struct{ email, role string }{
		{"admin@example.com", "admin"},
		{"analyst@example.com", "analyst"},
		{"viewer@example.com", "viewer"},
	} {
		mock.ExpectExec("INSERT INTO users").
			WithArgs(u.email, sqlmock.AnyArg(), sqlmock.AnyArg(), u.role).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	if err := NewAuthRepo(db).SeedDefaults(context.Background()); err != nil {
		t.Fatalf("SeedDefaults failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %s", err)
	}
}
