package db

import (
	"context"
	"errors"
	"strings"
	"testing"

	"utility-kpi/internal/infrastructure/config"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestConnect_Empty(t *testing.T) {
	db, err := Connect(context.Background(), config.DBConfig{DSN: ""})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if db != nil {
		t.Error("expected nil db for empty DSN")
	}
}

func TestStatus(t *testing.T) {
	if got := Status(context.Background(), nil); got != "using_memory" {
		t.Fatalf("expected using_memory, got %q", got)
	}

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	mock.ExpectPing()
	if got := Status(context.Background(), db); got != "ok" {
		t.Fatalf("expected ok, got %q", got)
	}

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	if got := Status(context.Background(), db); !strings.HasPrefix(got, "error: ") || !strings.Contains(got, "connection refused") {
		t.Fatalf("unexpected status %q", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %s", err)
	}
}
