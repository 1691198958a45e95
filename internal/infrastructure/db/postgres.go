package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"utility-kpi/internal/infrastructure/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const pingTimeout = 5 * time.Second

// Connect 建立 PostgreSQL 連線池（pgx driver）；未設定 DSN 時回傳 nil，服務改用記憶體儲存。
func Connect(ctx context.Context, cfg config.DBConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, nil
	}

	pool, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	configurePool(pool, cfg)

	if err := Check(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func configurePool(pool *sql.DB, cfg config.DBConfig) {
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxIdleTime(cfg.MaxIdleTime)
}

// Check 以 ping 確認連線可用；ctx 沒有期限時套用 5 秒上限。
func Check(ctx context.Context, pool *sql.DB) error {
	if pool == nil {
		return fmt.Errorf("postgres not configured")
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pingTimeout)
		defer cancel()
	}
	if err := pool.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Status 回傳健康檢查用的狀態字串。
func Status(ctx context.Context, pool *sql.DB) string {
	if pool == nil {
		return "using_memory"
	}
	if err := Check(ctx, pool); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
