package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"utility-kpi/internal/application/dataingestion"
	"utility-kpi/internal/domain/operations"
	"utility-kpi/internal/infrastructure/config"
	"utility-kpi/internal/infrastructure/persistence/postgres"
	"utility-kpi/internal/infrastructure/source"

	_ "github.com/lib/pq"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	migrationsPath := flag.String("dir", "db/migrations", "path to migrations directory")
	seed := flag.String("seed", "", "load monthly records after migrating: synthetic | csv")
	csvPath := flag.String("csv", "", "csv file for -seed=csv (defaults to ingestion.csv_path)")
	flag.Parse()

	cfg, err := config.LoadFromFile(*cfgPath)
	if err != nil {
		log.Fatalf("讀取組態失敗: %v", err)
	}

	if cfg.DB.DSN == "" {
		log.Fatal("config.db.dsn 未設定，無法執行 migration")
	}

	files, err := migrationFiles(*migrationsPath)
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open("postgres", cfg.DB.DSN)
	if err != nil {
		log.Fatalf("連線資料庫失敗: %v", err)
	}
	defer db.Close()

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("讀取檔案 %s 失敗: %v", f, err)
		}
		log.Printf("執行 migration: %s", filepath.Base(f))
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			log.Fatalf("執行 %s 失敗: %v", filepath.Base(f), err)
		}
	}
	fmt.Println("Migration 完成")

	if *seed != "" {
		src, err := seedSource(*seed, *csvPath, cfg.Ingestion)
		if err != nil {
			log.Fatal(err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		n, err := seedRecords(ctx, src, postgres.NewRecordRepo(db))
		if err != nil {
			log.Fatalf("匯入月度資料失敗: %v", err)
		}
		fmt.Printf("已匯入 %d 筆月度資料 (%s)\n", n, src.Name())
	}
}

func migrationFiles(dir string) ([]string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("解析 migrations 路徑失敗: %w", err)
	}
	if _, err := os.Stat(absDir); err != nil {
		return nil, fmt.Errorf("migrations 目錄不存在: %w", err)
	}
	files, err := filepath.Glob(filepath.Join(absDir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("讀取 migrations 失敗: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("找不到任何 .sql migration 檔案")
	}
	sort.Strings(files)
	return files, nil
}

func seedSource(kind, csvPath string, cfg config.IngestionConfig) (dataingestion.RecordSource, error) {
	switch kind {
	case config.SourceSynthetic:
		return source.NewSynthetic(cfg.Seed, cfg.StartYear, cfg.Months), nil
	case config.SourceCSV:
		if csvPath == "" {
			csvPath = cfg.CSVPath
		}
		if csvPath == "" {
			return nil, fmt.Errorf("-seed=csv 需要 -csv 或 ingestion.csv_path")
		}
		return source.NewCSVFile(csvPath), nil
	default:
		return nil, fmt.Errorf("不支援的 seed 來源 %q", kind)
	}
}

type recordWriter interface {
	UpsertRecords(ctx context.Context, records []operations.MonthlyRecord) (int, error)
}

// seedRecords 只寫入通過驗證的紀錄，與 API 載入快照時的規則一致。
func seedRecords(ctx context.Context, src dataingestion.RecordSource, repo recordWriter) (int, error) {
	records, err := src.Load(ctx)
	if err != nil {
		return 0, err
	}
	valid := make([]operations.MonthlyRecord, 0, len(records))
	for _, r := range records {
		if err := r.Validate(); err != nil {
			log.Printf("[Seed] skip %d-%02d %s/%s/%s: %v", r.Year, r.Month, r.Site, r.Phase, r.Profile, err)
			continue
		}
		valid = append(valid, r)
	}
	return repo.UpsertRecords(ctx, valid)
}
