package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"utility-kpi/internal/domain/operations"
)

// RecordRepo 讀寫 monthly_records 資料表。
type RecordRepo struct {
	db *sql.DB
}

// NewRecordRepo 建立月度紀錄 repository。
func NewRecordRepo(db *sql.DB) *RecordRepo {
	return &RecordRepo{db: db}
}

func (r *RecordRepo) Name() string { return "postgres" }

// recordColumns 將攤平欄位轉為資料表欄位（snake_case），順序與 FlatHeader 相同。
var recordColumns = func() []string {
	header := operations.FlatHeader()
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = columnName(h)
	}
	return out
}()

// Load 依年月與維度排序讀出全部紀錄。
func (r *RecordRepo) Load(ctx context.Context) ([]operations.MonthlyRecord, error) {
	q := fmt.Sprintf(`
SELECT %s
FROM monthly_records
ORDER BY year, month, zone, site, phase, profile;
`, strings.Join(recordColumns, ", "))

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	header := operations.FlatHeader()
	var out []operations.MonthlyRecord
	for rows.Next() {
		values := make([]sql.NullString, len(recordColumns))
		dest := make([]any, len(values))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		flat := make(map[string]string, len(header))
		for i, h := range header {
			flat[h] = values[i].String
		}
		rec, err := operations.ParseFlat(flat)
		if err != nil {
			return nil, fmt.Errorf("decode monthly record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertRecords 以 (year, month, zone, site, phase, profile) 為唯一鍵寫入紀錄。
func (r *RecordRepo) UpsertRecords(ctx context.Context, records []operations.MonthlyRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertQuery())
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, rec := range records {
		flat := rec.Flatten()
		args := make([]any, len(flat))
		for i, v := range flat {
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("upsert %d-%02d %s/%s/%s: %w", rec.Year, rec.Month, rec.Site, rec.Phase, rec.Profile, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(records), nil
}

var conflictColumns = []string{"year", "month", "zone", "site", "phase", "profile"}

func upsertQuery() string {
	placeholders := make([]string, len(recordColumns))
	for i := range recordColumns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	isKey := make(map[string]bool, len(conflictColumns))
	for _, c := range conflictColumns {
		isKey[c] = true
	}
	updates := make([]string, 0, len(recordColumns))
	for _, c := range recordColumns {
		if !isKey[c] {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
		}
	}
	return fmt.Sprintf(`
INSERT INTO monthly_records (%s)
VALUES (%s)
ON CONFLICT (%s)
DO UPDATE SET %s, updated_at = NOW();
`, strings.Join(recordColumns, ", "), strings.Join(placeholders, ", "), strings.Join(conflictColumns, ", "), strings.Join(updates, ", "))
}

// columnName 將 connections_newSubscriptions_actual 轉為 connections_new_subscriptions_actual。
func columnName(flat string) string {
	flat = strings.ReplaceAll(flat, "BoP", "Bop")
	var b strings.Builder
	for i, r := range flat {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
