package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"utility-kpi/internal/domain/operations"
)

// CSVFile 讀取攤平格式（與匯出相同欄位）的月度紀錄檔。
type CSVFile struct {
	Path string
}

// NewCSVFile 建立 CSV 檔案來源。
func NewCSVFile(path string) *CSVFile {
	return &CSVFile{Path: path}
}

func (c *CSVFile) Name() string { return "csv" }

// Load 回傳可解析的紀錄；無法解析的列只記錄 log 後略過。
func (c *CSVFile) Load(ctx context.Context) ([]operations.MonthlyRecord, error) {
	records, rejected, err := c.LoadWithRejects(ctx)
	if err != nil {
		return nil, err
	}
	for _, rej := range rejected {
		log.Printf("[CSV] skip %s", rej.Error())
	}
	return records, nil
}

// LoadWithRejects 同 Load，另外回傳無法解析的列，供載入流程列入失敗清單。
func (c *CSVFile) LoadWithRejects(ctx context.Context) ([]operations.MonthlyRecord, []operations.RowError, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(ctx, f)
}

// ReadCSV 解析 CSV；標頭必須包含所有攤平欄位，欄位順序不限。
// 單列解析失敗不會中斷讀取，該列會以 RowError 回傳。
func ReadCSV(ctx context.Context, r io.Reader) ([]operations.MonthlyRecord, []operations.RowError, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// 欄數不足的列交給 ParseFlat 回報缺欄
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("csv is empty")
		}
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(headers[i], "\ufeff"))
	}
	if missing := missingColumns(headers); len(missing) > 0 {
		return nil, nil, fmt.Errorf("csv header missing columns: %s", strings.Join(missing, ", "))
	}

	var (
		out      []operations.MonthlyRecord
		rejected []operations.RowError
	)
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		values := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				values[h] = row[i]
			}
		}
		rec, err := operations.ParseFlat(values)
		if err != nil {
			rejected = append(rejected, operations.RowError{Key: fmt.Sprintf("line %d", line), Err: err})
			continue
		}
		out = append(out, rec)
	}
	return out, rejected, nil
}

func missingColumns(headers []string) []string {
	have := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		have[h] = struct{}{}
	}
	var missing []string
	for _, want := range operations.FlatHeader() {
		if _, ok := have[want]; !ok {
			missing = append(missing, want)
		}
	}
	return missing
}
