package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"utility-kpi/internal/domain/kpi"
	"utility-kpi/internal/domain/operations"
)

// ExportCSV 匯出篩選後的紀錄：一列欄位名稱（巢狀欄位以 _ 串接），每筆紀錄一列。
// 季粒度時匯出該季三個月，依月份排列。沒有資料時回傳 ErrNoDataToExport。
func (u *UseCase) ExportCSV(ctx context.Context, q Query) (string, int, error) {
	periods, err := kpi.Resolve(q.Filter.Year, q.Filter.Month, q.Granularity)
	if err != nil {
		return "", 0, err
	}
	snap, err := u.snapshot(ctx)
	if err != nil {
		return "", 0, err
	}
	var records []operations.MonthlyRecord
	for _, spec := range periods.Current.FilterSpecs(q.Filter) {
		records = append(records, kpi.Filter(snap.Records, spec)...)
	}
	if len(records) == 0 {
		return "", 0, ErrNoDataToExport
	}

	var sb strings.Builder
	if err := WriteCSV(&sb, records); err != nil {
		return "", 0, err
	}
	return sb.String(), len(records), nil
}

// WriteCSV 將紀錄寫成 CSV；含逗號、引號或換行的值會以雙引號包住，引號重複一次。
func WriteCSV(w io.Writer, records []operations.MonthlyRecord) error {
	if len(records) == 0 {
		return ErrNoDataToExport
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(operations.FlatHeader()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(r.Flatten()); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFilename 產生下載檔名，例如 kpi-export-2024-06.csv、kpi-export-2024-Q2.csv。
func ExportFilename(q Query) string {
	if q.Granularity == kpi.Quarterly {
		return fmt.Sprintf("kpi-export-%04d-Q%d.csv", q.Filter.Year, kpi.QuarterOf(q.Filter.Month))
	}
	return fmt.Sprintf("kpi-export-%04d-%02d.csv", q.Filter.Year, q.Filter.Month)
}
