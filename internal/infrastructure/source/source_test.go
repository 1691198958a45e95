package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"utility-kpi/internal/domain/operations"
)

func TestSyntheticIsDeterministic(t *testing.T) {
	ctx := context.Background()
	a, err := NewSynthetic(7, 2023, 2).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	b, _ := NewSynthetic(7, 2023, 2).Load(ctx)

	want := 2 * 3 * 3 * 2 * 8
	if len(a) != want {
		t.Fatalf("expected %d records, got %d", want, len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("record %d differs between runs", i)
		}
	}
}

func TestSyntheticRecordsAreValid(t *testing.T) {
	records, err := NewSynthetic(1, 2023, 14).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	last := records[len(records)-1]
	if last.Year != 2024 || last.Month != 2 {
		t.Fatalf("unexpected last period %d-%d", last.Year, last.Month)
	}
	for _, r := range records {
		if err := r.Validate(); err != nil {
			t.Fatalf("invalid synthetic record: %v", err)
		}
		if err := r.CheckInactiveBalance(); err != nil {
			t.Fatalf("unbalanced synthetic record: %v", err)
		}
		if r.Connections.Commissioned.Actual > r.Connections.NewSubscriptions.Actual {
			t.Fatalf("commissioned exceeds new subscriptions: %+v", r.Connections)
		}
	}
}

func TestSyntheticRejectsEmptyRange(t *testing.T) {
	if _, err := NewSynthetic(1, 2023, 0).Load(context.Background()); err == nil {
		t.Fatalf("expected error for zero months")
	}
}

func writeCSV(t *testing.T, records []operations.MonthlyRecord) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(operations.FlatHeader()); err != nil {
		t.Fatal(err)
	}
	for _, r := range records {
		if err := w.Write(r.Flatten()); err != nil {
			t.Fatal(err)
		}
	}
	w.Flush()
	return buf.Bytes()
}

func TestCSVFileLoadsFlattenedRecords(t *testing.T) {
	records, _ := NewSynthetic(3, 2024, 1).Load(context.Background())
	path := filepath.Join(t.TempDir(), "records.csv")
	if err := os.WriteFile(path, writeCSV(t, records), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := NewCSVFile(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load csv: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(got))
	}
	if got[5].Site != records[5].Site || got[5].Revenue.Total != records[5].Revenue.Total {
		t.Fatalf("record mismatch: %+v vs %+v", got[5], records[5])
	}
}

func TestReadCSVMissingColumns(t *testing.T) {
	_, _, err := ReadCSV(context.Background(), strings.NewReader("year,month,zone\n2024,1,Zone A\n"))
	if err == nil || !strings.Contains(err.Error(), "missing columns") {
		t.Fatalf("expected missing columns error, got %v", err)
	}
}

func TestReadCSVBadValue(t *testing.T) {
	data := writeCSV(t, []operations.MonthlyRecord{{Year: 2024, Month: 1}})
	data = bytes.Replace(data, []byte("\n2024,"), []byte("\nabc,"), 1)
	records, rejected, err := ReadCSV(context.Background(), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 || len(rejected) != 1 {
		t.Fatalf("expected 1 rejected row, got records=%d rejected=%d", len(records), len(rejected))
	}
	if !operations.IsValidationError(rejected[0]) || rejected[0].Key != "line 2" {
		t.Fatalf("unexpected rejected row %+v", rejected[0])
	}
}

func TestCSVFileKeepsGoodRowsAroundBadOnes(t *testing.T) {
	records, _ := NewSynthetic(3, 2024, 1).Load(context.Background())
	data := writeCSV(t, records[:2])
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	fields := strings.Split(lines[2], ",")
	fields[len(fields)-1] = "abc"
	lines[2] = strings.Join(fields, ",")
	lines = append(lines, strings.Join(make([]string, len(fields)), ","))
	path := filepath.Join(t.TempDir(), "records.csv")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	src := NewCSVFile(path)
	got, rejected, err := src.LoadWithRejects(context.Background())
	if err != nil {
		t.Fatalf("load csv: %v", err)
	}
	if len(got) != 1 || got[0].Site != records[0].Site {
		t.Fatalf("expected first record kept, got %+v", got)
	}
	if len(rejected) != 2 || rejected[0].Key != "line 3" || rejected[1].Key != "line 4" {
		t.Fatalf("unexpected rejected rows %+v", rejected)
	}
	if !strings.Contains(rejected[0].Error(), "invalid integer \"abc\"") {
		t.Fatalf("unexpected reason %v", rejected[0])
	}

	plain, err := src.Load(context.Background())
	if err != nil || len(plain) != 1 {
		t.Fatalf("Load should skip bad rows, got %d records err=%v", len(plain), err)
	}
}

func TestCSVFileMissing(t *testing.T) {
	if _, err := NewCSVFile(filepath.Join(t.TempDir(), "nope.csv")).Load(context.Background()); err == nil {
		t.Fatalf("expected open error")
	}
}
