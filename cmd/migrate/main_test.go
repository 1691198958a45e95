package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"utility-kpi/internal/domain/operations"
	"utility-kpi/internal/infrastructure/config"
)

type fakeSource struct {
	records []operations.MonthlyRecord
}

func (f fakeSource) Name() string { return "fake" }

func (f fakeSource) Load(_ context.Context) ([]operations.MonthlyRecord, error) {
	return f.records, nil
}

type fakeWriter struct {
	got []operations.MonthlyRecord
}

func (w *fakeWriter) UpsertRecords(_ context.Context, records []operations.MonthlyRecord) (int, error) {
	w.got = records
	return len(records), nil
}

func TestSeedRecordsSkipsInvalid(t *testing.T) {
	good := operations.MonthlyRecord{
		Year: 2024, Month: 3, Zone: "Zone A", Site: "Zone A Site 1", Phase: "Phase 1", Profile: "BC",
		Segment: operations.SegmentResidentialBusiness, Segmentation: operations.SegmentationLow,
	}
	bad := good
	bad.Month = 13

	w := &fakeWriter{}
	n, err := seedRecords(context.Background(), fakeSource{records: []operations.MonthlyRecord{good, bad}}, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 || len(w.got) != 1 || w.got[0].Month != 3 {
		t.Fatalf("expected only valid record written, got n=%d %+v", n, w.got)
	}
}

func TestSeedSource(t *testing.T) {
	cfg := config.IngestionConfig{Seed: 1, StartYear: 2023, Months: 2, CSVPath: "data.csv"}
	src, err := seedSource(config.SourceSynthetic, "", cfg)
	if err != nil || src.Name() != "synthetic" {
		t.Fatalf("expected synthetic source, got %v err=%v", src, err)
	}
	src, err = seedSource(config.SourceCSV, "", cfg)
	if err != nil || src.Name() != "csv" {
		t.Fatalf("expected csv source, got %v err=%v", src, err)
	}
	if _, err := seedSource(config.SourceCSV, "", config.IngestionConfig{}); err == nil {
		t.Fatalf("expected error without csv path")
	}
	if _, err := seedSource("postgres", "", cfg); err == nil {
		t.Fatalf("expected error for unsupported seed source")
	}
}

func TestMigrationFilesSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_b.sql", "0001_a.sql", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("select 1;"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	files, err := migrationFiles(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "0001_a.sql" {
		t.Fatalf("unexpected files %v", files)
	}
	if _, err := migrationFiles(filepath.Join(dir, "missing")); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}
