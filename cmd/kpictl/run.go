package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"utility-kpi/internal/application/dataingestion"
	"utility-kpi/internal/application/reports"
	"utility-kpi/internal/domain/kpi"
	"utility-kpi/internal/infra/memory"
	"utility-kpi/internal/infrastructure/config"
	"utility-kpi/internal/infrastructure/format"
	"utility-kpi/internal/infrastructure/source"
)

// options 為所有子命令共用的旗標。
type options struct {
	source    string
	csvPath   string
	seed      int64
	startYear int
	months    int

	year, month int
	profile     string
	phase       string
	site        string
	zone        string
	segment     string

	granularity string
	window      int
	groupBy     string
	order       string
	measures    string

	currency string
	mode     string
	asJSON   bool
	out      string
}

func (o *options) bindSource(cmd *cobra.Command) {
	defaults := config.WithDefaults(config.Config{}).Ingestion
	f := cmd.PersistentFlags()
	f.StringVar(&o.source, "source", config.SourceSynthetic, "synthetic | csv")
	f.StringVar(&o.csvPath, "csv", "", "csv file for --source=csv")
	f.Int64Var(&o.seed, "seed", defaults.Seed, "synthetic generator seed")
	f.IntVar(&o.startYear, "start-year", defaults.StartYear, "first synthetic year")
	f.IntVar(&o.months, "months", defaults.Months, "number of synthetic months")
	f.StringVar(&o.currency, "currency", "FCFA", "FCFA | EUR")
	f.StringVar(&o.mode, "mode", "standard", "standard | compact")
	f.BoolVar(&o.asJSON, "json", false, "print raw JSON instead of a table")
}

func (o *options) bindQuery(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&o.year, "year", 0, "reference year (default latest in data)")
	f.IntVar(&o.month, "month", 0, "reference month 1..12 (default latest in data)")
	f.StringVar(&o.profile, "profile", kpi.All, "profile filter")
	f.StringVar(&o.phase, "phase", kpi.All, "phase filter")
	f.StringVar(&o.site, "site", kpi.All, "site filter")
	f.StringVar(&o.zone, "zone", kpi.All, "zone filter")
	f.StringVar(&o.segment, "segment", kpi.All, "segment filter")
}

func (o *options) recordSource() (dataingestion.RecordSource, error) {
	switch o.source {
	case config.SourceSynthetic, "":
		return source.NewSynthetic(o.seed, o.startYear, o.months), nil
	case config.SourceCSV:
		if o.csvPath == "" {
			return nil, fmt.Errorf("--csv is required for --source=csv")
		}
		return source.NewCSVFile(o.csvPath), nil
	}
	return nil, fmt.Errorf("unsupported source %q", o.source)
}

// session 為一次命令執行期間載入的快照與報表用例。
type session struct {
	uc    *reports.UseCase
	query reports.Query
	money *format.CurrencyFormatter
	code  format.Code
	mode  format.Mode
}

func (s session) fmtMoney(v float64) string {
	return s.money.Format(v, s.code, s.mode)
}

// load 讀入資料、發布快照並組出查詢；年月未指定時取資料中最新的月份。
func load(ctx context.Context, o *options) (session, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	code, err := format.ParseCode(o.currency)
	if err != nil {
		return session{}, err
	}
	mode, err := format.ParseMode(o.mode)
	if err != nil {
		return session{}, err
	}
	src, err := o.recordSource()
	if err != nil {
		return session{}, err
	}

	store := memory.NewStore()
	res, err := dataingestion.NewIngestUseCase(src, store).Execute(ctx)
	if err != nil {
		return session{}, err
	}
	if res.FailedCount > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d record(s) rejected during load\n", res.FailedCount)
	}

	q, err := o.buildQuery(ctx, store)
	if err != nil {
		return session{}, err
	}
	return session{
		uc:    reports.NewUseCase(store, nil),
		query: q,
		money: format.NewCurrencyFormatter(format.DefaultEURRate),
		code:  code,
		mode:  mode,
	}, nil
}

func (o *options) buildQuery(ctx context.Context, store *memory.Store) (reports.Query, error) {
	year, month := o.year, o.month
	if year == 0 || month == 0 {
		snap, err := store.Current(ctx)
		if err != nil {
			return reports.Query{}, err
		}
		latest, ok := reports.LatestPeriod(snap.Records)
		if !ok {
			return reports.Query{}, reports.ErrSnapshotNotReady
		}
		if year == 0 {
			year = latest.Year
		}
		if month == 0 {
			month = latest.Month
		}
	}
	granularity, err := kpi.ParseGranularity(o.granularity)
	if err != nil {
		return reports.Query{}, err
	}
	order, err := kpi.ParseOrder(o.order)
	if err != nil {
		return reports.Query{}, err
	}
	var groupBy []string
	for _, name := range strings.Split(o.groupBy, ",") {
		if name = strings.TrimSpace(name); name == "" {
			continue
		}
		if _, err := kpi.KeyByName(name); err != nil {
			return reports.Query{}, err
		}
		groupBy = append(groupBy, name)
	}
	var measures []kpi.Measure
	for _, name := range strings.Split(o.measures, ",") {
		if name = strings.TrimSpace(name); name == "" {
			continue
		}
		m, err := kpi.ParseMeasure(name)
		if err != nil {
			return reports.Query{}, err
		}
		measures = append(measures, m)
	}
	return reports.Query{
		Filter: kpi.FilterSpec{
			Year:    year,
			Month:   month,
			Profile: o.profile,
			Phase:   o.phase,
			Site:    o.site,
			Zone:    o.zone,
			Segment: o.segment,
		},
		Granularity: granularity,
		Window:      o.window,
		GroupBy:     groupBy,
		Order:       order,
		Measures:    measures,
	}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runSummary(ctx context.Context, w io.Writer, o *options) error {
	s, err := load(ctx, o)
	if err != nil {
		return err
	}
	out, err := s.uc.Summary(ctx, s.query)
	if err != nil {
		return err
	}
	if o.asJSON {
		return writeJSON(w, out)
	}
	printSummary(w, s, out)
	return nil
}

func runCompare(ctx context.Context, w io.Writer, o *options) error {
	s, err := load(ctx, o)
	if err != nil {
		return err
	}
	out, err := s.uc.Comparison(ctx, s.query)
	if err != nil {
		return err
	}
	if o.asJSON {
		return writeJSON(w, out)
	}
	printComparison(w, s, out)
	return nil
}

func runTrend(ctx context.Context, w io.Writer, o *options) error {
	s, err := load(ctx, o)
	if err != nil {
		return err
	}
	out, err := s.uc.Trend(ctx, s.query)
	if err != nil {
		return err
	}
	if o.asJSON {
		return writeJSON(w, out)
	}
	printTrend(w, s, out)
	return nil
}

func runGroups(ctx context.Context, w io.Writer, o *options) error {
	s, err := load(ctx, o)
	if err != nil {
		return err
	}
	if len(s.query.GroupBy) == 0 {
		return fmt.Errorf("--group-by needs at least one dimension")
	}
	out, err := s.uc.Groups(ctx, s.query)
	if err != nil {
		return err
	}
	if o.asJSON {
		return writeJSON(w, out)
	}
	printGroups(w, s, out)
	return nil
}

func runExport(ctx context.Context, w io.Writer, o *options) error {
	s, err := load(ctx, o)
	if err != nil {
		return err
	}
	csvText, n, err := s.uc.ExportCSV(ctx, s.query)
	if err != nil {
		return err
	}
	if o.out == "" {
		_, err = io.WriteString(w, csvText)
		return err
	}
	if err := os.WriteFile(o.out, []byte(csvText), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", o.out, err)
	}
	fmt.Fprintf(w, "exported %d record(s) to %s\n", n, o.out)
	return nil
}
