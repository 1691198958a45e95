package reports

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"utility-kpi/internal/domain/kpi"
	"utility-kpi/internal/domain/operations"
	reportsDomain "utility-kpi/internal/domain/reports"
)

var (
	// ErrSnapshotNotReady 尚未載入任何資料。
	ErrSnapshotNotReady = errors.New("snapshot not ready")
	// ErrNoDataToExport 篩選後沒有可匯出的紀錄。
	ErrNoDataToExport = errors.New("no data to export")
)

// SnapshotReader 讀取目前的資料快照。
type SnapshotReader interface {
	Current(ctx context.Context) (operations.Snapshot, error)
}

// Memoizer 依 key 快取計算結果；相同 key 的併發計算只執行一次。
type Memoizer interface {
	Do(report, key string, compute func() (any, error)) (any, error)
}

// Recorder 記錄報表計算耗時。
type Recorder interface {
	ObserveReport(report string, took time.Duration)
}

// Query 為報表查詢參數。
type Query struct {
	Filter      kpi.FilterSpec
	Granularity kpi.Granularity
	Window      int
	GroupBy     []string
	Order       kpi.Order
	// Measures 指定摘要額外回傳的單一量測欄位
	Measures []kpi.Measure
}

func (q Query) key() string {
	return strings.Join([]string{
		q.Filter.CacheKey(),
		string(q.Granularity),
		strconv.Itoa(q.Window),
		strings.Join(q.GroupBy, ","),
		string(q.Order),
		measureKey(q.Measures),
	}, "|")
}

func measureKey(ms []kpi.Measure) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = string(m)
	}
	return strings.Join(parts, ",")
}

func (q Query) validate() error {
	if !q.Filter.YearMonth().Valid() {
		return fmt.Errorf("%w: year=%d month=%d", kpi.ErrInvalidPeriod, q.Filter.Year, q.Filter.Month)
	}
	if q.Window < 0 || q.Window > kpi.MaxTrendWindow {
		return fmt.Errorf("%w: %d (1..%d)", kpi.ErrInvalidWindow, q.Window, kpi.MaxTrendWindow)
	}
	return nil
}

// UseCase 以同一套 KPI 引擎產出所有報表。
type UseCase struct {
	snapshots SnapshotReader
	memo      Memoizer
	recorder  Recorder
	now       func() time.Time
}

// NewUseCase 建立報表用例；memo 可為 nil（每次重新計算）。
func NewUseCase(snapshots SnapshotReader, memo Memoizer) *UseCase {
	return &UseCase{
		snapshots: snapshots,
		memo:      memo,
		now:       time.Now,
	}
}

// WithRecorder 設定計算耗時紀錄器。
func (u *UseCase) WithRecorder(r Recorder) *UseCase {
	u.recorder = r
	return u
}

func (u *UseCase) snapshot(ctx context.Context) (operations.Snapshot, error) {
	snap, err := u.snapshots.Current(ctx)
	if err != nil {
		return operations.Snapshot{}, fmt.Errorf("%w: %v", ErrSnapshotNotReady, err)
	}
	return snap, nil
}

// run 驗證參數後計算報表。
func run[T any](ctx context.Context, u *UseCase, name string, q Query, build func(snap operations.Snapshot) (T, error)) (T, error) {
	if err := q.validate(); err != nil {
		var zero T
		return zero, err
	}
	return memoize(ctx, u, name, q.key(), build)
}

// memoize 取目前快照計算報表；結果依 (snapshot, 報表, 參數) 快取。
func memoize[T any](ctx context.Context, u *UseCase, name, key string, build func(snap operations.Snapshot) (T, error)) (T, error) {
	var zero T
	snap, err := u.snapshot(ctx)
	if err != nil {
		return zero, err
	}

	start := u.now()
	defer func() {
		if u.recorder != nil {
			u.recorder.ObserveReport(name, u.now().Sub(start))
		}
	}()

	if u.memo == nil {
		return build(snap)
	}
	v, err := u.memo.Do(name, snap.ID+"|"+name+"|"+key, func() (any, error) {
		return build(snap)
	})
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("report %s: unexpected cached type %T", name, v)
	}
	return out, nil
}

// Summary 回傳單月篩選結果的加總。
func (u *UseCase) Summary(ctx context.Context, q Query) (reportsDomain.KPISummary, error) {
	return run(ctx, u, "summary", q, func(snap operations.Snapshot) (reportsDomain.KPISummary, error) {
		records := kpi.Filter(snap.Records, q.Filter)
		agg := kpi.AggregateRecords(records)
		out := reportsDomain.KPISummary{
			SnapshotID: snap.ID,
			Filter:     q.Filter,
			Period:     q.Filter.YearMonth().Label(),
			KPI:        agg,
			Derived:    kpi.Derive(agg),
		}
		if len(q.Measures) > 0 {
			out.Measures = make(map[kpi.Measure]operations.Pair, len(q.Measures))
			for _, m := range q.Measures {
				out.Measures[m] = kpi.SumMeasure(records, m)
			}
		}
		return out, nil
	})
}

// Comparison 回傳目前 / 前期 / 去年同期比較。
func (u *UseCase) Comparison(ctx context.Context, q Query) (kpi.ComparisonResult, error) {
	return run(ctx, u, "comparison", q, func(snap operations.Snapshot) (kpi.ComparisonResult, error) {
		return kpi.Compare(snap.Records, q.Filter, q.Granularity)
	})
}

// Trend 回傳滾動趨勢；篩選維度會套用到每個月份。
func (u *UseCase) Trend(ctx context.Context, q Query) ([]kpi.TrendPoint, error) {
	if q.Window == 0 {
		q.Window = kpi.DefaultTrendWindow
	}
	return run(ctx, u, "trend", q, func(snap operations.Snapshot) ([]kpi.TrendPoint, error) {
		base := q.Filter
		return kpi.BuildTrend(snap.Records, q.Filter.Year, q.Filter.Month, q.Window, &base)
	})
}

// Groups 依 GroupBy 指定的維度逐層分組。
func (u *UseCase) Groups(ctx context.Context, q Query) ([]kpi.Group, error) {
	keys := make([]kpi.KeyFunc, 0, len(q.GroupBy))
	for _, name := range q.GroupBy {
		k, err := kpi.KeyByName(name)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		keys = append(keys, kpi.BySegment)
	}
	return run(ctx, u, "groups", q, func(snap operations.Snapshot) ([]kpi.Group, error) {
		return kpi.GroupBy(kpi.Filter(snap.Records, q.Filter), kpi.GroupOptions{Order: q.Order}, keys...), nil
	})
}
