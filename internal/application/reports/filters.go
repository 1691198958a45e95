package reports

import (
	"context"
	"sort"

	"github.com/samber/lo"

	"utility-kpi/internal/domain/kpi"
	"utility-kpi/internal/domain/operations"
	reportsDomain "utility-kpi/internal/domain/reports"
)

// FilterOptions 列出快照中出現過的年份（新到舊）與各維度值（首次出現順序）。
func (u *UseCase) FilterOptions(ctx context.Context) (reportsDomain.FilterOptions, error) {
	return memoize(ctx, u, "filters", "", func(snap operations.Snapshot) (reportsDomain.FilterOptions, error) {
		return BuildFilterOptions(snap.Records), nil
	})
}

// BuildFilterOptions 由紀錄推得篩選器選項。
func BuildFilterOptions(records []operations.MonthlyRecord) reportsDomain.FilterOptions {
	years := lo.Uniq(lo.Map(records, func(r operations.MonthlyRecord, _ int) int { return r.Year }))
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	months := lo.Map(lo.RangeFrom(1, 12), func(m int, _ int) reportsDomain.MonthOption {
		return reportsDomain.MonthOption{Value: m, Name: kpi.MonthName(m)}
	})

	distinct := func(get func(operations.MonthlyRecord) string) []string {
		values := lo.Uniq(lo.Map(records, func(r operations.MonthlyRecord, _ int) string { return get(r) }))
		return append([]string{kpi.All}, values...)
	}

	return reportsDomain.FilterOptions{
		Years:    years,
		Months:   months,
		Profiles: distinct(func(r operations.MonthlyRecord) string { return r.Profile }),
		Phases:   distinct(func(r operations.MonthlyRecord) string { return r.Phase }),
		Sites:    distinct(func(r operations.MonthlyRecord) string { return r.Site }),
		Zones:    distinct(func(r operations.MonthlyRecord) string { return r.Zone }),
		Segments: distinct(func(r operations.MonthlyRecord) string { return string(r.Segment) }),
	}
}
