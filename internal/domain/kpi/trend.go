package kpi

import (
	"fmt"

	"utility-kpi/internal/domain/operations"
)

// DefaultTrendWindow 為滾動趨勢預設的月數。
const DefaultTrendWindow = 12

// MaxTrendWindow 為趨勢視窗的上限（十年）。
const MaxTrendWindow = 120

// TrendPoint 為趨勢中的一個月份。
type TrendPoint struct {
	YearMonth
	Label   string    `json:"label"`
	KPI     Aggregate `json:"kpi"`
	Derived Derived   `json:"derived"`
}

// BuildTrend 從參考月份往回取 window 個月，由舊到新排列。
// base 為 nil 時忽略非時間維度。
func BuildTrend(all []operations.MonthlyRecord, year, month, window int, base *FilterSpec) ([]TrendPoint, error) {
	ref := YearMonth{Year: year, Month: month}
	if !ref.Valid() {
		return nil, fmt.Errorf("%w: year=%d month=%d", ErrInvalidPeriod, year, month)
	}
	if window <= 0 || window > MaxTrendWindow {
		return nil, fmt.Errorf("%w: %d (1..%d)", ErrInvalidWindow, window, MaxTrendWindow)
	}

	months := make([]YearMonth, window)
	for i := 0; i < window; i++ {
		months[window-1-i] = ShiftMonths(year, month, -i)
	}
	return buildPoints(all, months, base, func(ym YearMonth) string { return ym.Label() }), nil
}

// BuildCalendarYear 回傳某年 1..12 月。
func BuildCalendarYear(all []operations.MonthlyRecord, year int, base *FilterSpec) []TrendPoint {
	months := make([]YearMonth, 0, 12)
	for m := 1; m <= 12; m++ {
		months = append(months, YearMonth{Year: year, Month: m})
	}
	return buildPoints(all, months, base, func(ym YearMonth) string { return MonthShortName(ym.Month) })
}

// BuildSeasonality 將所有年份依月份（1..12）彙總。
func BuildSeasonality(all []operations.MonthlyRecord, base *FilterSpec) []TrendPoint {
	points := make([]TrendPoint, 12)
	for i := range points {
		points[i] = TrendPoint{YearMonth: YearMonth{Month: i + 1}, Label: MonthShortName(i + 1)}
	}
	for _, r := range dimensionScope(all, base) {
		if r.Month < 1 || r.Month > 12 {
			continue
		}
		points[r.Month-1].KPI.Add(r)
	}
	for i := range points {
		points[i].Derived = Derive(points[i].KPI)
	}
	return points
}

func buildPoints(all []operations.MonthlyRecord, months []YearMonth, base *FilterSpec, label func(YearMonth) string) []TrendPoint {
	index := make(map[YearMonth]int, len(months))
	points := make([]TrendPoint, len(months))
	for i, ym := range months {
		index[ym] = i
		points[i] = TrendPoint{YearMonth: ym, Label: label(ym)}
	}
	for _, r := range dimensionScope(all, base) {
		i, ok := index[YearMonth{Year: r.Year, Month: r.Month}]
		if !ok {
			continue
		}
		points[i].KPI.Add(r)
	}
	for i := range points {
		points[i].Derived = Derive(points[i].KPI)
	}
	return points
}

func dimensionScope(all []operations.MonthlyRecord, base *FilterSpec) []operations.MonthlyRecord {
	if base == nil {
		return all
	}
	return FilterDimensions(all, *base)
}
