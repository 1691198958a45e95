package kpi

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidPeriod 表示年月超出範圍。
	ErrInvalidPeriod = errors.New("invalid period")
	// ErrInvalidWindow 表示趨勢視窗長度不合法。
	ErrInvalidWindow = errors.New("invalid window size")
)

// Granularity 為比較的時間粒度。
type Granularity string

const (
	Monthly   Granularity = "monthly"
	Quarterly Granularity = "quarterly"
)

// ParseGranularity 解析粒度，空字串視為 monthly。
func ParseGranularity(v string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", string(Monthly), "month":
		return Monthly, nil
	case string(Quarterly), "quarter":
		return Quarterly, nil
	}
	return "", fmt.Errorf("unsupported granularity %q", v)
}

// YearMonth 為日曆年月。
type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Valid 檢查月份是否在 1..12 且年份為正。
func (ym YearMonth) Valid() bool {
	return ym.Year > 0 && ym.Month >= 1 && ym.Month <= 12
}

// Before 判斷是否早於另一個年月。
func (ym YearMonth) Before(o YearMonth) bool {
	if ym.Year != o.Year {
		return ym.Year < o.Year
	}
	return ym.Month < o.Month
}

// Label 回傳「月份縮寫 + 兩位年份」，例如 "Jul 23"。
func (ym YearMonth) Label() string {
	return fmt.Sprintf("%s %02d", MonthShortName(ym.Month), ym.Year%100)
}

// MonthShortName 回傳英文月份縮寫。
func MonthShortName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return time.Month(month).String()[:3]
}

// MonthName 回傳英文月份全名。
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return time.Month(month).String()
}

// PreviousMonth 回傳上一個月，1 月跨回前一年 12 月。
func PreviousMonth(year, month int) YearMonth {
	return ShiftMonths(year, month, -1)
}

// ShiftMonths 位移 n 個月（可為負），自動處理跨年。
func ShiftMonths(year, month, n int) YearMonth {
	idx := year*12 + (month - 1) + n
	y := idx / 12
	m := idx%12 + 1
	if idx < 0 && idx%12 != 0 {
		y--
		m = idx%12 + 13
	}
	return YearMonth{Year: y, Month: m}
}

// QuarterOf 回傳月份所屬季度：⌊(m-1)/3⌋+1。
func QuarterOf(month int) int {
	return (month-1)/3 + 1
}

// QuarterMonths 回傳季度包含的月份。
func QuarterMonths(q int) []int {
	if q < 1 || q > 4 {
		return nil
	}
	start := (q-1)*3 + 1
	return []int{start, start + 1, start + 2}
}

// Period 為一段比較區間。
type Period struct {
	Label  string      `json:"label"`
	Months []YearMonth `json:"months"`
}

// FilterSpecs 將 base 的維度套到區間內每個月份。
func (p Period) FilterSpecs(base FilterSpec) []FilterSpec {
	out := make([]FilterSpec, 0, len(p.Months))
	for _, ym := range p.Months {
		out = append(out, base.WithMonth(ym))
	}
	return out
}

// PeriodSet 為目前、前期、去年同期三段區間。
type PeriodSet struct {
	Granularity Granularity `json:"granularity"`
	Current     Period      `json:"current"`
	Previous    Period      `json:"previous"`
	YearAgo     Period      `json:"yearAgo"`
}

// Resolve 依參考年月與粒度推得比較區間。
func Resolve(year, month int, g Granularity) (PeriodSet, error) {
	ref := YearMonth{Year: year, Month: month}
	if !ref.Valid() {
		return PeriodSet{}, fmt.Errorf("%w: year=%d month=%d", ErrInvalidPeriod, year, month)
	}

	switch g {
	case Monthly, "":
		prev := PreviousMonth(year, month)
		ago := YearMonth{Year: year - 1, Month: month}
		return PeriodSet{
			Granularity: Monthly,
			Current:     monthPeriod(ref),
			Previous:    monthPeriod(prev),
			YearAgo:     monthPeriod(ago),
		}, nil
	case Quarterly:
		q := QuarterOf(month)
		prevYear, prevQ := year, q-1
		if q == 1 {
			prevYear, prevQ = year-1, 4
		}
		return PeriodSet{
			Granularity: Quarterly,
			Current:     quarterPeriod(year, q),
			Previous:    quarterPeriod(prevYear, prevQ),
			YearAgo:     quarterPeriod(year-1, q),
		}, nil
	}
	return PeriodSet{}, fmt.Errorf("unsupported granularity %q", g)
}

// YearToDate 回傳當年 1..month 月。
func YearToDate(year, month int) (Period, error) {
	ref := YearMonth{Year: year, Month: month}
	if !ref.Valid() {
		return Period{}, fmt.Errorf("%w: year=%d month=%d", ErrInvalidPeriod, year, month)
	}
	months := make([]YearMonth, 0, month)
	for m := 1; m <= month; m++ {
		months = append(months, YearMonth{Year: year, Month: m})
	}
	return Period{Label: "YTD " + ref.Label(), Months: months}, nil
}

// YearToDateYearAgo 回傳前一年同月份的 YTD。
func YearToDateYearAgo(year, month int) (Period, error) {
	return YearToDate(year-1, month)
}

func monthPeriod(ym YearMonth) Period {
	return Period{Label: ym.Label(), Months: []YearMonth{ym}}
}

func quarterPeriod(year, q int) Period {
	months := make([]YearMonth, 0, 3)
	for _, m := range QuarterMonths(q) {
		months = append(months, YearMonth{Year: year, Month: m})
	}
	return Period{Label: fmt.Sprintf("Q%d %d", q, year), Months: months}
}
