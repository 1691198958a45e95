package kpi

import (
	"fmt"

	"utility-kpi/internal/domain/operations"
)

// All 表示該維度不篩選。
const All = "All"

// FilterSpec 描述一次查詢的篩選條件；年、月必須精確相符，其餘維度可為 All。
type FilterSpec struct {
	Year    int    `json:"year"`
	Month   int    `json:"month"`
	Profile string `json:"profile"`
	Phase   string `json:"phase"`
	Site    string `json:"site"`
	Zone    string `json:"zone"`
	Segment string `json:"segment"`
}

// WithMonth 回傳相同維度、不同年月的篩選條件。
func (s FilterSpec) WithMonth(ym YearMonth) FilterSpec {
	s.Year = ym.Year
	s.Month = ym.Month
	return s
}

// YearMonth 回傳篩選條件的年月。
func (s FilterSpec) YearMonth() YearMonth {
	return YearMonth{Year: s.Year, Month: s.Month}
}

// MatchesDimensions 只比對非時間維度。
func (s FilterSpec) MatchesDimensions(r operations.MonthlyRecord) bool {
	return matchDim(s.Profile, r.Profile) &&
		matchDim(s.Phase, r.Phase) &&
		matchDim(s.Site, r.Site) &&
		matchDim(s.Zone, r.Zone) &&
		matchDim(s.Segment, string(r.Segment))
}

// Matches 比對年月與所有維度。
func (s FilterSpec) Matches(r operations.MonthlyRecord) bool {
	return r.Year == s.Year && r.Month == s.Month && s.MatchesDimensions(r)
}

// CacheKey 產生穩定的字串表示，供快取鍵使用。
func (s FilterSpec) CacheKey() string {
	return fmt.Sprintf("%d|%d|%s|%s|%s|%s|%s", s.Year, s.Month, norm(s.Profile), norm(s.Phase), norm(s.Site), norm(s.Zone), norm(s.Segment))
}

// Filter 回傳符合條件的紀錄，保留原始順序。
func Filter(records []operations.MonthlyRecord, spec FilterSpec) []operations.MonthlyRecord {
	out := make([]operations.MonthlyRecord, 0)
	for _, r := range records {
		if spec.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// FilterWindow 回傳年月落在 months 內且維度符合 base 的紀錄。
func FilterWindow(records []operations.MonthlyRecord, base FilterSpec, months []YearMonth) []operations.MonthlyRecord {
	want := make(map[YearMonth]struct{}, len(months))
	for _, ym := range months {
		want[ym] = struct{}{}
	}
	out := make([]operations.MonthlyRecord, 0)
	for _, r := range records {
		if _, ok := want[YearMonth{Year: r.Year, Month: r.Month}]; !ok {
			continue
		}
		if base.MatchesDimensions(r) {
			out = append(out, r)
		}
	}
	return out
}

// FilterDimensions 僅依非時間維度篩選。
func FilterDimensions(records []operations.MonthlyRecord, base FilterSpec) []operations.MonthlyRecord {
	out := make([]operations.MonthlyRecord, 0)
	for _, r := range records {
		if base.MatchesDimensions(r) {
			out = append(out, r)
		}
	}
	return out
}

// 空字串視同 All（HTTP query 未帶值）。
func matchDim(want, got string) bool {
	return want == "" || want == All || want == got
}

func norm(v string) string {
	if v == "" {
		return All
	}
	return v
}
