package kpi

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"utility-kpi/internal/domain/operations"
)

// KeyFunc 取出分組維度的值。
type KeyFunc struct {
	Name  string
	Value func(operations.MonthlyRecord) string
}

var (
	BySegment      = KeyFunc{"segment", func(r operations.MonthlyRecord) string { return string(r.Segment) }}
	ByProfile      = KeyFunc{"profile", func(r operations.MonthlyRecord) string { return r.Profile }}
	BySite         = KeyFunc{"site", func(r operations.MonthlyRecord) string { return r.Site }}
	ByPhase        = KeyFunc{"phase", func(r operations.MonthlyRecord) string { return r.Phase }}
	ByZone         = KeyFunc{"zone", func(r operations.MonthlyRecord) string { return r.Zone }}
	BySegmentation = KeyFunc{"segmentation", func(r operations.MonthlyRecord) string { return string(r.Segmentation) }}
	ByCategory     = KeyFunc{"category", func(r operations.MonthlyRecord) string { return r.Category }}
	ByYearMonth    = KeyFunc{"yearMonth", func(r operations.MonthlyRecord) string {
		return strconv.Itoa(r.Year) + "-" + fmt.Sprintf("%02d", r.Month)
	}}
)

var keysByName = map[string]KeyFunc{
	BySegment.Name:      BySegment,
	ByProfile.Name:      ByProfile,
	BySite.Name:         BySite,
	ByPhase.Name:        ByPhase,
	ByZone.Name:         ByZone,
	BySegmentation.Name: BySegmentation,
	ByCategory.Name:     ByCategory,
	ByYearMonth.Name:    ByYearMonth,
	"month":             ByYearMonth,
}

// KeyByName 將 API 傳入的維度名稱轉為 KeyFunc。
func KeyByName(name string) (KeyFunc, error) {
	k, ok := keysByName[strings.TrimSpace(name)]
	if !ok {
		return KeyFunc{}, fmt.Errorf("unsupported group dimension %q", name)
	}
	return k, nil
}

// Order 為分組輸出順序。
type Order string

const (
	OrderFirstSeen Order = "first_seen"
	OrderLexical   Order = "lexical"
)

// ParseOrder 解析排序參數，空字串為 first_seen。
func ParseOrder(v string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", string(OrderFirstSeen):
		return OrderFirstSeen, nil
	case string(OrderLexical), "label_asc":
		return OrderLexical, nil
	}
	return "", fmt.Errorf("unsupported order %q", v)
}

// GroupOptions 控制分組行為。
type GroupOptions struct {
	Order Order
}

// Group 為一個分組節點；Children 為下一層維度的分組。
type Group struct {
	Dimension string                     `json:"dimension"`
	Key       string                     `json:"key"`
	Records   []operations.MonthlyRecord `json:"-"`
	KPI       Aggregate                  `json:"kpi"`
	Derived   Derived                    `json:"derived"`
	Children  []Group                    `json:"children,omitempty"`
}

// GroupBy 依序以 keys 逐層分組；每筆紀錄恰好屬於一個葉節點。
func GroupBy(records []operations.MonthlyRecord, opts GroupOptions, keys ...KeyFunc) []Group {
	if len(keys) == 0 {
		return nil
	}
	key := keys[0]

	grouped := make(map[string][]operations.MonthlyRecord)
	order := make([]string, 0)
	for _, r := range records {
		k := key.Value(r)
		if _, exists := grouped[k]; !exists {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], r)
	}
	if opts.Order == OrderLexical {
		sort.Strings(order)
	}

	groups := make([]Group, 0, len(order))
	for _, k := range order {
		members := grouped[k]
		agg := AggregateRecords(members)
		groups = append(groups, Group{
			Dimension: key.Name,
			Key:       k,
			Records:   members,
			KPI:       agg,
			Derived:   Derive(agg),
			Children:  GroupBy(members, opts, keys[1:]...),
		})
	}
	return groups
}

// Leaves 回傳所有葉節點（由上而下、由左而右）。
func Leaves(groups []Group) []Group {
	out := make([]Group, 0)
	for _, g := range groups {
		if len(g.Children) == 0 {
			out = append(out, g)
			continue
		}
		out = append(out, Leaves(g.Children)...)
	}
	return out
}

// AlignedGroup 為同一組 key 在多個區間的加總結果，順序與傳入的區間相同。
type AlignedGroup struct {
	Keys    []string    `json:"keys"`
	Periods []Aggregate `json:"periods"`
}

// CompareGroups 對每個區間分別分組，再以 key 組合對齊；缺少的分組以 0 補齊。
func CompareGroups(all []operations.MonthlyRecord, base FilterSpec, periods []Period, opts GroupOptions, keys ...KeyFunc) []AlignedGroup {
	if len(keys) == 0 {
		return nil
	}
	index := make(map[string]int)
	out := make([]AlignedGroup, 0)

	for pi, p := range periods {
		for _, r := range FilterWindow(all, base, p.Months) {
			path := make([]string, len(keys))
			for i, k := range keys {
				path[i] = k.Value(r)
			}
			id := strings.Join(path, "\x00")
			idx, ok := index[id]
			if !ok {
				idx = len(out)
				index[id] = idx
				out = append(out, AlignedGroup{Keys: path, Periods: make([]Aggregate, len(periods))})
			}
			out[idx].Periods[pi].Add(r)
		}
	}

	if opts.Order == OrderLexical {
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].Keys, out[j].Keys
			for k := range a {
				if a[k] != b[k] {
					return a[k] < b[k]
				}
			}
			return false
		})
	}
	return out
}
