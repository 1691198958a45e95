package operations

import (
	"fmt"
	"strconv"
	"strings"
)

// FlatSeparator 為巢狀欄位攤平時的分隔字元。
const FlatSeparator = "_"

type measureField struct {
	name string
	get  func(MonthlyRecord) Pair
	set  func(*MonthlyRecord, Pair)
}

type clientField struct {
	name string
	get  func(Clients) int
	set  func(*Clients, int)
}

var measureFields = []measureField{
	{"connections_total", func(r MonthlyRecord) Pair { return r.Connections.Total }, func(r *MonthlyRecord, p Pair) { r.Connections.Total = p }},
	{"connections_newSubscriptions", func(r MonthlyRecord) Pair { return r.Connections.NewSubscriptions }, func(r *MonthlyRecord, p Pair) { r.Connections.NewSubscriptions = p }},
	{"connections_upgrades", func(r MonthlyRecord) Pair { return r.Connections.Upgrades }, func(r *MonthlyRecord, p Pair) { r.Connections.Upgrades = p }},
	{"connections_downgrades", func(r MonthlyRecord) Pair { return r.Connections.Downgrades }, func(r *MonthlyRecord, p Pair) { r.Connections.Downgrades = p }},
	{"connections_inactive", func(r MonthlyRecord) Pair { return r.Connections.Inactive }, func(r *MonthlyRecord, p Pair) { r.Connections.Inactive = p }},
	{"connections_closed", func(r MonthlyRecord) Pair { return r.Connections.Closed }, func(r *MonthlyRecord, p Pair) { r.Connections.Closed = p }},
	{"connections_commissioned", func(r MonthlyRecord) Pair { return r.Connections.Commissioned }, func(r *MonthlyRecord, p Pair) { r.Connections.Commissioned = p }},
	{"connections_removed", func(r MonthlyRecord) Pair { return r.Connections.Removed }, func(r *MonthlyRecord, p Pair) { r.Connections.Removed = p }},
	{"revenue_subscription", func(r MonthlyRecord) Pair { return r.Revenue.Subscription }, func(r *MonthlyRecord, p Pair) { r.Revenue.Subscription = p }},
	{"revenue_consumption", func(r MonthlyRecord) Pair { return r.Revenue.Consumption }, func(r *MonthlyRecord, p Pair) { r.Revenue.Consumption = p }},
	{"revenue_adjustments", func(r MonthlyRecord) Pair { return r.Revenue.Adjustments }, func(r *MonthlyRecord, p Pair) { r.Revenue.Adjustments = p }},
	{"revenue_total", func(r MonthlyRecord) Pair { return r.Revenue.Total }, func(r *MonthlyRecord, p Pair) { r.Revenue.Total = p }},
	{"consumption_soldKwh", func(r MonthlyRecord) Pair { return r.Consumption.SoldKwh }, func(r *MonthlyRecord, p Pair) { r.Consumption.SoldKwh = p }},
	{"consumption_avgKwhPerConnectionMonth", func(r MonthlyRecord) Pair { return r.Consumption.AvgKwhPerConnectionMonth }, func(r *MonthlyRecord, p Pair) { r.Consumption.AvgKwhPerConnectionMonth = p }},
	{"consumption_avgKwhPerConnectionDay", func(r MonthlyRecord) Pair { return r.Consumption.AvgKwhPerConnectionDay }, func(r *MonthlyRecord, p Pair) { r.Consumption.AvgKwhPerConnectionDay = p }},
	{"consumption_avgPricePerKwh", func(r MonthlyRecord) Pair { return r.Consumption.AvgPricePerKwh }, func(r *MonthlyRecord, p Pair) { r.Consumption.AvgPricePerKwh = p }},
	{"consumption_arpu", func(r MonthlyRecord) Pair { return r.Consumption.ARPU }, func(r *MonthlyRecord, p Pair) { r.Consumption.ARPU = p }},
}

var clientFields = []clientField{
	{"clients_total", func(c Clients) int { return c.Total }, func(c *Clients, v int) { c.Total = v }},
	{"clients_new", func(c Clients) int { return c.New }, func(c *Clients, v int) { c.New = v }},
	{"clients_closed", func(c Clients) int { return c.Closed }, func(c *Clients, v int) { c.Closed = v }},
	{"clients_inactive", func(c Clients) int { return c.Inactive }, func(c *Clients, v int) { c.Inactive = v }},
	{"clients_wokenUp", func(c Clients) int { return c.WokenUp }, func(c *Clients, v int) { c.WokenUp = v }},
	{"clients_inactiveBoP", func(c Clients) int { return c.InactiveBoP }, func(c *Clients, v int) { c.InactiveBoP = v }},
	{"clients_newInactive", func(c Clients) int { return c.NewInactive }, func(c *Clients, v int) { c.NewInactive = v }},
}

var dimensionHeader = []string{"year", "month", "zone", "site", "phase", "profile", "category", "segment", "segmentation"}

// FlatHeader 回傳攤平後的欄位名稱，順序固定。
func FlatHeader() []string {
	out := make([]string, 0, len(dimensionHeader)+len(measureFields)*2+len(clientFields))
	out = append(out, dimensionHeader...)
	for _, f := range measureFields {
		out = append(out, f.name+FlatSeparator+"actual", f.name+FlatSeparator+"budget")
	}
	for _, f := range clientFields {
		out = append(out, f.name)
	}
	return out
}

// Flatten 依 FlatHeader 的順序輸出欄位值。
func (r MonthlyRecord) Flatten() []string {
	out := make([]string, 0, len(dimensionHeader)+len(measureFields)*2+len(clientFields))
	out = append(out,
		strconv.Itoa(r.Year),
		strconv.Itoa(r.Month),
		r.Zone,
		r.Site,
		r.Phase,
		r.Profile,
		r.Category,
		string(r.Segment),
		string(r.Segmentation),
	)
	for _, f := range measureFields {
		p := f.get(r)
		out = append(out, formatFloat(p.Actual), formatFloat(p.Budget))
	}
	for _, f := range clientFields {
		out = append(out, strconv.Itoa(f.get(r.Clients)))
	}
	return out
}

// ParseFlat 將攤平欄位（header -> value）還原為 MonthlyRecord。
// 缺欄或無法解析的數值會以 ValidationError 回報。
func ParseFlat(row map[string]string) (MonthlyRecord, error) {
	var r MonthlyRecord
	var reasons []string

	str := func(key string) string {
		v, ok := row[key]
		if !ok {
			reasons = append(reasons, "missing field "+key)
		}
		return strings.TrimSpace(v)
	}
	// 數值欄位存在但為空白時視為缺值，不以 0 代替
	numeric := func(key string) (string, bool) {
		v, ok := row[key]
		if !ok {
			reasons = append(reasons, "missing field "+key)
			return "", false
		}
		raw := strings.TrimSpace(v)
		if raw == "" {
			reasons = append(reasons, key+": value is required")
			return "", false
		}
		return raw, true
	}
	integer := func(key string) int {
		raw, ok := numeric(key)
		if !ok {
			return 0
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			reasons = append(reasons, fmt.Sprintf("%s: invalid integer %q", key, raw))
		}
		return v
	}
	number := func(key string) float64 {
		raw, ok := numeric(key)
		if !ok {
			return 0
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			reasons = append(reasons, fmt.Sprintf("%s: invalid number %q", key, raw))
		}
		return v
	}

	r.Year = integer("year")
	r.Month = integer("month")
	r.Zone = str("zone")
	r.Site = str("site")
	r.Phase = str("phase")
	r.Profile = str("profile")
	r.Category = str("category")
	r.Segment = Segment(str("segment"))
	r.Segmentation = Segmentation(str("segmentation"))
	for _, f := range measureFields {
		f.set(&r, Pair{
			Actual: number(f.name + FlatSeparator + "actual"),
			Budget: number(f.name + FlatSeparator + "budget"),
		})
	}
	for _, f := range clientFields {
		f.set(&r.Clients, integer(f.name))
	}

	if len(reasons) > 0 {
		return MonthlyRecord{}, &ValidationError{Reasons: reasons}
	}
	return r, nil
}

// RowError 為來源中無法還原成紀錄的一列，Key 標示位置（例如 "line 3"）。
type RowError struct {
	Key string
	Err error
}

func (e RowError) Error() string { return e.Key + ": " + e.Err.Error() }

func (e RowError) Unwrap() error { return e.Err }

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
