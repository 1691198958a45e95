package httpapi

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"utility-kpi/internal/application/reports"
	"utility-kpi/internal/domain/kpi"
	"utility-kpi/internal/infrastructure/format"

	"github.com/gin-gonic/gin"
)

// parseQuery 由 query string 組出報表查詢；未指定年月時取快照中最新的月份。
func (s *Server) parseQuery(c *gin.Context) (reports.Query, error) {
	def := s.defaultPeriod(c)

	year, err := parseIntParam(c, "year", def.Year)
	if err != nil {
		return reports.Query{}, err
	}
	month, err := parseIntParam(c, "month", def.Month)
	if err != nil {
		return reports.Query{}, err
	}
	window, err := parseIntParam(c, "window", 0)
	if err != nil {
		return reports.Query{}, err
	}
	// 0 代表預設視窗
	if window < 0 || window > kpi.MaxTrendWindow {
		return reports.Query{}, fmt.Errorf("%w: %d (1..%d)", kpi.ErrInvalidWindow, window, kpi.MaxTrendWindow)
	}
	granularity, err := kpi.ParseGranularity(c.Query("granularity"))
	if err != nil {
		return reports.Query{}, err
	}
	order, err := kpi.ParseOrder(c.Query("order"))
	if err != nil {
		return reports.Query{}, err
	}
	var measures []kpi.Measure
	for _, name := range splitList(c.Query("measure")) {
		m, err := kpi.ParseMeasure(name)
		if err != nil {
			return reports.Query{}, err
		}
		measures = append(measures, m)
	}
	groupBy := splitList(c.Query("group_by"))
	for _, name := range groupBy {
		if _, err := kpi.KeyByName(name); err != nil {
			return reports.Query{}, err
		}
	}

	return reports.Query{
		Filter: kpi.FilterSpec{
			Year:    year,
			Month:   month,
			Profile: dimParam(c, "profile"),
			Phase:   dimParam(c, "phase"),
			Site:    dimParam(c, "site"),
			Zone:    dimParam(c, "zone"),
			Segment: dimParam(c, "segment"),
		},
		Granularity: granularity,
		Window:      window,
		GroupBy:     groupBy,
		Order:       order,
		Measures:    measures,
	}, nil
}

func (s *Server) defaultPeriod(c *gin.Context) kpi.YearMonth {
	if snap, err := s.store.Current(c.Request.Context()); err == nil {
		if latest, ok := reports.LatestPeriod(snap.Records); ok {
			return latest
		}
	}
	now := time.Now()
	return kpi.YearMonth{Year: now.Year(), Month: int(now.Month())}
}

// currencyParams 解析 currency 與 mode；未指定 currency 時 ok 為 false。
func currencyParams(c *gin.Context) (format.Code, format.Mode, bool, error) {
	raw := strings.TrimSpace(c.Query("currency"))
	if raw == "" {
		return "", "", false, nil
	}
	code, err := format.ParseCode(raw)
	if err != nil {
		return "", "", false, err
	}
	mode, err := format.ParseMode(c.Query("mode"))
	if err != nil {
		return "", "", false, err
	}
	return code, mode, true, nil
}

// formatMoney 在要求幣別時回傳格式化後的金額欄位。
func (s *Server) formatMoney(c *gin.Context, values map[string]float64) (gin.H, error) {
	code, mode, ok, err := currencyParams(c)
	if err != nil || !ok {
		return nil, err
	}
	out := gin.H{"currency": code}
	for k, v := range values {
		out[k] = s.money.Format(v, code, mode)
	}
	return out, nil
}

func parseIntParam(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}

// dimParam 空值與 All 皆表示不篩選。
func dimParam(c *gin.Context, name string) string {
	v := strings.TrimSpace(c.Query(name))
	if strings.EqualFold(v, kpi.All) {
		return kpi.All
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
