package reports

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"utility-kpi/internal/domain/kpi"
	"utility-kpi/internal/domain/operations"
)

// LatestPeriod 回傳快照中最新的年月。
func LatestPeriod(records []operations.MonthlyRecord) (kpi.YearMonth, bool) {
	if len(records) == 0 {
		return kpi.YearMonth{}, false
	}
	months := lo.Map(records, func(r operations.MonthlyRecord, _ int) kpi.YearMonth {
		return kpi.YearMonth{Year: r.Year, Month: r.Month}
	})
	return lo.MaxBy(months, func(a, b kpi.YearMonth) bool { return b.Before(a) }), true
}

// Digest 產出最新月份的 KPI 摘要文字（推播用）；money 為 nil 時金額不做格式化。
func (u *UseCase) Digest(ctx context.Context, money func(float64) string) (string, error) {
	snap, err := u.snapshot(ctx)
	if err != nil {
		return "", err
	}
	latest, ok := LatestPeriod(snap.Records)
	if !ok {
		return "", ErrSnapshotNotReady
	}
	if money == nil {
		money = func(v float64) string { return fmt.Sprintf("%.0f", v) }
	}

	filter := kpi.FilterSpec{Year: latest.Year, Month: latest.Month}
	cmp, err := u.Comparison(ctx, Query{Filter: filter, Granularity: kpi.Monthly})
	if err != nil {
		return "", err
	}
	cur := cmp.Current
	arpu := kpi.WeightedARPU(cur)
	pipeline := kpi.Derive(cur)

	var b strings.Builder
	fmt.Fprintf(&b, "【KPI 摘要】%s\n", cmp.Periods.Current.Label)
	fmt.Fprintf(&b, "營收: %s | 預算達成 %.1f%% | MoM %s | YoY %s\n",
		money(cur.Revenue.Total.Actual), kpi.BudgetAttainment(cur.Revenue.Total), cmp.VsPrevious.Revenue, cmp.VsYearAgo.Revenue)
	fmt.Fprintf(&b, "售電: %.0f kWh | MoM %s | YoY %s\n",
		cur.Consumption.SoldKwh.Actual, cmp.VsPrevious.Consumption, cmp.VsYearAgo.Consumption)
	fmt.Fprintf(&b, "接線: %.0f | MoM %s | 待送電 %.0f\n",
		cur.Connections.Total.Actual, cmp.VsPrevious.Connections, pipeline.PendingConnections.Actual)
	fmt.Fprintf(&b, "客戶: %d | MoM %s\n", cur.Clients.Total, cmp.VsPrevious.Clients)
	fmt.Fprintf(&b, "加權 ARPU: %s | MoM %s\n", money(arpu.Actual), cmp.VsPrevious.ARPU)
	return b.String(), nil
}
