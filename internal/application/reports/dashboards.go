package reports

import (
	"context"

	"utility-kpi/internal/domain/kpi"
	"utility-kpi/internal/domain/operations"
	reportsDomain "utility-kpi/internal/domain/reports"
)

// Executive 產出總覽頁：主要指標、月 / 年變化、年度營收、ARPU 季節性、價值層級與站點比較。
func (u *UseCase) Executive(ctx context.Context, q Query) (reportsDomain.ExecutiveSummary, error) {
	return run(ctx, u, "executive", q, func(snap operations.Snapshot) (reportsDomain.ExecutiveSummary, error) {
		cmp, err := kpi.Compare(snap.Records, q.Filter, kpi.Monthly)
		if err != nil {
			return reportsDomain.ExecutiveSummary{}, err
		}
		cur := cmp.Current

		out := reportsDomain.ExecutiveSummary{
			SnapshotID: snap.ID,
			Periods:    cmp.Periods,
			Headline: reportsDomain.Headline{
				Revenue:           cur.Revenue.Total,
				Connections:       cur.Connections.Total,
				SoldKwh:           cur.Consumption.SoldKwh,
				Clients:           cur.Clients.Total,
				WeightedARPU:      kpi.WeightedARPU(cur),
				Commissioned:      cur.Connections.Commissioned,
				RevenueAttainment: kpi.BudgetAttainment(cur.Revenue.Total),
			},
			VsPrevious:   cmp.VsPrevious,
			VsYearAgo:    cmp.VsYearAgo,
			Segmentation: segmentShares(kpi.Filter(snap.Records, q.Filter)),
		}

		for _, p := range kpi.BuildCalendarYear(snap.Records, q.Filter.Year, nil) {
			out.RevenueByMonth = append(out.RevenueByMonth, reportsDomain.MonthValue{
				Label:  p.Label,
				Year:   p.Year,
				Month:  p.Month,
				Actual: p.KPI.Revenue.Total.Actual,
				Budget: p.KPI.Revenue.Total.Budget,
			})
		}
		for _, p := range kpi.BuildSeasonality(snap.Records, nil) {
			arpu := p.Derived.WeightedARPU
			out.ARPUSeasonality = append(out.ARPUSeasonality, reportsDomain.MonthValue{
				Label:  p.Label,
				Month:  p.Month,
				Actual: arpu.Actual,
				Budget: arpu.Budget,
			})
		}

		periods := []kpi.Period{cmp.Periods.Current, cmp.Periods.Previous, cmp.Periods.YearAgo}
		aligned := kpi.CompareGroups(snap.Records, kpi.FilterSpec{}, periods, kpi.GroupOptions{Order: kpi.OrderLexical}, kpi.BySite, kpi.ByPhase)
		out.SitePhase = make([]reportsDomain.SitePhaseRow, 0, len(aligned))
		for _, g := range aligned {
			out.SitePhase = append(out.SitePhase, reportsDomain.SitePhaseRow{
				Site:                 g.Keys[0],
				Phase:                g.Keys[1],
				ARPUCurrent:          kpi.WeightedARPU(g.Periods[0]).Actual,
				ARPUPrevious:         kpi.WeightedARPU(g.Periods[1]).Actual,
				ARPUYearAgo:          kpi.WeightedARPU(g.Periods[2]).Actual,
				CommissionedCurrent:  g.Periods[0].Connections.Commissioned.Actual,
				CommissionedPrevious: g.Periods[1].Connections.Commissioned.Actual,
				CommissionedYearAgo:  g.Periods[2].Connections.Commissioned.Actual,
			})
		}
		return out, nil
	})
}

// segmentShares 依固定的價值層級順序計算客戶數與營收占比。
func segmentShares(records []operations.MonthlyRecord) []reportsDomain.SegmentShare {
	total := kpi.AggregateRecords(records)
	bySeg := make(map[string]kpi.Aggregate)
	for _, g := range kpi.GroupBy(records, kpi.GroupOptions{}, kpi.BySegmentation) {
		bySeg[g.Key] = g.KPI
	}

	out := make([]reportsDomain.SegmentShare, 0, len(operations.Segmentations))
	for _, seg := range operations.Segmentations {
		agg := bySeg[string(seg)]
		clients := float64(agg.Clients.Total)
		revenue := agg.Revenue.Total.Actual
		out = append(out, reportsDomain.SegmentShare{
			Segmentation:   string(seg),
			Clients:        agg.Clients.Total,
			ClientPercent:  kpi.WeightedAverage(clients, float64(total.Clients.Total)) * 100,
			Revenue:        revenue,
			RevenuePercent: kpi.WeightedAverage(revenue, total.Revenue.Total.Actual) * 100,
			ARPU:           kpi.WeightedAverage(revenue, clients),
			AvgConsumption: kpi.WeightedAverage(agg.Consumption.SoldKwh.Actual, clients),
		})
	}
	return out
}

// Consumption 產出用電分析頁：各客戶分類明細與合計列、年度用電走勢。
func (u *UseCase) Consumption(ctx context.Context, q Query) (reportsDomain.ConsumptionReport, error) {
	return run(ctx, u, "consumption", q, func(snap operations.Snapshot) (reportsDomain.ConsumptionReport, error) {
		current := kpi.Filter(snap.Records, q.Filter)

		// 分組為分割，合計列即各組加總
		var total kpi.Aggregate
		bySegment := make(map[string]kpi.Aggregate)
		for _, g := range kpi.GroupBy(current, kpi.GroupOptions{}, kpi.BySegment) {
			bySegment[g.Key] = g.KPI
			total = total.Merge(g.KPI)
		}
		derived := kpi.Derive(total)

		out := reportsDomain.ConsumptionReport{
			SnapshotID:              snap.ID,
			Period:                  q.Filter.YearMonth().Label(),
			TotalSoldKwh:            total.Consumption.SoldKwh.Actual,
			TotalConsumptionRevenue: total.Revenue.Consumption.Actual,
			TotalConnections:        total.Connections.Total.Actual,
			AvgPricePerKwh:          derived.PricePerKwh.Actual,
			AvgKwhPerConnection:     derived.KwhPerConnectionMonth.Actual,
		}
		for _, seg := range operations.Segments {
			out.Segments = append(out.Segments, segmentDetail(string(seg), bySegment[string(seg)]))
		}
		out.Segments = append(out.Segments, segmentDetail(reportsDomain.TotalRowLabel, total))

		for _, p := range kpi.BuildCalendarYear(snap.Records, q.Filter.Year, nil) {
			out.YearlyEvolution = append(out.YearlyEvolution, reportsDomain.ConsumptionMonth{
				Label:              p.Label,
				Month:              p.Month,
				SoldKwh:            p.KPI.Consumption.SoldKwh.Actual,
				ConsumptionRevenue: p.KPI.Revenue.Consumption.Actual,
			})
		}
		return out, nil
	})
}

func segmentDetail(name string, a kpi.Aggregate) reportsDomain.SegmentDetail {
	d := kpi.Derive(a)
	return reportsDomain.SegmentDetail{
		Segment:                    name,
		Connections:                a.Connections.Total.Actual,
		Removed:                    a.Connections.Removed.Actual,
		NewSubscriptions:           a.Connections.NewSubscriptions.Actual,
		Commissioned:               a.Connections.Commissioned.Actual,
		Upgrades:                   a.Connections.Upgrades.Actual,
		Downgrades:                 a.Connections.Downgrades.Actual,
		InactiveBoP:                a.Clients.InactiveBoP,
		NewInactive:                a.Clients.NewInactive,
		WokenUp:                    a.Clients.WokenUp,
		Purchase:                   a.Consumption.SoldKwh.Actual,
		PurchasePerConnectionMonth: d.KwhPerConnectionMonth.Actual,
		PurchasePerConnectionDay:   d.KwhPerConnectionDay.Actual,
		RevenueSubscription:        a.Revenue.Subscription.Actual,
		RevenueConsumption:         a.Revenue.Consumption.Actual,
		RevenueTotal:               a.Revenue.Total.Actual,
		ARPU:                       d.ARPU.Actual,
		PricePerKwh:                d.PricePerKwh.Actual,
	}
}

// Customers 產出客戶洞察頁；期初客戶數取前一個月的期末總數。
func (u *UseCase) Customers(ctx context.Context, q Query) (reportsDomain.CustomerReport, error) {
	return run(ctx, u, "customers", q, func(snap operations.Snapshot) (reportsDomain.CustomerReport, error) {
		ref := q.Filter.YearMonth()
		prevMonth := kpi.PreviousMonth(ref.Year, ref.Month)
		current := kpi.Filter(snap.Records, q.Filter)
		cur := kpi.AggregateRecords(current)
		prev := kpi.AggregateRecords(kpi.Filter(snap.Records, q.Filter.WithMonth(prevMonth)))
		flow := kpi.ClientFlow(cur, prev)
		derived := kpi.Derive(cur)

		out := reportsDomain.CustomerReport{
			SnapshotID:       snap.ID,
			Period:           ref.Label(),
			NetGrowth:        flow.NetGrowth,
			ChurnRate:        flow.ChurnRate,
			InactivityRate:   derived.InactivityRate,
			ReactivationRate: derived.ReactivationRate,
			Flow:             flow,
			InactiveBoP:      cur.Clients.InactiveBoP,
			ActiveBoP:        prev.Clients.Total - cur.Clients.InactiveBoP,
			Segmentation:     segmentShares(current),
		}

		// 多取一個月作為第一個點的期初
		points, err := kpi.BuildTrend(snap.Records, ref.Year, ref.Month, kpi.DefaultTrendWindow+1, nil)
		if err != nil {
			return reportsDomain.CustomerReport{}, err
		}
		for i := 1; i < len(points); i++ {
			p, before := points[i].KPI, points[i-1].KPI
			out.HealthTrend = append(out.HealthTrend, reportsDomain.RatePoint{
				Label:          points[i].Label,
				ChurnRate:      kpi.ChurnRate(float64(p.Clients.Closed), float64(before.Clients.Total)),
				InactivityRate: kpi.InactivityRate(float64(p.Clients.Inactive), float64(p.Clients.Total)),
			})
		}
		return out, nil
	})
}

// Sites 產出站點管理表：每個站點 / 期別的 YTD、M、M-1、Y-1 指標與變化率。
func (u *UseCase) Sites(ctx context.Context, q Query) (reportsDomain.SiteReport, error) {
	return run(ctx, u, "sites", q, func(snap operations.Snapshot) (reportsDomain.SiteReport, error) {
		ref := q.Filter.YearMonth()
		ytd, err := kpi.YearToDate(ref.Year, ref.Month)
		if err != nil {
			return reportsDomain.SiteReport{}, err
		}
		ytdAgo, err := kpi.YearToDateYearAgo(ref.Year, ref.Month)
		if err != nil {
			return reportsDomain.SiteReport{}, err
		}
		periods, err := kpi.Resolve(ref.Year, ref.Month, kpi.Monthly)
		if err != nil {
			return reportsDomain.SiteReport{}, err
		}

		out := reportsDomain.SiteReport{
			SnapshotID: snap.ID,
			Periods: reportsDomain.SitePeriods{
				YTD:           ytd.Label,
				YTDYearAgo:    ytdAgo.Label,
				Month:         periods.Current.Label,
				PreviousMonth: periods.Previous.Label,
				YearAgo:       periods.YearAgo.Label,
			},
		}
		all := kpi.FilterSpec{}
		for _, leaf := range kpi.Leaves(kpi.GroupBy(snap.Records, kpi.GroupOptions{Order: kpi.OrderLexical}, kpi.BySite, kpi.ByPhase)) {
			site := leaf.Records[0].Site
			row := reportsDomain.SiteRow{
				Site:          site,
				Phase:         leaf.Key,
				YTD:           siteKPI(kpi.AggregateRecords(kpi.FilterWindow(leaf.Records, all, ytd.Months))),
				YTDYearAgo:    siteKPI(kpi.AggregateRecords(kpi.FilterWindow(leaf.Records, all, ytdAgo.Months))),
				Month:         siteKPI(kpi.AggregateRecords(kpi.FilterWindow(leaf.Records, all, periods.Current.Months))),
				PreviousMonth: siteKPI(kpi.AggregateRecords(kpi.FilterWindow(leaf.Records, all, periods.Previous.Months))),
				YearAgo:       siteKPI(kpi.AggregateRecords(kpi.FilterWindow(leaf.Records, all, periods.YearAgo.Months))),
			}
			fillSiteChanges(&row)
			out.Rows = append(out.Rows, row)
		}
		return out, nil
	})
}

func siteKPI(a kpi.Aggregate) reportsDomain.SiteKPI {
	d := kpi.Derive(a)
	return reportsDomain.SiteKPI{
		ARPU:                  d.WeightedARPU,
		Revenue:               a.Revenue.Total,
		NewSubscriptions:      a.Connections.NewSubscriptions,
		PricePerKwh:           d.PricePerKwh.Actual,
		PurchasePerConnection: d.KwhPerConnectionMonth.Actual,
	}
}

func fillSiteChanges(r *reportsDomain.SiteRow) {
	m, prev, ago := r.Month, r.PreviousMonth, r.YearAgo

	r.ARPUProgress = kpi.BudgetAttainment(r.YTD.ARPU)
	r.ARPUVsPrevious = kpi.PercentChange(m.ARPU.Actual, prev.ARPU.Actual)
	r.ARPUVsBudget = kpi.PercentChange(m.ARPU.Actual, m.ARPU.Budget)
	r.ARPUVsYearAgo = kpi.PercentChange(m.ARPU.Actual, ago.ARPU.Actual)

	r.RevenueProgress = kpi.BudgetAttainment(r.YTD.Revenue)
	r.RevenueVsPrevious = kpi.PercentChange(m.Revenue.Actual, prev.Revenue.Actual)
	r.RevenueVsBudget = kpi.PercentChange(m.Revenue.Actual, m.Revenue.Budget)
	r.RevenueVsYearAgo = kpi.PercentChange(m.Revenue.Actual, ago.Revenue.Actual)
	r.RevenueYTDVsYTD = kpi.PercentChange(r.YTD.Revenue.Actual, r.YTDYearAgo.Revenue.Actual)

	r.NewSubsProgress = kpi.BudgetAttainment(r.YTD.NewSubscriptions)
	r.NewSubsVsPrevious = kpi.PercentChange(m.NewSubscriptions.Actual, prev.NewSubscriptions.Actual)
	r.NewSubsVsBudget = kpi.PercentChange(m.NewSubscriptions.Actual, m.NewSubscriptions.Budget)
	r.NewSubsVsYearAgo = kpi.PercentChange(m.NewSubscriptions.Actual, ago.NewSubscriptions.Actual)

	r.PriceVsYearAgo = kpi.PercentChange(m.PricePerKwh, ago.PricePerKwh)
	r.PurchaseVsYearAgo = kpi.PercentChange(m.PurchasePerConnection, ago.PurchasePerConnection)
}

// Advanced 產出實績對預算與月 / 季比較。
func (u *UseCase) Advanced(ctx context.Context, q Query) (reportsDomain.AdvancedReport, error) {
	return run(ctx, u, "advanced", q, func(snap operations.Snapshot) (reportsDomain.AdvancedReport, error) {
		cmp, err := kpi.Compare(snap.Records, q.Filter, q.Granularity)
		if err != nil {
			return reportsDomain.AdvancedReport{}, err
		}
		cur := kpi.AggregateRecords(kpi.Filter(snap.Records, q.Filter))
		return reportsDomain.AdvancedReport{
			SnapshotID: snap.ID,
			Period:     q.Filter.YearMonth().Label(),
			Budget: []reportsDomain.BudgetLine{
				budgetLine("Revenue", cur.Revenue.Total, true),
				budgetLine("Consumption (kWh)", cur.Consumption.SoldKwh, false),
				budgetLine("Connections", cur.Connections.Total, false),
			},
			Comparison: cmp,
		}, nil
	})
}

func budgetLine(name string, p kpi.Pair, currency bool) reportsDomain.BudgetLine {
	return reportsDomain.BudgetLine{
		Name:       name,
		Actual:     p.Actual,
		Budget:     p.Budget,
		Attainment: kpi.BudgetAttainment(p),
		Currency:   currency,
	}
}

// Pipeline 產出接線進度：待送電 = 新申裝 − 已送電。
func (u *UseCase) Pipeline(ctx context.Context, q Query) (reportsDomain.PipelineReport, error) {
	return run(ctx, u, "pipeline", q, func(snap operations.Snapshot) (reportsDomain.PipelineReport, error) {
		current := kpi.Filter(snap.Records, q.Filter)
		agg := kpi.AggregateRecords(current)
		d := kpi.Derive(agg)

		out := reportsDomain.PipelineReport{
			SnapshotID:        snap.ID,
			Period:            q.Filter.YearMonth().Label(),
			NewSubscriptions:  agg.Connections.NewSubscriptions.Actual,
			Commissioned:      agg.Connections.Commissioned.Actual,
			Pending:           d.PendingConnections.Actual,
			CommissioningRate: d.CommissioningRate.Actual,
		}
		for _, g := range kpi.GroupBy(current, kpi.GroupOptions{}, kpi.ByZone) {
			out.ByZone = append(out.ByZone, reportsDomain.ZonePipeline{
				Zone:             g.Key,
				NewSubscriptions: g.KPI.Connections.NewSubscriptions.Actual,
				Commissioned:     g.KPI.Connections.Commissioned.Actual,
				Pending:          g.Derived.PendingConnections.Actual,
			})
		}

		points, err := kpi.BuildTrend(snap.Records, q.Filter.Year, q.Filter.Month, kpi.DefaultTrendWindow, nil)
		if err != nil {
			return reportsDomain.PipelineReport{}, err
		}
		for _, p := range points {
			out.Trend = append(out.Trend, reportsDomain.PendingPoint{Label: p.Label, Pending: p.Derived.PendingConnections.Actual})
		}
		return out, nil
	})
}

// Commercial 產出商業活動：新申裝、升降級、退租與停用。
func (u *UseCase) Commercial(ctx context.Context, q Query) (reportsDomain.CommercialReport, error) {
	return run(ctx, u, "commercial", q, func(snap operations.Snapshot) (reportsDomain.CommercialReport, error) {
		current := kpi.Filter(snap.Records, q.Filter)
		c := kpi.AggregateRecords(current).Connections

		out := reportsDomain.CommercialReport{
			SnapshotID: snap.ID,
			Period:     q.Filter.YearMonth().Label(),
			New:        c.NewSubscriptions.Actual,
			Upgrades:   c.Upgrades.Actual,
			Downgrades: c.Downgrades.Actual,
			Closed:     c.Closed.Actual,
			Inactive:   c.Inactive.Actual,
		}
		for _, g := range kpi.GroupBy(current, kpi.GroupOptions{}, kpi.ByZone) {
			zc := g.KPI.Connections
			out.ByZone = append(out.ByZone, reportsDomain.ZoneActivity{
				Zone:     g.Key,
				New:      zc.NewSubscriptions.Actual,
				Closed:   zc.Closed.Actual,
				Inactive: zc.Inactive.Actual,
			})
		}
		return out, nil
	})
}
