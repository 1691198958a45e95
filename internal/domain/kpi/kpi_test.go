package kpi

import (
	"errors"
	"math"
	"testing"

	"utility-kpi/internal/domain/operations"
)

func rec(year, month int, zone, site, phase, profile string, conn, arpu, revenue float64) operations.MonthlyRecord {
	return operations.MonthlyRecord{
		Year:         year,
		Month:        month,
		Zone:         zone,
		Site:         site,
		Phase:        phase,
		Profile:      profile,
		Category:     operations.CategoryForSegment(operations.SegmentForProfile(profile)),
		Segment:      operations.SegmentForProfile(profile),
		Segmentation: operations.SegmentationForProfile(profile),
		Connections: operations.Connections{
			Total:            operations.Pair{Actual: conn, Budget: conn},
			NewSubscriptions: operations.Pair{Actual: 4, Budget: 5},
			Commissioned:     operations.Pair{Actual: 3, Budget: 5},
			Closed:           operations.Pair{Actual: 1},
		},
		Revenue: operations.Revenue{
			Consumption: operations.Pair{Actual: revenue / 2, Budget: revenue * 0.75},
			Total:       operations.Pair{Actual: revenue, Budget: revenue * 1.25},
		},
		Consumption: operations.Consumption{
			SoldKwh: operations.Pair{Actual: conn * 10, Budget: conn * 11},
			ARPU:    operations.Pair{Actual: arpu, Budget: arpu},
		},
		Clients: operations.Clients{Total: int(conn), New: 2, Closed: 1, Inactive: 3, WokenUp: 1, InactiveBoP: 2, NewInactive: 2},
	}
}

func sample() []operations.MonthlyRecord {
	return []operations.MonthlyRecord{
		rec(2024, 6, "Zone A", "Zone A Site 1", "Phase 1", "BC", 100, 50, 1000),
		rec(2024, 6, "Zone A", "Zone A Site 1", "Phase 2", "Pro mono", 20, 200, 4000),
		rec(2024, 6, "Zone B", "Zone B Site 1", "Phase 1", "MC", 60, 80, 2000),
		rec(2024, 6, "Zone B", "Zone B Site 2", "Phase 1", "Industrial", 5, 900, 9000),
		rec(2024, 6, "Zone A", "Zone A Site 2", "Phase 1", "Pro Tri", 10, 300, 3000),
		rec(2024, 5, "Zone A", "Zone A Site 1", "Phase 1", "BC", 90, 45, 900),
		rec(2023, 6, "Zone A", "Zone A Site 1", "Phase 1", "BC", 80, 40, 800),
	}
}

func TestAggregateEmptyIsZero(t *testing.T) {
	agg := AggregateRecords(nil)
	if agg != (Aggregate{}) {
		t.Fatalf("expected zero aggregate, got %+v", agg)
	}
	d := Derive(agg)
	if math.IsNaN(d.ARPU.Actual) || d.ARPU.Actual != 0 || d.WeightedARPU.Actual != 0 || d.PricePerKwh.Actual != 0 {
		t.Fatalf("expected zero derived metrics, got %+v", d)
	}
}

func TestWeightedARPU(t *testing.T) {
	records := []operations.MonthlyRecord{
		rec(2024, 6, "Z", "S", "P", "BC", 0, 999, 0),
		rec(2024, 6, "Z", "S", "P", "BC", 10, 100, 0),
		rec(2024, 6, "Z", "S", "P", "BC", 90, 50, 0),
	}
	got := WeightedARPU(AggregateRecords(records)).Actual
	if math.Abs(got-55) > 1e-9 {
		t.Fatalf("expected weighted ARPU 55, got %v", got)
	}
}

func TestAggregateSumsActualAndBudget(t *testing.T) {
	agg := AggregateRecords(Filter(sample(), FilterSpec{Year: 2024, Month: 6}))
	if agg.Records != 5 {
		t.Fatalf("expected 5 records, got %d", agg.Records)
	}
	if agg.Revenue.Total.Actual != 19000 {
		t.Fatalf("unexpected revenue actual %v", agg.Revenue.Total.Actual)
	}
	if agg.Revenue.Total.Budget != 23750 {
		t.Fatalf("unexpected revenue budget %v", agg.Revenue.Total.Budget)
	}
	if agg.Clients.Total != 195 {
		t.Fatalf("unexpected clients %d", agg.Clients.Total)
	}
	if got := SumMeasure(sample(), MeasureConnectionsTotal).Actual; got != 365 {
		t.Fatalf("unexpected connections sum %v", got)
	}
}

func TestMergeEqualsSingleScan(t *testing.T) {
	all := sample()
	left := AggregateRecords(all[:3])
	right := AggregateRecords(all[3:])
	if left.Merge(right) != AggregateRecords(all) {
		t.Fatalf("merge differs from single scan")
	}
}

func TestPercentChange(t *testing.T) {
	if c := PercentChange(100, 0); c.Kind != ChangeNotApplicable {
		t.Fatalf("expected n/a, got %+v", c)
	}
	if c := PercentChange(0, 0); c.Kind != ChangeZero {
		t.Fatalf("expected zero, got %+v", c)
	}
	if c := PercentChange(150, 100); c.Kind != ChangeValue || c.Value != 50 {
		t.Fatalf("expected +50, got %+v", c)
	}
	if c := PercentChange(50, 100); c.Value != -50 {
		t.Fatalf("expected -50, got %+v", c)
	}
	if s := PercentChange(100, 0).String(); s != "N/A" {
		t.Fatalf("unexpected string %q", s)
	}
}

func TestRates(t *testing.T) {
	if ChurnRate(5, 0) != 0 {
		t.Fatalf("expected zero churn on zero base")
	}
	if ChurnRate(5, 20) != 25 {
		t.Fatalf("unexpected churn %v", ChurnRate(5, 20))
	}
	if ReactivationRate(1, 4) != 25 {
		t.Fatalf("unexpected reactivation")
	}
	if CommissioningRate(3, 4) != 75 {
		t.Fatalf("unexpected commissioning")
	}
	if KwhPerConnectionDay(3000, 10) != 10 {
		t.Fatalf("unexpected kwh per day %v", KwhPerConnectionDay(3000, 10))
	}
}

func TestResolveMonthlyJanuary(t *testing.T) {
	ps, err := Resolve(2024, 1, Monthly)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ps.Previous.Months[0] != (YearMonth{2023, 12}) {
		t.Fatalf("unexpected previous %+v", ps.Previous.Months)
	}
	if ps.YearAgo.Months[0] != (YearMonth{2023, 1}) {
		t.Fatalf("unexpected year ago %+v", ps.YearAgo.Months)
	}
	if ps.Current.Label != "Jan 24" {
		t.Fatalf("unexpected label %q", ps.Current.Label)
	}
}

func TestResolveQuarterly(t *testing.T) {
	if QuarterOf(2) != 1 || QuarterOf(7) != 3 || QuarterOf(12) != 4 {
		t.Fatalf("unexpected quarter mapping")
	}
	ps, err := Resolve(2024, 2, Quarterly)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []YearMonth{{2023, 10}, {2023, 11}, {2023, 12}}
	for i, ym := range want {
		if ps.Previous.Months[i] != ym {
			t.Fatalf("previous quarter month %d = %+v, want %+v", i, ps.Previous.Months[i], ym)
		}
	}
	if ps.Previous.Label != "Q4 2023" || ps.YearAgo.Label != "Q1 2023" {
		t.Fatalf("unexpected labels %q %q", ps.Previous.Label, ps.YearAgo.Label)
	}
}

func TestResolveInvalidMonth(t *testing.T) {
	if _, err := Resolve(2024, 13, Monthly); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestYearToDate(t *testing.T) {
	p, err := YearToDate(2024, 3)
	if err != nil {
		t.Fatalf("ytd: %v", err)
	}
	if len(p.Months) != 3 || p.Months[2] != (YearMonth{2024, 3}) {
		t.Fatalf("unexpected ytd months %+v", p.Months)
	}
	specs := p.FilterSpecs(FilterSpec{Zone: "Zone A"})
	if len(specs) != 3 || specs[0].Month != 1 || specs[0].Zone != "Zone A" {
		t.Fatalf("unexpected filter specs %+v", specs)
	}
}

func TestShiftMonths(t *testing.T) {
	if got := ShiftMonths(2024, 6, -11); got != (YearMonth{2023, 7}) {
		t.Fatalf("unexpected shift %+v", got)
	}
	if got := ShiftMonths(2024, 12, 1); got != (YearMonth{2025, 1}) {
		t.Fatalf("unexpected shift %+v", got)
	}
}

func TestBuildTrendLabels(t *testing.T) {
	points, err := BuildTrend(sample(), 2024, 6, DefaultTrendWindow, nil)
	if err != nil {
		t.Fatalf("trend: %v", err)
	}
	if len(points) != 12 {
		t.Fatalf("expected 12 points, got %d", len(points))
	}
	if points[0].Label != "Jul 23" || points[11].Label != "Jun 24" {
		t.Fatalf("unexpected labels %q .. %q", points[0].Label, points[11].Label)
	}
	if points[11].KPI.Records != 5 || points[10].KPI.Records != 1 {
		t.Fatalf("unexpected record counts %d %d", points[11].KPI.Records, points[10].KPI.Records)
	}
	for _, window := range []int{0, -1, MaxTrendWindow + 1, 1 << 40} {
		if _, err := BuildTrend(sample(), 2024, 6, window, nil); !errors.Is(err, ErrInvalidWindow) {
			t.Fatalf("window %d: expected ErrInvalidWindow, got %v", window, err)
		}
	}
	if points, err := BuildTrend(sample(), 2024, 6, MaxTrendWindow, nil); err != nil || len(points) != MaxTrendWindow {
		t.Fatalf("max window should be accepted: %d points err=%v", len(points), err)
	}
}

func TestBuildTrendWithBase(t *testing.T) {
	base := &FilterSpec{Zone: "Zone B"}
	points, err := BuildTrend(sample(), 2024, 6, 2, base)
	if err != nil {
		t.Fatalf("trend: %v", err)
	}
	if points[1].KPI.Records != 2 || points[0].KPI.Records != 0 {
		t.Fatalf("unexpected counts %+v", points)
	}
}

func TestFilterAllAndSegment(t *testing.T) {
	all := sample()
	byMonth := Filter(all, FilterSpec{Year: 2024, Month: 6})
	withAll := Filter(all, FilterSpec{Year: 2024, Month: 6, Profile: All, Phase: All, Site: All, Zone: All, Segment: All})
	if len(byMonth) != len(withAll) || len(withAll) != 5 {
		t.Fatalf("All should equal year/month filter: %d vs %d", len(byMonth), len(withAll))
	}
	pro := Filter(all, FilterSpec{Year: 2024, Month: 6, Segment: string(operations.SegmentPRO)})
	if len(pro) != 2 {
		t.Fatalf("expected 2 PRO records, got %d", len(pro))
	}
	for _, r := range pro {
		if r.Segment != operations.SegmentPRO {
			t.Fatalf("unexpected segment %s", r.Segment)
		}
	}
}

func TestGroupByIsPartition(t *testing.T) {
	records := Filter(sample(), FilterSpec{Year: 2024, Month: 6})
	groups := GroupBy(records, GroupOptions{}, BySegment, ByProfile)

	if groups[0].Key != string(operations.SegmentResidentialBusiness) || groups[1].Key != string(operations.SegmentPRO) {
		t.Fatalf("expected first-seen order, got %s, %s", groups[0].Key, groups[1].Key)
	}
	seen := 0
	var sum Aggregate
	for _, leaf := range Leaves(groups) {
		seen += len(leaf.Records)
		sum = sum.Merge(leaf.KPI)
	}
	if seen != len(records) {
		t.Fatalf("leaves hold %d records, want %d", seen, len(records))
	}
	if sum != AggregateRecords(records) {
		t.Fatalf("leaf aggregates do not add up to total")
	}
	for _, g := range groups {
		for _, c := range g.Children {
			for _, r := range c.Records {
				if string(r.Segment) != g.Key || r.Profile != c.Key {
					t.Fatalf("record %s/%s under %s/%s", r.Segment, r.Profile, g.Key, c.Key)
				}
			}
		}
	}
}

func TestGroupByLexical(t *testing.T) {
	records := Filter(sample(), FilterSpec{Year: 2024, Month: 6})
	groups := GroupBy(records, GroupOptions{Order: OrderLexical}, BySite)
	for i := 1; i < len(groups); i++ {
		if groups[i-1].Key > groups[i].Key {
			t.Fatalf("groups not sorted: %s > %s", groups[i-1].Key, groups[i].Key)
		}
	}
}

func TestCompareGroupsAlignsMissingAsZero(t *testing.T) {
	ps, _ := Resolve(2024, 6, Monthly)
	rows := CompareGroups(sample(), FilterSpec{}, []Period{ps.Current, ps.Previous, ps.YearAgo}, GroupOptions{Order: OrderLexical}, BySite, ByPhase)
	if rows[0].Keys[0] != "Zone A Site 1" || rows[0].Keys[1] != "Phase 1" {
		t.Fatalf("unexpected first row %v", rows[0].Keys)
	}
	if rows[0].Periods[1].Records != 1 || rows[0].Periods[2].Records != 1 {
		t.Fatalf("expected previous and year-ago data for first row")
	}
	if rows[1].Periods[1].Records != 0 {
		t.Fatalf("expected zero previous for %v", rows[1].Keys)
	}
}

func TestCompare(t *testing.T) {
	res, err := Compare(sample(), FilterSpec{Year: 2024, Month: 6, Site: "Zone A Site 1", Phase: "Phase 1"}, Monthly)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if res.VsPrevious.Revenue.Kind != ChangeValue || math.Abs(res.VsPrevious.Revenue.Value-11.111111) > 1e-4 {
		t.Fatalf("unexpected revenue change %+v", res.VsPrevious.Revenue)
	}
	if res.VsYearAgo.Revenue.Value != 25 {
		t.Fatalf("unexpected year-ago change %+v", res.VsYearAgo.Revenue)
	}
}

func TestCompareQuarterlyAcrossYearBoundary(t *testing.T) {
	var records []operations.MonthlyRecord
	add := func(year, month int, revenue float64) {
		records = append(records, rec(year, month, "Zone A", "Zone A Site 1", "Phase 1", "BC", 10, 50, revenue))
	}
	add(2024, 1, 100)
	add(2024, 2, 200)
	add(2024, 3, 300)
	add(2024, 4, 1000)
	add(2023, 9, 5000)
	add(2023, 10, 100)
	add(2023, 11, 100)
	add(2023, 12, 100)
	add(2023, 1, 150)
	add(2023, 2, 150)
	add(2023, 3, 150)

	res, err := Compare(records, FilterSpec{Year: 2024, Month: 2}, Quarterly)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if res.Periods.Current.Label != "Q1 2024" || res.Periods.Previous.Label != "Q4 2023" {
		t.Fatalf("unexpected periods %+v", res.Periods)
	}
	if res.Current.Records != 3 || res.Current.Revenue.Total.Actual != 600 {
		t.Fatalf("current quarter should sum Jan..Mar 2024: %d records revenue=%v", res.Current.Records, res.Current.Revenue.Total.Actual)
	}
	if res.Previous.Records != 3 || res.Previous.Revenue.Total.Actual != 300 {
		t.Fatalf("previous quarter should be Oct..Dec 2023: %d records revenue=%v", res.Previous.Records, res.Previous.Revenue.Total.Actual)
	}
	if res.YearAgo.Records != 3 || res.YearAgo.Revenue.Total.Actual != 450 {
		t.Fatalf("year-ago quarter should be Jan..Mar 2023: %d records revenue=%v", res.YearAgo.Records, res.YearAgo.Revenue.Total.Actual)
	}
	if res.VsPrevious.Revenue.Kind != ChangeValue || res.VsPrevious.Revenue.Value != 100 {
		t.Fatalf("unexpected change vs previous %+v", res.VsPrevious.Revenue)
	}
	if math.Abs(res.VsYearAgo.Revenue.Value-100.0/3) > 1e-9 {
		t.Fatalf("unexpected change vs year ago %+v", res.VsYearAgo.Revenue)
	}
}

func TestKeyByName(t *testing.T) {
	if _, err := KeyByName("segment"); err != nil {
		t.Fatalf("segment key: %v", err)
	}
	if _, err := KeyByName("color"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestClientFlow(t *testing.T) {
	cur := AggregateRecords(Filter(sample(), FilterSpec{Year: 2024, Month: 6, Site: "Zone A Site 1", Phase: "Phase 1"}))
	prev := AggregateRecords(Filter(sample(), FilterSpec{Year: 2024, Month: 5}))
	flow := ClientFlow(cur, prev)
	if flow.BoP != 90 || flow.EoP != 100 || flow.NetGrowth != 1 {
		t.Fatalf("unexpected flow %+v", flow)
	}
	if math.Abs(flow.ChurnRate-1.0/90*100) > 1e-9 {
		t.Fatalf("unexpected churn %v", flow.ChurnRate)
	}
}
