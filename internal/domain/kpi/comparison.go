package kpi

import "utility-kpi/internal/domain/operations"

// Changes 為主要指標的期間變化率。
type Changes struct {
	Revenue     Change `json:"revenue"`
	Consumption Change `json:"consumption"`
	Connections Change `json:"connections"`
	Clients     Change `json:"clients"`
	ARPU        Change `json:"arpu"`
}

// ComparisonResult 為目前、前期與去年同期的加總與變化率。
type ComparisonResult struct {
	Current    Aggregate `json:"current"`
	Previous   Aggregate `json:"previous"`
	YearAgo    Aggregate `json:"yearAgo"`
	Periods    PeriodSet `json:"periods"`
	VsPrevious Changes   `json:"vsPrevious"`
	VsYearAgo  Changes   `json:"vsYearAgo"`
}

// Compare 依 base 的年月與粒度解析三段區間並分別加總。
func Compare(all []operations.MonthlyRecord, base FilterSpec, g Granularity) (ComparisonResult, error) {
	periods, err := Resolve(base.Year, base.Month, g)
	if err != nil {
		return ComparisonResult{}, err
	}
	cur := AggregateRecords(FilterWindow(all, base, periods.Current.Months))
	prev := AggregateRecords(FilterWindow(all, base, periods.Previous.Months))
	ago := AggregateRecords(FilterWindow(all, base, periods.YearAgo.Months))
	return ComparisonResult{
		Current:    cur,
		Previous:   prev,
		YearAgo:    ago,
		Periods:    periods,
		VsPrevious: ChangesBetween(cur, prev),
		VsYearAgo:  ChangesBetween(cur, ago),
	}, nil
}

// ChangesBetween 以實績計算主要指標的變化率；ARPU 取加權值。
func ChangesBetween(current, previous Aggregate) Changes {
	return Changes{
		Revenue:     PercentChange(current.Revenue.Total.Actual, previous.Revenue.Total.Actual),
		Consumption: PercentChange(current.Consumption.SoldKwh.Actual, previous.Consumption.SoldKwh.Actual),
		Connections: PercentChange(current.Connections.Total.Actual, previous.Connections.Total.Actual),
		Clients:     PercentChange(float64(current.Clients.Total), float64(previous.Clients.Total)),
		ARPU:        PercentChange(WeightedARPU(current).Actual, WeightedARPU(previous).Actual),
	}
}
