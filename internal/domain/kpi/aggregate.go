package kpi

import (
	"fmt"

	"utility-kpi/internal/domain/operations"
)

// Weighted 為加權平均的分子 / 分母，比值留待 Derive 一次計算。
type Weighted struct {
	Sum    float64 `json:"sum"`
	Weight float64 `json:"weight"`
}

// Value 回傳加權平均，分母為 0 時回 0。
func (w Weighted) Value() float64 {
	return WeightedAverage(w.Sum, w.Weight)
}

func (w Weighted) add(value, weight float64) Weighted {
	return Weighted{Sum: w.Sum + value*weight, Weight: w.Weight + weight}
}

// WeightedPair 為實績 / 預算兩組加權基底。
type WeightedPair struct {
	Actual Weighted `json:"actual"`
	Budget Weighted `json:"budget"`
}

func (w WeightedPair) add(value, weight operations.Pair) WeightedPair {
	return WeightedPair{
		Actual: w.Actual.add(value.Actual, weight.Actual),
		Budget: w.Budget.add(value.Budget, weight.Budget),
	}
}

// Aggregate 為一組紀錄的加總結果（AggregatedKPI）。空輸入時全部為 0。
type Aggregate struct {
	Records     int                    `json:"records"`
	Connections operations.Connections `json:"connections"`
	Revenue     operations.Revenue     `json:"revenue"`
	Consumption operations.Consumption `json:"consumption"`
	Clients     operations.Clients     `json:"clients"`

	// 加權基底：arpu×connections、price×kWh、kWh/conn×connections
	ARPUBase       WeightedPair `json:"arpuBase"`
	PriceBase      WeightedPair `json:"priceBase"`
	KwhPerConnBase WeightedPair `json:"kwhPerConnBase"`
}

// Add 將單筆紀錄累加進結果。
func (a *Aggregate) Add(r operations.MonthlyRecord) {
	a.Records++

	c := &a.Connections
	c.Total = c.Total.Add(r.Connections.Total)
	c.NewSubscriptions = c.NewSubscriptions.Add(r.Connections.NewSubscriptions)
	c.Upgrades = c.Upgrades.Add(r.Connections.Upgrades)
	c.Downgrades = c.Downgrades.Add(r.Connections.Downgrades)
	c.Inactive = c.Inactive.Add(r.Connections.Inactive)
	c.Closed = c.Closed.Add(r.Connections.Closed)
	c.Commissioned = c.Commissioned.Add(r.Connections.Commissioned)
	c.Removed = c.Removed.Add(r.Connections.Removed)

	rev := &a.Revenue
	rev.Subscription = rev.Subscription.Add(r.Revenue.Subscription)
	rev.Consumption = rev.Consumption.Add(r.Revenue.Consumption)
	rev.Adjustments = rev.Adjustments.Add(r.Revenue.Adjustments)
	rev.Total = rev.Total.Add(r.Revenue.Total)

	con := &a.Consumption
	con.SoldKwh = con.SoldKwh.Add(r.Consumption.SoldKwh)
	con.AvgKwhPerConnectionMonth = con.AvgKwhPerConnectionMonth.Add(r.Consumption.AvgKwhPerConnectionMonth)
	con.AvgKwhPerConnectionDay = con.AvgKwhPerConnectionDay.Add(r.Consumption.AvgKwhPerConnectionDay)
	con.AvgPricePerKwh = con.AvgPricePerKwh.Add(r.Consumption.AvgPricePerKwh)
	con.ARPU = con.ARPU.Add(r.Consumption.ARPU)

	cl := &a.Clients
	cl.Total += r.Clients.Total
	cl.New += r.Clients.New
	cl.Closed += r.Clients.Closed
	cl.Inactive += r.Clients.Inactive
	cl.WokenUp += r.Clients.WokenUp
	cl.InactiveBoP += r.Clients.InactiveBoP
	cl.NewInactive += r.Clients.NewInactive

	a.ARPUBase = a.ARPUBase.add(r.Consumption.ARPU, r.Connections.Total)
	a.PriceBase = a.PriceBase.add(r.Consumption.AvgPricePerKwh, r.Consumption.SoldKwh)
	a.KwhPerConnBase = a.KwhPerConnBase.add(r.Consumption.AvgKwhPerConnectionMonth, r.Connections.Total)
}

// Merge 合併兩個加總結果。
func (a Aggregate) Merge(o Aggregate) Aggregate {
	out := a
	out.Records += o.Records
	for _, m := range Measures {
		out.setMeasure(m, a.Measure(m).Add(o.Measure(m)))
	}
	out.Clients = operations.Clients{
		Total:       a.Clients.Total + o.Clients.Total,
		New:         a.Clients.New + o.Clients.New,
		Closed:      a.Clients.Closed + o.Clients.Closed,
		Inactive:    a.Clients.Inactive + o.Clients.Inactive,
		WokenUp:     a.Clients.WokenUp + o.Clients.WokenUp,
		InactiveBoP: a.Clients.InactiveBoP + o.Clients.InactiveBoP,
		NewInactive: a.Clients.NewInactive + o.Clients.NewInactive,
	}
	out.ARPUBase = mergeWeighted(a.ARPUBase, o.ARPUBase)
	out.PriceBase = mergeWeighted(a.PriceBase, o.PriceBase)
	out.KwhPerConnBase = mergeWeighted(a.KwhPerConnBase, o.KwhPerConnBase)
	return out
}

func mergeWeighted(a, b WeightedPair) WeightedPair {
	return WeightedPair{
		Actual: Weighted{Sum: a.Actual.Sum + b.Actual.Sum, Weight: a.Actual.Weight + b.Actual.Weight},
		Budget: Weighted{Sum: a.Budget.Sum + b.Budget.Sum, Weight: a.Budget.Weight + b.Budget.Weight},
	}
}

// AggregateRecords 對整組紀錄做一次掃描加總。
func AggregateRecords(records []operations.MonthlyRecord) Aggregate {
	var out Aggregate
	for _, r := range records {
		out.Add(r)
	}
	return out
}

// Measure 指定單一量測欄位。
type Measure string

const (
	MeasureConnectionsTotal        Measure = "connections.total"
	MeasureConnectionsNew          Measure = "connections.newSubscriptions"
	MeasureConnectionsUpgrades     Measure = "connections.upgrades"
	MeasureConnectionsDowngrades   Measure = "connections.downgrades"
	MeasureConnectionsInactive     Measure = "connections.inactive"
	MeasureConnectionsClosed       Measure = "connections.closed"
	MeasureConnectionsCommissioned Measure = "connections.commissioned"
	MeasureConnectionsRemoved      Measure = "connections.removed"
	MeasureRevenueSubscription     Measure = "revenue.subscription"
	MeasureRevenueConsumption      Measure = "revenue.consumption"
	MeasureRevenueAdjustments      Measure = "revenue.adjustments"
	MeasureRevenueTotal            Measure = "revenue.total"
	MeasureSoldKwh                 Measure = "consumption.soldKwh"
	MeasureKwhPerConnectionMonth   Measure = "consumption.avgKwhPerConnectionMonth"
	MeasureKwhPerConnectionDay     Measure = "consumption.avgKwhPerConnectionDay"
	MeasurePricePerKwh             Measure = "consumption.avgPricePerKwh"
	MeasureARPU                    Measure = "consumption.arpu"
)

// Measures 列出所有可加總的量測欄位。
var Measures = []Measure{
	MeasureConnectionsTotal, MeasureConnectionsNew, MeasureConnectionsUpgrades, MeasureConnectionsDowngrades,
	MeasureConnectionsInactive, MeasureConnectionsClosed, MeasureConnectionsCommissioned, MeasureConnectionsRemoved,
	MeasureRevenueSubscription, MeasureRevenueConsumption, MeasureRevenueAdjustments, MeasureRevenueTotal,
	MeasureSoldKwh, MeasureKwhPerConnectionMonth, MeasureKwhPerConnectionDay, MeasurePricePerKwh, MeasureARPU,
}

// ParseMeasure 驗證量測名稱。
func ParseMeasure(name string) (Measure, error) {
	for _, m := range Measures {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown measure %q", name)
}

// Measure 回傳指定欄位的加總。
func (a Aggregate) Measure(m Measure) Pair {
	if p := a.measurePtr(m); p != nil {
		return *p
	}
	return Pair{}
}

func (a *Aggregate) setMeasure(m Measure, v Pair) {
	if p := a.measurePtr(m); p != nil {
		*p = v
	}
}

func (a *Aggregate) measurePtr(m Measure) *Pair {
	switch m {
	case MeasureConnectionsTotal:
		return &a.Connections.Total
	case MeasureConnectionsNew:
		return &a.Connections.NewSubscriptions
	case MeasureConnectionsUpgrades:
		return &a.Connections.Upgrades
	case MeasureConnectionsDowngrades:
		return &a.Connections.Downgrades
	case MeasureConnectionsInactive:
		return &a.Connections.Inactive
	case MeasureConnectionsClosed:
		return &a.Connections.Closed
	case MeasureConnectionsCommissioned:
		return &a.Connections.Commissioned
	case MeasureConnectionsRemoved:
		return &a.Connections.Removed
	case MeasureRevenueSubscription:
		return &a.Revenue.Subscription
	case MeasureRevenueConsumption:
		return &a.Revenue.Consumption
	case MeasureRevenueAdjustments:
		return &a.Revenue.Adjustments
	case MeasureRevenueTotal:
		return &a.Revenue.Total
	case MeasureSoldKwh:
		return &a.Consumption.SoldKwh
	case MeasureKwhPerConnectionMonth:
		return &a.Consumption.AvgKwhPerConnectionMonth
	case MeasureKwhPerConnectionDay:
		return &a.Consumption.AvgKwhPerConnectionDay
	case MeasurePricePerKwh:
		return &a.Consumption.AvgPricePerKwh
	case MeasureARPU:
		return &a.Consumption.ARPU
	}
	return nil
}

// SumMeasure 只取單一欄位的加總。
func SumMeasure(records []operations.MonthlyRecord, m Measure) Pair {
	return AggregateRecords(records).Measure(m)
}

// Pair 為 operations.Pair 的別名，方便呼叫端使用。
type Pair = operations.Pair
