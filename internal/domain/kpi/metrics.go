package kpi

import (
	"encoding/json"
	"fmt"
)

// DaysPerMonth 為日均換算使用的固定天數。
const DaysPerMonth = 30

// WeightedAverage 回傳 num/den，分母為 0 時回 0。
func WeightedAverage(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// ChangeKind 為變化率的結果類型。
type ChangeKind string

const (
	ChangeZero          ChangeKind = "zero"
	ChangeNotApplicable ChangeKind = "n/a"
	ChangeValue         ChangeKind = "value"
)

// Change 為期間變化率；Kind 為 value 時 Value 才有意義。
type Change struct {
	Kind  ChangeKind `json:"kind"`
	Value float64    `json:"value"`
}

// PercentChange 計算 (current-previous)/previous×100。
// 兩者皆為 0 回 Zero；僅 previous 為 0 回 NotApplicable。
func PercentChange(current, previous float64) Change {
	if previous == 0 {
		if current == 0 {
			return Change{Kind: ChangeZero}
		}
		return Change{Kind: ChangeNotApplicable}
	}
	return Change{Kind: ChangeValue, Value: (current - previous) / previous * 100}
}

// String 給 CLI 與通知使用。
func (c Change) String() string {
	switch c.Kind {
	case ChangeZero:
		return "0.0%"
	case ChangeNotApplicable:
		return "N/A"
	}
	return fmt.Sprintf("%+.1f%%", c.Value)
}

// MarshalJSON 非 value 時省略數值。
func (c Change) MarshalJSON() ([]byte, error) {
	if c.Kind == ChangeValue {
		return json.Marshal(struct {
			Kind  ChangeKind `json:"kind"`
			Value float64    `json:"value"`
		}{c.Kind, c.Value})
	}
	return json.Marshal(struct {
		Kind ChangeKind `json:"kind"`
	}{c.Kind})
}

func percent(num, den float64) float64 {
	return WeightedAverage(num, den) * 100
}

// ChurnRate = closed / 期初客戶數 × 100。
func ChurnRate(closed, totalAtStart float64) float64 { return percent(closed, totalAtStart) }

// InactivityRate = 期末停用 / 期末客戶數 × 100。
func InactivityRate(inactiveEnd, totalEnd float64) float64 { return percent(inactiveEnd, totalEnd) }

// ReactivationRate = 喚醒 / 期初停用 × 100。
func ReactivationRate(wokenUp, inactiveStart float64) float64 {
	return percent(wokenUp, inactiveStart)
}

// CommissioningRate = 已送電 / 新申裝 × 100。
func CommissioningRate(commissioned, newSubs float64) float64 {
	return percent(commissioned, newSubs)
}

// BudgetAttainment 回傳實績達成預算的百分比，預算為 0 時回 0。
func BudgetAttainment(p Pair) float64 {
	return percent(p.Actual, p.Budget)
}

// ARPU = 用電營收 / 接線數。
func ARPU(consumptionRevenue, connections float64) float64 {
	return WeightedAverage(consumptionRevenue, connections)
}

// PricePerKwh = 用電營收 / 售電度數。
func PricePerKwh(consumptionRevenue, soldKwh float64) float64 {
	return WeightedAverage(consumptionRevenue, soldKwh)
}

// KwhPerConnectionMonth = 售電度數 / 接線數。
func KwhPerConnectionMonth(soldKwh, connections float64) float64 {
	return WeightedAverage(soldKwh, connections)
}

// KwhPerConnectionDay 以 30 天換算。
func KwhPerConnectionDay(soldKwh, connections float64) float64 {
	return KwhPerConnectionMonth(soldKwh, connections) / DaysPerMonth
}

// WeightedARPU = Σ(arpu×connections) / Σconnections。
func WeightedARPU(a Aggregate) Pair {
	return Pair{Actual: a.ARPUBase.Actual.Value(), Budget: a.ARPUBase.Budget.Value()}
}

// Derived 為一組加總結果的衍生比率。
type Derived struct {
	ARPU                  Pair    `json:"arpu"`
	WeightedARPU          Pair    `json:"weightedArpu"`
	PricePerKwh           Pair    `json:"pricePerKwh"`
	WeightedPricePerKwh   Pair    `json:"weightedPricePerKwh"`
	KwhPerConnectionMonth Pair    `json:"kwhPerConnectionMonth"`
	KwhPerConnectionDay   Pair    `json:"kwhPerConnectionDay"`
	InactivityRate        float64 `json:"inactivityRate"`
	ReactivationRate      float64 `json:"reactivationRate"`
	CommissioningRate     Pair    `json:"commissioningRate"`
	PendingConnections    Pair    `json:"pendingConnections"`
	RevenueAttainment     float64 `json:"revenueAttainment"`
	KwhAttainment         float64 `json:"kwhAttainment"`
	ConnectionAttainment  float64 `json:"connectionAttainment"`
}

// Derive 計算所有與單一加總相關的比率（實績與預算）。
func Derive(a Aggregate) Derived {
	conn := a.Connections.Total
	cons := a.Revenue.Consumption
	kwh := a.Consumption.SoldKwh
	newSubs := a.Connections.NewSubscriptions
	comm := a.Connections.Commissioned

	return Derived{
		ARPU:                  Pair{Actual: ARPU(cons.Actual, conn.Actual), Budget: ARPU(cons.Budget, conn.Budget)},
		WeightedARPU:          WeightedARPU(a),
		PricePerKwh:           Pair{Actual: PricePerKwh(cons.Actual, kwh.Actual), Budget: PricePerKwh(cons.Budget, kwh.Budget)},
		WeightedPricePerKwh:   Pair{Actual: a.PriceBase.Actual.Value(), Budget: a.PriceBase.Budget.Value()},
		KwhPerConnectionMonth: Pair{Actual: KwhPerConnectionMonth(kwh.Actual, conn.Actual), Budget: KwhPerConnectionMonth(kwh.Budget, conn.Budget)},
		KwhPerConnectionDay:   Pair{Actual: KwhPerConnectionDay(kwh.Actual, conn.Actual), Budget: KwhPerConnectionDay(kwh.Budget, conn.Budget)},
		InactivityRate:        InactivityRate(float64(a.Clients.Inactive), float64(a.Clients.Total)),
		ReactivationRate:      ReactivationRate(float64(a.Clients.WokenUp), float64(a.Clients.InactiveBoP)),
		CommissioningRate:     Pair{Actual: CommissioningRate(comm.Actual, newSubs.Actual), Budget: CommissioningRate(comm.Budget, newSubs.Budget)},
		PendingConnections:    Pair{Actual: newSubs.Actual - comm.Actual, Budget: newSubs.Budget - comm.Budget},
		RevenueAttainment:     BudgetAttainment(a.Revenue.Total),
		KwhAttainment:         BudgetAttainment(kwh),
		ConnectionAttainment:  BudgetAttainment(conn),
	}
}

// ClientFlowSummary 描述期初到期末的客戶變化。
type ClientFlowSummary struct {
	BoP          int     `json:"bop"`
	New          int     `json:"new"`
	Closed       int     `json:"closed"`
	EoP          int     `json:"eop"`
	Active       int     `json:"active"`
	Inactive     int     `json:"inactive"`
	WokenUp      int     `json:"wokenUp"`
	NewInactive  int     `json:"newInactive"`
	NetGrowth    int     `json:"netGrowth"`
	ChurnRate    float64 `json:"churnRate"`
	GrowthChange Change  `json:"growthChange"`
}

// ClientFlow 以前期期末客戶數作為期初，計算流失率與淨成長。
func ClientFlow(current, previous Aggregate) ClientFlowSummary {
	c := current.Clients
	bop := previous.Clients.Total
	return ClientFlowSummary{
		BoP:          bop,
		New:          c.New,
		Closed:       c.Closed,
		EoP:          c.Total,
		Active:       c.Total - c.Inactive,
		Inactive:     c.Inactive,
		WokenUp:      c.WokenUp,
		NewInactive:  c.NewInactive,
		NetGrowth:    c.New - c.Closed,
		ChurnRate:    ChurnRate(float64(c.Closed), float64(bop)),
		GrowthChange: PercentChange(float64(c.Total), float64(bop)),
	}
}
