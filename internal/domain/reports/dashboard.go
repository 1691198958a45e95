package reports

import (
	"utility-kpi/internal/domain/kpi"
	"utility-kpi/internal/domain/operations"
)

// KPISummary 為單月篩選結果的加總與衍生比率。
type KPISummary struct {
	SnapshotID string         `json:"snapshotId"`
	Filter     kpi.FilterSpec `json:"filter"`
	Period     string         `json:"period"`
	KPI        kpi.Aggregate  `json:"kpi"`
	Derived    kpi.Derived    `json:"derived"`

	Measures map[kpi.Measure]operations.Pair `json:"measures,omitempty"`
}

// MonthValue 為圖表上的一個月份點。
type MonthValue struct {
	Label  string  `json:"label"`
	Year   int     `json:"year,omitempty"`
	Month  int     `json:"month"`
	Actual float64 `json:"actual"`
	Budget float64 `json:"budget"`
}

// Headline 為總覽頁的主要指標。
type Headline struct {
	Revenue           operations.Pair `json:"revenue"`
	Connections       operations.Pair `json:"connections"`
	SoldKwh           operations.Pair `json:"soldKwh"`
	Clients           int             `json:"clients"`
	WeightedARPU      operations.Pair `json:"weightedArpu"`
	Commissioned      operations.Pair `json:"commissioned"`
	RevenueAttainment float64         `json:"revenueAttainment"`
}

// SegmentShare 為單一價值層級的客戶數與營收占比。
type SegmentShare struct {
	Segmentation   string  `json:"segmentation"`
	Clients        int     `json:"clients"`
	ClientPercent  float64 `json:"clientPercent"`
	Revenue        float64 `json:"revenue"`
	RevenuePercent float64 `json:"revenuePercent"`
	ARPU           float64 `json:"arpu"`
	AvgConsumption float64 `json:"avgConsumption"`
}

// SitePhaseRow 比較站點 / 期別在 M、M-1、Y-1 的 ARPU 與送電數。
type SitePhaseRow struct {
	Site                 string  `json:"site"`
	Phase                string  `json:"phase"`
	ARPUCurrent          float64 `json:"arpuCurrent"`
	ARPUPrevious         float64 `json:"arpuPrevious"`
	ARPUYearAgo          float64 `json:"arpuYearAgo"`
	CommissionedCurrent  float64 `json:"commissionedCurrent"`
	CommissionedPrevious float64 `json:"commissionedPrevious"`
	CommissionedYearAgo  float64 `json:"commissionedYearAgo"`
}

// ExecutiveSummary 總覽頁。
type ExecutiveSummary struct {
	SnapshotID      string         `json:"snapshotId"`
	Periods         kpi.PeriodSet  `json:"periods"`
	Headline        Headline       `json:"headline"`
	VsPrevious      kpi.Changes    `json:"vsPrevious"`
	VsYearAgo       kpi.Changes    `json:"vsYearAgo"`
	RevenueByMonth  []MonthValue   `json:"revenueByMonth"`
	ARPUSeasonality []MonthValue   `json:"arpuSeasonality"`
	Segmentation    []SegmentShare `json:"segmentation"`
	SitePhase       []SitePhaseRow `json:"sitePhase"`
}

// SegmentDetail 為用電分析表的一列；Segment 為 "Total" 時是合計列。
type SegmentDetail struct {
	Segment                    string  `json:"segment"`
	Connections                float64 `json:"connections"`
	Removed                    float64 `json:"removed"`
	NewSubscriptions           float64 `json:"newSubscriptions"`
	Commissioned               float64 `json:"commissioned"`
	Upgrades                   float64 `json:"upgrades"`
	Downgrades                 float64 `json:"downgrades"`
	InactiveBoP                int     `json:"inactiveBoP"`
	NewInactive                int     `json:"newInactive"`
	WokenUp                    int     `json:"wokenUp"`
	Purchase                   float64 `json:"purchase"`
	PurchasePerConnectionMonth float64 `json:"purchasePerConnectionMonth"`
	PurchasePerConnectionDay   float64 `json:"purchasePerConnectionDay"`
	RevenueSubscription        float64 `json:"revenueSubscription"`
	RevenueConsumption         float64 `json:"revenueConsumption"`
	RevenueTotal               float64 `json:"revenueTotal"`
	ARPU                       float64 `json:"arpu"`
	PricePerKwh                float64 `json:"pricePerKwh"`
}

// TotalRowLabel 為合計列名稱。
const TotalRowLabel = "Total"

// ConsumptionMonth 為年度用電 / 營收走勢的一個月份。
type ConsumptionMonth struct {
	Label              string  `json:"label"`
	Month              int     `json:"month"`
	SoldKwh            float64 `json:"soldKwh"`
	ConsumptionRevenue float64 `json:"consumptionRevenue"`
}

// ConsumptionReport 用電分析頁。
type ConsumptionReport struct {
	SnapshotID              string             `json:"snapshotId"`
	Period                  string             `json:"period"`
	TotalSoldKwh            float64            `json:"totalSoldKwh"`
	TotalConsumptionRevenue float64            `json:"totalConsumptionRevenue"`
	TotalConnections        float64            `json:"totalConnections"`
	AvgPricePerKwh          float64            `json:"avgPricePerKwh"`
	AvgKwhPerConnection     float64            `json:"avgKwhPerConnection"`
	Segments                []SegmentDetail    `json:"segments"`
	YearlyEvolution         []ConsumptionMonth `json:"yearlyEvolution"`
}

// RatePoint 為客戶健康度趨勢的一個月份。
type RatePoint struct {
	Label          string  `json:"label"`
	ChurnRate      float64 `json:"churnRate"`
	InactivityRate float64 `json:"inactivityRate"`
}

// CustomerReport 客戶洞察頁。
type CustomerReport struct {
	SnapshotID       string                `json:"snapshotId"`
	Period           string                `json:"period"`
	NetGrowth        int                   `json:"netGrowth"`
	ChurnRate        float64               `json:"churnRate"`
	InactivityRate   float64               `json:"inactivityRate"`
	ReactivationRate float64               `json:"reactivationRate"`
	Flow             kpi.ClientFlowSummary `json:"flow"`
	InactiveBoP      int                   `json:"inactiveBoP"`
	ActiveBoP        int                   `json:"activeBoP"`
	HealthTrend      []RatePoint           `json:"healthTrend"`
	Segmentation     []SegmentShare        `json:"segmentation"`
}

// SiteKPI 為站點表中單一區間的指標。
type SiteKPI struct {
	ARPU                  operations.Pair `json:"arpu"`
	Revenue               operations.Pair `json:"revenue"`
	NewSubscriptions      operations.Pair `json:"newSubscriptions"`
	PricePerKwh           float64         `json:"pricePerKwh"`
	PurchasePerConnection float64         `json:"purchasePerConnection"`
}

// SiteRow 為站點管理表的一列。
type SiteRow struct {
	Site          string  `json:"site"`
	Phase         string  `json:"phase"`
	YTD           SiteKPI `json:"ytd"`
	YTDYearAgo    SiteKPI `json:"ytdYearAgo"`
	Month         SiteKPI `json:"month"`
	PreviousMonth SiteKPI `json:"previousMonth"`
	YearAgo       SiteKPI `json:"yearAgo"`

	ARPUProgress      float64    `json:"arpuProgress"`
	ARPUVsPrevious    kpi.Change `json:"arpuVsPrevious"`
	ARPUVsBudget      kpi.Change `json:"arpuVsBudget"`
	ARPUVsYearAgo     kpi.Change `json:"arpuVsYearAgo"`
	RevenueProgress   float64    `json:"revenueProgress"`
	RevenueVsPrevious kpi.Change `json:"revenueVsPrevious"`
	RevenueVsBudget   kpi.Change `json:"revenueVsBudget"`
	RevenueVsYearAgo  kpi.Change `json:"revenueVsYearAgo"`
	RevenueYTDVsYTD   kpi.Change `json:"revenueYtdVsYtd"`
	NewSubsProgress   float64    `json:"newSubsProgress"`
	NewSubsVsPrevious kpi.Change `json:"newSubsVsPrevious"`
	NewSubsVsBudget   kpi.Change `json:"newSubsVsBudget"`
	NewSubsVsYearAgo  kpi.Change `json:"newSubsVsYearAgo"`
	PriceVsYearAgo    kpi.Change `json:"priceVsYearAgo"`
	PurchaseVsYearAgo kpi.Change `json:"purchaseVsYearAgo"`
}

// SitePeriods 為站點表各欄的區間標籤。
type SitePeriods struct {
	YTD           string `json:"ytd"`
	YTDYearAgo    string `json:"ytdYearAgo"`
	Month         string `json:"month"`
	PreviousMonth string `json:"previousMonth"`
	YearAgo       string `json:"yearAgo"`
}

// SiteReport 站點管理頁。
type SiteReport struct {
	SnapshotID string      `json:"snapshotId"`
	Periods    SitePeriods `json:"periods"`
	Rows       []SiteRow   `json:"rows"`
}

// BudgetLine 為實績對預算的一列。
type BudgetLine struct {
	Name       string  `json:"name"`
	Actual     float64 `json:"actual"`
	Budget     float64 `json:"budget"`
	Attainment float64 `json:"attainment"`
	Currency   bool    `json:"currency"`
}

// AdvancedReport 進階分析頁。
type AdvancedReport struct {
	SnapshotID string               `json:"snapshotId"`
	Period     string               `json:"period"`
	Budget     []BudgetLine         `json:"budget"`
	Comparison kpi.ComparisonResult `json:"comparison"`
}

// ZonePipeline 為單一區域的接線進度。
type ZonePipeline struct {
	Zone             string  `json:"zone"`
	NewSubscriptions float64 `json:"newSubscriptions"`
	Commissioned     float64 `json:"commissioned"`
	Pending          float64 `json:"pending"`
}

// PendingPoint 為待送電趨勢的一個月份。
type PendingPoint struct {
	Label   string  `json:"label"`
	Pending float64 `json:"pending"`
}

// PipelineReport 接線進度頁。
type PipelineReport struct {
	SnapshotID        string         `json:"snapshotId"`
	Period            string         `json:"period"`
	NewSubscriptions  float64        `json:"newSubscriptions"`
	Commissioned      float64        `json:"commissioned"`
	Pending           float64        `json:"pending"`
	CommissioningRate float64        `json:"commissioningRate"`
	ByZone            []ZonePipeline `json:"byZone"`
	Trend             []PendingPoint `json:"trend"`
}

// ZoneActivity 為單一區域的商業活動。
type ZoneActivity struct {
	Zone     string  `json:"zone"`
	New      float64 `json:"new"`
	Closed   float64 `json:"closed"`
	Inactive float64 `json:"inactive"`
}

// CommercialReport 商業活動頁。
type CommercialReport struct {
	SnapshotID string         `json:"snapshotId"`
	Period     string         `json:"period"`
	New        float64        `json:"new"`
	Upgrades   float64        `json:"upgrades"`
	Downgrades float64        `json:"downgrades"`
	Closed     float64        `json:"closed"`
	Inactive   float64        `json:"inactive"`
	ByZone     []ZoneActivity `json:"byZone"`
}

// MonthOption 為月份選單項目。
type MonthOption struct {
	Value int    `json:"value"`
	Name  string `json:"name"`
}

// FilterOptions 為篩選器的可選值；維度清單第一項固定為 All。
type FilterOptions struct {
	Years    []int         `json:"years"`
	Months   []MonthOption `json:"months"`
	Profiles []string      `json:"profiles"`
	Phases   []string      `json:"phases"`
	Sites    []string      `json:"sites"`
	Zones    []string      `json:"zones"`
	Segments []string      `json:"segments"`
}
