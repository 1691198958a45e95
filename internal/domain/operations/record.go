package operations

import (
	"errors"
	"fmt"
	"math"
)

// Segment 為最上層客戶分類。
type Segment string

const (
	SegmentResidentialBusiness Segment = "Residential & Business"
	SegmentPRO                 Segment = "PRO"
	SegmentCI                  Segment = "C&I"
)

// Segmentation 為客戶價值層級。
type Segmentation string

const (
	SegmentationLow     Segmentation = "Low"
	SegmentationMiddle  Segmentation = "Middle"
	SegmentationPremium Segmentation = "Premium"
	SegmentationPros    Segmentation = "Pros"
)

// Segments 依固定順序列出所有客戶分類。
var Segments = []Segment{SegmentResidentialBusiness, SegmentPRO, SegmentCI}

// Segmentations 依固定順序列出所有價值層級。
var Segmentations = []Segmentation{SegmentationLow, SegmentationMiddle, SegmentationPremium, SegmentationPros}

// Pair 為 KPI 的實績 / 預算值。
type Pair struct {
	Actual float64 `json:"actual"`
	Budget float64 `json:"budget"`
}

// Add 回傳兩組 Pair 的逐欄加總。
func (p Pair) Add(o Pair) Pair {
	return Pair{Actual: p.Actual + o.Actual, Budget: p.Budget + o.Budget}
}

// Connections 為接線相關指標。
type Connections struct {
	Total            Pair `json:"total"`
	NewSubscriptions Pair `json:"newSubscriptions"`
	Upgrades         Pair `json:"upgrades"`
	Downgrades       Pair `json:"downgrades"`
	Inactive         Pair `json:"inactive"`
	Closed           Pair `json:"closed"`
	Commissioned     Pair `json:"commissioned"`
	Removed          Pair `json:"removed"`
}

// Revenue 為營收拆分。
type Revenue struct {
	Subscription Pair `json:"subscription"`
	Consumption  Pair `json:"consumption"`
	Adjustments  Pair `json:"adjustments"`
	Total        Pair `json:"total"`
}

// Consumption 為用電量與單價相關指標。
type Consumption struct {
	SoldKwh                  Pair `json:"soldKwh"`
	AvgKwhPerConnectionMonth Pair `json:"avgKwhPerConnectionMonth"`
	AvgKwhPerConnectionDay   Pair `json:"avgKwhPerConnectionDay"`
	AvgPricePerKwh           Pair `json:"avgPricePerKwh"`
	ARPU                     Pair `json:"arpu"`
}

// Clients 為客戶數（純計數，無預算）。
type Clients struct {
	Total       int `json:"total"`
	New         int `json:"new"`
	Closed      int `json:"closed"`
	Inactive    int `json:"inactive"` // Inactive EoP
	WokenUp     int `json:"wokenUp"`
	InactiveBoP int `json:"inactiveBoP"`
	NewInactive int `json:"newInactive"`
}

// MonthlyRecord 為「月份 × 區域 × 站點 × 期別 × 方案」的營運紀錄，建立後不可變更。
type MonthlyRecord struct {
	Year         int          `json:"year"`
	Month        int          `json:"month"`
	Zone         string       `json:"zone"`
	Site         string       `json:"site"`
	Phase        string       `json:"phase"`
	Profile      string       `json:"profile"`
	Category     string       `json:"category"`
	Segment      Segment      `json:"segment"`
	Segmentation Segmentation `json:"segmentation"`
	Connections  Connections  `json:"connections"`
	Revenue      Revenue      `json:"revenue"`
	Consumption  Consumption  `json:"consumption"`
	Clients      Clients      `json:"clients"`
}

// ValidationError 收集多個驗證失敗原因。
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("monthly record validation failed: %v", e.Reasons)
}

// IsValidationError 檢查錯誤是否為月度紀錄的驗證錯誤。
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate 檢查欄位是否完整且數值有效，於 ingestion 邊界呼叫。
func (r MonthlyRecord) Validate() error {
	var reasons []string

	if r.Year <= 0 {
		reasons = append(reasons, "year is required")
	}
	if r.Month < 1 || r.Month > 12 {
		reasons = append(reasons, "month must be within 1..12")
	}
	if r.Zone == "" {
		reasons = append(reasons, "zone is required")
	}
	if r.Site == "" {
		reasons = append(reasons, "site is required")
	}
	if r.Phase == "" {
		reasons = append(reasons, "phase is required")
	}
	if r.Profile == "" {
		reasons = append(reasons, "profile is required")
	}
	if !r.Segment.Valid() {
		reasons = append(reasons, fmt.Sprintf("unsupported segment %q", r.Segment))
	}
	if !r.Segmentation.Valid() {
		reasons = append(reasons, fmt.Sprintf("unsupported segmentation %q", r.Segmentation))
	}

	for _, f := range measureFields {
		p := f.get(r)
		if !finite(p.Actual) || !finite(p.Budget) {
			reasons = append(reasons, f.name+" must be a finite number")
		}
	}

	c := r.Clients
	if c.Total < 0 || c.New < 0 || c.Closed < 0 || c.Inactive < 0 || c.WokenUp < 0 || c.InactiveBoP < 0 || c.NewInactive < 0 {
		reasons = append(reasons, "client counts must be >= 0")
	}

	if len(reasons) > 0 {
		return &ValidationError{Reasons: reasons}
	}
	return nil
}

// CheckInactiveBalance 檢查 inactive == inactiveBoP + newInactive - wokenUp。
func (r MonthlyRecord) CheckInactiveBalance() error {
	c := r.Clients
	expected := c.InactiveBoP + c.NewInactive - c.WokenUp
	if c.Inactive != expected {
		return &ValidationError{Reasons: []string{
			fmt.Sprintf("clients.inactive=%d does not match inactiveBoP+newInactive-wokenUp=%d", c.Inactive, expected),
		}}
	}
	return nil
}

// Valid 判斷是否為已知分類。
func (s Segment) Valid() bool {
	switch s {
	case SegmentResidentialBusiness, SegmentPRO, SegmentCI:
		return true
	}
	return false
}

// Valid 判斷是否為已知層級。
func (s Segmentation) Valid() bool {
	switch s {
	case SegmentationLow, SegmentationMiddle, SegmentationPremium, SegmentationPros:
		return true
	}
	return false
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
