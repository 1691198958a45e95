package source

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"utility-kpi/internal/domain/operations"
)

var (
	syntheticZones    = []string{"Zone A", "Zone B", "Zone C"}
	syntheticPhases   = []string{"Phase 1", "Phase 2"}
	syntheticProfiles = []string{"BC", "BC+", "MC", "MC+", "HC", "Pro mono", "Pro Tri", "Industrial"}
)

const sitesPerZone = 3

// 營收拆分比例
const (
	subscriptionShare = 0.30
	consumptionShare  = 0.65
	adjustmentShare   = 0.05
)

// Synthetic 依固定種子產生示範用月度資料，同一組參數每次結果相同。
type Synthetic struct {
	Seed      int64
	StartYear int
	Months    int
}

// NewSynthetic 建立合成資料來源。
func NewSynthetic(seed int64, startYear, months int) *Synthetic {
	return &Synthetic{Seed: seed, StartYear: startYear, Months: months}
}

func (s *Synthetic) Name() string { return "synthetic" }

// Load 產生 StartYear 1 月起連續 Months 個月、每個 區域×站點×期別×方案 一筆紀錄。
func (s *Synthetic) Load(ctx context.Context) ([]operations.MonthlyRecord, error) {
	if s.StartYear <= 0 || s.Months <= 0 {
		return nil, fmt.Errorf("synthetic source needs start_year and months > 0")
	}
	rng := rand.New(rand.NewSource(s.Seed))
	out := make([]operations.MonthlyRecord, 0, s.Months*len(syntheticZones)*sitesPerZone*len(syntheticPhases)*len(syntheticProfiles))

	for i := 0; i < s.Months; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		year := s.StartYear + i/12
		month := i%12 + 1
		for _, zone := range syntheticZones {
			for n := 1; n <= sitesPerZone; n++ {
				site := fmt.Sprintf("%s Site %d", zone, n)
				for _, phase := range syntheticPhases {
					for _, profile := range syntheticProfiles {
						out = append(out, generateRecord(rng, year, month, zone, site, phase, profile))
					}
				}
			}
		}
	}
	return out, nil
}

func generateRecord(rng *rand.Rand, year, month int, zone, site, phase, profile string) operations.MonthlyRecord {
	between := func(min, max int) float64 { return float64(rng.Intn(max-min+1) + min) }
	factor := func(min, max float64) float64 { return rng.Float64()*(max-min) + min }
	scaled := func(v float64) float64 { return math.Floor(v * factor(0.9, 1.1)) }

	segment := operations.SegmentForProfile(profile)

	conn := between(50, 200)
	connBudget := scaled(conn)
	revenue := between(500000, 2000000)
	revenueBudget := scaled(revenue)
	kwh := between(10000, 50000)
	kwhBudget := scaled(kwh)

	inactiveBoP := int(between(8, 20))
	newInactive := int(between(2, 7))
	wokenUp := int(between(1, 5))
	inactiveEoP := inactiveBoP + newInactive - wokenUp

	newSubs := between(5, 20)
	commissioned := math.Floor(newSubs * factor(0.8, 1.0))

	consActual := revenue * consumptionShare
	consBudget := revenueBudget * consumptionShare

	return operations.MonthlyRecord{
		Year:         year,
		Month:        month,
		Zone:         zone,
		Site:         site,
		Phase:        phase,
		Profile:      profile,
		Category:     operations.CategoryForSegment(segment),
		Segment:      segment,
		Segmentation: operations.SegmentationForProfile(profile),
		Connections: operations.Connections{
			Total:            operations.Pair{Actual: conn, Budget: connBudget},
			NewSubscriptions: operations.Pair{Actual: newSubs, Budget: between(4, 18)},
			Upgrades:         operations.Pair{Actual: between(1, 5), Budget: between(1, 4)},
			Downgrades:       operations.Pair{Actual: between(1, 3), Budget: between(1, 2)},
			Inactive:         operations.Pair{Actual: float64(inactiveEoP), Budget: between(2, 8)},
			Closed:           operations.Pair{Actual: between(1, 5), Budget: between(1, 4)},
			Commissioned:     operations.Pair{Actual: commissioned, Budget: math.Floor(commissioned * 0.95)},
			Removed:          operations.Pair{Actual: between(20, 100), Budget: between(20, 100)},
		},
		Revenue: operations.Revenue{
			Subscription: operations.Pair{Actual: revenue * subscriptionShare, Budget: revenueBudget * subscriptionShare},
			Consumption:  operations.Pair{Actual: consActual, Budget: consBudget},
			Adjustments:  operations.Pair{Actual: revenue * adjustmentShare, Budget: revenueBudget * adjustmentShare},
			Total:        operations.Pair{Actual: revenue, Budget: revenueBudget},
		},
		Consumption: operations.Consumption{
			SoldKwh:                  operations.Pair{Actual: kwh, Budget: kwhBudget},
			AvgKwhPerConnectionMonth: operations.Pair{Actual: kwh / conn, Budget: kwhBudget / connBudget},
			AvgKwhPerConnectionDay:   operations.Pair{Actual: kwh / conn / 30, Budget: kwhBudget / connBudget / 30},
			AvgPricePerKwh:           operations.Pair{Actual: consActual / kwh, Budget: consBudget / kwhBudget},
			ARPU:                     operations.Pair{Actual: consActual / conn, Budget: consBudget / connBudget},
		},
		Clients: operations.Clients{
			Total:       int(between(200, 500)),
			New:         int(between(10, 30)),
			Closed:      int(between(5, 15)),
			Inactive:    inactiveEoP,
			WokenUp:     wokenUp,
			InactiveBoP: inactiveBoP,
			NewInactive: newInactive,
		},
	}
}
