// Package kpi derives the scalar KPI summary of a device from its identity.
package kpi

import (
	"math"
	"math/rand/v2"

	"github.com/pdc-tracking/backend/internal/models"
	"github.com/pdc-tracking/backend/internal/telemetry"
)

// bounds is a half-open draw interval [lo, hi).
type bounds struct{ lo, hi float64 }

var (
	operatingHours     = bounds{1000, 5000}
	alerts             = bounds{0, 100}
	totalConsumption   = bounds{5000, 10000}
	dailyConsumption   = bounds{100, 500}
	weeklyConsumption  = bounds{700, 3500}
	monthlyConsumption = bounds{3000, 15000}
	supplyMax          = bounds{70, 80}
	supplyMin          = bounds{50, 60}
	returnMax          = bounds{60, 70}
	returnMin          = bounds{40, 50}
)

// Summarize returns the KPI summary of device. It draws from a single stream
// seeded with telemetry.SeedFor(device) in a fixed order; reordering the draws
// changes every value that follows.
func Summarize(device string) models.KPISummary {
	d := drawer{rng: telemetry.NewStream(telemetry.SeedFor(device), 0)}

	k := models.KPISummary{Device: device}
	k.OperatingHours = d.intn(operatingHours)
	k.Alerts = d.intn(alerts)
	k.TotalConsumption = d.uniform(totalConsumption)
	k.DailyConsumption = d.uniform(dailyConsumption)
	k.WeeklyConsumption = d.uniform(weeklyConsumption)
	k.MonthlyConsumption = d.uniform(monthlyConsumption)

	k.SupplyMax = d.uniform(supplyMax)
	k.SupplyMin = d.uniform(supplyMin)
	k.SupplyAvg = Round1((k.SupplyMax + k.SupplyMin) / 2)

	k.ReturnMax = d.uniform(returnMax)
	k.ReturnMin = d.uniform(returnMin)
	k.ReturnAvg = Round1((k.ReturnMax + k.ReturnMin) / 2)
	return k
}

// Round1 rounds v to one decimal place, halves away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

type drawer struct {
	rng *rand.Rand
}

func (d drawer) intn(b bounds) int {
	return int(b.lo) + d.rng.IntN(int(b.hi-b.lo))
}

func (d drawer) uniform(b bounds) float64 {
	return Round1(b.lo + d.rng.Float64()*(b.hi-b.lo))
}
