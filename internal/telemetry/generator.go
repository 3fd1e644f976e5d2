package telemetry

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/pdc-tracking/backend/internal/models"
)

// ErrInvalidRange is returned when a range ends before it starts.
var ErrInvalidRange = errors.New("invalid range: end precedes start")

const (
	powerBase      = 10.0
	powerAmplitude = 2.0
	powerSigma     = 1.0

	supplyBase = 60.0
	returnBase = 50.0
	tempSigma  = 2.0

	anomalyBase  = 3.0
	anomalySigma = 0.3
)

// Generate produces the four hourly channels of device over r. Bounds are
// truncated to their calendar day; the series runs from 00:00 of r.Start
// through 00:00 of r.End inclusive.
func Generate(device string, r models.TimeRange) (*models.Telemetry, error) {
	r = models.NewTimeRange(r.Start, r.End)
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange,
			r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly))
	}

	index := hourlyIndex(r.Start, r.Hours())
	n := len(index)
	seed := SeedFor(device)

	// Supply is drawn first, return continues the same stream.
	temps := NewStream(seed, temperatureStream)
	supply := gaussian(temps, n, supplyBase, tempSigma)
	ret := gaussian(temps, n, returnBase, tempSigma)

	anomaly := gaussian(NewStream(seed, anomalyStream), n, anomalyBase, anomalySigma)

	return &models.Telemetry{
		Device:     device,
		Range:      r,
		Power:      series(models.ChannelPower, index, powerValues(seed, n)),
		SupplyTemp: series(models.ChannelSupplyTemp, index, supply),
		ReturnTemp: series(models.ChannelReturnTemp, index, ret),
		Anomaly:    series(models.ChannelAnomaly, index, anomaly),
	}, nil
}

func hourlyIndex(start time.Time, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = hourAt(start, i)
	}
	return out
}

// hourAt is start plus i hours. Whole days go through AddDate so offsets
// beyond the time.Duration range stay exact.
func hourAt(start time.Time, i int) time.Time {
	return start.AddDate(0, 0, i/24).Add(time.Duration(i%24) * time.Hour)
}

// powerValues draws baseline + one full sine cycle across the series + noise.
// The phase runs from 0 to 2π inclusive over n points; a single point has
// phase 0.
func powerValues(seed uint64, n int) []float64 {
	rng := NewStream(seed, powerStream)
	out := make([]float64, n)
	for i := range out {
		out[i] = powerBase + powerAmplitude*math.Sin(phase(i, n)) + rng.NormFloat64()*powerSigma
	}
	return out
}

func phase(i, n int) float64 {
	if n < 2 {
		return 0
	}
	return 2 * math.Pi * float64(i) / float64(n-1)
}

func gaussian(rng *rand.Rand, n int, base, sigma float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = base + rng.NormFloat64()*sigma
	}
	return out
}

func series(ch models.Channel, index []time.Time, values []float64) models.ChannelSeries {
	s := models.ChannelSeries{Channel: ch, Unit: ch.Unit(), Points: make([]models.Point, len(index))}
	for i, ts := range index {
		s.Points[i] = models.Point{Timestamp: ts, Value: values[i]}
	}
	return s
}
