// Package rollup aggregates hourly channel series into monthly means.
package rollup

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pdc-tracking/backend/internal/models"
)

// Engine computes a MonthlyRollup. Implementations must agree on the result
// for the same input.
type Engine interface {
	Name() string
	Rollup(ctx context.Context, series ...models.ChannelSeries) (models.MonthlyRollup, error)
}

// Engine names accepted by NewEngine.
const (
	EngineMemory = "memory"
	EngineDuckDB = "duckdb"
)

// NewEngine returns the engine registered under name.
func NewEngine(name string, opts DuckOptions) (Engine, error) {
	switch name {
	case "", EngineMemory:
		return MemoryEngine{}, nil
	case EngineDuckDB:
		return NewDuckEngine(opts), nil
	}
	return nil, fmt.Errorf("unknown rollup engine: %s", name)
}

// MemoryEngine runs Rollup in process.
type MemoryEngine struct{}

func (MemoryEngine) Name() string { return EngineMemory }

func (MemoryEngine) Rollup(ctx context.Context, series ...models.ChannelSeries) (models.MonthlyRollup, error) {
	if err := ctx.Err(); err != nil {
		return models.MonthlyRollup{}, err
	}
	return Rollup(series...), nil
}

type accumulator struct {
	sum   float64
	count int
}

// Rollup groups each series by the calendar month of its timestamps and
// returns the per-month mean of every channel, outer-joined on month. A month
// covered by any series appears in the result; channels without samples in
// that month are absent from the row. Rows are ordered by month.
func Rollup(series ...models.ChannelSeries) models.MonthlyRollup {
	channels := channelOrder(series)
	buckets := make(map[time.Time]map[models.Channel]*accumulator)

	for _, s := range series {
		for _, p := range s.Points {
			month := models.MonthOf(p.Timestamp)
			row, ok := buckets[month]
			if !ok {
				row = make(map[models.Channel]*accumulator, len(channels))
				buckets[month] = row
			}
			acc, ok := row[s.Channel]
			if !ok {
				acc = &accumulator{}
				row[s.Channel] = acc
			}
			acc.sum += p.Value
			acc.count++
		}
	}

	out := models.MonthlyRollup{Channels: channels, Rows: make([]models.MonthlyRow, 0, len(buckets))}
	for _, month := range sortedMonths(buckets) {
		row := models.MonthlyRow{Month: month, Values: make(map[models.Channel]float64, len(buckets[month]))}
		for ch, acc := range buckets[month] {
			row.Values[ch] = acc.sum / float64(acc.count)
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// Bucket lists the timestamps of one series that fall in Month.
type Bucket struct {
	Month      time.Time
	Timestamps []time.Time
}

// Partition returns the month buckets Rollup uses for s, ordered by month.
func Partition(s models.ChannelSeries) []Bucket {
	byMonth := make(map[time.Time][]time.Time)
	for _, p := range s.Points {
		m := models.MonthOf(p.Timestamp)
		byMonth[m] = append(byMonth[m], p.Timestamp)
	}
	out := make([]Bucket, 0, len(byMonth))
	for _, m := range sortedMonths(byMonth) {
		out = append(out, Bucket{Month: m, Timestamps: byMonth[m]})
	}
	return out
}

func channelOrder(series []models.ChannelSeries) []models.Channel {
	seen := make(map[models.Channel]struct{}, len(series))
	out := make([]models.Channel, 0, len(series))
	for _, s := range series {
		if _, ok := seen[s.Channel]; ok {
			continue
		}
		seen[s.Channel] = struct{}{}
		out = append(out, s.Channel)
	}
	return out
}

func sortedMonths[V any](m map[time.Time]V) []time.Time {
	months := make([]time.Time, 0, len(m))
	for k := range m {
		months = append(months, k)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	return months
}
