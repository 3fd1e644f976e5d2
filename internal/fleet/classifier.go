// Package fleet classifies roster devices into map statuses.
package fleet

import (
	"math/rand/v2"

	"github.com/pdc-tracking/backend/internal/models"
)

// Defaults of the fleet-wide maintenance draw. The seed is a constant, not a
// per-device seed, so the flagged subset only changes with the roster.
const (
	MaintenanceSeed  uint64 = 42
	MaintenanceCount        = 3
)

// Classifier assigns statuses and maintenance flags.
type Classifier struct {
	Table            StatusTable
	MaintenanceSeed  uint64
	MaintenanceCount int
}

// NewClassifier returns a classifier with the default maintenance draw.
func NewClassifier(table StatusTable) *Classifier {
	return &Classifier{
		Table:            table,
		MaintenanceSeed:  MaintenanceSeed,
		MaintenanceCount: MaintenanceCount,
	}
}

// Classify uses the default maintenance draw.
func Classify(roster []models.Device, table StatusTable) []models.FleetStatus {
	return NewClassifier(table).Classify(roster)
}

// Classify returns one FleetStatus per device, in roster order. The status of
// the device at index i is Table.Statuses[i mod len(Statuses)].
func (c *Classifier) Classify(roster []models.Device) []models.FleetStatus {
	table := c.Table
	if len(table.Statuses) == 0 {
		table = ThreeCategory
	}
	flagged := MaintenanceSet(len(roster), c.MaintenanceSeed, c.MaintenanceCount)

	out := make([]models.FleetStatus, len(roster))
	for i, d := range roster {
		entry := table.Statuses[i%len(table.Statuses)]
		fs := models.FleetStatus{
			Device: d,
			Status: entry.Status,
			Label:  entry.Label,
			Color:  entry.Color,
			Icon:   table.Icon,
		}
		if flagged[i] {
			fs.Maintenance = true
			fs.Icon = table.MaintenanceIcon
		}
		out[i] = fs
	}
	return out
}

// MaintenanceSet picks min(count, n) distinct roster indices from a generator
// seeded with seed.
func MaintenanceSet(n int, seed uint64, count int) map[int]bool {
	if count > n {
		count = n
	}
	if count <= 0 {
		return map[int]bool{}
	}
	rng := rand.New(rand.NewPCG(seed, seed))
	perm := rng.Perm(n)

	out := make(map[int]bool, count)
	for _, idx := range perm[:count] {
		out[idx] = true
	}
	return out
}

// Summarize counts devices per status and in maintenance.
func Summarize(statuses []models.FleetStatus) models.FleetSummary {
	s := models.FleetSummary{
		Total:    len(statuses),
		ByStatus: make(map[models.StatusCategory]int),
	}
	for _, fs := range statuses {
		s.ByStatus[fs.Status]++
		if fs.Maintenance {
			s.Maintenance++
		}
	}
	return s
}
