package fleet

import (
	"fmt"
	"io"
	"os"

	"github.com/pdc-tracking/backend/internal/models"
	"gopkg.in/yaml.v3"
)

// StatusEntry is one row of a status table.
type StatusEntry struct {
	Status models.StatusCategory `json:"status" yaml:"status"`
	Label  string                `json:"label" yaml:"label"`
	Color  string                `json:"color" yaml:"color"`
}

// StatusTable is a labeling scheme: statuses are assigned round-robin in
// Statuses order, colors and labels come from the matching entry.
type StatusTable struct {
	Name            string        `json:"name" yaml:"name"`
	Statuses        []StatusEntry `json:"statuses" yaml:"statuses"`
	Icon            string        `json:"icon" yaml:"icon"`
	MaintenanceIcon string        `json:"maintenanceIcon" yaml:"maintenance_icon"`
}

// Built-in schemes.
var (
	ThreeCategory = StatusTable{
		Name: "three",
		Statuses: []StatusEntry{
			{Status: models.StatusAvailable, Label: "Disponibile", Color: "green"},
			{Status: models.StatusOccupied, Label: "Noleggiata", Color: "blue"},
			{Status: models.StatusReturnPending, Label: "In attesa di rientro", Color: "orange"},
		},
		Icon:            "info-sign",
		MaintenanceIcon: "wrench",
	}

	TwoCategory = StatusTable{
		Name: "two",
		Statuses: []StatusEntry{
			{Status: models.StatusAvailable, Label: "Disponibile", Color: "green"},
			{Status: models.StatusOccupied, Label: "Noleggiata", Color: "red"},
		},
		Icon:            "info-sign",
		MaintenanceIcon: "wrench",
	}
)

// TableByName returns a built-in table.
func TableByName(name string) (StatusTable, error) {
	switch name {
	case "", ThreeCategory.Name:
		return ThreeCategory, nil
	case TwoCategory.Name:
		return TwoCategory, nil
	}
	return StatusTable{}, fmt.Errorf("unknown status scheme: %s", name)
}

// Entry returns the table entry for status.
func (t StatusTable) Entry(status models.StatusCategory) (StatusEntry, bool) {
	for _, e := range t.Statuses {
		if e.Status == status {
			return e, true
		}
	}
	return StatusEntry{}, false
}

// Validate checks that the table can classify a roster.
func (t StatusTable) Validate() error {
	if len(t.Statuses) == 0 {
		return fmt.Errorf("status table %q has no statuses", t.Name)
	}
	seen := make(map[models.StatusCategory]struct{}, len(t.Statuses))
	for i, e := range t.Statuses {
		if e.Status == "" {
			return fmt.Errorf("status table %q entry %d has no status", t.Name, i)
		}
		if e.Color == "" {
			return fmt.Errorf("status table %q entry %s has no color", t.Name, e.Status)
		}
		if _, dup := seen[e.Status]; dup {
			return fmt.Errorf("status table %q repeats status %s", t.Name, e.Status)
		}
		seen[e.Status] = struct{}{}
	}
	return nil
}

// LoadTable reads a custom status table from a YAML file.
func LoadTable(path string) (StatusTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return StatusTable{}, fmt.Errorf("opening status table: %w", err)
	}
	defer file.Close()

	return ParseTable(file)
}

// ParseTable reads a status table from YAML. Missing icons default to the
// built-in ones.
func ParseTable(r io.Reader) (StatusTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return StatusTable{}, err
	}

	var t StatusTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return StatusTable{}, fmt.Errorf("parsing status table: %w", err)
	}
	if t.Icon == "" {
		t.Icon = ThreeCategory.Icon
	}
	if t.MaintenanceIcon == "" {
		t.MaintenanceIcon = ThreeCategory.MaintenanceIcon
	}
	if err := t.Validate(); err != nil {
		return StatusTable{}, err
	}
	return t, nil
}
