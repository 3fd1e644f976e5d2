// Package roster holds the static device roster.
package roster

import (
	"fmt"
	"io"
	"os"

	"github.com/pdc-tracking/backend/internal/models"
	"gopkg.in/yaml.v3"
)

var defaultRoster = []models.Device{
	{Name: "Rome", Latitude: 41.9028, Longitude: 12.4964},
	{Name: "Milan", Latitude: 45.4642, Longitude: 9.1900},
	{Name: "Naples", Latitude: 40.8518, Longitude: 14.2681},
	{Name: "Turin", Latitude: 45.0703, Longitude: 7.6869},
	{Name: "Palermo", Latitude: 38.1157, Longitude: 13.3615},
	{Name: "Bologna", Latitude: 44.4949, Longitude: 11.3426},
	{Name: "Florence", Latitude: 43.7696, Longitude: 11.2558},
	{Name: "Genoa", Latitude: 44.4056, Longitude: 8.9463},
	{Name: "Bari", Latitude: 41.1171, Longitude: 16.8719},
	{Name: "Catania", Latitude: 37.5079, Longitude: 15.0830},
	{Name: "Verona", Latitude: 45.4384, Longitude: 10.9916},
	{Name: "Trieste", Latitude: 45.6495, Longitude: 13.7768},
	{Name: "Messina", Latitude: 38.1938, Longitude: 15.5540},
}

// MapCenter is the initial center of the fleet map.
var MapCenter = [2]float64{41.87194, 17.89938}

// Default returns a copy of the built-in 13-city roster.
func Default() []models.Device {
	out := make([]models.Device, len(defaultRoster))
	copy(out, defaultRoster)
	return out
}

// Names returns the device names in roster order.
func Names(devices []models.Device) []string {
	names := make([]string, len(devices))
	for i, d := range devices {
		names[i] = d.Name
	}
	return names
}

// Lookup finds a device by exact name.
func Lookup(devices []models.Device, name string) (models.Device, bool) {
	for _, d := range devices {
		if d.Name == name {
			return d, true
		}
	}
	return models.Device{}, false
}

type rosterFile struct {
	Devices []models.Device `yaml:"devices"`
}

// LoadFile reads a roster from a YAML file. An empty path returns Default().
func LoadFile(path string) ([]models.Device, error) {
	if path == "" {
		return Default(), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening roster file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads a roster from YAML of the form `devices: [{name, latitude, longitude}]`.
// Names must be unique and non-empty.
func Parse(r io.Reader) ([]models.Device, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var rf rosterFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing roster: %w", err)
	}
	if len(rf.Devices) == 0 {
		return nil, fmt.Errorf("roster has no devices")
	}

	seen := make(map[string]struct{}, len(rf.Devices))
	for i, d := range rf.Devices {
		if d.Name == "" {
			return nil, fmt.Errorf("roster device %d has no name", i)
		}
		if _, dup := seen[d.Name]; dup {
			return nil, fmt.Errorf("duplicate roster device: %s", d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	return rf.Devices, nil
}
