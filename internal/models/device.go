// Package models contains domain types for the PDC fleet dashboard.
package models

// Device is a monitored heat pump. Name is its identity; every derived value
// is a function of Name (and, for telemetry, a TimeRange).
type Device struct {
	Name      string  `json:"name" yaml:"name" msgpack:"name"`
	Latitude  float64 `json:"latitude" yaml:"latitude" msgpack:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude" msgpack:"longitude"`
}
