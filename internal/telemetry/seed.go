// Package telemetry synthesizes reproducible hourly telemetry for a device.
//
// Every value is a pure function of the device name and the requested date
// range: each call derives a seed from the name and builds its own generators,
// so concurrent or reordered calls never influence each other.
package telemetry

import (
	"hash/fnv"
	"math/rand/v2"
)

// Seed stream offsets. Supply and return temperature share one stream.
const (
	powerStream       uint64 = 0
	temperatureStream uint64 = 1
	anomalyStream     uint64 = 2
)

// SeedFor derives the generation seed of a device from the FNV-1a 32-bit
// checksum of its name. The result is stable across processes and platforms
// and is defined for any string.
func SeedFor(device string) uint64 {
	h := fnv.New32a()
	h.Write([]byte(device))
	return uint64(h.Sum32())
}

// NewStream returns a fresh generator for seed+offset.
func NewStream(seed, offset uint64) *rand.Rand {
	s := seed + offset
	return rand.New(rand.NewPCG(s, s))
}
