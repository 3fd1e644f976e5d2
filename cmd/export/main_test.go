package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdc-tracking/backend/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_WritesBothFiles(t *testing.T) {
	dir := t.TempDir()
	opts := options{
		device:  "Rome",
		start:   "2024-01-01",
		end:     "2024-03-31",
		csvPath: filepath.Join(dir, "rome.csv"),
		pdfPath: filepath.Join(dir, "rome.pdf"),
		engine:  "memory",
	}
	require.NoError(t, run(context.Background(), opts))

	csvData, err := os.ReadFile(opts.csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csvData)), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "Month,"))

	pdfData, err := os.ReadFile(opts.pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfData, []byte("%PDF")))
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		opts options
		want string
	}{
		{"no device", options{pdfPath: filepath.Join(dir, "a.pdf")}, "-device is required"},
		{"no output", options{device: "Rome"}, "no output specified"},
		{"unknown device", options{device: "Atlantis", pdfPath: filepath.Join(dir, "a.pdf")}, "unknown device"},
		{"missing dates", options{device: "Rome", csvPath: filepath.Join(dir, "a.csv")}, "-start and -end"},
		{"bad engine", options{device: "Rome", pdfPath: filepath.Join(dir, "a.pdf"), engine: "spark"}, "unknown rollup engine"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRun_ReversedRange(t *testing.T) {
	opts := options{
		device:  "Rome",
		start:   "2024-03-01",
		end:     "2024-01-01",
		csvPath: filepath.Join(t.TempDir(), "rome.csv"),
	}
	err := run(context.Background(), opts)
	assert.True(t, errors.Is(err, telemetry.ErrInvalidRange))
}

func TestRun_MaxDays(t *testing.T) {
	opts := options{
		device:  "Rome",
		start:   "1700-01-01",
		end:     "2100-01-01",
		csvPath: filepath.Join(t.TempDir(), "rome.csv"),
		maxDays: 3660,
	}
	err := run(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errRangeTooLong))
	assert.Contains(t, err.Error(), "146098 days")

	_, statErr := os.Stat(opts.csvPath)
	assert.True(t, os.IsNotExist(statErr))
}
