package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pdc-tracking/backend/internal/kpi"
	"github.com/pdc-tracking/backend/internal/metrics"
	"github.com/pdc-tracking/backend/internal/models"
	"github.com/pdc-tracking/backend/internal/rollup"
	"github.com/pdc-tracking/backend/internal/telemetry"
)

// File is a rendered export ready to be served or stored.
type File struct {
	Name string
	Kind models.ArtifactKind
	Data []byte
}

// Builder runs generation, rollup and rendering for a single device. The zero
// value uses the in-memory rollup engine and records no metrics.
type Builder struct {
	Engine  rollup.Engine
	Metrics *metrics.Metrics
}

// NewBuilder returns a builder on engine.
func NewBuilder(engine rollup.Engine, m *metrics.Metrics) *Builder {
	return &Builder{Engine: engine, Metrics: m}
}

func (b *Builder) engine() rollup.Engine {
	if b.Engine == nil {
		return rollup.MemoryEngine{}
	}
	return b.Engine
}

// Telemetry generates the hourly channels of device over r.
func (b *Builder) Telemetry(device string, r models.TimeRange) (*models.Telemetry, error) {
	tel, err := telemetry.Generate(device, r)
	if err != nil {
		return nil, err
	}
	b.Metrics.TelemetryGenerated(device, tel.Power.Len())
	return tel, nil
}

// Rollup generates telemetry for device over r and aggregates it by month.
func (b *Builder) Rollup(ctx context.Context, device string, r models.TimeRange) (models.MonthlyRollup, error) {
	tel, err := b.Telemetry(device, r)
	if err != nil {
		return models.MonthlyRollup{}, err
	}

	engine := b.engine()
	start := time.Now()
	out, err := engine.Rollup(ctx, tel.Series()...)
	if err != nil {
		return models.MonthlyRollup{}, fmt.Errorf("rollup %s: %w", device, err)
	}
	b.Metrics.RollupDone(engine.Name(), time.Since(start))

	slog.Debug("rollup complete", "device", device, "engine", engine.Name(), "months", len(out.Rows))
	return out, nil
}

// CSV renders the monthly rollup of device over r.
func (b *Builder) CSV(ctx context.Context, device string, r models.TimeRange) (*File, error) {
	table, err := b.Rollup(ctx, device, r)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := WriteRollupCSV(&buf, table); err != nil {
		return nil, fmt.Errorf("csv %s: %w", device, err)
	}
	b.Metrics.ExportRendered(string(models.ArtifactCSV))

	return &File{
		Name: CSVFilename(device, models.NewTimeRange(r.Start, r.End)),
		Kind: models.ArtifactCSV,
		Data: buf.Bytes(),
	}, nil
}

// PDF renders the KPI report of device.
func (b *Builder) PDF(device string) (*File, error) {
	var buf bytes.Buffer
	if err := WriteKPIReport(&buf, device, kpi.Summarize(device)); err != nil {
		return nil, fmt.Errorf("pdf %s: %w", device, err)
	}
	b.Metrics.ExportRendered(string(models.ArtifactPDF))

	return &File{
		Name: PDFFilename(device),
		Kind: models.ArtifactPDF,
		Data: buf.Bytes(),
	}, nil
}
