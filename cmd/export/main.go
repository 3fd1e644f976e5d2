// Command export renders device exports without running the server.
//
//	export -device Rome -start 2024-01-01 -end 2024-03-31 -csv rome.csv -pdf rome.pdf
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pdc-tracking/backend/internal/export"
	"github.com/pdc-tracking/backend/internal/logging"
	"github.com/pdc-tracking/backend/internal/models"
	"github.com/pdc-tracking/backend/internal/rollup"
	"github.com/pdc-tracking/backend/internal/roster"
)

var errRangeTooLong = errors.New("range too long")

type options struct {
	device     string
	start      string
	end        string
	csvPath    string
	pdfPath    string
	engine     string
	rosterPath string
	logLevel   string
	maxDays    int
}

func main() {
	var opts options
	flag.StringVar(&opts.device, "device", "", "roster device name (required)")
	flag.StringVar(&opts.start, "start", "", "first day, YYYY-MM-DD (required for -csv)")
	flag.StringVar(&opts.end, "end", "", "last day, YYYY-MM-DD (required for -csv)")
	flag.StringVar(&opts.csvPath, "csv", "", "path to write the monthly rollup CSV (optional)")
	flag.StringVar(&opts.pdfPath, "pdf", "", "path to write the KPI report PDF (optional)")
	flag.StringVar(&opts.engine, "engine", rollup.EngineMemory, "rollup engine: memory or duckdb")
	flag.StringVar(&opts.rosterPath, "roster", "", "YAML roster file (default: built-in roster)")
	flag.StringVar(&opts.logLevel, "log-level", "info", "log level")
	flag.IntVar(&opts.maxDays, "max-days", 3660, "longest -start/-end span accepted, in days (0 = no limit)")
	flag.Parse()

	logging.New(os.Stderr, opts.logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	if opts.device == "" {
		return errors.New("-device is required")
	}
	if opts.csvPath == "" && opts.pdfPath == "" {
		return errors.New("no output specified: set -csv and/or -pdf")
	}

	devices, err := roster.LoadFile(opts.rosterPath)
	if err != nil {
		return err
	}
	if _, ok := roster.Lookup(devices, opts.device); !ok {
		return fmt.Errorf("unknown device %q", opts.device)
	}

	engine, err := rollup.NewEngine(opts.engine, rollup.DuckOptions{})
	if err != nil {
		return err
	}
	b := export.NewBuilder(engine, nil)

	if opts.csvPath != "" {
		r, err := parseRange(opts.start, opts.end)
		if err != nil {
			return err
		}
		if opts.maxDays > 0 && r.Days() > opts.maxDays {
			return fmt.Errorf("%w: %d days exceeds -max-days %d", errRangeTooLong, r.Days(), opts.maxDays)
		}
		f, err := b.CSV(ctx, opts.device, r)
		if err != nil {
			return err
		}
		if err := writeFile(opts.csvPath, f); err != nil {
			return err
		}
	}

	if opts.pdfPath != "" {
		f, err := b.PDF(opts.device)
		if err != nil {
			return err
		}
		if err := writeFile(opts.pdfPath, f); err != nil {
			return err
		}
	}
	return nil
}

func parseRange(start, end string) (models.TimeRange, error) {
	if start == "" || end == "" {
		return models.TimeRange{}, errors.New("-start and -end are required for -csv")
	}
	s, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return models.TimeRange{}, fmt.Errorf("parse -start: %w", err)
	}
	e, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return models.TimeRange{}, fmt.Errorf("parse -end: %w", err)
	}
	return models.NewTimeRange(s, e), nil
}

func writeFile(path string, f *export.File) error {
	if err := os.WriteFile(path, f.Data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	slog.Info("export written", "kind", f.Kind, "path", path, "bytes", len(f.Data))
	return nil
}
