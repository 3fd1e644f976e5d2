package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pdc-tracking/backend/internal/api"
	"github.com/pdc-tracking/backend/internal/config"
	"github.com/pdc-tracking/backend/internal/export"
	"github.com/pdc-tracking/backend/internal/fleet"
	"github.com/pdc-tracking/backend/internal/logging"
	"github.com/pdc-tracking/backend/internal/metrics"
	"github.com/pdc-tracking/backend/internal/rollup"
	"github.com/pdc-tracking/backend/internal/roster"
	"github.com/pdc-tracking/backend/internal/storage"
	"github.com/pdc-tracking/backend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to PDCTracking.config (default: next to the executable)")
	flag.Parse()

	if *configPath == "" {
		exePath, err := os.Executable()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to get executable path: %v\n", err)
			os.Exit(1)
		}
		*configPath = filepath.Join(filepath.Dir(exePath), "PDCTracking.config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, *configPath)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

// run serves until ctx is cancelled or the listener fails.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	_, logCloser, err := logging.Open(cfg.Advanced.LogLevel, cfg.Advanced.LogFile)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	devices, err := roster.LoadFile(cfg.Storage.RosterFile)
	if err != nil {
		return fmt.Errorf("load roster %s: %w", cfg.Storage.RosterFile, err)
	}

	table, err := loadStatusTable(cfg)
	if err != nil {
		return fmt.Errorf("load status table: %w", err)
	}
	classifier := &fleet.Classifier{
		Table:            table,
		MaintenanceSeed:  cfg.Fleet.MaintenanceSeed,
		MaintenanceCount: cfg.Fleet.MaintenanceCount,
	}

	engine, err := rollup.NewEngine(cfg.Processing.RollupEngine, rollup.DuckOptions{
		Threads:     cfg.Advanced.DuckDBThreads,
		MemoryLimit: cfg.Advanced.DuckDBMemoryLimit,
	})
	if err != nil {
		return err
	}

	exportStore, err := storage.NewLocalStore(cfg.GetExportDir())
	if err != nil {
		return fmt.Errorf("initialize export store: %w", err)
	}

	var m *metrics.Metrics
	if cfg.Advanced.EnableMetrics {
		m = metrics.New()
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	// Exports only live for the session
	go storage.RunSweeper(ctx, exportStore,
		time.Duration(cfg.Processing.CleanupIntervalMinutes)*time.Minute,
		time.Duration(cfg.Processing.ArtifactTTLMinutes)*time.Minute,
		m.ArtifactsSwept)

	embeddedMode := web.HasEmbeddedFiles()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	api.SetupMiddleware(e, api.MiddlewareOptions{
		RequestLogging:    cfg.Advanced.EnableRequestLogging,
		Timeout:           time.Duration(cfg.Server.WriteTimeout) * time.Second,
		EnableCompression: cfg.Processing.EnableCompression,
		CompressionLevel:  cfg.Processing.CompressionLevel,
		BodyLimit:         cfg.Server.BodyLimit,
		EnableCORS:        cfg.Server.EnableCORS,
		AllowOrigins:      splitOrigins(cfg.Server.AllowOrigins),
		Metrics:           m,
	})

	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Roster:     devices,
		Builder:    export.NewBuilder(engine, m),
		Classifier: classifier,
		Store:      exportStore,
		Metrics:    m,
		Limits: api.RangeLimits{
			MaxDays:     cfg.Processing.MaxRangeDays,
			DefaultDays: cfg.Processing.DefaultRangeDays,
		},
		AllowDeletion: cfg.Security.AllowExportDeletion,
		Version:       Version,
	}))
	api.RegisterMetricsRoute(e, m)

	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			slog.Warn("failed to register static routes", "err", err)
		}
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	mode := "API only"
	if embeddedMode {
		mode = "Embedded frontend"
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           PDC Tracking Server                             ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Mode:       %-45s║\n", mode)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Devices:   %-46d║\n", len(devices))
	fmt.Printf("║  Rollup:    %-46s║\n", engine.Name())
	fmt.Printf("║  Exports:   %-46s║\n", cfg.GetExportDir())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	serveErr := make(chan error, 1)
	go func() {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// loadStatusTable prefers the configured YAML table over the named scheme.
func loadStatusTable(cfg *config.AppConfig) (fleet.StatusTable, error) {
	if cfg.Storage.StatusTableFile != "" {
		return fleet.LoadTable(cfg.Storage.StatusTableFile)
	}
	return fleet.TableByName(cfg.Fleet.StatusScheme)
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
