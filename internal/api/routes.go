// routes.go - Route registration helpers
package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pdc-tracking/backend/internal/export"
	"github.com/pdc-tracking/backend/internal/fleet"
	"github.com/pdc-tracking/backend/internal/metrics"
	"github.com/pdc-tracking/backend/internal/models"
	"github.com/pdc-tracking/backend/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Roster        []models.Device
	Builder       *export.Builder
	Classifier    *fleet.Classifier
	Store         storage.Store
	Metrics       *metrics.Metrics
	Limits        RangeLimits
	Now           Clock
	AllowDeletion bool
	Version       string
}

// Handlers holds all handler instances
type Handlers struct {
	Health    HealthHandler
	Fleet     FleetHandler
	Telemetry TelemetryHandler
	Export    ExportHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	engine := "memory"
	if deps.Builder != nil && deps.Builder.Engine != nil {
		engine = deps.Builder.Engine.Name()
	}
	return &Handlers{
		Health:    NewHealthHandler(deps.Version, engine, len(deps.Roster)),
		Fleet:     NewFleetHandler(deps.Roster, deps.Classifier),
		Telemetry: NewTelemetryHandler(deps.Roster, deps.Builder, deps.Limits, deps.Now),
		Export: NewExportHandler(deps.Roster, deps.Builder, deps.Store, ExportOptions{
			Limits:        deps.Limits,
			Now:           deps.Now,
			AllowDeletion: deps.AllowDeletion,
		}),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// Roster and fleet map
	apiGroup.GET("/devices", handlers.Fleet.HandleListDevices)
	apiGroup.GET("/devices/:name", handlers.Fleet.HandleGetDevice)
	apiGroup.GET("/fleet", handlers.Fleet.HandleFleet)

	// Per-device data
	deviceGroup := apiGroup.Group("/devices/:name")
	deviceGroup.GET("/telemetry", handlers.Telemetry.HandleTelemetry)
	deviceGroup.GET("/telemetry/msgpack", handlers.Telemetry.HandleTelemetryMsgpack)
	deviceGroup.GET("/kpi", handlers.Telemetry.HandleKPI)
	deviceGroup.GET("/rollup", handlers.Telemetry.HandleRollup)
	deviceGroup.GET("/export/csv", handlers.Export.HandleExportCSV)
	deviceGroup.GET("/export/pdf", handlers.Export.HandleExportPDF)

	// Stored export artifacts
	exportGroup := apiGroup.Group("/exports")
	exportGroup.POST("", handlers.Export.HandleCreateExport)
	exportGroup.GET("", handlers.Export.HandleListExports)
	exportGroup.GET("/:id", handlers.Export.HandleGetExport)
	exportGroup.DELETE("/:id", handlers.Export.HandleDeleteExport)
}

// RegisterMetricsRoute exposes the Prometheus registry outside /api
func RegisterMetricsRoute(e *echo.Echo, m *metrics.Metrics) {
	if m == nil {
		return
	}
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
}

// MiddlewareOptions configures SetupMiddleware
type MiddlewareOptions struct {
	RequestLogging    bool
	Timeout           time.Duration
	EnableCompression bool
	CompressionLevel  int
	BodyLimit         string
	EnableCORS        bool
	AllowOrigins      []string
	Metrics           *metrics.Metrics
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, opts MiddlewareOptions) {
	e.HTTPErrorHandler = ErrorHandler

	if opts.RequestLogging {
		e.Use(RequestLogger())
	}

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	if opts.Metrics != nil {
		e.Use(opts.Metrics.Middleware())
	}

	if opts.Timeout > 0 {
		e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
			Timeout:      opts.Timeout,
			ErrorMessage: "Request timeout - export took too long",
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics"
			},
		}))
	}

	if opts.EnableCompression {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Level: opts.CompressionLevel,
			Skipper: func(c echo.Context) bool {
				// PDFs are already deflated
				return strings.HasSuffix(c.Request().URL.Path, "/export/pdf")
			},
		}))
	}

	if opts.BodyLimit != "" {
		e.Use(middleware.BodyLimit(opts.BodyLimit))
	}

	if opts.EnableCORS {
		origins := opts.AllowOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:  origins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
			ExposeHeaders: []string{echo.HeaderContentDisposition},
		}))
	}
}

// RequestLogger logs each request through slog, skipping health and metrics
// polling.
func RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/api/health" || path == "/metrics"
		},
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "err", v.Error)
				slog.Warn("request", attrs...)
				return nil
			}
			slog.Info("request", attrs...)
			return nil
		},
	})
}
