// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
)

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// FleetHandler serves the roster and the fleet map statuses
type FleetHandler interface {
	HandleListDevices(c echo.Context) error
	HandleGetDevice(c echo.Context) error
	HandleFleet(c echo.Context) error
}

// TelemetryHandler serves generated telemetry and its aggregates
type TelemetryHandler interface {
	HandleTelemetry(c echo.Context) error
	HandleTelemetryMsgpack(c echo.Context) error
	HandleKPI(c echo.Context) error
	HandleRollup(c echo.Context) error
}

// ExportHandler renders downloads and manages stored export artifacts
type ExportHandler interface {
	HandleExportCSV(c echo.Context) error
	HandleExportPDF(c echo.Context) error
	HandleCreateExport(c echo.Context) error
	HandleListExports(c echo.Context) error
	HandleGetExport(c echo.Context) error
	HandleDeleteExport(c echo.Context) error
}
