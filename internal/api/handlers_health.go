// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version      string
	rollupEngine string
	devices      int
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version, rollupEngine string, devices int) HealthHandler {
	return &HealthHandlerImpl{
		version:      version,
		rollupEngine: rollupEngine,
		devices:      devices,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"version":      h.version,
		"rollupEngine": h.rollupEngine,
		"devices":      h.devices,
	})
}
