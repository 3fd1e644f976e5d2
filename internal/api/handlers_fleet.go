// handlers_fleet.go - Roster and fleet status handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pdc-tracking/backend/internal/fleet"
	"github.com/pdc-tracking/backend/internal/models"
	"github.com/pdc-tracking/backend/internal/roster"
)

// FleetHandlerImpl implements the FleetHandler interface
type FleetHandlerImpl struct {
	scope      deviceScope
	classifier *fleet.Classifier
}

// NewFleetHandler creates a new fleet handler. The classifier's table is used
// unless the request names another scheme.
func NewFleetHandler(devices []models.Device, classifier *fleet.Classifier) FleetHandler {
	if classifier == nil {
		classifier = fleet.NewClassifier(fleet.ThreeCategory)
	}
	return &FleetHandlerImpl{
		scope:      newDeviceScope(devices, DefaultRangeLimits, nil),
		classifier: classifier,
	}
}

type fleetResponse struct {
	Center   [2]float64           `json:"center"`
	Scheme   string               `json:"scheme"`
	Statuses []models.FleetStatus `json:"statuses"`
	Summary  models.FleetSummary  `json:"summary"`
}

// HandleListDevices returns the roster
func (h *FleetHandlerImpl) HandleListDevices(c echo.Context) error {
	return c.JSON(http.StatusOK, h.scope.roster)
}

// HandleGetDevice returns a single roster entry
func (h *FleetHandlerImpl) HandleGetDevice(c echo.Context) error {
	d, err := h.scope.device(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// HandleFleet classifies the roster for the fleet map
func (h *FleetHandlerImpl) HandleFleet(c echo.Context) error {
	classifier := h.classifier
	if scheme := c.QueryParam("scheme"); scheme != "" && scheme != classifier.Table.Name {
		table, err := fleet.TableByName(scheme)
		if err != nil {
			return NewValidationError("scheme", err)
		}
		classifier = &fleet.Classifier{
			Table:            table,
			MaintenanceSeed:  h.classifier.MaintenanceSeed,
			MaintenanceCount: h.classifier.MaintenanceCount,
		}
	}

	statuses := classifier.Classify(h.scope.roster)
	return c.JSON(http.StatusOK, fleetResponse{
		Center:   roster.MapCenter,
		Scheme:   classifier.Table.Name,
		Statuses: statuses,
		Summary:  fleet.Summarize(statuses),
	})
}
