// handlers_telemetry.go - Telemetry, KPI and rollup handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pdc-tracking/backend/internal/export"
	"github.com/pdc-tracking/backend/internal/kpi"
	"github.com/pdc-tracking/backend/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

// TelemetryHandlerImpl implements the TelemetryHandler interface
type TelemetryHandlerImpl struct {
	scope   deviceScope
	builder *export.Builder
}

// NewTelemetryHandler creates a new telemetry handler
func NewTelemetryHandler(devices []models.Device, builder *export.Builder, limits RangeLimits, now Clock) TelemetryHandler {
	if builder == nil {
		builder = &export.Builder{}
	}
	return &TelemetryHandlerImpl{
		scope:   newDeviceScope(devices, limits, now),
		builder: builder,
	}
}

type kpiResponse struct {
	models.KPISummary
	UsageDays float64 `json:"usageDays"`
}

func (h *TelemetryHandlerImpl) generate(c echo.Context) (*models.Telemetry, error) {
	d, err := h.scope.device(c)
	if err != nil {
		return nil, err
	}
	r, err := h.scope.timeRange(c)
	if err != nil {
		return nil, err
	}
	tel, err := h.builder.Telemetry(d.Name, r)
	if err != nil {
		return nil, apiError("failed to generate telemetry", err)
	}
	return tel, nil
}

// HandleTelemetry returns the hourly channels of a device as JSON
func (h *TelemetryHandlerImpl) HandleTelemetry(c echo.Context) error {
	tel, err := h.generate(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tel)
}

// HandleTelemetryMsgpack returns the same payload encoded as MessagePack
func (h *TelemetryHandlerImpl) HandleTelemetryMsgpack(c echo.Context) error {
	tel, err := h.generate(c)
	if err != nil {
		return err
	}

	data, err := msgpack.Marshal(tel)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleKPI returns the KPI summary of a device
func (h *TelemetryHandlerImpl) HandleKPI(c echo.Context) error {
	d, err := h.scope.device(c)
	if err != nil {
		return err
	}
	k := kpi.Summarize(d.Name)
	return c.JSON(http.StatusOK, kpiResponse{KPISummary: k, UsageDays: k.UsageDays()})
}

// HandleRollup returns the monthly means of a device's telemetry
func (h *TelemetryHandlerImpl) HandleRollup(c echo.Context) error {
	d, err := h.scope.device(c)
	if err != nil {
		return err
	}
	r, err := h.scope.timeRange(c)
	if err != nil {
		return err
	}

	table, err := h.builder.Rollup(c.Request().Context(), d.Name, r)
	if err != nil {
		return apiError("failed to compute rollup", err)
	}
	return c.JSON(http.StatusOK, rollupJSON(table))
}

type rollupRowJSON struct {
	Month  string              `json:"month"`
	Values map[string]*float64 `json:"values"`
}

type rollupResponse struct {
	Channels []models.Channel `json:"channels"`
	Rows     []rollupRowJSON  `json:"rows"`
}

// rollupJSON renders absent channel values as null.
func rollupJSON(t models.MonthlyRollup) rollupResponse {
	resp := rollupResponse{Channels: t.Channels, Rows: make([]rollupRowJSON, 0, len(t.Rows))}
	for _, row := range t.Rows {
		values := make(map[string]*float64, len(t.Channels))
		for _, ch := range t.Channels {
			if v, ok := row.Value(ch); ok {
				values[string(ch)] = &v
			} else {
				values[string(ch)] = nil
			}
		}
		resp.Rows = append(resp.Rows, rollupRowJSON{
			Month:  row.Month.Format(export.MonthLayout),
			Values: values,
		})
	}
	return resp
}
