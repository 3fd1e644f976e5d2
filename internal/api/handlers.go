// handlers.go - Request helpers shared by the device-scoped handlers
package api

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pdc-tracking/backend/internal/models"
	"github.com/pdc-tracking/backend/internal/roster"
)

// Clock returns the current time. Tests pin it to get a stable default range.
type Clock func() time.Time

// RangeLimits bounds the date windows accepted from clients.
type RangeLimits struct {
	MaxDays     int
	DefaultDays int
}

// DefaultRangeLimits matches the dashboard date picker: one week by default,
// at most one year.
var DefaultRangeLimits = RangeLimits{MaxDays: 366, DefaultDays: 7}

// deviceScope resolves the device and date window of a request.
type deviceScope struct {
	roster []models.Device
	limits RangeLimits
	now    Clock
}

func newDeviceScope(devices []models.Device, limits RangeLimits, now Clock) deviceScope {
	if now == nil {
		now = time.Now
	}
	if limits.DefaultDays <= 0 {
		limits.DefaultDays = DefaultRangeLimits.DefaultDays
	}
	return deviceScope{roster: devices, limits: limits, now: now}
}

// device returns the roster entry named by the :name path parameter.
func (s deviceScope) device(c echo.Context) (models.Device, error) {
	return s.lookup(c.Param("name"))
}

func (s deviceScope) lookup(name string) (models.Device, error) {
	d, ok := roster.Lookup(s.roster, name)
	if !ok {
		return models.Device{}, NewNotFoundError("device", name)
	}
	return d, nil
}

// timeRange reads the start/end query parameters.
func (s deviceScope) timeRange(c echo.Context) (models.TimeRange, error) {
	return s.resolveRange(c.QueryParam("start"), c.QueryParam("end"))
}

// resolveRange parses YYYY-MM-DD bounds. A missing bound falls back to the
// default window ending today. Reversed bounds are left for the generator to
// reject.
func (s deviceScope) resolveRange(start, end string) (models.TimeRange, error) {
	today := models.DayOf(s.now())
	r := models.TimeRange{
		Start: today.AddDate(0, 0, -s.limits.DefaultDays),
		End:   today,
	}

	if start != "" {
		t, err := time.Parse(time.DateOnly, start)
		if err != nil {
			return r, NewValidationError("start", err)
		}
		r.Start = t
	}
	if end != "" {
		t, err := time.Parse(time.DateOnly, end)
		if err != nil {
			return r, NewValidationError("end", err)
		}
		r.End = t
	}

	r = models.NewTimeRange(r.Start, r.End)
	if s.limits.MaxDays > 0 && r.Days() > s.limits.MaxDays {
		return r, NewInvalidRangeError(fmt.Errorf("range spans %d days, limit is %d", r.Days(), s.limits.MaxDays))
	}
	return r, nil
}

// apiError maps err to a structured response error, falling back to a 500
// carrying msg.
func apiError(msg string, err error) *APIError {
	if apiErr := FromError(err); apiErr != nil {
		return apiErr
	}
	return NewInternalError(msg, err)
}
