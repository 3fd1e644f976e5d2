// handlers_test.go - Tests for shared request helpers and error mapping
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pdc-tracking/backend/internal/roster"
	"github.com/pdc-tracking/backend/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, 6, 15, 13, 45, 0, 0, time.UTC)
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestResolveRange(t *testing.T) {
	scope := newDeviceScope(roster.Default(), DefaultRangeLimits, fixedClock)

	tests := []struct {
		name      string
		start     string
		end       string
		wantStart string
		wantEnd   string
		errCode   string
	}{
		{name: "default window", wantStart: "2024-06-08", wantEnd: "2024-06-15"},
		{name: "explicit", start: "2024-01-01", end: "2024-01-02", wantStart: "2024-01-01", wantEnd: "2024-01-02"},
		{name: "start only", start: "2024-06-01", wantStart: "2024-06-01", wantEnd: "2024-06-15"},
		{name: "reversed is left to the generator", start: "2024-02-01", end: "2024-01-01", wantStart: "2024-02-01", wantEnd: "2024-01-01"},
		{name: "bad start", start: "01/02/2024", errCode: "VALIDATION_ERROR"},
		{name: "bad end", start: "2024-01-01", end: "tomorrow", errCode: "VALIDATION_ERROR"},
		{name: "too long", start: "2023-01-01", end: "2024-06-01", errCode: "INVALID_RANGE"},
		{name: "exactly max days", start: "2024-01-01", end: "2024-12-31", wantStart: "2024-01-01", wantEnd: "2024-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := scope.resolveRange(tt.start, tt.end)
			if tt.errCode != "" {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.errCode, apiErr.Code)
				assert.Equal(t, http.StatusBadRequest, apiErr.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, day(tt.wantStart), r.Start)
			assert.Equal(t, day(tt.wantEnd), r.End)
		})
	}
}

func TestResolveRange_ConfiguredDefault(t *testing.T) {
	scope := newDeviceScope(nil, RangeLimits{DefaultDays: 30}, fixedClock)
	r, err := scope.resolveRange("", "")
	require.NoError(t, err)
	assert.Equal(t, day("2024-05-16"), r.Start)
	assert.Equal(t, 31, r.Days())
}

func TestFromError(t *testing.T) {
	wrapped := fmt.Errorf("rollup Rome: %w", fmt.Errorf("%w: 2024-02-01 > 2024-01-01", telemetry.ErrInvalidRange))

	apiErr := FromError(wrapped)
	require.NotNil(t, apiErr)
	assert.Equal(t, "INVALID_RANGE", apiErr.Code)
	assert.Contains(t, apiErr.Details, "2024-02-01 > 2024-01-01")

	notFound := NewNotFoundError("device", "Atlantis")
	assert.Same(t, notFound, FromError(fmt.Errorf("lookup: %w", notFound)))

	assert.Nil(t, FromError(errors.New("disk full")))
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"api error", NewNotFoundError("device", "x"), http.StatusNotFound, "NOT_FOUND"},
		{"invalid range sentinel", telemetry.ErrInvalidRange, http.StatusBadRequest, "INVALID_RANGE"},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"), http.StatusMethodNotAllowed, "HTTP_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "UNKNOWN_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			ErrorHandler(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body APIError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}
