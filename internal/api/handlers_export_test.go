// handlers_export_test.go - Tests for export handlers
package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pdc-tracking/backend/internal/export"
	"github.com/pdc-tracking/backend/internal/models"
	"github.com/pdc-tracking/backend/internal/roster"
	"github.com/pdc-tracking/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExportHandler(store *testutil.MockStorage, allowDeletion bool) ExportHandler {
	return NewExportHandler(roster.Default(), &export.Builder{}, store, ExportOptions{
		Limits:        DefaultRangeLimits,
		Now:           fixedClock,
		AllowDeletion: allowDeletion,
	})
}

func TestExportHandler_HandleExportCSV(t *testing.T) {
	h := newTestExportHandler(testutil.NewMockStorage(), true)
	c, rec := deviceContext(http.MethodGet, "/api/devices/Genoa/export/csv?start=2024-01-15&end=2024-03-10", "Genoa")

	require.NoError(t, h.HandleExportCSV(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="Genoa_20240115_20240310_monthly.csv"`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "text/csv"))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, export.CSVHeader(models.ExportChannels), records[0])
}

func TestExportHandler_HandleExportCSVInvalidRange(t *testing.T) {
	h := newTestExportHandler(testutil.NewMockStorage(), true)
	c, _ := deviceContext(http.MethodGet, "/api/devices/Genoa/export/csv?start=2024-03-10&end=2024-01-15", "Genoa")

	err := h.HandleExportCSV(c)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "INVALID_RANGE", apiErr.Code)
}

func TestExportHandler_HandleExportPDF(t *testing.T) {
	h := newTestExportHandler(testutil.NewMockStorage(), true)
	c, rec := deviceContext(http.MethodGet, "/api/devices/Verona/export/pdf", "Verona")

	require.NoError(t, h.HandleExportPDF(c))
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestExportHandler_HandleCreateExport(t *testing.T) {
	tests := []struct {
		name       string
		request    createExportRequest
		wantStatus int
		wantErr    bool
		errCode    string
		wantName   string
	}{
		{
			name:       "csv artifact",
			request:    createExportRequest{Device: "Rome", Kind: "csv", Start: "2024-01-01", End: "2024-01-31"},
			wantStatus: http.StatusCreated,
			wantName:   "Rome_20240101_20240131_monthly.csv",
		},
		{
			name:       "pdf artifact ignores range",
			request:    createExportRequest{Device: "Rome", Kind: "pdf"},
			wantStatus: http.StatusCreated,
			wantName:   "Rome_kpi_report.pdf",
		},
		{
			name:       "missing device",
			request:    createExportRequest{Kind: "csv"},
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errCode:    "VALIDATION_ERROR",
		},
		{
			name:       "unsupported kind",
			request:    createExportRequest{Device: "Rome", Kind: "xlsx"},
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errCode:    "VALIDATION_ERROR",
		},
		{
			name:       "unknown device",
			request:    createExportRequest{Device: "Atlantis", Kind: "pdf"},
			wantStatus: http.StatusNotFound,
			wantErr:    true,
			errCode:    "NOT_FOUND",
		},
		{
			name:       "reversed range",
			request:    createExportRequest{Device: "Rome", Kind: "csv", Start: "2024-02-01", End: "2024-01-01"},
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errCode:    "INVALID_RANGE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewMockStorage()
			h := newTestExportHandler(store, true)

			e := echo.New()
			body, _ := json.Marshal(tt.request)
			req := httptest.NewRequest(http.MethodPost, "/api/exports", bytes.NewReader(body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := h.HandleCreateExport(c)

			if tt.wantErr {
				apiErr, ok := err.(*APIError)
				if !ok {
					t.Fatalf("expected APIError, got %T", err)
				}
				if apiErr.Status != tt.wantStatus {
					t.Errorf("expected status %d, got %d", tt.wantStatus, apiErr.Status)
				}
				if apiErr.Code != tt.errCode {
					t.Errorf("expected error code %s, got %s", tt.errCode, apiErr.Code)
				}
				if store.Count() != 0 {
					t.Errorf("expected empty store, got %d artifacts", store.Count())
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var info models.ArtifactInfo
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
			assert.NotEmpty(t, info.ID)
			assert.Equal(t, tt.wantName, info.Name)
			assert.Equal(t, "Rome", info.Device)
			assert.Positive(t, info.Size)
			assert.Equal(t, 1, store.Count())
		})
	}
}

func TestExportHandler_StoreFailure(t *testing.T) {
	store := testutil.NewMockStorage()
	store.SaveErr = errors.New("disk full")
	h := newTestExportHandler(store, true)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/exports", strings.NewReader(`{"device":"Rome","kind":"pdf"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.HandleCreateExport(c)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "disk full", apiErr.Details)
}

func TestExportHandler_GetAndDelete(t *testing.T) {
	store := testutil.NewMockStorage()
	store.AddArtifact("a1", "Rome_kpi_report.pdf", models.ArtifactPDF, []byte("%PDF-1.3 fake"))
	h := newTestExportHandler(store, true)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/exports/a1", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("a1")
	require.NoError(t, h.HandleGetExport(c))
	assert.Equal(t, "%PDF-1.3 fake", rec.Body.String())
	assert.Equal(t, `attachment; filename="Rome_kpi_report.pdf"`, rec.Header().Get(echo.HeaderContentDisposition))

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/api/exports/a1", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("a1")
	require.NoError(t, h.HandleDeleteExport(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, store.Count())

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/exports/a1", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("a1")
	var apiErr *APIError
	require.ErrorAs(t, h.HandleGetExport(c), &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestExportHandler_DeletionDisabled(t *testing.T) {
	store := testutil.NewMockStorage()
	store.AddArtifact("a1", "x.csv", models.ArtifactCSV, []byte("Month\n"))
	h := newTestExportHandler(store, false)

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/api/exports/a1", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("a1")

	var apiErr *APIError
	require.ErrorAs(t, h.HandleDeleteExport(c), &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, 1, store.Count())
}

func TestExportHandler_HandleListExports(t *testing.T) {
	store := testutil.NewMockStorage()
	h := newTestExportHandler(store, true)
	e := echo.New()

	rec := httptest.NewRecorder()
	require.NoError(t, h.HandleListExports(e.NewContext(httptest.NewRequest(http.MethodGet, "/api/exports", nil), rec)))
	assert.JSONEq(t, `[]`, rec.Body.String())

	store.AddArtifact("a1", "x.csv", models.ArtifactCSV, []byte("Month\n"))
	rec = httptest.NewRecorder()
	require.NoError(t, h.HandleListExports(e.NewContext(httptest.NewRequest(http.MethodGet, "/api/exports", nil), rec)))

	var list []models.ArtifactInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "a1", list[0].ID)
}
