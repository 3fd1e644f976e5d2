// handlers_export.go - Export download and artifact handlers
package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pdc-tracking/backend/internal/export"
	"github.com/pdc-tracking/backend/internal/models"
	"github.com/pdc-tracking/backend/internal/storage"
)

// ExportHandlerImpl implements the ExportHandler interface
type ExportHandlerImpl struct {
	scope         deviceScope
	builder       *export.Builder
	store         storage.Store
	allowDeletion bool
}

// ExportOptions configures an ExportHandler.
type ExportOptions struct {
	Limits        RangeLimits
	Now           Clock
	AllowDeletion bool
}

// NewExportHandler creates a new export handler
func NewExportHandler(devices []models.Device, builder *export.Builder, store storage.Store, opts ExportOptions) ExportHandler {
	if builder == nil {
		builder = &export.Builder{}
	}
	return &ExportHandlerImpl{
		scope:         newDeviceScope(devices, opts.Limits, opts.Now),
		builder:       builder,
		store:         store,
		allowDeletion: opts.AllowDeletion,
	}
}

func attachment(c echo.Context, f *export.File) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", f.Name))
	return c.Blob(http.StatusOK, f.Kind.ContentType(), f.Data)
}

// HandleExportCSV downloads the monthly rollup of a device as CSV
func (h *ExportHandlerImpl) HandleExportCSV(c echo.Context) error {
	d, err := h.scope.device(c)
	if err != nil {
		return err
	}
	r, err := h.scope.timeRange(c)
	if err != nil {
		return err
	}

	f, err := h.builder.CSV(c.Request().Context(), d.Name, r)
	if err != nil {
		return apiError("failed to render csv", err)
	}
	return attachment(c, f)
}

// HandleExportPDF downloads the KPI report of a device
func (h *ExportHandlerImpl) HandleExportPDF(c echo.Context) error {
	d, err := h.scope.device(c)
	if err != nil {
		return err
	}

	f, err := h.builder.PDF(d.Name)
	if err != nil {
		return apiError("failed to render pdf", err)
	}
	return attachment(c, f)
}

type createExportRequest struct {
	Device string `json:"device"`
	Kind   string `json:"kind"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

func (r *createExportRequest) validate() error {
	if strings.TrimSpace(r.Device) == "" {
		return NewValidationError("device", nil)
	}
	switch models.ArtifactKind(r.Kind) {
	case models.ArtifactCSV, models.ArtifactPDF:
	default:
		return NewValidationError("kind", fmt.Errorf("unsupported kind %q", r.Kind))
	}
	return nil
}

// HandleCreateExport renders an export and keeps it in the artifact store
func (h *ExportHandlerImpl) HandleCreateExport(c echo.Context) error {
	var req createExportRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	d, err := h.scope.lookup(req.Device)
	if err != nil {
		return err
	}

	var f *export.File
	switch models.ArtifactKind(req.Kind) {
	case models.ArtifactCSV:
		r, rerr := h.scope.resolveRange(req.Start, req.End)
		if rerr != nil {
			return rerr
		}
		f, err = h.builder.CSV(c.Request().Context(), d.Name, r)
	case models.ArtifactPDF:
		f, err = h.builder.PDF(d.Name)
	}
	if err != nil {
		return apiError("failed to render export", err)
	}

	info, err := h.store.SaveBytes(f.Name, f.Kind, d.Name, f.Data)
	if err != nil {
		return NewInternalError("failed to store export", err)
	}
	return c.JSON(http.StatusCreated, info)
}

// HandleListExports returns the stored artifacts, newest first
func (h *ExportHandlerImpl) HandleListExports(c echo.Context) error {
	list, err := h.store.List(50)
	if err != nil {
		return NewInternalError("failed to list exports", err)
	}
	if list == nil {
		list = []*models.ArtifactInfo{}
	}
	return c.JSON(http.StatusOK, list)
}

// HandleGetExport downloads a stored artifact
func (h *ExportHandlerImpl) HandleGetExport(c echo.Context) error {
	id := c.Param("id")
	info, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("export", id)
	}

	rc, err := h.store.Open(id)
	if err != nil {
		return NewNotFoundError("export", id)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return NewInternalError("failed to read export", err)
	}
	return attachment(c, &export.File{Name: info.Name, Kind: info.Kind, Data: data})
}

// HandleDeleteExport removes a stored artifact
func (h *ExportHandlerImpl) HandleDeleteExport(c echo.Context) error {
	if !h.allowDeletion {
		return NewForbiddenError("export deletion is disabled")
	}
	id := c.Param("id")
	if err := h.store.Delete(id); err != nil {
		return NewNotFoundError("export", id)
	}
	return c.NoContent(http.StatusNoContent)
}
