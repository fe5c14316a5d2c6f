package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jordanlanch/leadboard/pkg/api/errors"
	"github.com/jordanlanch/leadboard/pkg/api/middleware"
	"github.com/jordanlanch/leadboard/pkg/domain"
	"github.com/jordanlanch/leadboard/pkg/export"
	"github.com/jordanlanch/leadboard/pkg/leads"
	"github.com/jordanlanch/leadboard/pkg/logger"
	"github.com/jordanlanch/leadboard/pkg/metrics"
	"github.com/labstack/echo/v4"
)

// ExportHandler streams filtered lead sets as file downloads
type ExportHandler struct {
	leads   *leads.Service
	writer  *export.Writer
	metrics *metrics.Metrics
	logger  logger.Logger
	timeout time.Duration
}

// NewExportHandler creates a new export handler; m may be nil
func NewExportHandler(leadService *leads.Service, writer *export.Writer, m *metrics.Metrics, log logger.Logger, timeout time.Duration) *ExportHandler {
	if log == nil {
		log = logger.Nop()
	}
	if writer == nil {
		writer = export.NewWriter(nil)
	}
	return &ExportHandler{
		leads:   leadService,
		writer:  writer,
		metrics: m,
		logger:  log.With("component", "export_handler"),
		timeout: timeout,
	}
}

// Download renders the caller's matching leads as csv or xlsx
func (h *ExportHandler) Download(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return errors.UnauthorizedError(c, nil)
	}

	format, err := export.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return errors.FromDomain(c, h.logger, domain.NewFieldValidationError("Invalid export format", map[string]string{"format": "must be one of: csv, xlsx"}))
	}

	spec, err := leads.ParseFilters(c.QueryParam("filters"))
	if err != nil {
		return errors.FromDomain(c, h.logger, err)
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	rows, err := h.leads.Export(ctx, id.UserID, spec)
	if err != nil {
		return errors.FromDomain(c, h.logger, err)
	}

	// render fully before writing headers so a failure can still return JSON
	var buf bytes.Buffer
	if err := h.writer.Write(&buf, format, rows); err != nil {
		return errors.InternalError(c, h.logger, err)
	}

	if h.metrics != nil {
		h.metrics.RecordExportCreated(format)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", export.Filename(format, time.Now())))
	c.Response().Header().Set("X-Total-Count", strconv.Itoa(len(rows)))
	return c.Blob(http.StatusOK, export.ContentType(format), buf.Bytes())
}
