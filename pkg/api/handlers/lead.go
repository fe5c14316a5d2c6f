package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jordanlanch/leadboard/pkg/api/errors"
	"github.com/jordanlanch/leadboard/pkg/api/middleware"
	"github.com/jordanlanch/leadboard/pkg/leads"
	"github.com/jordanlanch/leadboard/pkg/logger"
	"github.com/jordanlanch/leadboard/pkg/models"
	"github.com/labstack/echo/v4"
)

// LeadHandler handles lead endpoints. Every route runs behind SessionGate and
// passes the caller's user id to the service as the owner.
type LeadHandler struct {
	leads   *leads.Service
	logger  logger.Logger
	timeout time.Duration
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leadService *leads.Service, log logger.Logger, timeout time.Duration) *LeadHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &LeadHandler{
		leads:   leadService,
		logger:  log.With("component", "lead_handler"),
		timeout: timeout,
	}
}

// List returns one page of the caller's leads
func (h *LeadHandler) List(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return errors.UnauthorizedError(c, nil)
	}

	spec, err := leads.ParseFilters(c.QueryParam("filters"))
	if err != nil {
		return errors.FromDomain(c, h.logger, err)
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	page, err := h.leads.List(ctx, id.UserID, spec, queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return errors.FromDomain(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, page)
}

// Preview returns summary statistics for the caller's leads matching filters
func (h *LeadHandler) Preview(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return errors.UnauthorizedError(c, nil)
	}

	spec, err := leads.ParseFilters(c.QueryParam("filters"))
	if err != nil {
		return errors.FromDomain(c, h.logger, err)
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	preview, err := h.leads.Preview(ctx, id.UserID, spec)
	if err != nil {
		return errors.FromDomain(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, preview)
}

// Create stores a new lead owned by the caller
func (h *LeadHandler) Create(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return errors.UnauthorizedError(c, nil)
	}

	var in models.LeadInput
	if err := c.Bind(&in); err != nil {
		return errors.ValidationError(c, h.logger, err)
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	lead, err := h.leads.Create(ctx, id.UserID, in)
	if err != nil {
		return errors.FromDomain(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, lead)
}

// Get returns one of the caller's leads
func (h *LeadHandler) Get(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return errors.UnauthorizedError(c, nil)
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	lead, err := h.leads.GetByID(ctx, id.UserID, c.Param("id"))
	if err != nil {
		return errors.FromDomain(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, lead)
}

// Update applies a partial update to one of the caller's leads
func (h *LeadHandler) Update(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return errors.UnauthorizedError(c, nil)
	}

	var patch models.LeadPatch
	if err := c.Bind(&patch); err != nil {
		return errors.ValidationError(c, h.logger, err)
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	lead, err := h.leads.Update(ctx, id.UserID, c.Param("id"), patch)
	if err != nil {
		return errors.FromDomain(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, lead)
}

// Delete removes one of the caller's leads
func (h *LeadHandler) Delete(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return errors.UnauthorizedError(c, nil)
	}

	leadID := c.Param("id")

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	if err := h.leads.Delete(ctx, id.UserID, leadID); err != nil {
		return errors.FromDomain(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, models.DeleteResponse{Message: "Lead deleted successfully", ID: leadID})
}

// queryInt reads an integer query parameter; missing or invalid values are 0
// and fall back to the service defaults
func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return n
}
