package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/jordanlanch/leadboard/pkg/logger"
	"github.com/labstack/echo/v4"
)

// PingFunc checks one dependency
type PingFunc func(ctx context.Context) error

// HealthHandler reports service and dependency status
type HealthHandler struct {
	service     string
	version     string
	environment string
	checks      map[string]PingFunc
	logger      logger.Logger
}

// NewHealthHandler creates a health handler; checks are keyed by dependency name
func NewHealthHandler(service, version, environment string, checks map[string]PingFunc, log logger.Logger) *HealthHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &HealthHandler{
		service:     service,
		version:     version,
		environment: environment,
		checks:      checks,
		logger:      log.With("component", "health_handler"),
	}
}

// Info describes the running service
func (h *HealthHandler) Info(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service":     h.service,
		"version":     h.version,
		"environment": h.environment,
		"status":      "running",
	})
}

// Health pings every dependency; any failure makes the whole service unhealthy
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	deps := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.Warn("health check failed", "dependency", name, "error", err)
			deps[name] = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "healthy"
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}
	return c.JSON(status, map[string]any{
		"status":       overall,
		"dependencies": deps,
	})
}
