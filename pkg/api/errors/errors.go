// Package errors writes JSON error responses without exposing internal details
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/jordanlanch/leadboard/pkg/domain"
	"github.com/jordanlanch/leadboard/pkg/logger"
	"github.com/jordanlanch/leadboard/pkg/models"
	"github.com/labstack/echo/v4"
)

// statusByCode maps domain codes to HTTP status. Duplicate registrations are
// reported as a client error, not a 409.
var statusByCode = map[string]int{
	domain.ErrCodeValidation:       http.StatusBadRequest,
	domain.ErrCodeMalformedFilter:  http.StatusBadRequest,
	domain.ErrCodeConflict:         http.StatusBadRequest,
	domain.ErrCodeNotAuthenticated: http.StatusUnauthorized,
	domain.ErrCodeSessionExpired:   http.StatusUnauthorized,
	domain.ErrCodeNotFound:         http.StatusNotFound,
}

// StatusOf returns the HTTP status for err
func StatusOf(err error) int {
	if status, ok := statusByCode[domain.CodeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// FromDomain writes the response for a service error. Domain errors expose
// their code, message and field details; anything else becomes a generic 500.
func FromDomain(c echo.Context, log logger.Logger, err error) error {
	var de *domain.DomainError
	if !stderrors.As(err, &de) || de.Code == domain.ErrCodeInternal {
		return InternalError(c, log, err)
	}

	return c.JSON(StatusOf(err), models.ErrorResponse{
		Error:   strings.ToLower(de.Code),
		Message: de.Message,
		Details: de.Fields,
	})
}

// ValidationError returns a generic validation error for input that could not be bound
func ValidationError(c echo.Context, log logger.Logger, err error) error {
	logf(log, "[VALIDATION ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "validation_error",
		Message: "Invalid request data. Please check your input and try again.",
	})
}

// InternalError returns a generic internal server error and reports err to Sentry
func InternalError(c echo.Context, log logger.Logger, err error) error {
	logf(log, "[INTERNAL ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	if hub := sentryecho.GetHubFromContext(c); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("path", c.Path())
			hub.CaptureException(err)
		})
	}

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred. Please try again later.",
	})
}

// UnauthorizedError returns a 401 for a missing or rejected session
func UnauthorizedError(c echo.Context, err error) error {
	resp := models.ErrorResponse{
		Error:   "not_authenticated",
		Message: "Not authenticated",
	}
	if domain.IsSessionExpired(err) {
		resp.Error = "session_expired"
		resp.Message = "Session expired, please log in again"
	}
	return c.JSON(http.StatusUnauthorized, resp)
}

// NotFoundError returns a generic not found error
func NotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error:   "not_found",
		Message: fmt.Sprintf("%s not found", resource),
	})
}

func logf(log logger.Logger, format string, args ...any) {
	if log == nil {
		log = logger.Nop()
	}
	log.Error(fmt.Sprintf(format, args...))
}
