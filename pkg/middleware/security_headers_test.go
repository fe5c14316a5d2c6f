package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func runSecurityHeaders(t *testing.T, cfg SecurityHeadersConfig, next echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/leads", nil), rec)
	return rec, SecurityHeaders(cfg)(next)(c)
}

func ok(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func TestSecurityHeaders_DefaultHeaders(t *testing.T) {
	rec, err := runSecurityHeaders(t, SecurityHeadersConfig{}, ok)
	assert.NoError(t, err)

	csp := rec.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "default-src 'none'")
	assert.Contains(t, csp, "frame-ancestors 'none'")
	assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
	assert.Contains(t, rec.Header().Get("Permissions-Policy"), "camera=()")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestSecurityHeaders_Custom(t *testing.T) {
	rec, err := runSecurityHeaders(t, SecurityHeadersConfig{
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "same-origin",
		HSTS:                  true,
	}, ok)
	assert.NoError(t, err)

	assert.Equal(t, "default-src 'self'", rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "same-origin", rec.Header().Get("Referrer-Policy"))
	// unset fields keep their defaults
	assert.NotEmpty(t, rec.Header().Get("Permissions-Policy"))
	assert.Contains(t, rec.Header().Get("Strict-Transport-Security"), "max-age=")
}

func TestSecurityHeaders_HandlerError(t *testing.T) {
	rec, err := runSecurityHeaders(t, SecurityHeadersConfig{}, func(c echo.Context) error {
		return echo.ErrInternalServerError
	})

	assert.Error(t, err)
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}
