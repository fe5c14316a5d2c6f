package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
)

var testOrigins = []string{"http://localhost:3000", "https://leads.example.com"}

// newCORSEcho creates an Echo instance with the dashboard CORS config and a test route
func newCORSEcho(origins []string) *echo.Echo {
	e := echo.New()
	e.Use(middleware.CORSWithConfig(CORSConfig(origins)))
	e.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	return e
}

func TestCORS_AllowedOrigins(t *testing.T) {
	for _, origin := range testOrigins {
		t.Run(origin, func(t *testing.T) {
			e := newCORSEcho(testOrigins)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Origin", origin)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestCORS_BlockedOrigins(t *testing.T) {
	tests := []struct {
		name   string
		origin string
	}{
		{"unknown external site", "https://evil.com"},
		{"similar domain attack", "https://leads.example.com.evil.com"},
		{"http instead of https", "http://leads.example.com"},
		{"different port on localhost", "http://localhost:8080"},
		{"null origin", "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newCORSEcho(testOrigins)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORS_WildcardDropped(t *testing.T) {
	cfg := CORSConfig([]string{"*", "", "https://leads.example.com"})
	assert.Equal(t, []string{"https://leads.example.com"}, cfg.AllowOrigins)
	assert.True(t, cfg.AllowCredentials)
}

func TestCORS_Preflight(t *testing.T) {
	e := newCORSEcho(testOrigins)

	req := httptest.NewRequest(http.MethodOptions, "/test", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
}
