package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_Info(t *testing.T) {
	h := NewHealthHandler("leadboard", "1.0.0", "test", nil, nil)

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, h.Info(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "leadboard", body["service"])
	assert.Equal(t, "running", body["status"])
}

func TestHealthHandler_Health(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		checks     map[string]PingFunc
		wantStatus int
		wantBody   string
		wantDeps   map[string]string
	}{
		{
			name:       "all healthy",
			checks:     map[string]PingFunc{"store": ok, "redis": ok},
			wantStatus: http.StatusOK,
			wantBody:   "healthy",
			wantDeps:   map[string]string{"store": "healthy", "redis": "healthy"},
		},
		{
			name:       "redis down",
			checks:     map[string]PingFunc{"store": ok, "redis": down},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "unhealthy",
			wantDeps:   map[string]string{"store": "healthy", "redis": "unhealthy"},
		},
		{
			name:       "no dependencies",
			wantStatus: http.StatusOK,
			wantBody:   "healthy",
			wantDeps:   map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler("leadboard", "1.0.0", "test", tt.checks, nil)

			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)
			require.NoError(t, h.Health(c))
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body struct {
				Status       string            `json:"status"`
				Dependencies map[string]string `json:"dependencies"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body.Status)
			assert.Equal(t, tt.wantDeps, body.Dependencies)
		})
	}
}
