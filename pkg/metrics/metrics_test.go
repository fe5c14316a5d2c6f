package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	m := New(prometheus.NewRegistry())

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/leads/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	for _, id := range []string{"a", "b"} {
		req := httptest.NewRequest(http.MethodGet, "/api/leads/"+id, nil)
		e.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/leads/:id", "200")))
}

func TestMiddleware_UsesHTTPErrorCode(t *testing.T) {
	m := New(prometheus.NewRegistry())

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot)
	})

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/boom", "418")))
}

func TestBusinessCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordLeadQuery("list")
	m.RecordLeadQuery("list")
	m.RecordLeadWrite("create")
	m.RecordExportCreated("csv")
	m.RecordUserRegistered()
	m.RecordLoginAttempt(true)
	m.RecordLoginAttempt(false)
	m.RecordCacheHit("leads")
	m.RecordCacheMiss("leads")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LeadQueries.WithLabelValues("list")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LeadWrites.WithLabelValues("create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportsCreated.WithLabelValues("csv")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UsersRegistered))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits.WithLabelValues("leads")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestSetLeadsByStatus(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SetLeadsByStatus([]string{"new", "won"}, map[string]int64{"new": 4, "won": 1})
	m.SetLeadsByStatus([]string{"new", "won"}, map[string]int64{"new": 7})

	assert.Equal(t, 7.0, testutil.ToFloat64(m.LeadsByStatus.WithLabelValues("new")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.LeadsByStatus.WithLabelValues("won")))
}

func TestNew_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
