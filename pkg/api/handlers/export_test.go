package handlers

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jordanlanch/leadboard/pkg/export"
	"github.com/jordanlanch/leadboard/pkg/metrics"
	"github.com/jordanlanch/leadboard/pkg/phone"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func setupExportHandler(t *testing.T, n int) (*ExportHandler, *metrics.Metrics) {
	t.Helper()
	svc := setupLeadService(t)
	seedLeads(t, svc, testOwner, n)
	seedLeads(t, svc, "someone-else", 2)

	m := metrics.New(prometheus.NewRegistry())
	return NewExportHandler(svc, export.NewWriter(phone.NewNormalizer("US")), m, nil, time.Second), m
}

func exportRequest(params url.Values) *http.Request {
	return httptest.NewRequest(http.MethodGet, "/api/leads/export?"+params.Encode(), nil)
}

func TestExportHandler_CSV(t *testing.T) {
	h, m := setupExportHandler(t, 5)

	c, rec := authedContext(echo.New(), exportRequest(url.Values{}), testOwner)
	require.NoError(t, h.Download(c))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), `attachment; filename="leads-`)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), `.csv"`)
	assert.Equal(t, "5", rec.Header().Get("X-Total-Count"))

	rows, err := csv.NewReader(bytes.NewReader(rec.Body.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "ID", rows[0][0])

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportsCreated.WithLabelValues(export.FormatCSV)))
}

func TestExportHandler_Filtered(t *testing.T) {
	h, _ := setupExportHandler(t, 6)

	params := url.Values{"format": {"csv"}, "filters": {`{"status":{"equals":"won"}}`}}
	c, rec := authedContext(echo.New(), exportRequest(params), testOwner)
	require.NoError(t, h.Download(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3", rec.Header().Get("X-Total-Count"))
}

func TestExportHandler_XLSX(t *testing.T) {
	h, m := setupExportHandler(t, 3)

	c, rec := authedContext(echo.New(), exportRequest(url.Values{"format": {"xlsx"}}), testOwner)
	require.NoError(t, h.Download(c))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, export.ContentType(export.FormatXLSX), rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), `.xlsx"`)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Leads")
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportsCreated.WithLabelValues(export.FormatXLSX)))
}

func TestExportHandler_InvalidFormat(t *testing.T) {
	h, _ := setupExportHandler(t, 1)

	c, rec := authedContext(echo.New(), exportRequest(url.Values{"format": {"pdf"}}), testOwner)
	require.NoError(t, h.Download(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeError(t, rec)
	assert.Equal(t, "validation_error", resp.Error)
	assert.Contains(t, resp.Details, "format")
}

func TestExportHandler_MalformedFilters(t *testing.T) {
	h, _ := setupExportHandler(t, 1)

	c, rec := authedContext(echo.New(), exportRequest(url.Values{"filters": {`[1]`}}), testOwner)
	require.NoError(t, h.Download(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "malformed_filter", decodeError(t, rec).Error)
}

func TestExportHandler_RequiresIdentity(t *testing.T) {
	h, _ := setupExportHandler(t, 1)

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(exportRequest(url.Values{}), rec)
	require.NoError(t, h.Download(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
