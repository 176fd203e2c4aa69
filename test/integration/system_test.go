package integration_test

import (
	"net/http"
	"testing"

	"classifieds_backend/internal/middleware"
	"classifieds_backend/test/helpers"

	"github.com/stretchr/testify/assert"
)

func TestHealth(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)

	res, body := ts.SendRequest(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"status":"ok","database":"up"}`, body)
	assert.NotEmpty(t, res.Header.Get(middleware.RequestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)

	ts.SendRequest(t, http.MethodGet, "/health", "", nil)
	res, body := ts.SendRequest(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "classifieds_http_requests_total")
}

func TestSwaggerDoc(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)

	res, body := ts.SendRequest(t, http.MethodGet, "/swagger/doc.json", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "/advertisement/{id}")
	assert.Contains(t, body, "Назначить роль admin может только администратор")
}

func TestCORS_AllowsTokenHeader(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.Server.URL+"/advertisement", nil)
	assert.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", middleware.TokenHeader)

	res, err := ts.Server.Client().Do(req)
	assert.NoError(t, err)
	defer res.Body.Close()

	assert.Less(t, res.StatusCode, 300)
	assert.Contains(t, res.Header.Get("Access-Control-Allow-Headers"), middleware.TokenHeader)
}
