package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/formgate/formgate-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSystemTestApp(t *testing.T) http.Handler {
	t.Helper()
	openapiSvc, err := services.NewOpenAPIService()
	require.NoError(t, err)

	handler := NewSystemHandler(openapiSvc)

	app := drift.New()
	app.Get("/health", handler.Health)
	app.Get("/metrics", handler.Metrics)
	app.Get("/openapi.json", handler.OpenAPIJSON)
	app.Get("/openapi.yaml", handler.OpenAPIYAML)
	return app
}

func TestSystemHandler_Health(t *testing.T) {
	app := newSystemTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestSystemHandler_Metrics(t *testing.T) {
	app := newSystemTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	// standard process collectors register at init
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestSystemHandler_OpenAPIJSON(t *testing.T) {
	app := newSystemTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "/api/v1/send")
}

func TestSystemHandler_OpenAPIYAML(t *testing.T) {
	app := newSystemTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "openapi:")
}
