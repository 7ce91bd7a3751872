package handlers

import (
	"net/http"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SystemHandler serves the operational surface: liveness, prometheus
// metrics, and the OpenAPI description.
type SystemHandler struct {
	openapi     OpenAPIProvider
	promHandler http.Handler
}

// OpenAPIProvider serves the API description in both wire formats.
type OpenAPIProvider interface {
	JSON() ([]byte, error)
	YAML() ([]byte, error)
}

func NewSystemHandler(openapi OpenAPIProvider) *SystemHandler {
	return &SystemHandler{
		openapi:     openapi,
		promHandler: promhttp.Handler(),
	}
}

func (h *SystemHandler) Health(c *drift.Context) {
	_ = c.JSON(200, map[string]string{"status": "ok"})
}

func (h *SystemHandler) Metrics(c *drift.Context) {
	h.promHandler.ServeHTTP(c.Response, c.Request)
}

func (h *SystemHandler) OpenAPIJSON(c *drift.Context) {
	data, err := h.openapi.JSON()
	if err != nil {
		c.InternalServerError("failed to render openapi spec")
		return
	}
	c.Response.Header().Set("Content-Type", "application/json")
	c.Response.WriteHeader(200)
	_, _ = c.Response.Write(data)
}

func (h *SystemHandler) OpenAPIYAML(c *drift.Context) {
	data, err := h.openapi.YAML()
	if err != nil {
		c.InternalServerError("failed to render openapi spec")
		return
	}
	c.Response.Header().Set("Content-Type", "application/yaml")
	c.Response.WriteHeader(200)
	_, _ = c.Response.Write(data)
}
