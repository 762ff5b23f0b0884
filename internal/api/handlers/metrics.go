package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/troikatech/care-voice/pkg/metrics"
)

const prometheusContentType = "text/plain; version=0.0.4; charset=utf-8"

// GetMetrics returns the in-process counters plus the active reply providers.
func (h *Handler) GetMetrics(c *gin.Context) {
	data := metrics.GetMetrics()
	data["env"] = h.cfg.AppEnv
	if h.aiManager != nil {
		data["ai_providers"] = h.aiManager.Names()
	}
	c.JSON(http.StatusOK, data)
}

func (h *Handler) GetPrometheusMetrics(c *gin.Context) {
	c.Data(http.StatusOK, prometheusContentType, []byte(metrics.GetPrometheusMetrics()))
}
