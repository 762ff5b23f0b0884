package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type HealthResponse struct {
	Status    string            `json:"status"`
	Env       string            `json:"env"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

func (h *Handler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	services := map[string]string{
		"api":      "healthy",
		"database": "disabled",
		"redis":    "disabled",
	}
	var mu sync.Mutex
	set := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			services[name] = "unhealthy"
			return
		}
		services[name] = "healthy"
	}

	// Probes report through set and never fail the group.
	g, gctx := errgroup.WithContext(ctx)
	if h.redisClient != nil {
		g.Go(func() error {
			set("redis", h.redisClient.Ping(gctx).Err())
			return nil
		})
	}
	if h.mongoClient != nil {
		g.Go(func() error {
			set("database", h.mongoClient.Ping(gctx))
			return nil
		})
	}
	g.Wait()

	if provider := h.aiManagerProvider(); provider != "" {
		services["ai_provider"] = provider
	} else {
		services["ai_provider"] = "canned"
	}
	if h.cfg.CRMBaseURL != "" {
		services["crm"] = "configured"
	} else {
		services["crm"] = "disabled"
	}

	overallStatus := "healthy"
	for _, status := range services {
		if status == "unhealthy" {
			overallStatus = "degraded"
			break
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    overallStatus,
		Env:       h.cfg.AppEnv,
		Timestamp: time.Now().Format(time.RFC3339),
		Services:  services,
	})
}

func (h *Handler) aiManagerProvider() string {
	if h.aiManager == nil {
		return ""
	}
	if p := h.aiManager.GetAvailableProvider(); p != nil {
		return p.Name()
	}
	return ""
}

// favicon is a transparent 1x1 PNG.
var favicon = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func (h *Handler) Favicon(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", favicon)
}
