// Package api assembles the HTTP router.
package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/troikatech/care-voice/internal/api/handlers"
	"github.com/troikatech/care-voice/pkg/env"
	"github.com/troikatech/care-voice/pkg/errors"
	"github.com/troikatech/care-voice/pkg/middleware"
	"github.com/troikatech/care-voice/pkg/otel"
)

const maxRequestBytes = 1 << 20

// NewRouter registers every route. redisClient may be nil, in which case the
// /api group runs without rate limiting and idempotency.
func NewRouter(cfg *env.Config, h *handlers.Handler, redisClient redis.Cmdable, logger *zap.Logger) *gin.Engine {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	errors.UseJSONFieldNames()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.TraceMiddleware())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestSizeLimit(maxRequestBytes))

	if cfg.OTELEnabled {
		router.Use(otel.GinMiddleware())
	}
	router.Use(middleware.RequestLogger(logger))

	corsConfig := cors.DefaultConfig()
	if cfg.CORSAllowedOrigins == "*" || cfg.CORSAllowedOrigins == "" {
		corsConfig.AllowAllOrigins = true
	} else {
		for _, origin := range strings.Split(cfg.CORSAllowedOrigins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				corsConfig.AllowOrigins = append(corsConfig.AllowOrigins, origin)
			}
		}
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Idempotency-Key"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", h.HealthCheck)
	router.GET("/healthz", h.HealthCheck)
	router.GET("/metrics", h.GetMetrics)
	router.GET("/metrics/prometheus", h.GetPrometheusMetrics)
	router.GET("/favicon.ico", h.Favicon)

	router.POST("/voice/incoming", h.VoiceIncoming)
	router.POST(cfg.VoiceContinuePath, h.VoiceHandle)

	registerProfileRoutes(router.Group("/profiles"), h)

	api := router.Group("/api")
	if redisClient != nil {
		rateLimiter := middleware.NewRateLimiter(redisClient, cfg.APIRateLimitRPM, logger)
		api.Use(rateLimiter.Middleware())
		api.Use(middleware.IdempotencyMiddleware(redisClient))
	}
	registerProfileRoutes(api.Group("/profiles"), h)

	return router
}

func registerProfileRoutes(group *gin.RouterGroup, h *handlers.Handler) {
	group.POST("", h.CreateProfile)
	group.GET("", h.ListProfiles)
	group.GET("/by_phone/:phone", middleware.ValidatePhoneParam("phone"), h.GetProfileByPhone)
	group.PUT("/:id", middleware.ValidateObjectIDParam("id"), h.UpdateProfile)
}
