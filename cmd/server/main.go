package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/troikatech/care-voice/internal/api"
	"github.com/troikatech/care-voice/internal/api/handlers"
	"github.com/troikatech/care-voice/internal/app"
	"github.com/troikatech/care-voice/pkg/audit"
	"github.com/troikatech/care-voice/pkg/env"
	"github.com/troikatech/care-voice/pkg/logger"
	"github.com/troikatech/care-voice/pkg/mongo"
	"github.com/troikatech/care-voice/pkg/otel"
	"github.com/troikatech/care-voice/pkg/profile"
)

const serviceVersion = "1.0.0"

func main() {
	cfg, err := env.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.LogLevel, cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.OTELEnabled {
		shutdown, err := otel.InitTracing(context.Background(), otel.TracingConfig{
			ServiceName:    "care-voice",
			ServiceVersion: serviceVersion,
			Environment:    cfg.AppEnv,
			Endpoint:       cfg.OTELEndpoint,
			SampleRatio:    cfg.OTELSampleRatio,
		})
		if err != nil {
			logger.Log.Warn("Failed to initialize OpenTelemetry", zap.Error(err))
		} else {
			defer shutdown(context.Background())
			logger.Log.Info("OpenTelemetry tracing enabled", zap.String("endpoint", cfg.OTELEndpoint))
		}
	}

	logger.Log.Info("Starting care-voice server",
		zap.String("env", cfg.AppEnv),
		zap.String("port", cfg.AppPort),
		zap.String("default_language", cfg.DefaultLanguage),
		zap.String("default_gender", cfg.DefaultGender),
	)

	// Redis only backs the profile API limiter and idempotency; the voice
	// webhooks keep working without it.
	var redisClient *redis.Client
	if opt, err := redis.ParseURL(cfg.RedisURL); err != nil {
		logger.Log.Warn("Invalid Redis URL, profile API runs without rate limiting", zap.Error(err))
	} else {
		redisClient = redis.NewClient(opt)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Log.Warn("Redis unreachable at startup", zap.Error(err))
		}
		cancel()
		defer redisClient.Close()
	}

	mongoClient, err := mongo.NewClient(cfg.MongoURI, cfg.DBName, logger.Log)
	if err != nil {
		logger.Log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Log.Warn("Failed to disconnect MongoDB", zap.Error(err))
		}
	}()

	store := profile.NewMongoStore(mongoClient)
	pipeline := app.NewPipeline(cfg, store, audit.NewMongoRecorder(mongoClient, logger.Log), logger.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Log.Fatal("Failed to create profile indexes", zap.Error(err))
	}
	cancel()

	var cache redis.Cmdable
	if redisClient != nil {
		cache = redisClient
	}
	h := handlers.NewHandler(cfg, cache, mongoClient, pipeline.Profiles, pipeline.Calls, pipeline.AIManager)
	router := api.NewRouter(cfg, h, cache, logger.Log)

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Log.Info("Server exited")
}
