package handlers

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/troikatech/care-voice/pkg/ai"
	"github.com/troikatech/care-voice/pkg/callflow"
	"github.com/troikatech/care-voice/pkg/env"
	"github.com/troikatech/care-voice/pkg/logger"
	"github.com/troikatech/care-voice/pkg/mongo"
	"github.com/troikatech/care-voice/pkg/profile"
)

type Handler struct {
	cfg         *env.Config
	redisClient redis.Cmdable
	mongoClient *mongo.Client
	logger      *zap.Logger
	profiles    *profile.Service
	calls       *callflow.Orchestrator
	aiManager   *ai.Manager
}

// NewHandler wires the HTTP surface. redisClient and mongoClient may be nil;
// the affected health probes then report "disabled".
func NewHandler(
	cfg *env.Config,
	redisClient redis.Cmdable,
	mongoClient *mongo.Client,
	profiles *profile.Service,
	calls *callflow.Orchestrator,
	aiManager *ai.Manager,
) *Handler {
	return &Handler{
		cfg:         cfg,
		redisClient: redisClient,
		mongoClient: mongoClient,
		logger:      logger.Log,
		profiles:    profiles,
		calls:       calls,
		aiManager:   aiManager,
	}
}
