package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/troikatech/care-voice/pkg/mongo"
)

const collection = "audit_log"

// Action represents an audit action
type Action string

const (
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionCRMUpsert     Action = "crm_upsert"
	ActionDefaultCreate Action = "default_create"
)

// Event is one audited mutation.
type Event struct {
	ID           string                 `bson:"id" json:"id"`
	Action       Action                 `bson:"action" json:"action"`
	ResourceType string                 `bson:"resource_type" json:"resource_type"`
	ResourceID   string                 `bson:"resource_id" json:"resource_id"`
	Metadata     map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt    time.Time              `bson:"created_at" json:"created_at"`
}

// Recorder persists audit events. Implementations never fail the caller.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// NopRecorder discards events.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) {}

// MongoRecorder writes events to the audit_log collection.
type MongoRecorder struct {
	client *mongo.Client
	logger *zap.Logger
}

func NewMongoRecorder(client *mongo.Client, logger *zap.Logger) *MongoRecorder {
	return &MongoRecorder{client: client, logger: logger}
}

func (r *MongoRecorder) Record(ctx context.Context, event Event) {
	if r.client == nil {
		r.logger.Warn("Audit logging skipped: MongoDB client not available")
		return
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	// Detach from the request deadline; the audit write should not be cut short
	// because the call turn already answered.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if _, err := r.client.NewQuery(collection).Insert(writeCtx, event); err != nil {
		r.logger.Error("Failed to log audit event",
			zap.Error(err),
			zap.String("action", string(event.Action)),
			zap.String("resource_type", event.ResourceType),
		)
	}
}
