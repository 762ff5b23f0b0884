package profile

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/troikatech/care-voice/pkg/mongo"
	"github.com/troikatech/care-voice/pkg/otel"
)

// Collection is the MongoDB collection profiles live in.
const Collection = "customers"

// Store is the persistence boundary for profiles. Phone uniqueness is enforced here.
type Store interface {
	FindByPhone(ctx context.Context, phone string) (*Profile, error)
	FindByID(ctx context.Context, id string) (*Profile, error)
	// Insert assigns p.ID. Returns ErrConflict on a duplicate phone number.
	Insert(ctx context.Context, p *Profile) error
	// Update overwrites name, gender, language and updated_at by id.
	Update(ctx context.Context, p *Profile) error
	List(ctx context.Context, skip, limit int64) ([]*Profile, int64, error)
}

// MongoStore is the MongoDB-backed Store.
type MongoStore struct {
	client *mongo.Client
}

func NewMongoStore(client *mongo.Client) *MongoStore {
	return &MongoStore{client: client}
}

// EnsureIndexes creates the unique phone_number index.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.client.EnsureUniqueIndex(ctx, Collection, "phone_number")
	return err
}

// document mirrors Profile with a native ObjectID.
type document struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	PhoneNumber  string             `bson:"phone_number"`
	Name         *string            `bson:"name"`
	Gender       Gender             `bson:"gender"`
	LanguageCode string             `bson:"language_code"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (d *document) toProfile() *Profile {
	return &Profile{
		ID:           d.ID.Hex(),
		PhoneNumber:  d.PhoneNumber,
		Name:         d.Name,
		Gender:       d.Gender,
		LanguageCode: d.LanguageCode,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (s *MongoStore) findOne(ctx context.Context, field string, value interface{}) (*Profile, error) {
	var doc document
	err := otel.DBSpan(ctx, Collection, "find", func(ctx context.Context) error {
		return s.client.NewQuery(Collection).Eq(field, value).FindOne(ctx, &doc)
	})
	if mongo.IsNoDocuments(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	return doc.toProfile(), nil
}

func (s *MongoStore) FindByPhone(ctx context.Context, phone string) (*Profile, error) {
	return s.findOne(ctx, "phone_number", phone)
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*Profile, error) {
	oid, err := mongo.StringToObjectID(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findOne(ctx, "_id", oid)
}

func (s *MongoStore) Insert(ctx context.Context, p *Profile) error {
	doc := document{
		PhoneNumber:  p.PhoneNumber,
		Name:         p.Name,
		Gender:       p.Gender,
		LanguageCode: p.LanguageCode,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}

	var inserted interface{}
	err := otel.DBSpan(ctx, Collection, "insert", func(ctx context.Context) error {
		var err error
		inserted, err = s.client.NewQuery(Collection).Insert(ctx, doc)
		return err
	})
	if mongo.IsDuplicateKey(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}

	if oid, ok := inserted.(primitive.ObjectID); ok {
		p.ID = oid.Hex()
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, p *Profile) error {
	oid, err := mongo.StringToObjectID(p.ID)
	if err != nil {
		return ErrNotFound
	}

	var matched int64
	err = otel.DBSpan(ctx, Collection, "update", func(ctx context.Context) error {
		var err error
		matched, err = s.client.NewQuery(Collection).Eq("_id", oid).Set(ctx, bson.M{
			"name":          p.Name,
			"gender":        p.Gender,
			"language_code": p.LanguageCode,
			"updated_at":    p.UpdatedAt,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if matched == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, skip, limit int64) ([]*Profile, int64, error) {
	var (
		docs  []document
		total int64
	)
	err := otel.DBSpan(ctx, Collection, "find", func(ctx context.Context) error {
		var err error
		if total, err = s.client.NewQuery(Collection).Count(ctx); err != nil {
			return err
		}
		return s.client.NewQuery(Collection).
			Sort("created_at", false).
			Page(skip, limit).
			Find(ctx, &docs)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list profiles: %w", err)
	}

	out := make([]*Profile, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toProfile())
	}
	return out, total, nil
}
