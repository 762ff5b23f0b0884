package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNoDocuments is returned by FindOne when nothing matches the filter.
var ErrNoDocuments = mongo.ErrNoDocuments

// QueryBuilder accumulates a filter, sort and page for one collection.
// Results are decoded straight into caller-owned structs.
type QueryBuilder struct {
	collection *mongo.Collection
	filter     bson.D
	sort       bson.D
	skip       int64
	limit      int64
}

func (c *Client) NewQuery(collectionName string) *QueryBuilder {
	return &QueryBuilder{collection: c.Collection(collectionName)}
}

// Eq matches documents whose field equals value.
func (q *QueryBuilder) Eq(field string, value interface{}) *QueryBuilder {
	q.filter = append(q.filter, bson.E{Key: field, Value: value})
	return q
}

// Sort appends a sort key; calls are applied in order.
func (q *QueryBuilder) Sort(field string, ascending bool) *QueryBuilder {
	direction := 1
	if !ascending {
		direction = -1
	}
	q.sort = append(q.sort, bson.E{Key: field, Value: direction})
	return q
}

// Page skips skip documents and returns at most limit. A zero limit means no limit.
func (q *QueryBuilder) Page(skip, limit int64) *QueryBuilder {
	q.skip = skip
	q.limit = limit
	return q
}

// Filter returns the filter document sent to the server.
func (q *QueryBuilder) Filter() bson.D {
	if q.filter == nil {
		return bson.D{}
	}
	return q.filter
}

func (q *QueryBuilder) findOptions() *options.FindOptions {
	opts := options.Find()
	if q.skip > 0 {
		opts.SetSkip(q.skip)
	}
	if q.limit > 0 {
		opts.SetLimit(q.limit)
	}
	if len(q.sort) > 0 {
		opts.SetSort(q.sort)
	}
	return opts
}

// Find decodes every matching document into out, which must be a pointer to a slice.
func (q *QueryBuilder) Find(ctx context.Context, out interface{}) error {
	cursor, err := q.collection.Find(ctx, q.Filter(), q.findOptions())
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	return cursor.All(ctx, out)
}

// FindOne decodes the first matching document into out.
// Returns ErrNoDocuments when nothing matches.
func (q *QueryBuilder) FindOne(ctx context.Context, out interface{}) error {
	opts := options.FindOne()
	if len(q.sort) > 0 {
		opts.SetSort(q.sort)
	}
	return q.collection.FindOne(ctx, q.Filter(), opts).Decode(out)
}

// Count ignores the page and counts every match.
func (q *QueryBuilder) Count(ctx context.Context) (int64, error) {
	return q.collection.CountDocuments(ctx, q.Filter())
}

// Insert returns the id the server assigned.
func (q *QueryBuilder) Insert(ctx context.Context, document interface{}) (interface{}, error) {
	result, err := q.collection.InsertOne(ctx, document)
	if err != nil {
		return nil, err
	}
	return result.InsertedID, nil
}

// Set applies $set with fields to the first match and returns the match count.
func (q *QueryBuilder) Set(ctx context.Context, fields bson.M) (int64, error) {
	res, err := q.collection.UpdateOne(ctx, q.Filter(), bson.M{"$set": fields})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// IsNoDocuments reports whether err means the query matched nothing.
func IsNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// IsDuplicateKey reports whether err is a unique index violation.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// StringToObjectID converts a hex id to an ObjectID.
func StringToObjectID(id string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(id)
}
