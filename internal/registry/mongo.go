package registry

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dayjobfun/dayjob/backend/go-services/internal/listing"
)

// MongoRepository implements Repository on a Mongo collection. The document
// _id is "<kind>:<postId>" so the server's unique-index insert provides the
// duplicate-key guarantee; a single document carries both the point-lookup key
// and the sort field, so key and index can never diverge.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

type mongoEntry struct {
	ID                    string `bson:"_id"`
	listing.RegistryEntry `bson:",inline"`
}

func mongoID(kind listing.Kind, postID string) string {
	return string(kind) + ":" + postID
}

func (r *MongoRepository) Append(ctx context.Context, e *listing.RegistryEntry) error {
	doc := mongoEntry{ID: mongoID(e.Kind, e.PostID), RegistryEntry: *e}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("append entry: %w", err)
	}
	return nil
}

func (r *MongoRepository) Get(ctx context.Context, kind listing.Kind, postID string) (*listing.RegistryEntry, error) {
	var doc mongoEntry
	if err := r.col.FindOne(ctx, bson.M{"_id": mongoID(kind, postID)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	e := doc.RegistryEntry
	return &e, nil
}

func (r *MongoRepository) List(ctx context.Context, kind listing.Kind, limit int) ([]*listing.RegistryEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{"type": kind}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*listing.RegistryEntry
	for cur.Next(ctx) {
		var doc mongoEntry
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		e := doc.RegistryEntry
		out = append(out, &e)
	}
	return out, cur.Err()
}
