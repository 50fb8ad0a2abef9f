package history

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/capicuhq/capicu/pkg/httputil"
)

// matchCollection is the collection name within the configured database.
const matchCollection = "matches"

// MongoStore archives matches in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB, verifies the connection and ensures
// the query indexes. The ping is retried with backoff so the server can
// start while mongo is still coming up next to it.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	err = httputil.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			return &httputil.RetryableError{Err: err}
		}
		return nil
	})
	if err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(matchCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "finished_at", Value: -1}}},
		{Keys: bson.D{{Key: "players.name", Value: 1}}},
		{Keys: bson.D{{Key: "winner_names", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Save(ctx context.Context, rec MatchRecord) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, opts); err != nil {
		return fmt.Errorf("archive match %s: %w", rec.ID, err)
	}
	return nil
}

func (s *MongoStore) Match(ctx context.Context, id string) (*MatchRecord, error) {
	var rec MatchRecord
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load match %s: %w", id, err)
	}
	return &rec, nil
}

func (s *MongoStore) Recent(ctx context.Context, limit int) ([]MatchRecord, error) {
	return s.find(ctx, bson.M{}, limit)
}

func (s *MongoStore) ByPlayer(ctx context.Context, name string, limit int) ([]MatchRecord, error) {
	return s.find(ctx, bson.M{"players.name": name}, limit)
}

func (s *MongoStore) find(ctx context.Context, filter bson.M, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "finished_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}

	var recs []MatchRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("decode matches: %w", err)
	}
	return recs, nil
}

func (s *MongoStore) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count matches: %w", err)
	}
	return n, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
