package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStore keeps window counters in a document collection, one document per
// key. It is the durable backend: counters survive restarts and are safe
// across concurrent server processes because the conditional
// reset-or-increment runs as a single-document update, which the server
// applies atomically.
type MongoStore struct {
	coll *mongo.Collection

	sweepInterval time.Duration
	sweepBatch    int
	stopSweep     chan struct{}
	sweepOnce     sync.Once
}

type rateLimitDoc struct {
	Key          string `bson:"_id"`
	Count        int64  `bson:"count"`
	ResetAt      int64  `bson:"resetAt"`      // epoch millis
	FirstRequest int64  `bson:"firstRequest"` // epoch millis
}

// MongoStoreOption configures a MongoStore.
type MongoStoreOption func(*MongoStore)

// WithMongoSweepInterval sets how often expired documents are deleted.
func WithMongoSweepInterval(interval time.Duration) MongoStoreOption {
	return func(s *MongoStore) {
		if interval > 0 {
			s.sweepInterval = interval
		}
	}
}

// WithMongoSweepBatch bounds how many expired documents a single sweep pass
// removes.
func WithMongoSweepBatch(n int) MongoStoreOption {
	return func(s *MongoStore) {
		if n > 0 {
			s.sweepBatch = n
		}
	}
}

// NewMongoStore creates a durable store on the given collection and starts an
// hourly background sweep of expired documents. The collection comes from a
// client constructed at process startup (see pkg/mongo); the store never
// builds its own connection. Call Close to stop the sweeper.
func NewMongoStore(coll *mongo.Collection, opts ...MongoStoreOption) *MongoStore {
	s := &MongoStore{
		coll:          coll,
		sweepInterval: time.Hour,
		sweepBatch:    500,
		stopSweep:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	go s.sweepLoop()

	return s
}

// EnsureIndexes creates the resetAt index the sweep query relies on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "resetAt", Value: 1}},
	})
	return err
}

func (s *MongoStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	now := time.Now().UnixMilli()
	windowMs := window.Milliseconds()

	// True when the stored window has lapsed (or the document is being
	// upserted). All expressions evaluate against the pre-update document,
	// so the whole reset-or-increment is one atomic step.
	expired := bson.M{"$lte": bson.A{bson.M{"$ifNull": bson.A{"$resetAt", int64(0)}}, now}}

	update := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.M{
			"count": bson.M{"$cond": bson.A{
				expired,
				int64(1),
				bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$count", int64(0)}}, 1}},
			}},
			"resetAt": bson.M{"$cond": bson.A{
				expired,
				now + windowMs,
				"$resetAt",
			}},
			"firstRequest": bson.M{"$cond": bson.A{
				expired,
				now,
				bson.M{"$ifNull": bson.A{"$firstRequest", now}},
			}},
		}}},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc rateLimitDoc
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": key}, update, opts).Decode(&doc); err != nil {
		return 0, time.Time{}, err
	}

	return doc.Count, time.UnixMilli(doc.ResetAt), nil
}

func (s *MongoStore) Decrement(ctx context.Context, key string) error {
	now := time.Now().UnixMilli()

	// The filter keeps the refund scoped to a live, non-empty window; a
	// refund racing a window reset simply matches nothing.
	_, err := s.coll.UpdateOne(ctx,
		bson.M{
			"_id":     key,
			"resetAt": bson.M{"$gt": now},
			"count":   bson.M{"$gt": int64(0)},
		},
		bson.M{"$inc": bson.M{"count": int64(-1)}},
	)
	return err
}

func (s *MongoStore) Get(ctx context.Context, key string) (int64, time.Time, error) {
	var doc rateLimitDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, time.Time{}, nil
		}
		return 0, time.Time{}, err
	}

	if doc.ResetAt <= time.Now().UnixMilli() {
		return 0, time.Time{}, nil
	}

	return doc.Count, time.UnixMilli(doc.ResetAt), nil
}

func (s *MongoStore) Delete(ctx context.Context, key string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// Sweep deletes one bounded batch of expired documents per call so that a
// large backlog never turns into a long-running query blocking the
// collection.
func (s *MongoStore) Sweep(ctx context.Context) (int64, error) {
	now := time.Now().UnixMilli()

	findOpts := options.Find().
		SetLimit(int64(s.sweepBatch)).
		SetProjection(bson.M{"_id": 1})

	cursor, err := s.coll.Find(ctx, bson.M{"resetAt": bson.M{"$lte": now}}, findOpts)
	if err != nil {
		return 0, err
	}

	var docs []struct {
		Key string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}

	keys := make([]string, len(docs))
	for i, d := range docs {
		keys[i] = d.Key
	}

	res, err := s.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": keys}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) sweepLoop() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = s.Sweep(context.Background())
		case <-s.stopSweep:
			return
		}
	}
}

// Close stops the background sweeper. The underlying client is owned by the
// caller and stays open.
func (s *MongoStore) Close() error {
	s.sweepOnce.Do(func() {
		close(s.stopSweep)
	})
	return nil
}
