package mongodb

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Connect establishes a connection to MongoDB, retrying with exponential
// backoff until ctx is done
func Connect(ctx context.Context, uri string, logger *zap.SugaredLogger) (*mongo.Client, error) {
	clientOptions := options.Client().
		ApplyURI(uri).
		SetMinPoolSize(2).
		SetMaxPoolSize(50).
		SetMaxConnIdleTime(30 * time.Second).
		SetRetryWrites(true).
		SetRetryReads(true)

	var client *mongo.Client
	var err error

	maxRetries := 5
	initialBackoff := 500 * time.Millisecond
	maxBackoff := 10 * time.Second

	for attempt := 0; attempt < maxRetries; attempt++ {
		connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		client, err = mongo.Connect(connCtx, clientOptions)
		cancel()

		if err == nil {
			pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
			pingErr := client.Ping(pingCtx, readpref.Primary())
			pingCancel()

			if pingErr == nil {
				logger.Infow("Successfully connected to MongoDB", "attempt", attempt+1)
				return client, nil
			}
			err = pingErr
			_ = client.Disconnect(ctx)
		}

		backoff := backoffFor(attempt, initialBackoff, maxBackoff)
		logger.Warnw("Failed to connect to MongoDB, retrying",
			"attempt", attempt+1,
			"maxRetries", maxRetries,
			"backoff", backoff,
			"error", err)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled while connecting to MongoDB: %w", ctx.Err())
		}
	}

	return nil, fmt.Errorf("failed to connect to MongoDB after %d attempts: %w", maxRetries, err)
}

// backoffFor doubles initial per attempt up to max, with ±20% jitter
func backoffFor(attempt int, initial, max time.Duration) time.Duration {
	backoff := float64(initial) * math.Pow(2, float64(attempt))
	if backoff > float64(max) {
		backoff = float64(max)
	}
	jitter := 0.8 + 0.4*float64(time.Now().UnixNano()%1000)/1000.0
	return time.Duration(backoff * jitter)
}

// CreateIndexes creates the indexes the history store queries rely on
func CreateIndexes(ctx context.Context, db *mongo.Database, gamesColl, eventsColl string) error {
	_, err := db.Collection(eventsColl).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "gameId", Value: 1}, {Key: "seq", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create events index: %w", err)
	}

	_, err = db.Collection(gamesColl).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "code", Value: 1}}},
		{Keys: bson.D{{Key: "endedAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create games indexes: %w", err)
	}
	return nil
}
