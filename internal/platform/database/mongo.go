package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// NewMongo connects a mongo.Database configured for Gather's workload.
// The returned close function releases the underlying client.
func NewMongo(ctx context.Context, uri, name string) (*mongo.Database, func(), error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(10).
		SetMaxConnIdleTime(5*time.Minute))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	cleanup := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}

	return client.Database(name), cleanup, nil
}

// EnsureIndexes creates the secondary access paths the queries rely on.
// The users collection needs nothing extra: its unique key is _id itself,
// which is what rejects a concurrent duplicate first-login insert.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("groups").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "data.emails", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create groups invite index: %w", err)
	}
	return nil
}
