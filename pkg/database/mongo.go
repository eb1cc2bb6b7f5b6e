package database

import (
	"context"
	"fmt"
	"time"

	"travelwise/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo holds an established MongoDB connection.
type Mongo struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Connect opens a client for cfg.MongoURI and pings the primary. The whole
// attempt is bounded by cfg.MongoConnectTimeout. There is no retry.
func Connect(ctx context.Context, cfg *config.Config) (*Mongo, error) {
	timeout := cfg.MongoConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetAppName("travelwise-api").
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &Mongo{
		Client:   client,
		Database: client.Database(cfg.MongoDatabase),
	}, nil
}

// Ping is used by the health endpoint.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Disconnect(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
