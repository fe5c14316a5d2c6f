package database

import (
	"context"
	"fmt"

	"github.com/jordanlanch/leadboard/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectMongo connects to uri and returns the named database once the primary answers
func ConnectMongo(ctx context.Context, uri, dbName string, log logger.Logger) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetAppName("leadboard").
		SetMaxPoolSize(25)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed creating mongo client: %w", err)
	}

	ping := func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
	if err := withRetry(ctx, log, "mongo", ping); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed connecting to mongo: %w", err)
	}

	log.Info("mongo connected", "database", dbName)
	return client, client.Database(dbName), nil
}
