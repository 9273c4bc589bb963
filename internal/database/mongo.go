package database

import (
	"context"
	"fmt"
	"time"

	"careerhub/internal/config"
	"careerhub/internal/middleware"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	mongoConnectTimeout = 10 * time.Second
	mongoPingTimeout    = 5 * time.Second
)

// ConnectMongo opens the search index connection and returns the client together
// with the configured database.
func ConnectMongo(cfg *config.Config) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.MongoURI).
		SetAppName("careerhub").
		SetMaxPoolSize(50)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), mongoPingTimeout)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	middleware.Logger.Info("Connected to search index", "database", cfg.MongoDB)
	return client, client.Database(cfg.MongoDB), nil
}
