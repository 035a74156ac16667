package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/cyberassess-backend/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Pool and timeout settings for the document store.
const (
	mongoMinPool                = 1
	mongoServerSelectionTimeout = 30 * time.Second
	mongoConnectTimeout         = 30 * time.Second
	mongoSocketTimeout          = 60 * time.Second
)

// NewMongoClient connects to MongoDB and validates the connection with a ping.
func NewMongoClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(uint64(cfg.MaxDBConns)).
		SetMinPoolSize(mongoMinPool).
		SetServerSelectionTimeout(mongoServerSelectionTimeout).
		SetConnectTimeout(mongoConnectTimeout).
		SetSocketTimeout(mongoSocketTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	log.Info().
		Str("database", cfg.MongoDatabase).
		Int32("max_pool", cfg.MaxDBConns).
		Msg("MongoDB connected")

	return client, nil
}
