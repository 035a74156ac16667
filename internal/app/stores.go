// Package app wires storage and notification backends from configuration.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stemsi/cyberassess-backend/internal/config"
	"github.com/stemsi/cyberassess-backend/internal/database"
	"github.com/stemsi/cyberassess-backend/internal/repository"
	"github.com/stemsi/cyberassess-backend/internal/service"
)

// Stores are the repositories selected by STORAGE_DRIVER.
type Stores struct {
	Driver      string
	Submissions service.SubmissionStore
	Admins      service.AdminStore

	mongo *mongo.Client
	pool  *pgxpool.Pool
}

// OpenStores connects to the configured backend. A failed connection is fatal
// to the caller: nothing can be recorded without storage.
func OpenStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Stores, error) {
	st := &Stores{Driver: cfg.StorageDriver}

	switch cfg.StorageDriver {
	case config.StorageMongo:
		client, err := database.NewMongoClient(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		st.mongo = client
		st.Submissions = repository.NewMongoSubmissionRepository(db, cfg.StoreOpTimeout)
		st.Admins = repository.NewMongoAdminRepository(db)

	case config.StoragePostgres:
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		st.pool = pool
		st.Submissions = repository.NewPostgresSubmissionRepository(pool, cfg.StoreOpTimeout)
		st.Admins = repository.NewPostgresAdminRepository(pool)

	case config.StorageMemory:
		log.Warn().Msg("Using in-memory storage; records are lost on restart")
		st.Submissions = repository.NewMemorySubmissionRepository()
		st.Admins = repository.NewMemoryAdminRepository()

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
	return st, nil
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// EnsureIndexes creates document-store indexes, including the unique
// fingerprint index duplicate detection relies on. SQL backends get theirs
// from migrations.
func (s *Stores) EnsureIndexes(ctx context.Context) error {
	for _, store := range []any{s.Submissions, s.Admins} {
		if ix, ok := store.(indexer); ok {
			if err := ix.EnsureIndexes(ctx); err != nil {
				return fmt.Errorf("ensure indexes: %w", err)
			}
		}
	}
	return nil
}

// Close releases the backend connection.
func (s *Stores) Close(ctx context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.mongo != nil {
		return s.mongo.Disconnect(ctx)
	}
	return nil
}
