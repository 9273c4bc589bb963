// Package bootstrap connects the backing services shared by the commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"careerhub/internal/cache"
	"careerhub/internal/config"
	"careerhub/internal/database"
	"careerhub/internal/ingest"
	"careerhub/internal/middleware"
	"careerhub/internal/models"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// Search connects the MongoDB search index.
	Search bool
	// NATS connects the ingest bus when NATS_URL is set.
	NATS bool
	// Name identifies the process on the NATS connection.
	Name string
}

// Runtime holds the live connections of one process.
type Runtime struct {
	DB          *gorm.DB
	Redis       *redis.Client
	MongoClient *mongo.Client
	Search      *mongo.Database
	NATS        *nats.Conn
}

// InitRuntime connects to the database and Redis, then to the search index and
// NATS as requested by opts. Redis is optional: a nil client disables caching.
func InitRuntime(cfg *config.Config, opts Options) (*Runtime, error) {
	middleware.ConfigureLogger(cfg.Env, cfg.LogLevel)

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	rt := &Runtime{DB: db}

	cache.InitRedis(cfg.RedisURL)
	rt.Redis = cache.GetClient()

	if err := ensureDevUser(cfg, db); err != nil {
		rt.Close(context.Background())
		return nil, fmt.Errorf("failed to bootstrap development user: %w", err)
	}

	if opts.Search {
		client, search, err := database.ConnectMongo(cfg)
		if err != nil {
			rt.Close(context.Background())
			return nil, err
		}
		rt.MongoClient, rt.Search = client, search
	}

	if opts.NATS && cfg.NATSURL != "" {
		name := opts.Name
		if name == "" {
			name = "careerhub"
		}
		nc, err := ingest.Connect(cfg.NATSURL, name)
		if err != nil {
			rt.Close(context.Background())
			return nil, err
		}
		rt.NATS = nc
	}

	return rt, nil
}

// Close releases every connection that was opened.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if rt.NATS != nil {
		if err := rt.NATS.Drain(); err != nil {
			errs = append(errs, fmt.Errorf("nats drain: %w", err))
		}
	}
	if rt.MongoClient != nil {
		if err := rt.MongoClient.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongo disconnect: %w", err))
		}
	}
	if rt.Redis != nil {
		if err := rt.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if rt.DB != nil {
		if sqlDB, err := rt.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("database close: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}

func ensureDevUser(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapUser {
		return nil
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		findErr := tx.First(&user, 1).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			user = models.User{ID: 1, Email: "dev@careerhub.local", Nickname: "dev"}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
		case findErr != nil:
			return findErr
		default:
			return nil
		}

		// Keep the users sequence ahead of the explicit ID insertion.
		// This is PostgreSQL-specific.
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec(`
				SELECT setval(
					pg_get_serial_sequence('users', 'id'),
					GREATEST((SELECT COALESCE(MAX(id), 1) FROM users), 1),
					true
				)
			`).Error; err != nil {
				return fmt.Errorf("failed to reset users sequence: %w", err)
			}
		}
		return nil
	}); err != nil {
		return err
	}

	middleware.Logger.Info("Development user ensured", "user_id", 1)
	return nil
}
