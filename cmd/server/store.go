package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ignite/lead-console/internal/config"
	"github.com/ignite/lead-console/internal/leadstore"
	"github.com/ignite/lead-console/internal/leadstore/dynamo"
	"github.com/ignite/lead-console/internal/leadstore/memstore"
	"github.com/ignite/lead-console/internal/leadstore/postgres"
	"github.com/ignite/lead-console/internal/leadstore/postgrest"
	"github.com/ignite/lead-console/internal/leadstore/redisstore"
	"github.com/ignite/lead-console/internal/pkg/logger"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"
)

// pingerStore is what every driver provides.
type pingerStore interface {
	leadstore.Store
	leadstore.Pinger
}

// openStore builds the configured driver. The returned close func releases
// its connections.
func openStore(ctx context.Context, cfg config.StoreConfig) (pingerStore, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgREST:
		logger.Info("using postgrest store", "url", cfg.URL, "table", cfg.Table)
		return postgrest.NewClient(cfg), func() {}, nil

	case config.DriverPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			// reads will fail and be reported until the database is back
			logger.Warn("database not reachable at start-up", "error", err)
		}
		logger.Info("using postgres store", "table", cfg.Table)
		return postgres.NewLeadRepo(db, cfg.Table), func() { db.Close() }, nil

	case config.DriverRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis not reachable at start-up", "error", err)
		}
		logger.Info("using redis store", "prefix", cfg.RedisPrefix)
		return redisstore.New(client, cfg.RedisPrefix), func() { client.Close() }, nil

	case config.DriverDynamoDB:
		store, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using dynamodb store", "region", cfg.AWSRegion, "table", cfg.Table)
		return store, func() {}, nil

	case config.DriverMemory:
		if cfg.SeedFile == "" {
			logger.Info("using empty in-memory store")
			return memstore.New(), func() {}, nil
		}
		store, err := memstore.LoadFile(cfg.SeedFile)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using in-memory store", "seed_file", cfg.SeedFile)
		return store, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
