package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/briefflow/briefflow-backend/config"
)

type DB struct {
	Client *redis.Client
}

func Open(ctx context.Context, cfg config.RedisConfig) (*DB, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("REDIS_ADDR is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Fail fast
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &DB{Client: client}, nil
}

func (d *DB) Close() {
	if d != nil && d.Client != nil {
		d.Client.Close()
	}
}
