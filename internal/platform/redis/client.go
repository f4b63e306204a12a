// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis connects the remote storage mode to Redis.

Redis holds the data that expires on its own: refresh token sessions and each
user's capped notification feed. Neither needs the durability of the
PostgreSQL tables, so a flushed Redis only signs users out and empties their
feeds.
*/
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout = 3 * time.Second
	ioTimeout   = 2 * time.Second
	pingTimeout = 2 * time.Second

	// Sessions and feeds are small single-key reads and writes.
	poolSize     = 10
	minIdleConns = 2
)

// NewClient parses redisURL, applies the pool settings and pings the server
// before returning.
func NewClient(ctx context.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	options.PoolSize = poolSize
	options.MinIdleConns = minIdleConns
	options.DialTimeout = dialTimeout
	options.ReadTimeout = ioTimeout
	options.WriteTimeout = ioTimeout

	client := redis.NewClient(options)
	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
		slog.Int("pool_size", options.PoolSize),
	)
	return client, nil
}

// Ping checks the connection within pingTimeout.
func Ping(ctx context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}
	return nil
}

// HealthCheck adapts [Ping] to the readiness probe signature.
func HealthCheck(client *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return Ping(ctx, client)
	}
}
