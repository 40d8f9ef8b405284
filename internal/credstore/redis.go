package credstore

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/threatlens/console-client/internal/config"
	"github.com/threatlens/console-client/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// credentialKey is the fixed name of the single durable entry in Redis.
const credentialKey = "threatlens:credential"

// Redis keeps the credential in a single fixed key so multiple console
// replicas share one session. No TTL is set: expiry is discovered only by the
// backend rejecting a request.
type Redis struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewRedis creates a Redis-backed store and verifies connectivity.
func NewRedis(cfg *config.RedisConfig, logger *logrus.Logger) (*Redis, error) {
	options := &redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.Database,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		PoolTimeout:  cfg.PoolTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
	}

	// TLS for managed Redis with in-transit encryption
	if cfg.TLSEnabled {
		options.TLSConfig = &tls.Config{
			ServerName: extractHostname(cfg.Address),
		}
		logger.WithField("address", cfg.Address).Info("Redis TLS encryption enabled")
	}

	client := redis.NewClient(options)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Redis{client: client, logger: logger}, nil
}

// NewRedisWithClient wraps an existing client, used by tests.
func NewRedisWithClient(client *redis.Client, logger *logrus.Logger) *Redis {
	return &Redis{client: client, logger: logger}
}

func (r *Redis) Get(ctx context.Context) (string, error) {
	token, err := r.client.Get(ctx, credentialKey).Result()
	if errors.Is(err, redis.Nil) {
		metrics.RecordStoreOperation("redis", "get", "miss")
		return "", ErrNoCredential
	}
	if err != nil {
		metrics.RecordStoreOperation("redis", "get", "failure")
		return "", fmt.Errorf("credstore: redis get: %w", err)
	}
	metrics.RecordStoreOperation("redis", "get", "success")
	return token, nil
}

func (r *Redis) Set(ctx context.Context, token string) error {
	if err := r.client.Set(ctx, credentialKey, token, 0).Err(); err != nil {
		metrics.RecordStoreOperation("redis", "set", "failure")
		return fmt.Errorf("credstore: redis set: %w", err)
	}
	metrics.RecordStoreOperation("redis", "set", "success")
	return nil
}

func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, credentialKey).Err(); err != nil {
		metrics.RecordStoreOperation("redis", "clear", "failure")
		return fmt.Errorf("credstore: redis clear: %w", err)
	}
	metrics.RecordStoreOperation("redis", "clear", "success")
	return nil
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

func extractHostname(address string) string {
	if idx := strings.Index(address, ":"); idx > 0 {
		return address[:idx]
	}
	return address
}
