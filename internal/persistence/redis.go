package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khushboocodes/QuickDesk/internal/config"
)

// Redis backs the category cache and the logout denylist. Client is nil
// when REDIS_ADDR is unset, and both features then degrade to no-ops.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds the client. An unreachable server is logged but not
// fatal; go-redis reconnects on its own once the server comes back.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if cfg.Addr == "" {
		logger.Warn("REDIS_ADDR not provided; category cache and logout denylist disabled")
		return &Redis{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable at startup", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	}
	return &Redis{Client: client}
}

// Handle returns the client, nil when Redis is not configured.
func (r *Redis) Handle() *redis.Client {
	if r == nil {
		return nil
	}
	return r.Client
}

// Ping is used by the readiness probe.
func (r *Redis) Ping(ctx context.Context) error {
	client := r.Handle()
	if client == nil {
		return fmt.Errorf("redis: %w", ErrNotConfigured)
	}
	return client.Ping(ctx).Err()
}

func (r *Redis) Close() {
	if client := r.Handle(); client != nil {
		_ = client.Close()
	}
}
