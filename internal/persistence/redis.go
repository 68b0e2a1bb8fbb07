package persistence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-service/internal/config"
)

// Redis holds the shared counters of the account rate limiter. Requests keep
// flowing when it is down, so it is dialed lazily and never fatal.
type Redis struct {
	client *redis.Client
	addr   string
}

// NewRedis builds the client and reports, without failing, whether the
// server answered.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	r := &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		addr: cfg.Addr,
	}
	if err := r.Ping(ctx); err != nil {
		logger.Warn("redis unreachable; rate limiting will let requests through", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	}
	return r
}

// Scripter exposes the Lua scripting surface the rate limiter runs on.
func (r *Redis) Scripter() redis.Scripter {
	return r.client
}

// Ping backs the readiness probe.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis %s: %w", r.addr, err)
	}
	return nil
}

// Close closes the client.
func (r *Redis) Close() {
	_ = r.client.Close()
}
