// AngelaMos | 2026
// redis.go

package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/agriconnect/internal/config"
)

const redisRetryBase = 500 * time.Millisecond

type Redis struct {
	Client *redis.Client
}

// NewRedis connects and pings, retrying up to cfg.ConnectRetries more
// times with a growing jittered delay.
func NewRedis(
	ctx context.Context,
	cfg config.RedisConfig,
	logger *slog.Logger,
) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.PoolTimeout = 30 * time.Second
	opts.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opts)
	r := &Redis{Client: client}

	for attempt := 0; ; attempt++ {
		err = r.Ping(ctx)
		if err == nil {
			return r, nil
		}
		if attempt >= cfg.ConnectRetries {
			break
		}

		delay := jitteredDuration(redisRetryBase * time.Duration(attempt+1))
		if logger != nil {
			logger.WarnContext(ctx, "redis not reachable, retrying",
				"attempt", attempt+1,
				"delay", delay,
				"error", err,
			)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			_ = client.Close() //nolint:errcheck // cleanup on cancel
			return nil, fmt.Errorf("connect redis: %w", ctx.Err())
		}
	}

	_ = client.Close() //nolint:errcheck // cleanup on connection failure
	return nil, fmt.Errorf("connect redis: %w", err)
}

func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := r.Client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	return nil
}

func (r *Redis) PoolStats() *redis.PoolStats {
	return r.Client.PoolStats()
}
