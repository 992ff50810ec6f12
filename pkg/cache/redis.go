// Package cache connects to Redis. The application keeps working without it.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const pingTimeout = 5 * time.Second

// Connect accepts a redis:// URL or a bare host:port. It returns nil when
// addr is empty or the server cannot be reached.
func Connect(ctx context.Context, addr string) *redis.Client {
	if addr == "" {
		return nil
	}

	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			log.Warn().Err(err).Msg("Invalid REDIS_URL, continuing without redis")
			return nil
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", opts.Addr).Msg("Redis unreachable, continuing without redis")
		_ = client.Close()
		return nil
	}

	log.Info().Str("addr", opts.Addr).Msg("Redis connected")
	return client
}
