package redis

import (
	"context"
	"hotel/config"
	"net"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// New connects to the primary node. The process refuses to start without it because the account cache
// and the rate limiter live there.
func New(cfg *config.Config) *goRedis.Client {
	primary := cfg.Cache.Redis.Primary
	addr := net.JoinHostPort(primary.Host, primary.Port)

	client := goRedis.NewClient(&goRedis.Options{
		Addr:        addr,
		Password:    primary.Password,
		DB:          primary.DB,
		PoolSize:    primary.PoolSize,
		DialTimeout: primary.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), primary.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", addr).Msg("Failed to connect to Redis")
	}

	log.Info().Str("addr", addr).Int("db", primary.DB).Int("poolSize", primary.PoolSize).Msg("Connected to Redis")

	return client
}

// ProvideUniversal exposes the client through the interface the cache and limiter depend on.
func ProvideUniversal(client *goRedis.Client) goRedis.UniversalClient {
	return client
}
