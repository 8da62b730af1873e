package bootstrap

import (
	"context"

	"github.com/redis/go-redis/v9"

	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
	infraredis "github.com/oe/sunrain-sub002/infrastructure/redis"
	"github.com/oe/sunrain-sub002/website/internal/config"
)

// SetupRedis connects when redis is enabled. It returns nil, nil when it
// is disabled.
func SetupRedis(ctx context.Context, cfg *config.Config, log infralogger.Logger) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}

	client, err := infraredis.NewClient(ctx, infraredis.Config{
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}

	log.Info("Redis connected", infralogger.String("redis_address", cfg.Redis.Address))
	return client, nil
}
