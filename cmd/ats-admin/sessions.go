package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/minboot/ats-web/config"
	redisstore "github.com/minboot/ats-web/internal/adapters/redis"
	"github.com/minboot/ats-web/internal/bootstrap"
	"github.com/minboot/ats-web/internal/ports"
)

func purgeRedisSessions(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (int, error) {
	client, err := bootstrap.ConnectRedis(ctx, bootstrap.RedisConfig{Redis: cfg.Redis, Logger: logger})
	if err != nil {
		return 0, fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			logger.WarnContext(ctx, "close redis failed", "error", cerr)
		}
	}()

	var purger ports.SessionPurger = redisstore.NewSessionStore(client)
	return purger.Purge(ctx)
}
