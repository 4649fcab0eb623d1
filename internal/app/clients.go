package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/contentflow-backend/internal/clients/redis"
	"github.com/yungbote/contentflow-backend/internal/platform/logger"
	"github.com/yungbote/contentflow-backend/internal/platform/storage"
	"github.com/yungbote/contentflow-backend/internal/realtime/bus"
)

type Clients struct {
	Redis *goredis.Client
	Bus   bus.Bus
	Files storage.Releaser
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis
	var rdb *goredis.Client
	if cfg.RedisAddr != "" {
		c, err := redis.NewClient(ctx, log, redis.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		rdb = c
	}

	// Realtime bus: Redis pub/sub across replicas, in-process otherwise.
	var b bus.Bus
	if rdb != nil {
		rb, err := bus.NewRedisBus(log, rdb, cfg.RedisChannel)
		if err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
		}
		b = rb
	} else {
		b = bus.NewLocalBus()
	}

	// Files
	files, err := resolveFileStore(ctx, log, cfg.Storage)
	if err != nil {
		_ = b.Close()
		if rdb != nil {
			_ = rdb.Close()
		}
		return Clients{}, err
	}

	return Clients{Redis: rdb, Bus: b, Files: files}, nil
}

func (c Clients) Close() {
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
