package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/contentflow-backend/internal/platform/logger"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewClient dials Redis and fails fast when the server does not answer a ping.
func NewClient(ctx context.Context, log *logger.Logger, cfg Config) (*goredis.Client, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if log != nil {
		log.Info("Redis connected", "addr", addr, "db", strconv.Itoa(cfg.DB))
	}
	return rdb, nil
}

// Sequence is a named counter incremented with INCR. Values are unique and
// increasing; a value handed out to a caller that later fails is not reused.
type Sequence struct {
	rdb    goredis.Cmdable
	prefix string
}

func NewSequence(rdb goredis.Cmdable, prefix string) *Sequence {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "contentflow:seq:"
	}
	return &Sequence{rdb: rdb, prefix: prefix}
}

func (s *Sequence) Key(name string) string {
	return s.prefix + strings.TrimSpace(name)
}

func (s *Sequence) Next(ctx context.Context, name string) (int64, error) {
	if s == nil || s.rdb == nil {
		return 0, fmt.Errorf("redis sequence not initialized")
	}
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("sequence name required")
	}
	return s.rdb.Incr(ctx, s.Key(name)).Result()
}

// EnsureAtLeast raises the counter to floor when it is lower, so switching
// backends never reissues a number.
func (s *Sequence) EnsureAtLeast(ctx context.Context, name string, floor int64) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("redis sequence not initialized")
	}
	key := s.Key(name)
	cur, err := s.rdb.Get(ctx, key).Int64()
	if err != nil && err != goredis.Nil {
		return err
	}
	if cur >= floor {
		return nil
	}
	return s.rdb.IncrBy(ctx, key, floor-cur).Err()
}
