package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/contentflow-backend/internal/data/db"
	"github.com/yungbote/contentflow-backend/internal/platform/envutil"
	"github.com/yungbote/contentflow-backend/internal/platform/logger"
	"github.com/yungbote/contentflow-backend/internal/platform/storage"
	"github.com/yungbote/contentflow-backend/internal/services"
)

type Config struct {
	Port    string
	LogMode string

	DB db.Config

	TicketPrefix  string
	TicketBackend string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string

	Storage storage.Config

	MetricsEnabled bool
	MetricsAddr    string

	ServiceName string
	Environment string
	Version     string
	OtelEnabled bool

	CORSOrigins []string
}

// LoadEnvFile preloads ENV_FILE (default ".env") into the process environment.
// A missing file is not an error; variables already set win.
func LoadEnvFile() error {
	path := envutil.String("ENV_FILE", ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %q: %w", path, err)
	}
	return nil
}

func LoadConfig(log *logger.Logger) (Config, error) {
	env := envReader{log: log}
	cfg := Config{
		Port:    env.String("PORT", "8080"),
		LogMode: env.String("LOG_MODE", "development"),
		DB: db.Config{
			Driver:           strings.ToLower(env.String("DB_DRIVER", "postgres")),
			PostgresHost:     env.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     env.String("POSTGRES_PORT", "5432"),
			PostgresUser:     env.String("POSTGRES_USER", "postgres"),
			PostgresPassword: env.Secret("POSTGRES_PASSWORD", ""),
			PostgresName:     env.String("POSTGRES_NAME", "contentflow"),
			PostgresSSLMode:  env.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath:       env.String("SQLITE_PATH", "contentflow.db"),
			MaxOpenConns:     env.Int("DB_MAX_OPEN_CONNS", 20),
			SlowQuery:        env.Duration("DB_SLOW_QUERY", 200*time.Millisecond),
		},
		TicketPrefix:  env.String("TICKET_PREFIX", services.DefaultTicketPrefix),
		TicketBackend: strings.ToLower(env.String("TICKET_SEQUENCE_BACKEND", services.TicketBackendDB)),
		RedisAddr:     env.String("REDIS_ADDR", ""),
		RedisPassword: env.Secret("REDIS_PASSWORD", ""),
		RedisDB:       env.Int("REDIS_DB", 0),
		RedisChannel:  env.String("REDIS_CHANNEL", "contentflow:events"),
		Storage: storage.Config{
			Mode:         storage.Mode(strings.ToLower(env.String("STORAGE_MODE", string(storage.ModeLocal)))),
			UploadRoot:   env.String("UPLOAD_ROOT", "uploads"),
			GCSBucket:    env.String("GCS_BUCKET", ""),
			EmulatorHost: env.String("STORAGE_EMULATOR_HOST", ""),
		},
		MetricsEnabled: env.Bool("METRICS_ENABLED", false),
		MetricsAddr:    env.String("METRICS_ADDR", ":9090"),
		ServiceName:    env.String("OTEL_SERVICE_NAME", "contentflow"),
		Environment:    env.String("OTEL_ENVIRONMENT", "development"),
		Version:        env.String("SERVICE_VERSION", "dev"),
		OtelEnabled:    env.Bool("OTEL_ENABLED", false),
		CORSOrigins:    env.List("CORS_ORIGINS", nil),
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("invalid DB_DRIVER=%q (allowed: postgres, sqlite)", c.DB.Driver)
	}
	switch c.TicketBackend {
	case services.TicketBackendDB:
	case services.TicketBackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("TICKET_SEQUENCE_BACKEND=%q requires REDIS_ADDR", services.TicketBackendRedis)
		}
	default:
		return fmt.Errorf("invalid TICKET_SEQUENCE_BACKEND=%q (allowed: %s, %s)", c.TicketBackend, services.TicketBackendDB, services.TicketBackendRedis)
	}
	if strings.TrimSpace(c.TicketPrefix) == "" {
		return fmt.Errorf("TICKET_PREFIX must not be empty")
	}
	return nil
}

// envReader debug-logs every lookup so a misconfigured deploy shows what was read.
type envReader struct {
	log *logger.Logger
}

func (e envReader) String(key, def string) string {
	v := envutil.String(key, def)
	e.debug(key, v)
	return v
}

// Secret reads a value without logging it.
func (e envReader) Secret(key, def string) string {
	v := envutil.String(key, def)
	if e.log != nil {
		e.log.Debug("env", "key", key, "set", v != "")
	}
	return v
}

func (e envReader) Int(key string, def int) int {
	v := envutil.Int(key, def)
	e.debug(key, v)
	return v
}

func (e envReader) Bool(key string, def bool) bool {
	v := envutil.Bool(key, def)
	e.debug(key, v)
	return v
}

func (e envReader) Duration(key string, def time.Duration) time.Duration {
	v := envutil.Duration(key, def)
	e.debug(key, v.String())
	return v
}

func (e envReader) List(key string, def []string) []string {
	v := envutil.List(key, def)
	e.debug(key, strings.Join(v, ","))
	return v
}

func (e envReader) debug(key string, val interface{}) {
	if e.log != nil {
		e.log.Debug("env", "key", key, "value", val)
	}
}
