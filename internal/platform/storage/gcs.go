package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/contentflow-backend/internal/platform/logger"
)

type gcsReleaser struct {
	log    *logger.Logger
	client *storage.Client
	bucket string
}

func NewGCS(ctx context.Context, log *logger.Logger, cfg Config) (Releaser, error) {
	bucket := strings.TrimSpace(cfg.GCSBucket)
	if bucket == "" {
		return nil, fmt.Errorf("missing env var GCS_BUCKET")
	}
	var opts []option.ClientOption
	if Mode(strings.ToLower(string(cfg.Mode))) == ModeGCSEmulator {
		host := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
		if host == "" {
			return nil, fmt.Errorf("STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST to be set", ModeGCSEmulator)
		}
		_ = os.Setenv("STORAGE_EMULATOR_HOST", host)
		opts = append(opts, option.WithoutAuthentication())
	} else {
		opts = append(clientOptionsFromEnv(), option.WithScopes(storage.ScopeReadWrite))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	log.Info("Object storage initialized", "mode", cfg.Mode, "bucket", bucket)
	return &gcsReleaser{log: log.With("service", "GCSStorage"), client: client, bucket: bucket}, nil
}

func (r *gcsReleaser) Release(ctx context.Context, path string) error {
	key := ObjectKey(path)
	if key == "" {
		return fmt.Errorf("empty file path")
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := r.client.Bucket(r.bucket).Object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			r.log.Debug("object already gone", "key", key)
			return nil
		}
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, r.bucket, err)
	}
	return nil
}

// ObjectKey strips a leading slash and a public "uploads/" prefix so stored
// attachment paths map onto bucket keys.
func ObjectKey(path string) string {
	key := strings.TrimSpace(path)
	key = strings.TrimPrefix(key, "/")
	return strings.TrimPrefix(key, "uploads/")
}

func clientOptionsFromEnv() []option.ClientOption {
	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}
