package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/contentflow-backend/internal/platform/logger"
)

type Mode string

const (
	ModeLocal       Mode = "local"
	ModeGCS         Mode = "gcs"
	ModeGCSEmulator Mode = "gcs_emulator"
	ModeNone        Mode = "none"
)

// Releaser frees the stored bytes behind an attachment path. Releasing a path
// that no longer exists is not an error.
type Releaser interface {
	Release(ctx context.Context, path string) error
}

type Config struct {
	Mode         Mode
	UploadRoot   string
	GCSBucket    string
	EmulatorHost string
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (Releaser, error) {
	if log == nil {
		log = logger.Nop()
	}
	mode := Mode(strings.ToLower(strings.TrimSpace(string(cfg.Mode))))
	switch mode {
	case "", ModeLocal:
		return NewLocal(log, cfg.UploadRoot)
	case ModeGCS, ModeGCSEmulator:
		return NewGCS(ctx, log, cfg)
	case ModeNone:
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("invalid STORAGE_MODE=%q (allowed: %q, %q, %q, %q)", cfg.Mode, ModeLocal, ModeGCS, ModeGCSEmulator, ModeNone)
	}
}

type Nop struct{}

func (Nop) Release(context.Context, string) error { return nil }
