package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/contentflow-backend/internal/platform/logger"
	"github.com/yungbote/contentflow-backend/internal/platform/storage"
)

var newFileStore = storage.New

type StorageBootstrapErrorCode string

const (
	StorageBootstrapErrorInvalidMode         StorageBootstrapErrorCode = "invalid_mode"
	StorageBootstrapErrorMissingEmulatorHost StorageBootstrapErrorCode = "missing_emulator_host"
	StorageBootstrapErrorMissingBucket       StorageBootstrapErrorCode = "missing_bucket"
	StorageBootstrapErrorConnectFailed       StorageBootstrapErrorCode = "connect_failed"
)

type StorageBootstrapError struct {
	Code         StorageBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageBootstrapError) Error() string {
	if e == nil {
		return "file storage bootstrap failed"
	}
	return fmt.Sprintf(
		"file storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveFileStore picks the backend that releases attachment bytes when
// content is deleted or its files are replaced.
func resolveFileStore(ctx context.Context, log *logger.Logger, cfg storage.Config) (storage.Releaser, error) {
	cfg.Mode = storage.Mode(strings.ToLower(strings.TrimSpace(string(cfg.Mode))))
	cfg.EmulatorHost = strings.TrimSpace(cfg.EmulatorHost)

	if err := checkStorageConfig(cfg); err != nil {
		log.Error(
			"File storage selection failed",
			"mode", cfg.Mode,
			"emulator_host", cfg.EmulatorHost,
			"error_code", storageBootstrapErrorCode(err),
			"error", err,
		)
		return nil, err
	}

	log.Info("Selecting file storage", "mode", cfg.Mode, "bucket", cfg.GCSBucket, "emulator_host", cfg.EmulatorHost)

	store, err := newFileStore(ctx, log, cfg)
	if err != nil {
		classified := &StorageBootstrapError{
			Code:         StorageBootstrapErrorConnectFailed,
			Mode:         string(cfg.Mode),
			EmulatorHost: cfg.EmulatorHost,
			Cause:        err,
		}
		log.Error(
			"File storage bootstrap failed",
			"mode", cfg.Mode,
			"emulator_host", cfg.EmulatorHost,
			"error_code", classified.Code,
			"error", err,
		)
		return nil, classified
	}
	return store, nil
}

func checkStorageConfig(cfg storage.Config) error {
	fail := func(code StorageBootstrapErrorCode, cause error) error {
		return &StorageBootstrapError{
			Code:         code,
			Mode:         string(cfg.Mode),
			EmulatorHost: cfg.EmulatorHost,
			Cause:        cause,
		}
	}
	switch cfg.Mode {
	case "", storage.ModeLocal, storage.ModeNone:
		return nil
	case storage.ModeGCS:
	case storage.ModeGCSEmulator:
		if cfg.EmulatorHost == "" {
			return fail(StorageBootstrapErrorMissingEmulatorHost, fmt.Errorf("STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST", cfg.Mode))
		}
	default:
		return fail(StorageBootstrapErrorInvalidMode, fmt.Errorf("unsupported storage mode %q", cfg.Mode))
	}
	if strings.TrimSpace(cfg.GCSBucket) == "" {
		return fail(StorageBootstrapErrorMissingBucket, fmt.Errorf("STORAGE_MODE=%q requires GCS_BUCKET", cfg.Mode))
	}
	return nil
}

func storageBootstrapErrorCode(err error) StorageBootstrapErrorCode {
	var bootstrapErr *StorageBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return StorageBootstrapErrorConnectFailed
}
