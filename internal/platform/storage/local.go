package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yungbote/contentflow-backend/internal/platform/logger"
)

type localReleaser struct {
	log  *logger.Logger
	root string
}

// NewLocal releases files kept under root. Attachment paths are stored as
// "/uploads/<name>" or as paths relative to root.
func NewLocal(log *logger.Logger, root string) (Releaser, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		root = "uploads"
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload root %q: %w", root, err)
	}
	return &localReleaser{log: log.With("service", "LocalStorage"), root: abs}, nil
}

func (r *localReleaser) Release(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := r.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.log.Debug("file already gone", "path", path)
			return nil
		}
		return fmt.Errorf("remove %q: %w", path, err)
	}
	r.log.Debug("file released", "path", path)
	return nil
}

func (r *localReleaser) resolve(path string) (string, error) {
	rel := strings.TrimSpace(path)
	rel = strings.TrimPrefix(rel, "/")
	rel = strings.TrimPrefix(rel, "uploads/")
	if rel == "" {
		return "", fmt.Errorf("empty file path")
	}
	full := filepath.Join(r.root, filepath.FromSlash(rel))
	if full != r.root && !strings.HasPrefix(full, r.root+string(filepath.Separator)) {
		return "", fmt.Errorf("file path %q escapes upload root", path)
	}
	return full, nil
}
