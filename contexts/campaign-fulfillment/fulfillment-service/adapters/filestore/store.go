package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	application "creatorflow/contexts/campaign-fulfillment/fulfillment-service/application"
	domainerrors "creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/errors"

	"github.com/spf13/afero"
)

// Store persists upload bodies below root on an afero filesystem. Production
// uses the OS filesystem; tests use an in-memory one.
type Store struct {
	fs     afero.Fs
	root   string
	logger *slog.Logger
}

func NewStore(fs afero.Fs, root string, logger *slog.Logger) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	root = strings.TrimSpace(root)
	if root == "" {
		root = "."
	}
	return &Store{
		fs:     fs,
		root:   path.Clean(root),
		logger: application.ResolveLogger(logger),
	}
}

// NewOSStore stores objects on the local disk below root. A relative root
// is resolved against the working directory.
func NewOSStore(root string, logger *slog.Logger) *Store {
	if abs, err := filepath.Abs(strings.TrimSpace(root)); err == nil {
		root = filepath.ToSlash(abs)
	}
	return NewStore(afero.NewOsFs(), root, logger)
}

func (s *Store) PutObject(ctx context.Context, key string, contentType string, body io.Reader, size int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	target, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(path.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create object directory: %w", err)
	}

	file, err := s.fs.Create(target)
	if err != nil {
		return "", fmt.Errorf("create object: %w", err)
	}
	written, copyErr := io.Copy(file, body)
	closeErr := file.Close()
	if copyErr != nil {
		_ = s.fs.Remove(target)
		return "", fmt.Errorf("write object: %w", copyErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("close object: %w", closeErr)
	}
	if size > 0 && written != size {
		s.logger.Warn("stored object size differs from declared size",
			"event", "filestore_size_mismatch",
			"module", application.ModuleName,
			"layer", "adapter",
			"key", key,
			"declared_size", size,
			"written_size", written,
		)
	}

	s.logger.Debug("object stored",
		"event", "filestore_object_stored",
		"module", application.ModuleName,
		"layer", "adapter",
		"key", key,
		"content_type", contentType,
		"size", written,
	)
	return "file://" + target, nil
}

// DeleteObject removes a stored body. A missing object is not an error.
func (s *Store) DeleteObject(_ context.Context, key string) error {
	target, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// Open returns the stored body for a key written by PutObject.
func (s *Store) Open(key string) (afero.File, error) {
	target, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	return s.fs.Open(target)
}

// resolve keeps every object inside root.
func (s *Store) resolve(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", domainerrors.ErrInvalidInput
	}
	cleaned := path.Clean("/" + trimmed)
	for _, segment := range strings.Split(trimmed, "/") {
		if segment == ".." {
			return "", domainerrors.ErrInvalidInput
		}
	}
	return path.Join(s.root, cleaned), nil
}
