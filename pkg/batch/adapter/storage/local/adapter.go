// Package local provides a local file system implementation of the storage adapter interfaces.
// Buckets are directories under BaseDir; object names are slash-separated paths.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	storageAdapter "github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage"
	storageConfig "github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage/config"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/logger"
)

const (
	// ProviderType defines the type identifier for this local storage provider.
	ProviderType = "local"
)

func init() {
	storageAdapter.RegisterFactory(ProviderType, func(_ context.Context, cfg storageConfig.StorageConfig, name string) (storageAdapter.StorageConnection, error) {
		return NewLocalAdapter(cfg, name)
	})
}

type localAdapter struct {
	cfg  storageConfig.StorageConfig
	name string
}

var _ storageAdapter.StorageConnection = (*localAdapter)(nil)

// NewLocalAdapter creates a new local adapter, creating BaseDir if it doesn't exist.
func NewLocalAdapter(cfg storageConfig.StorageConfig, name string) (storageAdapter.StorageConnection, error) {
	if cfg.BaseDir == "" {
		return nil, fmt.Errorf("local storage adapter '%s': BaseDir must be specified in configuration", name)
	}
	info, err := os.Stat(cfg.BaseDir)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("local storage adapter '%s': failed to stat BaseDir '%s': %w", name, cfg.BaseDir, err)
		}
		if err := os.MkdirAll(cfg.BaseDir, 0755); err != nil {
			return nil, fmt.Errorf("local storage adapter '%s': failed to create BaseDir '%s': %w", name, cfg.BaseDir, err)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("local storage adapter '%s': BaseDir '%s' is not a directory", name, cfg.BaseDir)
	}

	return &localAdapter{cfg: cfg, name: name}, nil
}

func (a *localAdapter) Close() error {
	logger.Debugf("Local storage adapter '%s' closed.", a.name)
	return nil
}

func (a *localAdapter) Type() string { return ProviderType }
func (a *localAdapter) Name() string { return a.name }

// Upload writes to a temporary file beside the target and renames it into place.
func (a *localAdapter) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	fullPath, err := a.resolvePath(bucket, objectName)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("local storage adapter '%s': failed to create directory '%s': %w", a.name, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("local storage adapter '%s': failed to create temp file in '%s': %w", a.name, dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op once the rename succeeded.
		_ = os.Remove(tmpName)
	}()

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		return fmt.Errorf("local storage adapter '%s': failed to write '%s': %w", a.name, fullPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("local storage adapter '%s': failed to close '%s': %w", a.name, tmpName, err)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		return fmt.Errorf("local storage adapter '%s': failed to move '%s' into place: %w", a.name, fullPath, err)
	}
	logger.Debugf("Local storage adapter '%s': wrote %s (%s).", a.name, fullPath, contentType)
	return nil
}

func (a *localAdapter) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	fullPath, err := a.resolvePath(bucket, objectName)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("local storage adapter '%s': %s: %w", a.name, fullPath, storageAdapter.ErrObjectNotExist)
		}
		return nil, fmt.Errorf("local storage adapter '%s': failed to open '%s': %w", a.name, fullPath, err)
	}
	return f, nil
}

func (a *localAdapter) Exists(ctx context.Context, bucket, objectName string) (bool, error) {
	fullPath, err := a.resolvePath(bucket, objectName)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("local storage adapter '%s': failed to stat '%s': %w", a.name, fullPath, err)
	}
	return !info.IsDir(), nil
}

// ListObjects walks the bucket directory. Object names are reported relative
// to the bucket with forward slashes.
func (a *localAdapter) ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error {
	root, err := a.resolvePath(bucket, "")
	if err != nil {
		return err
	}
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, prefix) && !strings.HasSuffix(rel, ".tmp") {
			return fn(rel)
		}
		return nil
	})
}

func (a *localAdapter) DeleteObject(ctx context.Context, bucket, objectName string) error {
	fullPath, err := a.resolvePath(bucket, objectName)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("local storage adapter '%s': failed to delete '%s': %w", a.name, fullPath, err)
	}
	return nil
}

// resolvePath maps bucket/objectName under BaseDir and rejects paths that escape it.
func (a *localAdapter) resolvePath(bucket, objectName string) (string, error) {
	if bucket == "" {
		bucket = a.cfg.BucketName
	}
	base, err := filepath.Abs(a.cfg.BaseDir)
	if err != nil {
		return "", fmt.Errorf("local storage adapter '%s': failed to resolve BaseDir: %w", a.name, err)
	}
	full := filepath.Join(base, bucket, filepath.FromSlash(objectName))
	if full != base && !strings.HasPrefix(full, base+string(os.PathSeparator)) {
		return "", fmt.Errorf("local storage adapter '%s': path '%s' escapes BaseDir", a.name, filepath.Join(bucket, objectName))
	}
	return full, nil
}
