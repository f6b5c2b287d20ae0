package storage

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/parquedb/parquedb/pkg/errors"
	"github.com/parquedb/parquedb/pkg/filesys"
	"go.uber.org/zap"
)

// LocalBackend implements Backend over a local directory tree with
// whole-object read/write semantics. The engine uses it to persist each
// collection's docID table and geo index snapshot. Entity payloads go
// through SegmentLog instead, since those
// need append-only offsets rather than whole-object rewrite semantics.
type LocalBackend struct {
	root string
	log  *zap.SugaredLogger
	mu   sync.RWMutex
}

// Config configures a LocalBackend.
type Config struct {
	Root   string
	Logger *zap.SugaredLogger
}

// New creates a LocalBackend rooted at config.Root, creating the
// directory if it doesn't already exist.
func New(config *Config) (*LocalBackend, error) {
	if config == nil || strings.TrimSpace(config.Root) == "" {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "storage root is required",
		).WithField("root").WithRule("required")
	}

	log := config.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	if err := filesys.CreateDir(config.Root, 0755, true); err != nil {
		return nil, errors.NewStorageError(
			err, errors.ErrorCodeIO, "failed to create storage root",
		).WithPath(config.Root)
	}

	return &LocalBackend{root: config.Root, log: log}, nil
}

func (b *LocalBackend) resolve(path string) string {
	return filepath.Join(b.root, filepath.FromSlash(path))
}

// Write stores data at path, creating parent directories as needed.
func (b *LocalBackend) Write(ctx context.Context, path string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	full := b.resolve(path)
	if err := filesys.CreateDir(filepath.Dir(full), 0755, true); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to create parent directory").WithPath(full)
	}
	if err := filesys.WriteFile(full, 0644, data); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to write object").WithPath(full)
	}
	return nil
}

// Read returns the full contents stored at path.
func (b *LocalBackend) Read(ctx context.Context, path string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	full := b.resolve(path)
	data, err := filesys.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewStorageError(err, errors.ErrorCodeNotFound, "object not found").WithPath(full)
		}
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to read object").WithPath(full)
	}
	return data, nil
}

// Exists reports whether path has been written.
func (b *LocalBackend) Exists(ctx context.Context, path string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ok, err := filesys.Exists(b.resolve(path))
	if err != nil {
		return false, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to stat object").WithPath(path)
	}
	return ok, nil
}

// Delete removes path. Deleting a path that doesn't exist is a no-op.
func (b *LocalBackend) Delete(ctx context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	full := b.resolve(path)
	if err := filesys.DeleteFile(full); err != nil && !os.IsNotExist(err) {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to delete object").WithPath(full)
	}
	return nil
}

// List returns every path with the given prefix, relative to the backend root.
func (b *LocalBackend) List(ctx context.Context, prefix string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var matches []string
	err := filepath.Walk(b.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(b.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, prefix) {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to list objects").WithPath(b.root)
	}

	sort.Strings(matches)
	return matches, nil
}

// Stat returns metadata about path without reading its contents.
func (b *LocalBackend) Stat(ctx context.Context, path string) (Info, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	full := b.resolve(path)
	fi, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return Info{}, errors.NewStorageError(err, errors.ErrorCodeNotFound, "object not found").WithPath(full)
		}
		return Info{}, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to stat object").WithPath(full)
	}

	return Info{Path: path, Size: fi.Size(), ModTime: fi.ModTime().UnixNano()}, nil
}

var _ Backend = (*LocalBackend)(nil)
