package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/model"
)

// FileCache stores the record as a JSON document on disk.
// Writes go to a temporary file in the same directory which is then renamed
// over the target, so readers see either the old or the new document.
type FileCache struct {
	path string
}

// NewFileCache creates a FileCache backed by path. The parent directory is
// created on first write.
func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

func (c *FileCache) Read(_ context.Context) (model.CacheRecord, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.CacheRecord{}, apperrors.ErrCacheMiss
	}
	if err != nil {
		return model.CacheRecord{}, fmt.Errorf("failed to read cache file: %w", err)
	}
	return decodeRecord(data)
}

func (c *FileCache) Write(_ context.Context, record model.CacheRecord) error {
	data, err := encodeRecord(record)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp cache file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp cache file: %w", err)
	}

	if err := os.Rename(tmpName, c.path); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}

// Health checks that the cache directory exists or can be created.
func (c *FileCache) Health(_ context.Context) error {
	return os.MkdirAll(filepath.Dir(c.path), 0o755)
}
