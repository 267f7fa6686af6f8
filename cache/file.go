package cache

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/ZaguanLabs/doclai"
	"github.com/ZaguanLabs/doclai/logger"
)

// FileCache is a MemoryCache persisted to a JSON export file.
// The file is read once on open and rewritten by Save or Close when
// something changed.
type FileCache struct {
	*MemoryCache
	path  string
	dirty atomic.Bool
}

// OpenFileCache loads path into a new cache. A missing file starts empty.
func OpenFileCache(path string, ttl time.Duration) (*FileCache, error) {
	fc := &FileCache{MemoryCache: NewMemoryCache(ttl), path: path}

	res, err := NewImporter(fc.MemoryCache).ImportFromFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Debug("cache file %s not found, starting empty", path)
	case err != nil:
		return nil, &doclai.CacheError{Message: "loading " + path, Cause: err}
	default:
		logger.Debug("loaded %d cached translations from %s", res.Imported, path)
	}
	return fc, nil
}

// Set stores value and marks the cache for saving.
func (c *FileCache) Set(key, value string) error {
	if err := c.MemoryCache.Set(key, value); err != nil {
		return err
	}
	c.dirty.Store(true)
	return nil
}

// Path returns the backing file.
func (c *FileCache) Path() string { return c.path }

// Save writes the live entries to the backing file through a temporary file
// in the same directory, so a crash never leaves a truncated cache behind.
func (c *FileCache) Save() error {
	if !c.dirty.Load() {
		return nil
	}
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &doclai.CacheError{Message: "creating cache directory", Cause: err}
	}
	tmp, err := os.CreateTemp(dir, ".doclai-cache-*")
	if err != nil {
		return &doclai.CacheError{Message: "creating temporary cache file", Cause: err}
	}
	defer os.Remove(tmp.Name())

	if err := NewExporter(c.MemoryCache).Export(tmp, nil); err != nil {
		tmp.Close()
		return &doclai.CacheError{Message: "writing cache file", Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &doclai.CacheError{Message: "writing cache file", Cause: err}
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return &doclai.CacheError{Message: "replacing cache file", Cause: err}
	}
	c.dirty.Store(false)
	return nil
}

// Close saves pending changes.
func (c *FileCache) Close() error {
	return c.Save()
}

var (
	_ Cache      = (*FileCache)(nil)
	_ Enumerable = (*FileCache)(nil)
)
