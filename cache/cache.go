// Package cache stores translated units between runs.
//
// Keys are built by doclai.CacheKey ("<type>:<hash>:<language>"), so a single
// cache serves every document type and target language. Only successful
// translations are ever written; a cache never holds a fallback.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ZaguanLabs/doclai"
)

// TranslationCache is the interface the translation client reads and writes.
type TranslationCache = doclai.TranslationCache

// Cache is a TranslationCache that owns resources released by Close.
type Cache interface {
	TranslationCache
	Close() error
}

// Enumerable is implemented by caches whose contents can be listed for export.
type Enumerable interface {
	TranslationCache
	Entries() (map[string]string, error)
}

// Cache backends selectable from configuration.
const (
	TypeNone   = "none"
	TypeMemory = "memory"
	TypeFile   = "file"
	TypeRedis  = "redis"
)

// Config selects and configures a cache backend.
type Config struct {
	Type      string        // none, memory, file or redis
	TTL       time.Duration // 0 keeps entries forever
	RedisURL  string        // redis backend only
	KeyPrefix string        // redis backend only; defaults to DefaultKeyPrefix
	File      string        // file backend only
}

// Open builds the backend named by cfg.Type. An empty or "none" type yields
// a nil Cache and no error; callers then run without caching.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch strings.ToLower(cfg.Type) {
	case "", TypeNone:
		return nil, nil
	case TypeMemory:
		return NewMemoryCache(cfg.TTL), nil
	case TypeFile:
		if cfg.File == "" {
			return nil, &doclai.CacheError{Message: "file cache requires a path"}
		}
		fc, err := OpenFileCache(cfg.File, cfg.TTL)
		if err != nil {
			return nil, err
		}
		return fc, nil
	case TypeRedis:
		if cfg.RedisURL == "" {
			return nil, &doclai.CacheError{Message: "redis cache requires a URL"}
		}
		rc, err := NewRedisCache(ctx, RedisConfig{
			URL:       cfg.RedisURL,
			TTL:       cfg.TTL,
			KeyPrefix: cfg.KeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	return nil, &doclai.CacheError{Message: fmt.Sprintf("unknown cache type %q", cfg.Type)}
}

// SplitKey breaks a cache key into its document type, text hash and language.
// ok is false for keys not produced by doclai.CacheKey.
func SplitKey(key string) (docType doclai.DocumentType, hash, lang string, ok bool) {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", false
	}
	return doclai.DocumentType(parts[0]), parts[1], parts[2], true
}
