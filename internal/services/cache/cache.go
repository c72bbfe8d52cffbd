// Package cache provides the key-value response cache with TTL.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Egham-7/site-context/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

// Cache is the cache port injected into the dispatcher and the schema source.
type Cache interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// New builds the configured backend. The redis client may be nil unless the backend is redis.
func New(cfg models.CacheConfig, redisClient *redis.Client) (Cache, error) {
	switch cfg.Backend {
	case models.CacheBackendRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis cache backend requires a redis client")
		}
		fiberlog.Infof("Cache: using redis backend (prefix=%s, ttl=%ds)", cfg.KeyPrefix, cfg.TTLSeconds)
		return NewRedisCache(redisClient), nil
	case models.CacheBackendMemory, "":
		fiberlog.Infof("Cache: using in-memory backend (capacity=%d, ttl=%ds)", cfg.Capacity, cfg.TTLSeconds)
		return NewMemoryCache(cfg.Capacity, time.Duration(cfg.TTLSeconds)*time.Second), nil
	case models.CacheBackendNone:
		fiberlog.Info("Cache: disabled")
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", cfg.Backend)
	}
}

// FingerprintInput is every input a cached envelope depends on.
type FingerprintInput struct {
	Provider   models.ProviderName `json:"provider"`
	Model      string              `json:"model"`
	Identifier string              `json:"identifier"`
	Prompt     string              `json:"prompt"`
	Format     models.Format       `json:"format"`
	Modified   string              `json:"modified"`
}

// Fingerprint derives the cache key. Any change to an input, including the
// document modification timestamp, yields a different key.
func Fingerprint(prefix string, in FingerprintInput) string {
	data, _ := json.Marshal(in)
	sum := sha256.Sum256(data)
	return prefix + "ctx:" + hex.EncodeToString(sum[:])
}

// Noop is a cache that stores nothing.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Noop) Delete(context.Context, string) error { return nil }
