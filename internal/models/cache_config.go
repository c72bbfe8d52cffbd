package models

// CacheBackendType represents the type of cache backend to use
type CacheBackendType string

const (
	CacheBackendRedis  CacheBackendType = "redis"
	CacheBackendMemory CacheBackendType = "memory"
	CacheBackendNone   CacheBackendType = "none"
)

// CacheConfig holds configuration for response caching
type CacheConfig struct {
	// Backend configuration
	Backend  CacheBackendType `json:"backend,omitzero" yaml:"backend"`     // "redis", "memory" or "none"
	RedisURL string           `json:"redis_url,omitzero" yaml:"redis_url"` // Required if backend is "redis"
	Capacity int              `json:"capacity,omitzero" yaml:"capacity"`   // LRU size for the memory backend

	// Cache behavior
	TTLSeconds int    `json:"ttl_seconds,omitzero" yaml:"ttl_seconds"`
	KeyPrefix  string `json:"key_prefix,omitzero" yaml:"key_prefix"`
}

// ContentConfig controls the multi-document digest.
type ContentConfig struct {
	MultiTypes []string `json:"multi_types,omitzero" yaml:"multi_types"`
	MultiLimit int      `json:"multi_limit,omitzero" yaml:"multi_limit"`
}

// SchemaConfig points at the schema snapshot source.
type SchemaConfig struct {
	File       string `json:"file,omitzero" yaml:"file"`
	TTLSeconds int    `json:"ttl_seconds,omitzero" yaml:"ttl_seconds"`
}
