// Package schema reads the site structure snapshot and renders answers to structural questions.
package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Egham-7/site-context/internal/models"
	"github.com/Egham-7/site-context/internal/services/cache"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"gopkg.in/yaml.v3"
)

// Source supplies schema snapshots.
type Source interface {
	Snapshot(ctx context.Context) (models.SchemaSnapshot, error)
}

// FileSource reads a YAML snapshot from disk on every call.
type FileSource struct {
	path string
}

// NewFileSource creates a source for the YAML file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: filepath.Clean(path)}
}

func (s *FileSource) Snapshot(_ context.Context) (models.SchemaSnapshot, error) {
	var snapshot models.SchemaSnapshot

	info, err := os.Stat(s.path)
	if err != nil {
		return snapshot, fmt.Errorf("stat schema file %s: %w", s.path, err)
	}
	data, err := os.ReadFile(s.path) // #nosec G304 - path comes from configuration
	if err != nil {
		return snapshot, fmt.Errorf("read schema file %s: %w", s.path, err)
	}
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return snapshot, fmt.Errorf("parse schema file %s: %w", s.path, err)
	}
	if snapshot.GeneratedAt.IsZero() {
		snapshot.GeneratedAt = info.ModTime().UTC().Truncate(time.Second)
	}
	return snapshot, nil
}

// Static serves a fixed snapshot.
type Static models.SchemaSnapshot

func (s Static) Snapshot(context.Context) (models.SchemaSnapshot, error) {
	return models.SchemaSnapshot(s), nil
}

// CachedSource keeps the inner snapshot in the cache port for ttl.
type CachedSource struct {
	inner Source
	cache cache.Cache
	key   string
	ttl   time.Duration
}

// NewCachedSource decorates inner with caching under keyPrefix.
func NewCachedSource(inner Source, c cache.Cache, keyPrefix string, ttl time.Duration) *CachedSource {
	return &CachedSource{inner: inner, cache: c, key: keyPrefix + "schema:snapshot", ttl: ttl}
}

func (s *CachedSource) Snapshot(ctx context.Context) (models.SchemaSnapshot, error) {
	if data, ok, err := s.cache.Get(ctx, s.key); err != nil {
		fiberlog.Warnf("Schema cache lookup failed: %v", err)
	} else if ok {
		var snapshot models.SchemaSnapshot
		if err := json.Unmarshal(data, &snapshot); err == nil {
			return snapshot, nil
		}
		fiberlog.Warnf("Discarding undecodable cached schema snapshot")
	}

	snapshot, err := s.inner.Snapshot(ctx)
	if err != nil {
		return snapshot, err
	}

	if data, err := json.Marshal(snapshot); err == nil {
		if err := s.cache.Set(ctx, s.key, data, s.ttl); err != nil {
			fiberlog.Warnf("Schema cache store failed: %v", err)
		}
	}
	return snapshot, nil
}

// LoadOrEmpty returns the current snapshot, or an empty one when the source
// fails. The failure is logged as a SchemaUnavailableError and never returned.
func LoadOrEmpty(ctx context.Context, src Source, requestID string) models.SchemaSnapshot {
	if src == nil {
		return models.SchemaSnapshot{}
	}
	snapshot, err := src.Snapshot(ctx)
	if err != nil {
		fiberlog.Warnf("[%s] %v", requestID, models.NewSchemaUnavailableError(err))
		return models.SchemaSnapshot{}
	}
	return snapshot
}
