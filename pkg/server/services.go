package server

import (
	"fmt"
	"time"

	"github.com/Egham-7/site-context/internal/config"
	"github.com/Egham-7/site-context/internal/models"
	"github.com/Egham-7/site-context/internal/services/cache"
	"github.com/Egham-7/site-context/internal/services/content"
	"github.com/Egham-7/site-context/internal/services/database"
	"github.com/Egham-7/site-context/internal/services/dispatch"
	"github.com/Egham-7/site-context/internal/services/documents"
	"github.com/Egham-7/site-context/internal/services/providers"
	"github.com/Egham-7/site-context/internal/services/schema"
	"github.com/Egham-7/site-context/internal/services/throttle"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

// Services is the wired dispatch pipeline shared by the server and the CLI.
type Services struct {
	Dispatcher *dispatch.Dispatcher
	Documents  *documents.Store
	Redis      *redis.Client
	DB         *database.DB
}

// Options tweaks wiring for callers that extend the pipeline.
type Options struct {
	Hooks *providers.Chain
}

// Build connects infrastructure and assembles the dispatcher.
func Build(cfg *config.Config, opts Options) (*Services, error) {
	s := &Services{}

	if cfg.Cache.Backend == models.CacheBackendRedis {
		client, err := cache.NewRedisClient(cfg.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis initialization failed: %w", err)
		}
		s.Redis = client
	}

	responseCache, err := cache.New(cfg.Cache, s.Redis)
	if err != nil {
		s.Close()
		return nil, err
	}

	db, err := database.New(*cfg.Database)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("database initialization failed: %w", err)
	}
	s.DB = db
	if err := db.Migrate(); err != nil {
		s.Close()
		return nil, err
	}
	s.Documents = documents.NewStore(db.DB)

	var schemaSource schema.Source
	if cfg.Schema.File != "" {
		schemaSource = schema.NewCachedSource(
			schema.NewFileSource(cfg.Schema.File),
			responseCache,
			cfg.Cache.KeyPrefix,
			time.Duration(cfg.Schema.TTLSeconds)*time.Second,
		)
	} else {
		fiberlog.Warn("Schema: no snapshot file configured, schema questions get an empty snapshot")
	}

	s.Dispatcher = dispatch.NewDispatcher(cfg.AI, cfg.Cache, dispatch.Deps{
		Schema:    schemaSource,
		Content:   content.NewAggregator(s.Documents, content.NewRenderer(), cfg.Content),
		Providers: providers.NewRegistry(),
		Cache:     responseCache,
		Hooks:     opts.Hooks,
		Throttle:  throttle.New(cfg.RateLimit),
	})

	return s, nil
}

// Close releases connections opened by Build.
func (s *Services) Close() {
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			fiberlog.Errorf("Failed to close Redis client: %v", err)
		}
	}
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			fiberlog.Errorf("Failed to close database connection: %v", err)
		}
	}
}
