package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Egham-7/site-context/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultMaxTokens          = 1024
	defaultTemperature        = 0.7
	defaultTimeoutMs          = 30000
	defaultCacheTTLSeconds    = 300
	defaultCacheCapacity      = 1024
	defaultCacheKeyPrefix     = "site_context:"
	defaultSchemaTTLSeconds   = 300
	defaultMultiLimit         = 5
	defaultRequiredCapability = models.CapabilityReadSiteContext
	defaultSQLitePath         = "site-context.db"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::(-[^}]*))?\}`)

// Config represents the complete application configuration
type Config struct {
	Server    models.ServerConfig    `yaml:"server"`
	AI        models.AIConfig        `yaml:"ai"`
	Cache     models.CacheConfig     `yaml:"cache"`
	Content   models.ContentConfig   `yaml:"content"`
	Schema    models.SchemaConfig    `yaml:"schema"`
	Auth      models.AuthConfig      `yaml:"auth"`
	RateLimit models.RateLimitConfig `yaml:"rate_limit"`
	Database  *models.DatabaseConfig `yaml:"database,omitempty"`
}

// LoadFromFile loads configuration from a YAML file with environment variable substitution
func LoadFromFile(configPath string) (*Config, error) {
	// Validate and clean the file path to prevent directory traversal
	cleanPath := filepath.Clean(configPath)

	if strings.Contains(cleanPath, "..") {
		return nil, fmt.Errorf("invalid config path: path traversal not allowed")
	}

	ext := filepath.Ext(cleanPath)
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("invalid config file: only .yaml and .yml files are allowed")
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 - path is validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", cleanPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration bytes, substituting environment variables and applying defaults.
func Parse(data []byte) (*Config, error) {
	content := substituteEnvVars(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

// LoadEnvFiles loads environment variables from .env files in order of precedence
// Loads files in the order provided (first has highest priority)
func LoadEnvFiles(envFiles []string) {
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err == nil {
				fmt.Printf("Loaded environment variables from %s\n", envFile)
			}
		}
	}
}

// New creates a new Config instance by loading from the specified config file path
func New(configPath string) (*Config, error) {
	return LoadFromFile(configPath)
}

// substituteEnvVars replaces ${VAR_NAME} and ${VAR_NAME:-default} patterns with environment variables
func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		defaultValue := ""

		if len(submatches) > 2 && submatches[2] != "" {
			// Remove the leading '-' from default value
			defaultValue = strings.TrimPrefix(submatches[2], "-")
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}

// applyDefaults fills every optional setting once so call sites never null-coalesce.
func (c *Config) applyDefaults() {
	ai := &c.AI
	ai.Provider = models.ProviderName(strings.ToLower(strings.TrimSpace(string(ai.Provider))))
	if ai.MaxTokens <= 0 {
		ai.MaxTokens = defaultMaxTokens
	}
	switch {
	case ai.Temperature == 0:
		ai.Temperature = defaultTemperature
	case ai.Temperature < 0 || ai.Temperature > 2:
		fiberlog.Warnf("Temperature %.2f out of range, using %.2f", ai.Temperature, defaultTemperature)
		ai.Temperature = defaultTemperature
	}
	if ai.TimeoutMs <= 0 {
		ai.TimeoutMs = defaultTimeoutMs
	}
	if len(ai.ResponsesModelPrefixes) == 0 {
		ai.ResponsesModelPrefixes = []string{"gpt-5"}
	}

	defaults := models.DefaultTierThresholds()
	if ai.TierThresholds.Nano <= 0 {
		ai.TierThresholds.Nano = defaults.Nano
	}
	if ai.TierThresholds.Mini <= 0 {
		ai.TierThresholds.Mini = defaults.Mini
	}
	if ai.TierThresholds.Large <= 0 {
		ai.TierThresholds.Large = defaults.Large
	}

	// Normalize provider map keys to lowercase for case-insensitive lookups
	if ai.Providers != nil {
		normalized := make(map[models.ProviderName]models.ProviderConfig, len(ai.Providers))
		for key, value := range ai.Providers {
			normalized[models.ProviderName(strings.ToLower(string(key)))] = value
		}
		ai.Providers = normalized
	}
	if ai.ModelTiers != nil {
		normalized := make(map[models.ProviderName]map[models.Tier]string, len(ai.ModelTiers))
		for key, value := range ai.ModelTiers {
			normalized[models.ProviderName(strings.ToLower(string(key)))] = value
		}
		ai.ModelTiers = normalized
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = models.CacheBackendMemory
	}
	if c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = defaultCacheTTLSeconds
	}
	if c.Cache.Capacity <= 0 {
		c.Cache.Capacity = defaultCacheCapacity
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = defaultCacheKeyPrefix
	}

	if len(c.Content.MultiTypes) == 0 {
		c.Content.MultiTypes = []string{"post", "page"}
	}
	if c.Content.MultiLimit <= 0 {
		c.Content.MultiLimit = defaultMultiLimit
	}

	if c.Schema.TTLSeconds <= 0 {
		c.Schema.TTLSeconds = defaultSchemaTTLSeconds
	}

	if c.Auth.RequiredCapability == "" {
		c.Auth.RequiredCapability = defaultRequiredCapability
	}
	if c.RateLimit.RequestsPerMinute > 0 && c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = c.RateLimit.RequestsPerMinute
	}

	if c.Database == nil {
		c.Database = &models.DatabaseConfig{Type: models.SQLite, FilePath: defaultSQLitePath}
	}

	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.AllowedOrigins == "" {
		c.Server.AllowedOrigins = "*"
	}
}

// GetNormalizedLogLevel returns the log level in lowercase for consistent comparison
func (c *Config) GetNormalizedLogLevel() string {
	return strings.ToLower(c.Server.LogLevel)
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Validate checks server and infrastructure settings. AI settings are checked
// per request so a misconfigured provider never prevents the service from starting.
func (c *Config) Validate() error {
	var missing []string

	if c.Server.Port == "" {
		missing = append(missing, "server.port")
	}
	if c.Server.AllowedOrigins == "" {
		missing = append(missing, "server.allowed_origins")
	}
	if c.Cache.Backend == models.CacheBackendRedis && c.Cache.RedisURL == "" {
		missing = append(missing, "cache.redis_url")
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		missing = append(missing, "auth.jwt_secret")
	}

	if len(missing) > 0 {
		return &ValidationError{MissingFields: missing}
	}

	return nil
}

// ValidationError represents configuration validation errors
type ValidationError struct {
	MissingFields []string
}

func (e *ValidationError) Error() string {
	return "missing required configuration fields: " + strings.Join(e.MissingFields, ", ")
}
