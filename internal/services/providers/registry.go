package providers

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Egham-7/site-context/internal/models"
	"github.com/Egham-7/site-context/internal/utils/clientcache"

	"github.com/anthropics/anthropic-sdk-go"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/openai/openai-go/v2"
	"google.golang.org/genai"
)

// Registry resolves the configured provider and reuses SDK clients across
// requests with identical transport settings.
type Registry struct {
	openaiClients    *clientcache.Cache[*openai.Client]
	anthropicClients *clientcache.Cache[*anthropic.Client]
	geminiClients    *clientcache.Cache[*genai.Client]
}

// NewRegistry creates a registry with empty client pools.
func NewRegistry() *Registry {
	return &Registry{
		openaiClients:    clientcache.NewCache[*openai.Client](),
		anthropicClients: clientcache.NewCache[*anthropic.Client](),
		geminiClients:    clientcache.NewCache[*genai.Client](),
	}
}

// OptionsFor derives transport options from the AI settings.
func OptionsFor(settings models.AIConfig) Options {
	pc := settings.ProviderSettings(settings.Provider)
	opts := Options{
		APIKey:  settings.APIKey,
		BaseURL: pc.BaseURL,
		Headers: pc.Headers,
	}

	timeoutMs := pc.TimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = settings.TimeoutMs
	}
	if timeoutMs > 0 {
		opts.Timeout = time.Duration(timeoutMs) * time.Millisecond
	}

	if opts.BaseURL == "" && settings.Provider == models.ProviderMistral {
		opts.BaseURL = MistralBaseURL
	}
	return opts
}

// Resolve returns the adapter for settings.Provider.
func (r *Registry) Resolve(ctx context.Context, settings models.AIConfig) (Provider, error) {
	opts := OptionsFor(settings)
	key, err := configHash(settings.Provider, opts)
	if err != nil {
		return nil, models.NewInternalError("failed to hash provider config", err)
	}

	switch settings.Provider {
	case models.ProviderOpenAI, models.ProviderMistral:
		client, err := r.openaiClients.GetOrCreate(key, func() (*openai.Client, error) {
			fiberlog.Debugf("Creating new %s client (config hash: %s)", settings.Provider, key[:8])
			return newOpenAIClient(opts), nil
		})
		if err != nil {
			return nil, err
		}
		if settings.Provider == models.ProviderMistral {
			return NewMistral(client, opts), nil
		}
		return NewOpenAI(client, opts, settings.ResponsesModelPrefixes), nil

	case models.ProviderClaude:
		client, err := r.anthropicClients.GetOrCreate(key, func() (*anthropic.Client, error) {
			fiberlog.Debugf("Creating new Anthropic client (config hash: %s)", key[:8])
			return newAnthropicClient(opts), nil
		})
		if err != nil {
			return nil, err
		}
		return NewClaude(client, opts), nil

	case models.ProviderGemini:
		client, err := r.geminiClients.GetOrCreate(key, func() (*genai.Client, error) {
			fiberlog.Debugf("Creating new Gemini client (config hash: %s)", key[:8])
			return newGeminiClient(ctx, opts)
		})
		if err != nil {
			return nil, models.NewProviderError(string(settings.Provider), "client setup failed", err)
		}
		return NewGemini(client, opts), nil

	default:
		return nil, models.NewValidationError(fmt.Sprintf("unsupported AI provider %q", settings.Provider), nil)
	}
}

// Evict drops the pooled client for settings so the next Resolve builds a
// fresh one, e.g. after the provider rejected the API key.
func (r *Registry) Evict(settings models.AIConfig) {
	key, err := configHash(settings.Provider, OptionsFor(settings))
	if err != nil {
		return
	}
	switch settings.Provider {
	case models.ProviderOpenAI, models.ProviderMistral:
		r.openaiClients.Delete(key)
	case models.ProviderClaude:
		r.anthropicClients.Delete(key)
	case models.ProviderGemini:
		r.geminiClients.Delete(key)
	}
	fiberlog.Infof("Evicted %s client (config hash: %s)", settings.Provider, key[:8])
}

// configHash keys the client pools without exposing the API key.
func configHash(provider models.ProviderName, opts Options) (string, error) {
	type configForHash struct {
		Provider   models.ProviderName
		BaseURL    string
		Headers    map[string]string
		APIKeyHash string
	}

	apiKeyHash := sha256.Sum256([]byte(opts.APIKey))
	configJSON, err := json.Marshal(configForHash{
		Provider:   provider,
		BaseURL:    opts.BaseURL,
		Headers:    opts.Headers,
		APIKeyHash: fmt.Sprintf("%x", apiKeyHash[:8]),
	})
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(configJSON)
	return fmt.Sprintf("%x", hash[:16]), nil
}
