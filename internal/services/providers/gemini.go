package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Egham-7/site-context/internal/models"

	"google.golang.org/genai"
)

// Gemini calls generateContent with the system prompt as a system instruction.
type Gemini struct {
	client *genai.Client
	opts   Options
}

// NewGemini creates a Gemini adapter over an existing client.
func NewGemini(client *genai.Client, opts Options) *Gemini {
	return &Gemini{client: client, opts: opts}
}

func (p *Gemini) Name() models.ProviderName { return models.ProviderGemini }

func (p *Gemini) BuildPayload(req models.PromptRequest) *models.ProviderPayload {
	return &models.ProviderPayload{
		Provider:    models.ProviderGemini,
		Shape:       models.ShapeGenerateContent,
		Model:       req.Model,
		System:      req.System,
		Input:       req.Input,
		MaxTokens:   req.MaxTokens,
		Temperature: temperature(req.Temperature),
	}
}

// GenerateConfig maps a payload onto the SDK generation config.
func GenerateConfig(payload *models.ProviderPayload) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(payload.MaxTokens),
	}
	if payload.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(payload.System, genai.RoleUser)
	}
	if payload.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*payload.Temperature))
	}
	return cfg
}

func (p *Gemini) Send(ctx context.Context, payload *models.ProviderPayload) (json.RawMessage, error) {
	ctx, cancel := withTimeout(ctx, p.opts)
	defer cancel()

	resp, err := p.client.Models.GenerateContent(ctx, payload.Model, genai.Text(payload.Input), GenerateConfig(payload))
	if err != nil {
		return nil, classifyError(models.ProviderGemini, err)
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, models.NewProviderError(string(models.ProviderGemini), "failed to encode response", err)
	}
	return raw, nil
}

func (p *Gemini) Parse(raw json.RawMessage) (models.ProviderResult, error) {
	return ParseGenerateContent(models.ProviderGemini, raw)
}

func newGeminiClient(ctx context.Context, opts Options) (*genai.Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions.BaseURL = opts.BaseURL
	}
	if len(opts.Headers) > 0 {
		cfg.HTTPOptions.Headers = http.Header{}
		for key, value := range opts.Headers {
			cfg.HTTPOptions.Headers.Set(key, value)
		}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}
