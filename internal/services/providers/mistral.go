package providers

import (
	"context"
	"encoding/json"

	"github.com/Egham-7/site-context/internal/models"

	"github.com/openai/openai-go/v2"
)

// MistralBaseURL is the Chat Completions compatible Mistral endpoint.
const MistralBaseURL = "https://api.mistral.ai/v1"

// Mistral speaks the Chat Completions shape through the OpenAI SDK.
type Mistral struct {
	client *openai.Client
	opts   Options
}

// NewMistral creates a Mistral adapter over an OpenAI SDK client pointed at Mistral.
func NewMistral(client *openai.Client, opts Options) *Mistral {
	return &Mistral{client: client, opts: opts}
}

func (p *Mistral) Name() models.ProviderName { return models.ProviderMistral }

func (p *Mistral) BuildPayload(req models.PromptRequest) *models.ProviderPayload {
	return &models.ProviderPayload{
		Provider:    models.ProviderMistral,
		Shape:       models.ShapeChatCompletions,
		Model:       req.Model,
		System:      req.System,
		Input:       req.Input,
		MaxTokens:   req.MaxTokens,
		Temperature: temperature(req.Temperature),
	}
}

func (p *Mistral) Send(ctx context.Context, payload *models.ProviderPayload) (json.RawMessage, error) {
	ctx, cancel := withTimeout(ctx, p.opts)
	defer cancel()
	return sendChatCompletion(ctx, p.client, models.ProviderMistral, payload)
}

func (p *Mistral) Parse(raw json.RawMessage) (models.ProviderResult, error) {
	return ParseChatCompletion(models.ProviderMistral, raw)
}
