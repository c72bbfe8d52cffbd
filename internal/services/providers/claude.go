package providers

import (
	"context"
	"encoding/json"

	"github.com/Egham-7/site-context/internal/models"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Claude sends a single user message through the Anthropic Messages API.
type Claude struct {
	client *anthropic.Client
	opts   Options
}

// NewClaude creates a Claude adapter over an existing client.
func NewClaude(client *anthropic.Client, opts Options) *Claude {
	return &Claude{client: client, opts: opts}
}

func (p *Claude) Name() models.ProviderName { return models.ProviderClaude }

func (p *Claude) BuildPayload(req models.PromptRequest) *models.ProviderPayload {
	return &models.ProviderPayload{
		Provider:    models.ProviderClaude,
		Shape:       models.ShapeMessages,
		Model:       req.Model,
		System:      req.System,
		Input:       req.Input,
		MaxTokens:   req.MaxTokens,
		Temperature: temperature(min(req.Temperature, 1)),
	}
}

func (p *Claude) Send(ctx context.Context, payload *models.ProviderPayload) (json.RawMessage, error) {
	ctx, cancel := withTimeout(ctx, p.opts)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(payload.Model),
		MaxTokens: int64(payload.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(payload.Input)),
		},
	}
	if payload.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: payload.System}}
	}
	if payload.Temperature != nil {
		params.Temperature = anthropic.Float(*payload.Temperature)
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, classifyError(models.ProviderClaude, err)
	}
	return json.RawMessage(message.RawJSON()), nil
}

func (p *Claude) Parse(raw json.RawMessage) (models.ProviderResult, error) {
	return ParseMessages(models.ProviderClaude, raw)
}

func newAnthropicClient(opts Options) *anthropic.Client {
	clientOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	for key, value := range opts.Headers {
		clientOpts = append(clientOpts, option.WithHeader(key, value))
	}

	client := anthropic.NewClient(clientOpts...)
	return &client
}
