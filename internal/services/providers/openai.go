package providers

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/Egham-7/site-context/internal/models"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/responses"
	"github.com/openai/openai-go/v2/shared"
)

// Responses API output budget bounds.
const (
	minOutputTokens = 256
	maxOutputTokens = 4096
)

// DefaultResponsesPrefixes names the model families served by the Responses API.
var DefaultResponsesPrefixes = []string{"gpt-5"}

// OpenAI sends modern model families through the Responses API and everything
// else through Chat Completions.
type OpenAI struct {
	client            *openai.Client
	responsesPrefixes []string
	opts              Options
}

// NewOpenAI creates an OpenAI adapter over an existing client.
func NewOpenAI(client *openai.Client, opts Options, responsesPrefixes []string) *OpenAI {
	if len(responsesPrefixes) == 0 {
		responsesPrefixes = DefaultResponsesPrefixes
	}
	return &OpenAI{client: client, responsesPrefixes: responsesPrefixes, opts: opts}
}

func (p *OpenAI) Name() models.ProviderName { return models.ProviderOpenAI }

// UsesResponses reports whether model belongs to a Responses API family.
func (p *OpenAI) UsesResponses(model string) bool {
	m := strings.ToLower(model)
	for _, prefix := range p.responsesPrefixes {
		if strings.HasPrefix(m, strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}

func (p *OpenAI) BuildPayload(req models.PromptRequest) *models.ProviderPayload {
	if p.UsesResponses(req.Model) {
		return &models.ProviderPayload{
			Provider:  models.ProviderOpenAI,
			Shape:     models.ShapeResponses,
			Model:     req.Model,
			System:    req.System,
			Input:     req.Input,
			MaxTokens: clampOutputTokens(req.MaxTokens),
		}
	}
	return &models.ProviderPayload{
		Provider:    models.ProviderOpenAI,
		Shape:       models.ShapeChatCompletions,
		Model:       req.Model,
		System:      req.System,
		Input:       req.Input,
		MaxTokens:   req.MaxTokens,
		Temperature: temperature(req.Temperature),
	}
}

func (p *OpenAI) Send(ctx context.Context, payload *models.ProviderPayload) (json.RawMessage, error) {
	ctx, cancel := withTimeout(ctx, p.opts)
	defer cancel()

	if payload.Shape == models.ShapeResponses {
		resp, err := p.client.Responses.New(ctx, responses.ResponseNewParams{
			Model:           shared.ResponsesModel(payload.Model),
			Instructions:    openai.String(payload.System),
			Input:           responses.ResponseNewParamsInputUnion{OfString: openai.String(payload.Input)},
			MaxOutputTokens: openai.Int(int64(payload.MaxTokens)),
		})
		if err != nil {
			return nil, classifyError(models.ProviderOpenAI, err)
		}
		return json.RawMessage(resp.RawJSON()), nil
	}

	return sendChatCompletion(ctx, p.client, models.ProviderOpenAI, payload)
}

func (p *OpenAI) Parse(raw json.RawMessage) (models.ProviderResult, error) {
	if isResponsesBody(raw) {
		return ParseResponses(models.ProviderOpenAI, raw)
	}
	return ParseChatCompletion(models.ProviderOpenAI, raw)
}

func clampOutputTokens(n int) int {
	return max(minOutputTokens, min(n, maxOutputTokens))
}

func sendChatCompletion(ctx context.Context, client *openai.Client, provider models.ProviderName, payload *models.ProviderPayload) (json.RawMessage, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if payload.System != "" {
		messages = append(messages, openai.SystemMessage(payload.System))
	}
	messages = append(messages, openai.UserMessage(payload.Input))

	params := openai.ChatCompletionNewParams{
		Model:     shared.ChatModel(payload.Model),
		Messages:  messages,
		MaxTokens: openai.Int(int64(payload.MaxTokens)),
	}
	if payload.Temperature != nil {
		params.Temperature = openai.Float(*payload.Temperature)
	}

	completion, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, classifyError(provider, err)
	}
	return json.RawMessage(completion.RawJSON()), nil
}

// newOpenAIClient builds an SDK client with retries disabled.
func newOpenAIClient(opts Options) *openai.Client {
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

	client := openai.NewClient(clientOpts...)
	return &client
}
