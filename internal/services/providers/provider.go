// Package providers adapts AI provider SDKs to a shape-tagged payload and a
// normalized result.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Egham-7/site-context/internal/models"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go/v2"
)

// DefaultTimeout bounds a provider call when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Provider is implemented once per AI vendor.
type Provider interface {
	Name() models.ProviderName
	// BuildPayload maps a neutral prompt onto the vendor's request shape.
	BuildPayload(req models.PromptRequest) *models.ProviderPayload
	// Send performs the call and returns the raw response body.
	Send(ctx context.Context, payload *models.ProviderPayload) (json.RawMessage, error)
	// Parse extracts the visible answer from a raw response body.
	Parse(raw json.RawMessage) (models.ProviderResult, error)
}

// Options is the transport configuration shared by every adapter.
type Options struct {
	APIKey  string
	BaseURL string
	Headers map[string]string
	Timeout time.Duration
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

// withTimeout derives the per-call deadline.
func withTimeout(ctx context.Context, opts Options) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, opts.timeout())
}

// classifyError turns an SDK failure into a provider AppError. Timeouts get
// their own code so callers can tell them apart from HTTP failures.
func classifyError(provider models.ProviderName, err error) error {
	name := string(provider)
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewProviderTimeoutError(name, err)
	}

	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		if rejectedCredentials(openaiErr.StatusCode) {
			return models.NewProviderAuthError(name, openaiErr.StatusCode, err)
		}
		return models.NewProviderError(name, fmt.Sprintf("request failed with status %d", openaiErr.StatusCode), err)
	}

	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		if rejectedCredentials(anthropicErr.StatusCode) {
			return models.NewProviderAuthError(name, anthropicErr.StatusCode, err)
		}
		return models.NewProviderError(name, fmt.Sprintf("request failed with status %d", anthropicErr.StatusCode), err)
	}

	return models.NewProviderError(name, "request failed", err)
}

func rejectedCredentials(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

func temperature(t float64) *float64 {
	return &t
}
