package dispatch

import (
	"context"
	"time"

	"github.com/Egham-7/site-context/internal/metrics"
	"github.com/Egham-7/site-context/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// ask sends the prompt and retries a bounded number of times while the
// provider returns no visible text. Transport failures are never retried.
func (d *Dispatcher) ask(ctx context.Context, model string, req models.ContextRequest, resolved *models.ResolvedContext, requestID string) (models.ProviderResult, error) {
	provider, err := d.deps.Providers.Resolve(ctx, d.settings)
	if err != nil {
		return models.ProviderResult{}, err
	}

	prompt := models.PromptRequest{
		Model:       model,
		System:      systemPrompt(req.Format),
		Input:       userInput(resolved.Content, req.Prompt),
		MaxTokens:   d.settings.MaxTokens,
		Temperature: d.settings.Temperature,
	}

	attempts := 1 + d.settings.Retries()
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			prompt.System = systemPrompt(req.Format) + " " + retryInstruction
		}

		payload := provider.BuildPayload(prompt)
		if err := d.deps.Hooks.BeforeSend(ctx, payload); err != nil {
			return models.ProviderResult{}, models.NewInternalError("payload hook failed", err)
		}

		start := time.Now()
		raw, err := provider.Send(ctx, payload)
		metrics.ProviderRequestDurationSeconds.WithLabelValues(string(provider.Name()), payload.Model).Observe(time.Since(start).Seconds())
		if err != nil {
			d.recordProviderError(provider.Name(), err)
			fiberlog.Errorf("[%s] %s request failed after %v: %v", requestID, provider.Name(), time.Since(start), err)
			if evicter, ok := d.deps.Providers.(clientEvicter); ok && models.IsProviderAuthRejected(err) {
				evicter.Evict(d.settings)
			}
			return models.ProviderResult{}, err
		}

		result, err := provider.Parse(raw)
		if err != nil {
			d.recordProviderError(provider.Name(), err)
			fiberlog.Errorf("[%s] %s response could not be parsed: %v", requestID, provider.Name(), err)
			return models.ProviderResult{}, err
		}
		if err := d.deps.Hooks.AfterParse(ctx, &result); err != nil {
			return models.ProviderResult{}, models.NewInternalError("result hook failed", err)
		}

		if result.HasVisibleOutput() {
			fiberlog.Infof("[%s] %s answered in %v (attempt %d)", requestID, provider.Name(), time.Since(start), attempt)
			return result, nil
		}
		fiberlog.Warnf("[%s] %s returned no visible output (attempt %d/%d, incomplete=%t)",
			requestID, provider.Name(), attempt, attempts, result.IsIncomplete)
	}

	return models.ProviderResult{}, models.NewEmptyOutputError(string(provider.Name()))
}

func (d *Dispatcher) recordProviderError(provider models.ProviderName, err error) {
	code := "unknown"
	if appErr := models.SanitizeError(err); appErr.Code != "" {
		code = appErr.Code
	} else if appErr.Type != "" {
		code = string(appErr.Type)
	}
	metrics.ProviderErrorsTotal.WithLabelValues(string(provider), code).Inc()
}

func systemPrompt(format models.Format) string {
	switch format {
	case models.FormatHTML:
		return systemInstruction + " Format the answer as simple HTML."
	case models.FormatPlain:
		return systemInstruction + " Answer in plain text without markup."
	default:
		return systemInstruction + " Format the answer in Markdown."
	}
}

func userInput(content, question string) string {
	return "Context:\n" + content + "\n\nQuestion: " + question
}
