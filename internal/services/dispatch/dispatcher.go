// Package dispatch orchestrates one context request end to end: intent
// classification, context resolution, model selection, the provider call and
// the envelope cache.
package dispatch

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/Egham-7/site-context/internal/metrics"
	"github.com/Egham-7/site-context/internal/models"
	"github.com/Egham-7/site-context/internal/services/cache"
	"github.com/Egham-7/site-context/internal/services/intent"
	"github.com/Egham-7/site-context/internal/services/model_router"
	"github.com/Egham-7/site-context/internal/services/providers"
	"github.com/Egham-7/site-context/internal/services/schema"
	"github.com/Egham-7/site-context/internal/services/throttle"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Envelope messages.
const (
	MessageAnswered    = "AI response generated."
	MessageContextOnly = "Context resolved; no prompt supplied."
	MessageEmptyOutput = "The AI service did not return an answer. Please try again or rephrase your question."
)

const (
	systemInstruction = "You answer questions about this website using only the context provided. " +
		"If the context does not contain the answer, say so."
	retryInstruction = "Respond with a short, direct answer."
)

// ContentResolver resolves identifiers into context. Implemented by content.Aggregator.
type ContentResolver interface {
	Resolve(ctx context.Context, req models.ContextRequest, identity models.Identity, requestID string) (*models.ResolvedContext, error)
}

// ProviderResolver returns the adapter for the configured provider. Implemented by providers.Registry.
type ProviderResolver interface {
	Resolve(ctx context.Context, settings models.AIConfig) (providers.Provider, error)
}

// clientEvicter is implemented by resolvers that pool SDK clients.
type clientEvicter interface {
	Evict(settings models.AIConfig)
}

// Deps are the collaborators of a Dispatcher. Cache and Throttle may be nil.
type Deps struct {
	Schema    schema.Source
	Content   ContentResolver
	Providers ProviderResolver
	Cache     cache.Cache
	Hooks     *providers.Chain
	Throttle  *throttle.Throttle
}

// Dispatcher runs the dispatch pipeline against fixed settings.
type Dispatcher struct {
	settings  models.AIConfig
	keyPrefix string
	ttl       time.Duration
	deps      Deps
}

func NewDispatcher(settings models.AIConfig, cacheCfg models.CacheConfig, deps Deps) *Dispatcher {
	if deps.Cache == nil {
		deps.Cache = cache.Noop{}
	}
	ttl := time.Duration(cacheCfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Dispatcher{settings: settings, keyPrefix: cacheCfg.KeyPrefix, ttl: ttl, deps: deps}
}

// Settings returns the AI settings the dispatcher runs with.
func (d *Dispatcher) Settings() models.AIConfig {
	return d.settings
}

// Dispatch answers one request. Provider replies without visible text yield
// an envelope with a generic message and a nil AI result, not an error.
func (d *Dispatcher) Dispatch(ctx context.Context, req models.ContextRequest, identity models.Identity, requestID string) (*models.Envelope, error) {
	envelope, err := d.dispatch(ctx, req, identity, requestID)
	if err != nil {
		metrics.DispatchTotal.WithLabelValues(string(d.settings.Provider), metrics.OutcomeError).Inc()
	}
	return envelope, err
}

func (d *Dispatcher) dispatch(ctx context.Context, req models.ContextRequest, identity models.Identity, requestID string) (*models.Envelope, error) {
	req, err := normalize(req)
	if err != nil {
		return nil, err
	}

	if d.deps.Throttle.IsThrottled(identity.ID) {
		metrics.ThrottledTotal.Inc()
		fiberlog.Warnf("[%s] Identity %s throttled", requestID, identity.ID)
		return nil, models.NewRateLimitError()
	}

	if missing := d.settings.MissingFields(); len(missing) > 0 {
		fiberlog.Warnf("[%s] AI settings incomplete: %s", requestID, strings.Join(missing, ", "))
		return nil, models.NewConfigurationError(missing)
	}

	preliminary := model_router.SelectModel(req.Prompt, "", d.settings)
	fiberlog.Debugf("[%s] Preliminary selection: %s (%s, %d tokens)", requestID, preliminary.Model, preliminary.Tier, preliminary.Tokens)

	resolved, err := d.resolveContext(ctx, req, identity, requestID)
	if err != nil {
		return nil, err
	}

	selection := model_router.SelectModel(req.Prompt, resolved.Content, d.settings)
	metrics.ModelSelectionsTotal.WithLabelValues(string(selection.Provider), string(selection.Tier), string(selection.Complexity)).Inc()
	fiberlog.Infof("[%s] Selected %s/%s (tier=%s, complexity=%s, tokens=%d, smart=%t)",
		requestID, selection.Provider, selection.Model, selection.Tier, selection.Complexity, selection.Tokens, selection.Smart)

	envelope := &models.Envelope{
		Provider:    d.settings.Provider,
		Model:       selection.Model,
		MaxTokens:   d.settings.MaxTokens,
		Temperature: d.settings.Temperature,
		Identifier:  req.Identifier,
		Prompt:      req.Prompt,
		Format:      req.Format,
		Context:     resolved,
	}

	key := cache.Fingerprint(d.keyPrefix, cache.FingerprintInput{
		Provider:   d.settings.Provider,
		Model:      selection.Model,
		Identifier: req.Identifier,
		Prompt:     req.Prompt,
		Format:     req.Format,
		Modified:   resolved.Modified(),
	})
	if cached, ok := d.lookup(ctx, key, requestID); ok {
		metrics.DispatchTotal.WithLabelValues(string(d.settings.Provider), metrics.OutcomeCached).Inc()
		return cached, nil
	}

	if req.Prompt == "" {
		envelope.Message = MessageContextOnly
		d.store(ctx, key, envelope, requestID)
		metrics.DispatchTotal.WithLabelValues(string(d.settings.Provider), metrics.OutcomeContextOnly).Inc()
		return envelope, nil
	}

	result, err := d.ask(ctx, selection.Model, req, resolved, requestID)
	if err != nil {
		if models.IsErrorType(err, models.ErrorTypeEmptyOutput) {
			envelope.Message = MessageEmptyOutput
			metrics.DispatchTotal.WithLabelValues(string(d.settings.Provider), metrics.OutcomeEmptyOutput).Inc()
			return envelope, nil
		}
		return nil, err
	}

	envelope.Message = MessageAnswered
	envelope.AI = &models.AIResult{Output: result.Output, Raw: result.Raw}
	d.store(ctx, key, envelope, requestID)
	metrics.DispatchTotal.WithLabelValues(string(d.settings.Provider), metrics.OutcomeAnswered).Inc()
	return envelope, nil
}

// SchemaOverview renders the structural overview of the site.
func (d *Dispatcher) SchemaOverview(ctx context.Context, requestID string) *models.ResolvedContext {
	snapshot := schema.LoadOrEmpty(ctx, d.deps.Schema, requestID)
	return schema.AnswerContext("schema", models.Intent{Kind: models.IntentGenericSchemaOverview}, snapshot)
}

func normalize(req models.ContextRequest) (models.ContextRequest, error) {
	req.Identifier = strings.TrimSpace(req.Identifier)
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Identifier == "" {
		return req, models.NewValidationError("identifier is required", nil)
	}
	if req.IsMulti() {
		req.Identifier = models.MultiIdentifier
	} else {
		req.Identifier = strings.ToLower(req.Identifier)
	}

	format, ok := models.ParseFormat(string(req.Format))
	if !ok {
		return req, models.NewValidationError("format must be one of markdown, plain or html", nil)
	}
	req.Format = format
	return req, nil
}

func (d *Dispatcher) resolveContext(ctx context.Context, req models.ContextRequest, identity models.Identity, requestID string) (*models.ResolvedContext, error) {
	if req.Prompt != "" {
		snapshot := schema.LoadOrEmpty(ctx, d.deps.Schema, requestID)
		in := intent.Classify(req.Prompt, snapshot)
		metrics.IntentsTotal.WithLabelValues(string(in.Kind)).Inc()

		if in.IsSchema() {
			fiberlog.Infof("[%s] Answering from schema (intent=%s, slug=%s)", requestID, in.Kind, in.Slug)
			return schema.AnswerContext(req.Identifier, in, snapshot), nil
		}
	}
	return d.deps.Content.Resolve(ctx, req, identity, requestID)
}

func (d *Dispatcher) lookup(ctx context.Context, key, requestID string) (*models.Envelope, bool) {
	data, ok, err := d.deps.Cache.Get(ctx, key)
	if err != nil {
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		fiberlog.Warnf("[%s] Cache lookup failed: %v", requestID, err)
		return nil, false
	}
	if !ok {
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	var envelope models.Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		fiberlog.Warnf("[%s] Discarding unreadable cache entry: %v", requestID, err)
		return nil, false
	}

	metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
	fiberlog.Infof("[%s] Cache hit", requestID)
	envelope.Cached = true
	return &envelope, true
}

func (d *Dispatcher) store(ctx context.Context, key string, envelope *models.Envelope, requestID string) {
	data, err := json.Marshal(envelope)
	if err != nil {
		fiberlog.Warnf("[%s] Failed to encode envelope for cache: %v", requestID, err)
		return
	}
	if err := d.deps.Cache.Set(ctx, key, data, d.ttl); err != nil {
		fiberlog.Warnf("[%s] Failed to cache envelope: %v", requestID, err)
	}
}
