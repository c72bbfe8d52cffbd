// Package model_router maps prompt size and complexity onto a provider model tier.
package model_router

import (
	"math"

	"github.com/Egham-7/site-context/internal/models"
	"github.com/Egham-7/site-context/internal/services/estimator"
)

// defaultModelTiers is the stock (provider, tier) -> model table.
var defaultModelTiers = map[models.ProviderName]map[models.Tier]string{
	models.ProviderOpenAI: {
		models.TierNano:  "gpt-5-nano",
		models.TierMini:  "gpt-5-mini",
		models.TierLarge: "gpt-5",
	},
	models.ProviderClaude: {
		models.TierNano:  "claude-3-5-haiku-latest",
		models.TierMini:  "claude-sonnet-4-20250514",
		models.TierLarge: "claude-opus-4-1-20250805",
	},
	models.ProviderMistral: {
		models.TierNano:  "mistral-small-latest",
		models.TierMini:  "mistral-medium-latest",
		models.TierLarge: "mistral-large-latest",
	},
	models.ProviderGemini: {
		models.TierNano:  "gemini-2.5-flash-lite",
		models.TierMini:  "gemini-2.5-flash",
		models.TierLarge: "gemini-2.5-pro",
	},
}

// SelectModel picks the model for one call. With smart selection disabled the
// configured model is returned verbatim. The result depends only on its inputs.
func SelectModel(prompt, context string, settings models.AIConfig) models.ModelSelection {
	if !settings.SmartSelectionEnabled() {
		return models.ModelSelection{
			Provider: settings.Provider,
			Model:    settings.Model,
		}
	}

	tokens := estimator.EstimateTokens(prompt, context)
	complexity := estimator.AnalyzeComplexity(prompt, context)
	tier := TierFor(tokens, complexity, settings.TierThresholds)

	return models.ModelSelection{
		Provider:   settings.Provider,
		Tier:       tier,
		Model:      ModelFor(settings.Provider, tier, settings.Model, settings.ModelTiers),
		Tokens:     tokens,
		Complexity: complexity,
		Smart:      true,
	}
}

// TierFor returns the smallest tier whose adjusted threshold holds tokens.
// Complex prompts tighten the nano and mini ceilings, simple prompts loosen them.
func TierFor(tokens int, complexity models.Complexity, thresholds models.TierThresholds) models.Tier {
	if thresholds.Nano <= 0 || thresholds.Mini <= 0 {
		thresholds = models.DefaultTierThresholds()
	}

	nano, mini := float64(thresholds.Nano), float64(thresholds.Mini)
	switch complexity {
	case models.ComplexityComplex:
		nano, mini = nano*0.5, mini*0.7
	case models.ComplexitySimple:
		nano, mini = nano*1.5, mini*1.3
	}

	switch t := float64(tokens); {
	case t <= math.Floor(nano):
		return models.TierNano
	case t <= math.Floor(mini):
		return models.TierMini
	default:
		return models.TierLarge
	}
}

// ModelFor maps (provider, tier) to a model name. Overrides take precedence over
// the stock table. Unknown providers use the openai table; unknown tiers fall back
// to the configured model.
func ModelFor(provider models.ProviderName, tier models.Tier, configured string, overrides map[models.ProviderName]map[models.Tier]string) string {
	if model := overrides[provider][tier]; model != "" {
		return model
	}

	table, ok := defaultModelTiers[provider]
	if !ok {
		if model := overrides[models.ProviderOpenAI][tier]; model != "" {
			return model
		}
		table = defaultModelTiers[models.ProviderOpenAI]
	}

	if model, ok := table[tier]; ok {
		return model
	}
	return configured
}
