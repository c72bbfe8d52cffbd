package models

// ProviderName identifies a supported AI provider
type ProviderName string

const (
	ProviderOpenAI  ProviderName = "openai"
	ProviderClaude  ProviderName = "claude"
	ProviderMistral ProviderName = "mistral"
	ProviderGemini  ProviderName = "gemini"
)

// SupportedProviders lists every provider with an adapter, in table order.
var SupportedProviders = []ProviderName{ProviderOpenAI, ProviderClaude, ProviderMistral, ProviderGemini}

// ProviderConfig holds per-provider transport overrides
type ProviderConfig struct {
	BaseURL   string            `yaml:"base_url" json:"base_url,omitzero"`     // Optional custom base URL
	TimeoutMs int               `yaml:"timeout_ms" json:"timeout_ms,omitzero"` // Optional timeout in milliseconds
	Headers   map[string]string `yaml:"headers" json:"headers,omitzero"`       // Optional custom headers
}

// AIConfig holds the persisted AI settings. Defaults are applied once at load time.
type AIConfig struct {
	Provider               ProviderName                     `yaml:"provider" json:"provider"`
	APIKey                 string                           `yaml:"api_key" json:"-"`
	Model                  string                           `yaml:"model" json:"model"`
	MaxTokens              int                              `yaml:"max_tokens" json:"max_tokens"`
	Temperature            float64                          `yaml:"temperature" json:"temperature"`
	SmartModelSelection    *bool                            `yaml:"smart_model_selection" json:"smart_model_selection,omitzero"`
	TimeoutMs              int                              `yaml:"timeout_ms" json:"timeout_ms,omitzero"`
	EmptyOutputRetries     *int                             `yaml:"empty_output_retries" json:"empty_output_retries,omitzero"`
	ResponsesModelPrefixes []string                         `yaml:"responses_model_prefixes" json:"responses_model_prefixes,omitzero"`
	TierThresholds         TierThresholds                   `yaml:"tier_thresholds" json:"tier_thresholds"`
	ModelTiers             map[ProviderName]map[Tier]string `yaml:"model_tiers" json:"model_tiers,omitzero"`
	Providers              map[ProviderName]ProviderConfig  `yaml:"providers" json:"providers,omitzero"`
}

// SmartSelectionEnabled reports whether tier-based model selection is on.
func (c AIConfig) SmartSelectionEnabled() bool {
	return c.SmartModelSelection == nil || *c.SmartModelSelection
}

// Retries returns the number of follow-up attempts after an empty provider reply.
func (c AIConfig) Retries() int {
	if c.EmptyOutputRetries == nil || *c.EmptyOutputRetries < 0 {
		return 1
	}
	return *c.EmptyOutputRetries
}

// MissingFields returns the names of required settings that are empty.
func (c AIConfig) MissingFields() []string {
	var missing []string
	if c.Provider == "" {
		missing = append(missing, "ai.provider")
	}
	if c.APIKey == "" {
		missing = append(missing, "ai.api_key")
	}
	if c.Model == "" {
		missing = append(missing, "ai.model")
	}
	return missing
}

// ProviderSettings returns the transport overrides for a provider, if any.
func (c AIConfig) ProviderSettings(name ProviderName) ProviderConfig {
	if c.Providers == nil {
		return ProviderConfig{}
	}
	return c.Providers[name]
}
