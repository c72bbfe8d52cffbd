// Package models defines the shared types of the context dispatch pipeline.
package models

// Tier is a coarse, provider-independent model capability bucket.
type Tier string

const (
	TierNano  Tier = "nano"
	TierMini  Tier = "mini"
	TierLarge Tier = "large"
)

// Complexity is the linguistic complexity bucket of a prompt.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// TierThresholds holds the token ceilings for the nano and mini tiers.
// Large has no ceiling; its value is informational.
type TierThresholds struct {
	Nano  int `json:"nano" yaml:"nano"`
	Mini  int `json:"mini" yaml:"mini"`
	Large int `json:"large" yaml:"large"`
}

// DefaultTierThresholds returns the stock token thresholds.
func DefaultTierThresholds() TierThresholds {
	return TierThresholds{Nano: 200, Mini: 1000, Large: 2000}
}

// ModelSelection is the derived choice of a concrete model for one call.
// It is never persisted.
type ModelSelection struct {
	Provider   ProviderName `json:"provider"`
	Tier       Tier         `json:"tier,omitzero"`
	Model      string       `json:"model"`
	Tokens     int          `json:"tokens"`
	Complexity Complexity   `json:"complexity,omitzero"`
	Smart      bool         `json:"smart"`
}
