package models

// RateLimitConfig sets the per-identity token bucket. Zero disables throttling.
type RateLimitConfig struct {
	RequestsPerMinute int `json:"requests_per_minute,omitzero" yaml:"requests_per_minute"`
	Burst             int `json:"burst,omitzero" yaml:"burst"`
}
