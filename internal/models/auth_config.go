package models

// AuthConfig configures the bearer-token capability check.
// When disabled every caller is treated as an anonymous reader.
type AuthConfig struct {
	Enabled            bool   `json:"enabled" yaml:"enabled"`
	JWTSecret          string `json:"-" yaml:"jwt_secret"`
	RequiredCapability string `json:"required_capability,omitzero" yaml:"required_capability"`
}
