package models

import (
	"encoding/json"
	"strings"
	"time"
)

// MultiIdentifier is the sentinel identifier requesting a multi-document digest.
const MultiIdentifier = "multi"

// Format is the rendering format of resolved content.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatPlain    Format = "plain"
	FormatHTML     Format = "html"
)

// ParseFormat normalizes a format name. Empty input yields markdown.
func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatMarkdown:
		return FormatMarkdown, true
	case FormatPlain:
		return FormatPlain, true
	case FormatHTML:
		return FormatHTML, true
	default:
		return "", false
	}
}

// ContextRequest is one inbound question about the site.
type ContextRequest struct {
	Identifier string `json:"identifier" query:"identifier"`
	Prompt     string `json:"prompt" query:"prompt"`
	Format     Format `json:"format" query:"format"`
}

// IsMulti reports whether the request targets the multi-document digest.
func (r ContextRequest) IsMulti() bool {
	return strings.EqualFold(strings.TrimSpace(r.Identifier), MultiIdentifier)
}

// ResolvedContext is the rendered text placed into the AI prompt.
type ResolvedContext struct {
	Identifier string         `json:"identifier"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata"`
}

// Modified returns the modification timestamp recorded in the metadata, if any.
func (c *ResolvedContext) Modified() string {
	if c == nil || c.Metadata == nil {
		return ""
	}
	switch v := c.Metadata["modified"].(type) {
	case string:
		return v
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	default:
		return ""
	}
}

// AIResult is the user-facing slice of a provider result.
type AIResult struct {
	Output string          `json:"output"`
	Raw    json.RawMessage `json:"raw,omitempty"`
}

// Envelope is the response of one dispatch.
type Envelope struct {
	Message     string           `json:"message"`
	Provider    ProviderName     `json:"provider"`
	Model       string           `json:"model"`
	MaxTokens   int              `json:"max_tokens"`
	Temperature float64          `json:"temperature"`
	Identifier  string           `json:"identifier"`
	Prompt      string           `json:"prompt"`
	Format      Format           `json:"format"`
	Context     *ResolvedContext `json:"context"`
	AI          *AIResult        `json:"ai"`
	Cached      bool             `json:"cached"`
}
