package models

import "encoding/json"

// PayloadShape tags the wire shape of a provider payload.
type PayloadShape string

const (
	ShapeChatCompletions PayloadShape = "chat_completions"
	ShapeResponses       PayloadShape = "responses"
	ShapeMessages        PayloadShape = "messages"
	ShapeGenerateContent PayloadShape = "generate_content"
)

// PromptRequest is the provider-neutral input to payload construction.
type PromptRequest struct {
	Model       string
	System      string
	Input       string
	MaxTokens   int
	Temperature float64
}

// ProviderPayload is a shape-tagged request body. Hooks may rewrite any field
// before it is sent.
type ProviderPayload struct {
	Provider    ProviderName `json:"provider"`
	Shape       PayloadShape `json:"shape"`
	Model       string       `json:"model"`
	System      string       `json:"system,omitzero"`
	Input       string       `json:"input"`
	MaxTokens   int          `json:"max_tokens"`
	Temperature *float64     `json:"temperature,omitzero"`
}

// ProviderResult is the normalized provider reply.
type ProviderResult struct {
	Output       string          `json:"output"`
	IsIncomplete bool            `json:"is_incomplete"`
	Raw          json.RawMessage `json:"raw,omitempty"`
}

// HasVisibleOutput reports whether the result carries usable text.
func (r ProviderResult) HasVisibleOutput() bool {
	return !r.IsIncomplete && r.Output != ""
}
