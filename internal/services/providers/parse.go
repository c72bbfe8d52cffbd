package providers

import (
	"encoding/json"
	"strings"

	"github.com/Egham-7/site-context/internal/models"

	"github.com/tidwall/gjson"
)

func incomplete(raw json.RawMessage) models.ProviderResult {
	return models.ProviderResult{IsIncomplete: true, Raw: raw}
}

func invalidBody(provider models.ProviderName) error {
	return models.NewProviderError(string(provider), "response body is not valid JSON", nil)
}

// ParseResponses reads a Responses API body. Text from every output_text part
// of every message item is concatenated.
func ParseResponses(provider models.ProviderName, raw json.RawMessage) (models.ProviderResult, error) {
	if !gjson.ValidBytes(raw) {
		return models.ProviderResult{}, invalidBody(provider)
	}
	body := gjson.ParseBytes(raw)
	if body.Get("status").String() == "incomplete" {
		return incomplete(raw), nil
	}

	var b strings.Builder
	body.Get("output").ForEach(func(_, item gjson.Result) bool {
		if item.Get("type").String() != "message" {
			return true
		}
		item.Get("content").ForEach(func(_, part gjson.Result) bool {
			if part.Get("type").String() == "output_text" {
				b.WriteString(part.Get("text").String())
			}
			return true
		})
		return true
	})

	out := b.String()
	if strings.TrimSpace(out) == "" {
		return incomplete(raw), nil
	}
	return models.ProviderResult{Output: out, Raw: raw}, nil
}

// ParseChatCompletion reads a Chat Completions body from OpenAI or Mistral.
func ParseChatCompletion(provider models.ProviderName, raw json.RawMessage) (models.ProviderResult, error) {
	if !gjson.ValidBytes(raw) {
		return models.ProviderResult{}, invalidBody(provider)
	}
	choices := gjson.GetBytes(raw, "choices")
	if !choices.IsArray() || len(choices.Array()) == 0 {
		return models.ProviderResult{}, models.NewProviderError(string(provider), "response has no choices", nil)
	}

	content := gjson.GetBytes(raw, "choices.0.message.content").String()
	if strings.TrimSpace(content) == "" {
		return incomplete(raw), nil
	}
	return models.ProviderResult{Output: content, Raw: raw}, nil
}

// ParseMessages reads an Anthropic Messages body using its first text block.
func ParseMessages(provider models.ProviderName, raw json.RawMessage) (models.ProviderResult, error) {
	if !gjson.ValidBytes(raw) {
		return models.ProviderResult{}, invalidBody(provider)
	}
	text := gjson.GetBytes(raw, `content.#(type=="text").text`).String()
	if strings.TrimSpace(text) == "" {
		return incomplete(raw), nil
	}
	return models.ProviderResult{Output: text, Raw: raw}, nil
}

// ParseGenerateContent reads a Gemini generateContent body, joining the text
// parts of the first candidate.
func ParseGenerateContent(provider models.ProviderName, raw json.RawMessage) (models.ProviderResult, error) {
	if !gjson.ValidBytes(raw) {
		return models.ProviderResult{}, invalidBody(provider)
	}
	var b strings.Builder
	for _, part := range gjson.GetBytes(raw, "candidates.0.content.parts").Array() {
		if part.Get("thought").Bool() {
			continue
		}
		b.WriteString(part.Get("text").String())
	}

	out := b.String()
	if strings.TrimSpace(out) == "" {
		return incomplete(raw), nil
	}
	return models.ProviderResult{Output: out, Raw: raw}, nil
}

func isResponsesBody(raw json.RawMessage) bool {
	return gjson.GetBytes(raw, "object").String() == "response"
}
