package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Egham-7/site-context/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	got models.ContextRequest
	err error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, req models.ContextRequest, identity models.Identity, _ string) (*models.Envelope, error) {
	d.got = req
	if d.err != nil {
		return nil, d.err
	}
	return &models.Envelope{Message: "AI response generated.", Identifier: req.Identifier, Prompt: req.Prompt, Format: req.Format,
		AI: &models.AIResult{Output: "hello " + identity.ID}}, nil
}

func (d *recordingDispatcher) SchemaOverview(context.Context, string) *models.ResolvedContext {
	return &models.ResolvedContext{Identifier: "schema", Content: "## Post types\n"}
}

func newApp(d Dispatcher) *fiber.App {
	app := fiber.New()
	h := NewContextHandler(d)
	app.Post("/v1/context", h.Context)
	app.Get("/v1/context", h.Context)
	app.Get("/v1/schema", h.Schema)
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(data, &out))
	return resp.StatusCode, out
}

func TestContextPost(t *testing.T) {
	d := &recordingDispatcher{}
	status, body := do(t, newApp(d), "POST", "/v1/context", `{"identifier":"post-12","prompt":"When?","format":"plain"}`)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "post-12", d.got.Identifier)
	assert.Equal(t, models.FormatPlain, d.got.Format)
	assert.Equal(t, "AI response generated.", body["message"])
}

func TestContextGet(t *testing.T) {
	d := &recordingDispatcher{}
	status, _ := do(t, newApp(d), "GET", "/v1/context?identifier=multi&prompt=Summarize", "")

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "multi", d.got.Identifier)
	assert.Equal(t, "Summarize", d.got.Prompt)
}

func TestContextErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		err     error
		status  int
		errType string
	}{
		{"missing identifier", `{"prompt":"hi"}`, nil, fiber.StatusBadRequest, "validation"},
		{"malformed body", `{"identifier":`, nil, fiber.StatusBadRequest, "validation"},
		{"not found", `{"identifier":"post-9"}`, models.NewNotFoundError("post-9"), fiber.StatusNotFound, "not_found"},
		{"configuration", `{"identifier":"post-9"}`, models.NewConfigurationError([]string{"ai.api_key"}), fiber.StatusBadRequest, "configuration"},
		{"provider", `{"identifier":"post-9","prompt":"x"}`, models.NewProviderError("openai", "request failed with status 500", nil), fiber.StatusBadGateway, "provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, newApp(&recordingDispatcher{err: tt.err}), "POST", "/v1/context", tt.body)
			assert.Equal(t, tt.status, status)
			errBody, ok := body["error"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tt.errType, errBody["type"])
		})
	}
}

func TestSchemaEndpoint(t *testing.T) {
	status, body := do(t, newApp(&recordingDispatcher{}), "GET", "/v1/schema", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "schema", body["identifier"])
}

func TestHealthCheck(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	app := fiber.New()
	app.Get("/health", NewHealthHandler(client, nil).HealthCheck)

	status, body := do(t, app, "GET", "/health", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "healthy", checks["redis"])
	assert.Equal(t, "disabled", checks["database"])

	mr.Close()
	status, body = do(t, app, "GET", "/health", "")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "degraded", body["status"])
}
