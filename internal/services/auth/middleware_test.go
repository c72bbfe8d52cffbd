package auth

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Egham-7/site-context/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestApp(cfg models.AuthConfig) *fiber.App {
	app := fiber.New()
	app.Use(NewMiddleware(cfg).Handler())
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(GetIdentity(c))
	})
	return app
}

func call(t *testing.T, app *fiber.App, token string) (int, map[string]any) {
	req := httptest.NewRequest("GET", "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(body, &out))
	return resp.StatusCode, out
}

func TestMiddlewareDisabledGrantsAnonymousReader(t *testing.T) {
	status, body := call(t, newTestApp(models.AuthConfig{}), "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body["id"], "anonymous:")
	assert.Equal(t, []any{models.CapabilityReadSiteContext}, body["capabilities"])
}

func TestMiddlewareEnabled(t *testing.T) {
	app := newTestApp(models.AuthConfig{Enabled: true, JWTSecret: testSecret})

	reader, err := IssueToken(testSecret, "editor-1", []string{models.CapabilityReadSiteContext, models.CapabilityReadPrivatePosts}, time.Hour)
	require.NoError(t, err)
	noCaps, err := IssueToken(testSecret, "guest", nil, time.Hour)
	require.NoError(t, err)
	expired, err := IssueToken(testSecret, "old", []string{models.CapabilityReadSiteContext}, -time.Minute)
	require.NoError(t, err)
	forged, err := IssueToken("other-secret", "mallory", []string{models.CapabilityReadSiteContext}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		status  int
		errType string
	}{
		{"missing token", "", fiber.StatusUnauthorized, "authentication"},
		{"wrong signature", forged, fiber.StatusUnauthorized, "authentication"},
		{"expired", expired, fiber.StatusUnauthorized, "authentication"},
		{"missing capability", noCaps, fiber.StatusForbidden, "authorization"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, app, tt.token)
			assert.Equal(t, tt.status, status)
			errBody, ok := body["error"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tt.errType, errBody["type"])
		})
	}

	status, body := call(t, app, reader)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "editor-1", body["id"])
}

func TestIssueTokenRequiresSecret(t *testing.T) {
	_, err := IssueToken("", "x", nil, time.Minute)
	assert.Error(t, err)
}
