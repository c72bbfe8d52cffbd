// Package auth implements the bearer-token capability check.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Egham-7/site-context/internal/models"
	"github.com/Egham-7/site-context/internal/services/request"
	"github.com/Egham-7/site-context/internal/services/response"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims accepted by the middleware. Capabilities travel
// in the "caps" claim.
type Claims struct {
	Capabilities []string `json:"caps,omitempty"`
	jwt.RegisteredClaims
}

// Middleware verifies HS256 bearer tokens and enforces the required capability.
type Middleware struct {
	config   models.AuthConfig
	requests *request.BaseService
	respond  *response.BaseService
}

func NewMiddleware(config models.AuthConfig) *Middleware {
	if config.RequiredCapability == "" {
		config.RequiredCapability = models.CapabilityReadSiteContext
	}
	return &Middleware{
		config:   config,
		requests: request.NewBaseService(),
		respond:  response.NewBaseService(),
	}
}

// Handler returns the fiber middleware.
func (m *Middleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !m.config.Enabled {
			SetIdentity(c, models.Identity{
				ID:           "anonymous:" + c.IP(),
				Capabilities: []string{m.config.RequiredCapability},
			})
			return c.Next()
		}

		requestID := m.requests.GetRequestID(c)

		token := extractToken(c)
		if token == "" {
			return m.respond.AppError(c, models.NewAuthenticationError("authentication required", nil), requestID)
		}

		identity, err := m.Verify(token)
		if err != nil {
			fiberlog.Warnf("[%s] Rejected bearer token: %v", requestID, err)
			return m.respond.AppError(c, err, requestID)
		}

		if !identity.Can(m.config.RequiredCapability) {
			fiberlog.Warnf("[%s] Identity %s lacks capability %s", requestID, identity.ID, m.config.RequiredCapability)
			return m.respond.AppError(c, models.NewAccessDeniedError("you are not allowed to read site context"), requestID)
		}

		SetIdentity(c, identity)
		return c.Next()
	}
}

// Verify parses token and returns the identity it describes.
func (m *Middleware) Verify(token string) (models.Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(m.config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Identity{}, models.NewAuthenticationError("token expired", err)
		}
		return models.Identity{}, models.NewAuthenticationError("invalid token", err)
	}
	if !parsed.Valid {
		return models.Identity{}, models.NewAuthenticationError("invalid token", nil)
	}

	subject, _ := claims.GetSubject()
	if subject == "" {
		return models.Identity{}, models.NewAuthenticationError("token has no subject", nil)
	}
	return models.Identity{ID: subject, Capabilities: claims.Capabilities}, nil
}

// IssueToken signs a token for subject carrying caps.
func IssueToken(secret, subject string, caps []string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt secret is empty")
	}
	now := time.Now()
	claims := Claims{
		Capabilities: caps,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func extractToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}
