// Package request reads request ids and context requests from fiber contexts.
package request

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/Egham-7/site-context/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	// requestIDLocalKey is the fiber locals key holding the request id
	requestIDLocalKey  = "request_id"
	maxRequestIDLength = 256
)

// BaseService provides request parsing shared by the handlers.
type BaseService struct{}

// NewBaseService creates a new base request service
func NewBaseService() *BaseService {
	return &BaseService{}
}

func (s *BaseService) sanitizeRequestID(reqID string) string {
	sanitized := strings.TrimSpace(reqID)
	if len(sanitized) > maxRequestIDLength {
		sanitized = sanitized[:maxRequestIDLength]
	}
	return sanitized
}

// GetRequestID returns the X-Request-ID header, or a generated id, and
// memoizes it in locals.
func (s *BaseService) GetRequestID(c *fiber.Ctx) string {
	if cachedID, ok := c.Locals(requestIDLocalKey).(string); ok && cachedID != "" {
		return cachedID
	}

	requestID := s.sanitizeRequestID(c.Get(fiber.HeaderXRequestID))
	if requestID == "" {
		requestID = s.GenerateRequestID()
	}

	c.Locals(requestIDLocalKey, requestID)
	return requestID
}

// GenerateRequestID creates a new random request ID
func (s *BaseService) GenerateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return "req_unknown"
	}
	return "req_" + hex.EncodeToString(bytes)
}

// ParseContextRequest reads a context request from the JSON body of a POST or
// the query string of a GET.
func (s *BaseService) ParseContextRequest(c *fiber.Ctx) (models.ContextRequest, error) {
	var req models.ContextRequest
	if c.Method() == fiber.MethodGet {
		if err := c.QueryParser(&req); err != nil {
			return req, models.NewValidationError("invalid query parameters", err)
		}
	} else if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return req, models.NewValidationError("invalid request body", err)
		}
	}

	if strings.TrimSpace(req.Identifier) == "" {
		return req, models.NewValidationError("identifier is required", nil)
	}
	return req, nil
}
