// Package response writes JSON success and error bodies.
package response

import (
	"github.com/Egham-7/site-context/internal/models"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// BaseService writes responses in the service's JSON shapes.
type BaseService struct{}

// NewBaseService creates a new base response service
func NewBaseService() *BaseService {
	return &BaseService{}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitzero"`
}

// Error sends an error response with specified status, type, and code
func (s *BaseService) Error(c *fiber.Ctx, status int, message, errorType, code string) error {
	return c.Status(status).JSON(ErrorResponse{
		Error: ErrorDetail{
			Message: message,
			Type:    errorType,
			Code:    code,
		},
	})
}

// AppError sanitizes err and sends it with the status of its type. The cause
// is logged, never returned to the caller.
func (s *BaseService) AppError(c *fiber.Ctx, err error, requestID string) error {
	appErr := models.SanitizeError(err)
	status := appErr.GetStatusCode()
	if status >= fiber.StatusInternalServerError {
		fiberlog.Errorf("[%s] %s: %v", requestID, appErr.Type, err)
	}
	return s.Error(c, status, appErr.Message, string(appErr.Type), appErr.Code)
}

// Success sends a 200 OK response with the provided data
func (s *BaseService) Success(c *fiber.Ctx, data any) error {
	return c.JSON(data)
}
