package api

import (
	"context"

	"github.com/Egham-7/site-context/internal/models"
	"github.com/Egham-7/site-context/internal/services/auth"
	"github.com/Egham-7/site-context/internal/services/request"
	"github.com/Egham-7/site-context/internal/services/response"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Dispatcher is the pipeline behind the context endpoints. Implemented by dispatch.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, req models.ContextRequest, identity models.Identity, requestID string) (*models.Envelope, error)
	SchemaOverview(ctx context.Context, requestID string) *models.ResolvedContext
}

// ContextHandler serves POST and GET /v1/context.
type ContextHandler struct {
	dispatcher Dispatcher
	requestSvc *request.BaseService
	respondSvc *response.BaseService
}

// NewContextHandler creates the context endpoint handler.
func NewContextHandler(dispatcher Dispatcher) *ContextHandler {
	return &ContextHandler{
		dispatcher: dispatcher,
		requestSvc: request.NewBaseService(),
		respondSvc: response.NewBaseService(),
	}
}

// Context resolves the requested context and, when a prompt is given, asks the configured provider.
func (h *ContextHandler) Context(c *fiber.Ctx) error {
	reqID := h.requestSvc.GetRequestID(c)
	c.Set(fiber.HeaderXRequestID, reqID)

	req, err := h.requestSvc.ParseContextRequest(c)
	if err != nil {
		return h.respondSvc.AppError(c, err, reqID)
	}
	fiberlog.Infof("[%s] Context request for %q (format=%s, prompt=%t)", reqID, req.Identifier, req.Format, req.Prompt != "")

	envelope, err := h.dispatcher.Dispatch(c.UserContext(), req, auth.GetIdentity(c), reqID)
	if err != nil {
		return h.respondSvc.AppError(c, err, reqID)
	}
	return h.respondSvc.Success(c, envelope)
}

// Schema returns the structural overview of the site.
func (h *ContextHandler) Schema(c *fiber.Ctx) error {
	reqID := h.requestSvc.GetRequestID(c)
	c.Set(fiber.HeaderXRequestID, reqID)
	return h.respondSvc.Success(c, h.dispatcher.SchemaOverview(c.UserContext(), reqID))
}
