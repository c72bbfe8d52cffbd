package providers

import (
	"context"

	"github.com/Egham-7/site-context/internal/models"
)

// Extension points of a provider call.
const (
	PointBeforeSend = "before_send"
	PointAfterParse = "after_parse"
)

// PayloadHook may rewrite a payload before it is sent.
type PayloadHook func(ctx context.Context, payload *models.ProviderPayload) error

// ResultHook may rewrite a parsed result.
type ResultHook func(ctx context.Context, result *models.ProviderResult) error

// Chain runs hooks in registration order. The zero value is an empty chain.
type Chain struct {
	beforeSend []PayloadHook
	afterParse []ResultHook
}

// NewChain creates an empty hook chain.
func NewChain() *Chain {
	return &Chain{}
}

// OnBeforeSend appends a payload hook.
func (c *Chain) OnBeforeSend(h PayloadHook) *Chain {
	c.beforeSend = append(c.beforeSend, h)
	return c
}

// OnAfterParse appends a result hook.
func (c *Chain) OnAfterParse(h ResultHook) *Chain {
	c.afterParse = append(c.afterParse, h)
	return c
}

// Len returns the number of hooks registered at point.
func (c *Chain) Len(point string) int {
	if c == nil {
		return 0
	}
	switch point {
	case PointBeforeSend:
		return len(c.beforeSend)
	case PointAfterParse:
		return len(c.afterParse)
	default:
		return 0
	}
}

// BeforeSend runs payload hooks and stops at the first error.
func (c *Chain) BeforeSend(ctx context.Context, payload *models.ProviderPayload) error {
	if c == nil {
		return nil
	}
	for _, h := range c.beforeSend {
		if err := h(ctx, payload); err != nil {
			return err
		}
	}
	return nil
}

// AfterParse runs result hooks and stops at the first error.
func (c *Chain) AfterParse(ctx context.Context, result *models.ProviderResult) error {
	if c == nil {
		return nil
	}
	for _, h := range c.afterParse {
		if err := h(ctx, result); err != nil {
			return err
		}
	}
	return nil
}
