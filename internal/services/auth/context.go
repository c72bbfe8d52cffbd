package auth

import (
	"github.com/Egham-7/site-context/internal/models"

	"github.com/gofiber/fiber/v2"
)

const identityLocalKey = "identity"

// SetIdentity stores the caller identity in fiber locals.
func SetIdentity(c *fiber.Ctx, identity models.Identity) {
	c.Locals(identityLocalKey, identity)
}

// GetIdentity returns the identity stored by the middleware. Without one the
// caller is anonymous and holds no capabilities.
func GetIdentity(c *fiber.Ctx) models.Identity {
	if identity, ok := c.Locals(identityLocalKey).(models.Identity); ok {
		return identity
	}
	return models.Identity{ID: "anonymous:" + c.IP()}
}
