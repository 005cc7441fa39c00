package middleware

import (
	"github.com/everafterhq/everafter-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// SubdomainSlug stores the wedding slug derived from the request host in
// context locals. The subdomain takes precedence over identifiers embedded in
// the path, so handlers consult it first.
func SubdomainSlug(baseDomain string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if slug, ok := services.SlugFromHost(c.Hostname(), baseDomain); ok {
			c.Locals("wedding_slug", slug)
		}
		return c.Next()
	}
}
