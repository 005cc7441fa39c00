package tenant

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Principal is the authenticated caller as extracted from the JWT.
type Principal struct {
	ID    uuid.UUID
	Email string
}

// NormalizeEmail is the single normalization applied to every email compared
// against collaborator lists and the superuser allow-list. Applied at write
// and read time.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CurrentPrincipal extracts the authenticated principal from JWT claims in
// context. Returns false for unauthenticated requests.
func CurrentPrincipal(c *fiber.Ctx) (*Principal, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, false
	}

	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, false
	}

	email, _ := claims["email"].(string)
	return &Principal{ID: id, Email: NormalizeEmail(email)}, true
}

// WeddingSlugFromHost returns the slug stored by the host middleware, if the
// request arrived on a wedding subdomain.
func WeddingSlugFromHost(c *fiber.Ctx) (string, bool) {
	slug, ok := c.Locals("wedding_slug").(string)
	return slug, ok && slug != ""
}
