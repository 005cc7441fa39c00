package routes

import (
	"time"

	"github.com/everafterhq/everafter-backend/internal/config"
	"github.com/everafterhq/everafter-backend/internal/handlers"
	"github.com/everafterhq/everafter-backend/internal/middleware"
	"github.com/everafterhq/everafter-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	permissions *services.PermissionService,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	weddingHandler *handlers.WeddingHandler,
	guestHandler *handlers.GuestHandler,
	registryHandler *handlers.RegistryHandler,
	paymentHandler *handlers.PaymentHandler,
	adminHandler *handlers.AdminHandler,
	webhookHandler *handlers.WebhookHandler,
	legalHandler *handlers.LegalHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	api.Get("/legal/privacy", legalHandler.PrivacyPolicy)
	api.Get("/legal/terms", legalHandler.TermsOfService)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	// Wedding creation is public: the builder-first flow makes an unowned
	// site before the couple signs up. OptionalJWT still attaches the
	// principal when one is present.
	api.Post("/weddings", middleware.OptionalJWT(cfg), weddingHandler.Create)

	// Public wedding routes use OptionalJWT so the same URL serves both the
	// couple and their guests; the permission evaluator sorts out who is who.
	wedding := api.Group("/weddings/:identifier", middleware.OptionalJWT(cfg))
	wedding.Get("/", weddingHandler.Get)
	wedding.Get("/permissions", weddingHandler.Permissions)
	wedding.Get("/features", weddingHandler.Features)
	wedding.Get("/registry", registryHandler.List)
	wedding.Post("/registry/:itemId/contribute", registryHandler.Contribute)

	// Mutations require a verified token.
	wedding.Post("/claim", middleware.JWTProtected(cfg), weddingHandler.Claim)
	wedding.Put("/page-config", middleware.JWTProtected(cfg), weddingHandler.UpdatePageConfig)
	wedding.Put("/slug", middleware.JWTProtected(cfg), weddingHandler.UpdateSlug)
	wedding.Delete("/", middleware.JWTProtected(cfg), weddingHandler.Delete)
	wedding.Post("/collaborators", middleware.JWTProtected(cfg), weddingHandler.AddCollaborator)
	wedding.Delete("/collaborators", middleware.JWTProtected(cfg), weddingHandler.RemoveCollaborator)

	wedding.Get("/guests", middleware.JWTProtected(cfg), guestHandler.List)
	wedding.Post("/guest-groups", middleware.JWTProtected(cfg), guestHandler.CreateGroup)
	wedding.Delete("/guest-groups/:groupId", middleware.JWTProtected(cfg), guestHandler.DeleteGroup)
	wedding.Post("/guests", middleware.JWTProtected(cfg), guestHandler.CreateGuest)
	wedding.Put("/guests/:guestId", middleware.JWTProtected(cfg), guestHandler.UpdateGuest)
	wedding.Delete("/guests/:guestId", middleware.JWTProtected(cfg), guestHandler.DeleteGuest)

	wedding.Post("/registry", middleware.JWTProtected(cfg), registryHandler.CreateItem)
	wedding.Put("/registry/:itemId", middleware.JWTProtected(cfg), registryHandler.UpdateItem)
	wedding.Delete("/registry/:itemId", middleware.JWTProtected(cfg), registryHandler.DeleteItem)
	wedding.Get("/contributions", middleware.JWTProtected(cfg), registryHandler.Contributions)

	wedding.Post("/payments/onboard", middleware.JWTProtected(cfg), paymentHandler.Onboard)
	wedding.Get("/payments/status", middleware.JWTProtected(cfg), paymentHandler.Status)
	wedding.Post("/upgrade", middleware.JWTProtected(cfg), paymentHandler.Upgrade)

	// Public RSVP: the guest id from the invitation link is the credential.
	api.Post("/rsvp/:guestId", guestHandler.RSVP)

	// Superuser console (protected + superuser allow-list)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.SuperuserRequired(permissions))
	admin.Get("/weddings", adminHandler.ListWeddings)
	admin.Put("/weddings/:identifier/plan", adminHandler.SetPlan)
	admin.Get("/plans/:tier/features", adminHandler.PlanFeatures)
	admin.Put("/plans/:tier/features/:key", adminHandler.UpsertPlanFeature)
	admin.Delete("/plans/:tier/features/:key", adminHandler.DeletePlanFeature)

	// Stripe webhooks: signature-verified, no JWT
	webhooks := api.Group("/webhooks")
	webhooks.Post("/stripe", webhookHandler.Platform)
	webhooks.Post("/stripe/connect", webhookHandler.Connect)
}
