package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type LegalHandler struct{}

func NewLegalHandler() *LegalHandler {
	return &LegalHandler{}
}

func (h *LegalHandler) PrivacyPolicy(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"title":   "Privacy Policy",
		"url":     "https://everafter.site/legal/privacy",
		"updated": "2026-01-15",
	})
}

func (h *LegalHandler) TermsOfService(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"title":   "Terms of Service",
		"url":     "https://everafter.site/legal/terms",
		"updated": "2026-01-15",
	})
}
