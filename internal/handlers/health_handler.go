package handlers

import "github.com/gofiber/fiber/v2"

// HealthHandler answers liveness probes.
type HealthHandler struct{}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// RegisterRoutes registers GET /health on router.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth always reports ok while the process serves requests.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
