package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Pinger is an interface for health check ping operations.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	store Pinger
}

// NewHealthHandler creates a new HealthHandler for the given award store.
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// Check pings the award store.
// Returns 200 with {"status": "healthy"} when it answers and 503 otherwise.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.store.Ping(c.Context()); err != nil {
		log.Error().Err(err).Msg("health check failed: award store unreachable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  "award store unreachable",
		})
	}
	return c.JSON(fiber.Map{
		"status": "healthy",
	})
}
