package handler

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/spin-wheel-promo/internal/model"
)

const (
	defaultAwardLimit = 20
	maxAwardLimit     = 100
)

// AwardReader defines the read side of the award ledger.
type AwardReader interface {
	Recent(ctx context.Context, limit int) ([]model.Award, error)
	CountByCode(ctx context.Context) ([]model.AwardCount, error)
}

// AwardHandler handles HTTP requests for the award ledger.
type AwardHandler struct {
	awards AwardReader
}

// NewAwardHandler creates a new AwardHandler with the given reader.
func NewAwardHandler(awards AwardReader) *AwardHandler {
	return &AwardHandler{awards: awards}
}

// ListAwards handles GET /api/awards?limit=N.
func (h *AwardHandler) ListAwards(c *fiber.Ctx) error {
	limit := defaultAwardLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxAwardLimit {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request: limit must be between 1 and 100",
			})
		}
		limit = n
	}

	awards, err := h.awards.Recent(c.Context(), limit)
	if err != nil {
		log.Error().Err(err).Int("limit", limit).Msg("failed to list awards")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(awards)
}

// Stats handles GET /api/awards/stats.
func (h *AwardHandler) Stats(c *fiber.Ctx) error {
	counts, err := h.awards.CountByCode(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to count awards")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(counts)
}
