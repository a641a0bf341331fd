package handler

import (
	"bytes"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/spin-wheel-promo/internal/model"
	"github.com/fairyhunter13/spin-wheel-promo/internal/wheel"
)

// WheelSource provides the catalog and phase timings the wheel is drawn from.
type WheelSource interface {
	Catalog() []model.PrizeEntry
	Timings() wheel.Timings
}

// WheelHandler serves the wheel face for clients that render it.
type WheelHandler struct {
	source WheelSource
	layout wheel.Layout
}

// NewWheelHandler creates a new WheelHandler drawing with the default layout.
func NewWheelHandler(source WheelSource) *WheelHandler {
	return &WheelHandler{source: source, layout: wheel.DefaultLayout}
}

// GetWheel handles GET /api/wheel.
func (h *WheelHandler) GetWheel(c *fiber.Ctx) error {
	entries := h.source.Catalog()
	timings := h.source.Timings()

	resp := model.WheelResponse{
		SegmentAngle:  wheel.SegmentAngle(len(entries)),
		PointerAngle:  wheel.PointerAngle,
		AnticipateMs:  timings.Anticipation.Milliseconds(),
		SpinMs:        timings.Spin.Milliseconds(),
		CelebrationMs: timings.Celebration.Milliseconds(),
		Wedges:        make([]model.WedgeResponse, 0, len(entries)),
	}
	for _, wd := range wheel.Wedges(entries, h.layout) {
		resp.Wedges = append(resp.Wedges, model.WedgeResponse{
			Index:         wd.Index,
			Prize:         wd.Entry,
			StartAngle:    wd.StartAngle,
			EndAngle:      wd.EndAngle,
			CenterAngle:   wd.CenterAngle,
			Path:          wd.Path,
			LabelX:        wd.LabelX,
			LabelY:        wd.LabelY,
			LabelRotation: wd.LabelRotation,
		})
	}
	return c.JSON(resp)
}

// GetWheelSVG handles GET /api/wheel.svg. The optional "rotation" query
// parameter turns the face clockwise by that many degrees.
func (h *WheelHandler) GetWheelSVG(c *fiber.Ctx) error {
	rotation := 0.0
	if raw := c.Query("rotation"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: rotation must be a number"})
		}
		rotation = v
	}

	var buf bytes.Buffer
	wheel.RenderSVG(&buf, h.source.Catalog(), h.layout, rotation)

	c.Type("svg")
	return c.Send(buf.Bytes())
}
