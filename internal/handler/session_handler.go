package handler

import (
	"context"
	"errors"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/spin-wheel-promo/internal/model"
	"github.com/fairyhunter13/spin-wheel-promo/internal/service"
)

// screenshotField is the multipart form field carrying the upload.
const screenshotField = "screenshot"

// SessionServiceInterface defines the interface for the promo wizard.
type SessionServiceInterface interface {
	Create(ctx context.Context) (*service.SessionView, error)
	Get(ctx context.Context, id string) (*service.SessionView, error)
	Advance(ctx context.Context, id string) (*service.SessionView, error)
	SubmitName(ctx context.Context, id, name string) (*service.SessionView, error)
	UploadScreenshot(ctx context.Context, id, filename string, data []byte) (*service.SessionView, error)
	Spin(ctx context.Context, id string) (*service.SessionView, error)
	Restart(ctx context.Context, id string) (*service.SessionView, error)
	Delete(ctx context.Context, id string) error
}

// SessionHandler handles HTTP requests for wizard sessions.
type SessionHandler struct {
	service   SessionServiceInterface
	validator *validator.Validate
}

// NewSessionHandler creates a new SessionHandler with the given service and validator.
func NewSessionHandler(svc SessionServiceInterface, v *validator.Validate) *SessionHandler {
	return &SessionHandler{service: svc, validator: v}
}

// formatValidationError converts validator errors to client-facing messages.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := fe.Field()
			tag := fe.Tag()

			if field == "Name" {
				switch tag {
				case "required":
					return "invalid request: name is required"
				case "notblank":
					return "invalid request: name cannot be whitespace only"
				case "max":
					return "invalid request: name exceeds maximum length of 64"
				}
				return "invalid request: name is invalid"
			}
			if tag == "required" {
				return "invalid request: " + field + " is required"
			}
			return "invalid request: " + field + " is invalid"
		}
	}
	return "invalid request"
}

// serviceError maps service sentinels to HTTP responses.
func serviceError(c *fiber.Ctx, err error, op string) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
	case errors.Is(err, service.ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	case errors.Is(err, service.ErrInvalidStep):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "action not allowed at current step"})
	case errors.Is(err, service.ErrSpinInProgress):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "spin in progress"})
	case errors.Is(err, service.ErrAlreadySettled):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "prize already revealed"})
	case errors.Is(err, service.ErrUploadTooLarge):
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "screenshot too large"})
	case errors.Is(err, service.ErrNotAnImage):
		return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{"error": "screenshot must be an image"})
	}
	log.Error().Err(err).Str("session_id", c.Params("id")).Str("op", op).Msg("session request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

// CreateSession handles POST /api/sessions.
func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	view, err := h.service.Create(c.Context())
	if err != nil {
		return serviceError(c, err, "create")
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// GetSession handles GET /api/sessions/:id.
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	view, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return serviceError(c, err, "get")
	}
	return c.JSON(view)
}

// DeleteSession handles DELETE /api/sessions/:id.
func (h *SessionHandler) DeleteSession(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return serviceError(c, err, "delete")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Start handles POST /api/sessions/:id/start and leaves the greeting.
func (h *SessionHandler) Start(c *fiber.Ctx) error {
	view, err := h.service.Advance(c.Context(), c.Params("id"))
	if err != nil {
		return serviceError(c, err, "start")
	}
	return c.JSON(view)
}

// SubmitName handles POST /api/sessions/:id/name.
func (h *SessionHandler) SubmitName(c *fiber.Ctx) error {
	var req model.SubmitNameRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	view, err := h.service.SubmitName(c.Context(), c.Params("id"), req.Name)
	if err != nil {
		return serviceError(c, err, "name")
	}
	return c.JSON(view)
}

// UploadScreenshot handles POST /api/sessions/:id/screenshot (multipart, field "screenshot").
func (h *SessionHandler) UploadScreenshot(c *fiber.Ctx) error {
	header, err := c.FormFile(screenshotField)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: screenshot is required"})
	}

	f, err := header.Open()
	if err != nil {
		return serviceError(c, err, "screenshot")
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return serviceError(c, err, "screenshot")
	}

	view, err := h.service.UploadScreenshot(c.Context(), c.Params("id"), header.Filename, data)
	if err != nil {
		return serviceError(c, err, "screenshot")
	}
	return c.JSON(view)
}

// Spin handles POST /api/sessions/:id/spin. The outcome arrives asynchronously,
// so the response is 202 with the anticipating snapshot.
func (h *SessionHandler) Spin(c *fiber.Ctx) error {
	view, err := h.service.Spin(c.Context(), c.Params("id"))
	if err != nil {
		return serviceError(c, err, "spin")
	}
	return c.Status(fiber.StatusAccepted).JSON(view)
}

// Restart handles POST /api/sessions/:id/restart.
func (h *SessionHandler) Restart(c *fiber.Ctx) error {
	view, err := h.service.Restart(c.Context(), c.Params("id"))
	if err != nil {
		return serviceError(c, err, "restart")
	}
	return c.JSON(view)
}

// Register mounts the session routes on r.
func (h *SessionHandler) Register(r fiber.Router) {
	r.Post("/sessions", h.CreateSession)
	r.Get("/sessions/:id", h.GetSession)
	r.Delete("/sessions/:id", h.DeleteSession)
	r.Post("/sessions/:id/start", h.Start)
	r.Post("/sessions/:id/name", h.SubmitName)
	r.Post("/sessions/:id/screenshot", h.UploadScreenshot)
	r.Post("/sessions/:id/spin", h.Spin)
	r.Post("/sessions/:id/restart", h.Restart)
}
