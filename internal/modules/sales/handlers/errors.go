package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/chat"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/repositories"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/services"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/shared/utils"
)

// respondError maps domain errors onto status codes. Anything unrecognised is logged and hidden behind a 500.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := "Internal server error"

	switch {
	case llm.IsGenerationError(err):
		status, msg = fiber.StatusBadGateway, "Failed to generate content: "+err.Error()
	case auth.IsAuthError(err):
		status, msg = fiber.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, chat.ErrEmptyMessage):
		status, msg = fiber.StatusBadRequest, "Message text is required"
	case errors.Is(err, chat.ErrInvalidKey), errors.Is(err, chat.ErrNoConversationKey), errors.Is(err, chat.ErrNoSender):
		status, msg = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrInvalidStatus):
		status, msg = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrNotFound):
		status, msg = fiber.StatusNotFound, "Not found"
	case errors.Is(err, services.ErrForbidden):
		status, msg = fiber.StatusForbidden, "Forbidden"
	case errors.Is(err, services.ErrQuotationExpired):
		status, msg = fiber.StatusConflict, err.Error()
	case repositories.IsPersistenceError(err):
		msg = "Failed to access storage"
	}

	if status >= fiber.StatusInternalServerError {
		utils.LogError(msg, err, map[string]interface{}{
			"method":     c.Method(),
			"path":       c.Path(),
			"request_id": requestID(c),
		})
	}

	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func requestID(c *fiber.Ctx) string {
	return c.GetRespHeader(fiber.HeaderXRequestID)
}

// actor resolves the authenticated caller; routes using it sit behind auth.RequireAuth
func actor(c *fiber.Ctx) (services.Actor, error) {
	return services.ActorFrom(auth.StateOf(c), requestID(c))
}

func paramID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}
