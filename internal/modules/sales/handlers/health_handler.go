package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// namedProvider is anything that can report which backend it talks to
type namedProvider interface {
	GetProviderName() string
}

type HealthHandler struct {
	llm     namedProvider
	storage namedProvider
	chat    string
}

func NewHealthHandler(llm, storage namedProvider, chatStore string) *HealthHandler {
	return &HealthHandler{llm: llm, storage: storage, chat: chatStore}
}

// GetHealth godoc
// @Summary Service health check
// @Description Check if API is alive
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	resp := fiber.Map{
		"status":     "ok",
		"service":    "proposal-ai-api",
		"chat_store": h.chat,
	}
	if h.llm != nil {
		resp["llm_provider"] = h.llm.GetProviderName()
	}
	if h.storage != nil {
		resp["storage_provider"] = h.storage.GetProviderName()
	}
	return c.JSON(resp)
}
