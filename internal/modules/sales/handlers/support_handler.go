package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/chat"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/models"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/shared/utils"
)

// SupportHandler serves the support console: every conversation, threads newest first
type SupportHandler struct {
	*streams
	store  chat.Store
	sender *chat.Sender
}

func NewSupportHandler(store chat.Store, sender *chat.Sender) *SupportHandler {
	return &SupportHandler{
		streams: newStreams(),
		store:   store,
		sender:  sender,
	}
}

// RegisterRoutes mounts /support for the support role. Authenticate must already be installed.
func (h *SupportHandler) RegisterRoutes(router fiber.Router) {
	g := router.Group("/support", auth.RequireRole(auth.RoleSupport))
	g.Get("/conversations", h.ListConversations)
	g.Get("/conversations/:key/messages", h.GetMessages)
	g.Post("/conversations/:key/messages", h.SendMessage)
	g.Get("/stream", h.Stream)
}

// ListConversations godoc
// @Summary List conversations
// @Description Every conversation with its participants and last message, most recently active first
// @Tags Support
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} models.ConversationsResponse
// @Failure 403 {object} map[string]interface{}
// @Router /support/conversations [get]
func (h *SupportHandler) ListConversations(c *fiber.Ctx) error {
	convs, err := h.store.Conversations(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	if convs == nil {
		convs = []chat.Conversation{}
	}
	return c.JSON(models.ConversationsResponse{Conversations: convs})
}

// GetMessages godoc
// @Summary Conversation messages
// @Description Snapshot of one conversation, newest first
// @Tags Support
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param key path string true "Conversation key (support_{id} or user_{id})"
// @Param order query string false "desc (default) or asc"
// @Success 200 {object} models.MessagesResponse
// @Failure 400 {object} map[string]interface{}
// @Router /support/conversations/{key}/messages [get]
func (h *SupportHandler) GetMessages(c *fiber.Ctx) error {
	key := c.Params("key")
	if !chat.ValidKey(key) {
		return respondError(c, chat.ErrInvalidKey)
	}

	snapshot, err := h.store.Messages(c.UserContext(), key)
	if err != nil {
		return respondError(c, err)
	}

	order := chat.ParseSortOrder(c.Query("order"), chat.Descending)
	return c.JSON(models.MessagesResponse{
		Key:      key,
		Order:    order.String(),
		Messages: chat.Order(snapshot, order),
	})
}

// SendMessage godoc
// @Summary Reply in a conversation
// @Tags Support
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param key path string true "Conversation key"
// @Param request body models.SendMessageRequest true "Message"
// @Success 201 {object} chat.Message
// @Failure 400 {object} map[string]interface{}
// @Router /support/conversations/{key}/messages [post]
func (h *SupportHandler) SendMessage(c *fiber.Ctx) error {
	var req models.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	state := auth.StateOf(c)
	msg, err := h.sender.Send(c.UserContext(), chat.SendRequest{
		Key:         c.Params("key"),
		Text:        req.Text,
		SenderID:    state.Identity.UserID,
		SenderEmail: state.Identity.Email,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(msg)
}

// Stream godoc
// @Summary Support console stream
// @Description Server-sent events: "conversations" carries the conversation list; with ?key= a "messages" event carries that thread, newest first
// @Tags Support
// @Produce text/event-stream
// @Param Authorization header string true "Bearer token"
// @Param key query string false "Conversation to open"
// @Success 200 {object} models.ConversationsResponse
// @Router /support/stream [get]
func (h *SupportHandler) Stream(c *fiber.Ctx) error {
	key := c.Query("key")
	if key != "" && !chat.ValidKey(key) {
		return respondError(c, chat.ErrInvalidKey)
	}

	q := newEventQueue()
	inbox := chat.NewInbox(h.store,
		func(convs []chat.Conversation) {
			q.put("conversations", models.ConversationsResponse{Conversations: convs})
		},
		func(key string, msgs []chat.Message) {
			q.put("messages", models.MessagesResponse{Key: key, Order: chat.Descending.String(), Messages: msgs})
		},
	)

	ctx, cancel := context.WithCancel(context.Background())
	if err := inbox.Open(ctx); err != nil {
		cancel()
		return respondError(c, err)
	}
	if key != "" {
		if err := inbox.Select(ctx, key); err != nil {
			inbox.Close()
			cancel()
			return respondError(c, err)
		}
	}

	startStream(c, q, h.done, func() {
		inbox.Close()
		cancel()
	})
	return nil
}
