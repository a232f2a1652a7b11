package handlers

import (
	"context"
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/chat"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/events"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/metrics"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/models"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/shared/utils"
)

// NewChatSender builds the sender shared by the client and support routes.
// Every stored message is counted and announced as chat.message_sent.
func NewChatSender(store chat.Store, publisher events.Publisher) *chat.Sender {
	return chat.NewSender(store, chat.WithOnSent(func(ctx context.Context, key string, msg chat.Message) {
		metrics.IncChatMessages()
		events.Emit(publisher, events.ChatMessageSent, events.ChatMessageSentData{
			ConversationKey: key,
			MessageID:       msg.ID,
			SenderID:        msg.SenderID,
			Timestamp:       msg.Timestamp,
		}, "")
	}))
}

// streams tracks open SSE streams so they can be ended on shutdown
type streams struct {
	done chan struct{}
	once sync.Once
}

func newStreams() *streams {
	return &streams{done: make(chan struct{})}
}

// Shutdown ends every open stream of the handler
func (s *streams) Shutdown() {
	s.once.Do(func() { close(s.done) })
}

// ChatHandler serves the client chat screen: one conversation, oldest message first
type ChatHandler struct {
	*streams
	store  chat.Store
	sender *chat.Sender
}

func NewChatHandler(store chat.Store, sender *chat.Sender) *ChatHandler {
	return &ChatHandler{
		streams: newStreams(),
		store:   store,
		sender:  sender,
	}
}

// RegisterRoutes mounts /chat. Authenticate must already be installed.
func (h *ChatHandler) RegisterRoutes(router fiber.Router) {
	g := router.Group("/chat", auth.RequireAuth())
	g.Get("/messages", h.GetMessages)
	g.Post("/messages", h.SendMessage)
	g.Get("/stream", h.Stream)
}

// conversationKey is support_{support_id} when a support id is given, else the caller's own user_{uid}
func (h *ChatHandler) conversationKey(c *fiber.Ctx, supportID string) (string, error) {
	state := auth.StateOf(c)
	return chat.ConversationKey(supportID, state.Identity.UserID)
}

// GetMessages godoc
// @Summary Chat messages
// @Description Current snapshot of the caller's conversation, oldest first
// @Tags Chat
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param support_id query string false "Support agent thread"
// @Success 200 {object} models.MessagesResponse
// @Failure 400 {object} map[string]interface{}
// @Router /chat/messages [get]
func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	key, err := h.conversationKey(c, c.Query("support_id"))
	if err != nil {
		return respondError(c, err)
	}

	snapshot, err := h.store.Messages(c.UserContext(), key)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.MessagesResponse{
		Key:      key,
		Order:    chat.Ascending.String(),
		Messages: chat.Order(snapshot, chat.Ascending),
	})
}

// SendMessage godoc
// @Summary Send a chat message
// @Description Store a message in the caller's conversation. The message reaches open streams once the store pushes it back.
// @Tags Chat
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param request body models.SendMessageRequest true "Message"
// @Success 201 {object} chat.Message
// @Failure 400 {object} map[string]interface{}
// @Router /chat/messages [post]
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	var req models.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	key, err := h.conversationKey(c, req.SupportID)
	if err != nil {
		return respondError(c, err)
	}

	state := auth.StateOf(c)
	msg, err := h.sender.Send(c.UserContext(), chat.SendRequest{
		Key:         key,
		Text:        req.Text,
		SenderID:    state.Identity.UserID,
		SenderEmail: state.Identity.Email,
		SupportID:   req.SupportID,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(msg)
}

// Stream godoc
// @Summary Chat stream
// @Description Server-sent events; each "messages" event carries the whole conversation, oldest first
// @Tags Chat
// @Produce text/event-stream
// @Param Authorization header string true "Bearer token"
// @Param support_id query string false "Support agent thread"
// @Success 200 {object} models.MessagesResponse
// @Router /chat/stream [get]
func (h *ChatHandler) Stream(c *fiber.Ctx) error {
	key, err := h.conversationKey(c, c.Query("support_id"))
	if err != nil {
		return respondError(c, err)
	}

	q := newEventQueue()
	view := chat.NewView(h.store, chat.Ascending, func(key string, msgs []chat.Message) {
		q.put("messages", models.MessagesResponse{Key: key, Order: chat.Ascending.String(), Messages: msgs})
	})

	// The stream outlives the request handler, so it gets its own context
	ctx, cancel := context.WithCancel(context.Background())
	if err := view.Mount(ctx, key); err != nil {
		cancel()
		return respondError(c, err)
	}

	startStream(c, q, h.done, func() {
		view.Close()
		cancel()
	})
	return nil
}
