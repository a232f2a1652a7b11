package models

import "github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/chat"

// SendMessageRequest is a chat message from the client screen or the support console.
// Blank text is rejected by the chat sender, not by validation.
type SendMessageRequest struct {
	Text      string `json:"text" validate:"max=4000"`
	SupportID string `json:"support_id,omitempty" validate:"omitempty,max=128"`
}

// MessagesResponse is one conversation's ordered snapshot
type MessagesResponse struct {
	Key      string         `json:"key"`
	Order    string         `json:"order"`
	Messages []chat.Message `json:"messages"`
}

type ConversationsResponse struct {
	Conversations []chat.Conversation `json:"conversations"`
}
