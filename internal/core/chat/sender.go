package chat

import (
	"context"
	"fmt"
	"strings"
)

// SendRequest is one outgoing chat message
type SendRequest struct {
	Key         string
	Text        string
	SenderID    string
	SenderEmail string
	// SupportID joins the participant set alongside the sender when set
	SupportID string
}

type SenderOption func(*Sender)

// WithOnSent registers a hook that runs after a message is stored
func WithOnSent(fn func(ctx context.Context, key string, msg Message)) SenderOption {
	return func(s *Sender) { s.onSent = fn }
}

// Sender pushes messages. It never echoes locally; the message shows up once the store pushes it back.
type Sender struct {
	store  Store
	onSent func(ctx context.Context, key string, msg Message)
}

func NewSender(store Store, opts ...SenderOption) *Sender {
	s := &Sender{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send rejects blank text before touching the store. A participant update failure is
// returned together with the already stored message; the push is not undone.
func (s *Sender) Send(ctx context.Context, req SendRequest) (Message, error) {
	if strings.TrimSpace(req.Text) == "" {
		return Message{}, ErrEmptyMessage
	}
	if !ValidKey(req.Key) {
		return Message{}, ErrInvalidKey
	}
	if req.SenderID == "" {
		return Message{}, ErrNoSender
	}

	msg, err := s.store.PushMessage(ctx, req.Key, NewMessage{
		Text:        req.Text,
		SenderID:    req.SenderID,
		SenderEmail: req.SenderEmail,
	})
	if err != nil {
		return Message{}, fmt.Errorf("push message: %w", err)
	}

	ids := []string{req.SenderID}
	if req.SupportID != "" && req.SupportID != req.SenderID {
		ids = append(ids, req.SupportID)
	}
	if err := s.store.AddParticipants(ctx, req.Key, ids...); err != nil {
		return msg, fmt.Errorf("add participants: %w", err)
	}

	if s.onSent != nil {
		s.onSent(ctx, req.Key, msg)
	}
	return msg, nil
}
