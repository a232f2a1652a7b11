package chat

import (
	"context"
	"errors"
	"regexp"
)

var (
	ErrEmptyMessage      = errors.New("message text is empty")
	ErrNoConversationKey = errors.New("conversation key requires a support id or a user id")
	ErrInvalidKey        = errors.New("invalid conversation key")
	ErrNoSender          = errors.New("sender id is required")
	ErrViewClosed        = errors.New("view is closed")
)

// Message is immutable once pushed. ID and Timestamp (unix millis) are assigned by the store.
type Message struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	SenderID    string `json:"sender_id"`
	SenderEmail string `json:"sender_email"`
	Timestamp   int64  `json:"timestamp"`
}

type NewMessage struct {
	Text        string
	SenderID    string
	SenderEmail string
}

// Conversation is a summary row for the support console
type Conversation struct {
	Key          string   `json:"key"`
	Participants []string `json:"participants"`
	LastMessage  *Message `json:"last_message,omitempty"`
}

// Unsubscribe stops a watch. Once it returns the callback will not run again.
// It must not be called from inside that callback.
type Unsubscribe func()

// Store is the hierarchical chat tree: chats/{key}/messages and chats/{key}/participants.
//
// Watch callbacks receive the full current collection, once right after subscribing and
// again after every change. Calls for a single subscription never overlap.
type Store interface {
	PushMessage(ctx context.Context, key string, msg NewMessage) (Message, error)
	AddParticipants(ctx context.Context, key string, ids ...string) error
	Messages(ctx context.Context, key string) (map[string]Message, error)
	Participants(ctx context.Context, key string) ([]string, error)
	Conversations(ctx context.Context) ([]Conversation, error)
	WatchMessages(ctx context.Context, key string, fn func(map[string]Message)) (Unsubscribe, error)
	WatchConversations(ctx context.Context, fn func([]Conversation)) (Unsubscribe, error)
}

var keyPattern = regexp.MustCompile(`^(support|user)_[A-Za-z0-9._@-]+$`)

// ConversationKey picks the thread: a support agent's thread when supportID is set, otherwise the user's own
func ConversationKey(supportID, userID string) (string, error) {
	var key string
	switch {
	case supportID != "":
		key = "support_" + supportID
	case userID != "":
		key = "user_" + userID
	default:
		return "", ErrNoConversationKey
	}
	if !ValidKey(key) {
		return "", ErrInvalidKey
	}
	return key, nil
}

func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}
