package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/chat"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/models"
)

const maxEventSize = 4 << 20

// Event is one server-sent event. Data holds the joined data lines.
type Event struct {
	Name string
	Data json.RawMessage
}

// ChatStream follows the caller's conversation until ctx ends or fn fails.
// Every call to fn carries the whole conversation, oldest first.
func (c *Client) ChatStream(ctx context.Context, supportID string, fn func(models.MessagesResponse) error) error {
	q := url.Values{}
	if supportID != "" {
		q.Set("support_id", supportID)
	}
	return c.stream(ctx, withQuery("/chat/stream", q), func(ev Event) error {
		if ev.Name != "messages" {
			return nil
		}
		var msgs models.MessagesResponse
		if err := json.Unmarshal(ev.Data, &msgs); err != nil {
			return fmt.Errorf("bad messages event: %w", err)
		}
		return fn(msgs)
	})
}

// SupportStream follows the conversation list and, when key is set, that thread (newest first)
func (c *Client) SupportStream(ctx context.Context, key string, onList func([]chat.Conversation) error, onMessages func(models.MessagesResponse) error) error {
	q := url.Values{}
	if key != "" {
		q.Set("key", key)
	}
	return c.stream(ctx, withQuery("/support/stream", q), func(ev Event) error {
		switch ev.Name {
		case "conversations":
			var list models.ConversationsResponse
			if err := json.Unmarshal(ev.Data, &list); err != nil {
				return fmt.Errorf("bad conversations event: %w", err)
			}
			if onList != nil {
				return onList(list.Conversations)
			}
		case "messages":
			var msgs models.MessagesResponse
			if err := json.Unmarshal(ev.Data, &msgs); err != nil {
				return fmt.Errorf("bad messages event: %w", err)
			}
			if onMessages != nil {
				return onMessages(msgs)
			}
		}
		return nil
	})
}

func (c *Client) stream(ctx context.Context, path string, fn func(Event) error) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	// Same transport, no overall timeout: the stream is meant to stay open
	streamClient := *c.http
	streamClient.Timeout = 0
	resp, err := sendWith(&streamClient, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	err = readEvents(resp.Body, fn)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// readEvents dispatches events from an SSE body until it ends or fn fails.
// Comment lines (heartbeats) are skipped. A body that simply ends yields io.ErrUnexpectedEOF.
func readEvents(r io.Reader, fn func(Event) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64<<10), maxEventSize)

	var name string
	var data []string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if len(data) > 0 {
				if name == "" {
					name = "message"
				}
				if err := fn(Event{Name: name, Data: json.RawMessage(strings.Join(data, "\n"))}); err != nil {
					return err
				}
			}
			name, data = "", nil
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream read failed: %w", err)
	}
	return io.ErrUnexpectedEOF
}
