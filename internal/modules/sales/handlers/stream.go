package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

const heartbeatInterval = 15 * time.Second

type sseEvent struct {
	Name string
	Data any
}

// eventQueue keeps only the newest payload per event name. Every payload is a
// full snapshot, so an older one still waiting to be written can be dropped.
type eventQueue struct {
	mu     sync.Mutex
	latest map[string]any
	order  []string
	ready  chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		latest: make(map[string]any),
		ready:  make(chan struct{}, 1),
	}
}

func (q *eventQueue) put(name string, data any) {
	q.mu.Lock()
	if _, ok := q.latest[name]; !ok {
		q.order = append(q.order, name)
	}
	q.latest[name] = data
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *eventQueue) drain() []sseEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]sseEvent, 0, len(q.order))
	for _, name := range q.order {
		out = append(out, sseEvent{Name: name, Data: q.latest[name]})
	}
	q.latest = make(map[string]any)
	q.order = q.order[:0]
	return out
}

func writeEvent(w *bufio.Writer, ev sseEvent) error {
	payload, err := json.Marshal(ev.Data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, payload); err != nil {
		return err
	}
	return w.Flush()
}

// pump writes queued events until a write fails (client gone) or done closes
func pump(w *bufio.Writer, q *eventQueue, heartbeat time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-q.ready:
			for _, ev := range q.drain() {
				if err := writeEvent(w, ev); err != nil {
					return
				}
			}
		case <-ticker.C:
			if _, err := w.WriteString(": ping\n\n"); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}
}

// startStream switches the response to text/event-stream and hands the body to pump.
// cleanup runs once the stream ends.
func startStream(c *fiber.Ctx, q *eventQueue, done <-chan struct{}, cleanup func()) {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cleanup()
		pump(w, q, heartbeatInterval, done)
	}))
}
