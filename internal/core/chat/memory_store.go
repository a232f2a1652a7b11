package chat

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memConversation struct {
	messages     map[string]Message
	participants map[string]struct{}
	version      uint64
}

// watcher serialises deliveries for one subscription and drops stale snapshots
type watcher struct {
	mu      sync.Mutex
	closed  bool
	version uint64
	deliver func(any)
}

func (w *watcher) send(version uint64, snapshot any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || version <= w.version {
		return
	}
	w.version = version
	w.deliver(snapshot)
}

func (w *watcher) stop() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}

// MemoryStore is a process-local Store. Used when REDIS_URL is unset and in tests.
type MemoryStore struct {
	mu    sync.Mutex
	now   func() time.Time
	convs map[string]*memConversation

	nextWatcher  int
	msgWatchers  map[string]map[int]*watcher
	listWatchers map[int]*watcher
	listVersion  uint64
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock lets tests control the server-assigned timestamps
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		now:          now,
		convs:        make(map[string]*memConversation),
		msgWatchers:  make(map[string]map[int]*watcher),
		listWatchers: make(map[int]*watcher),
	}
}

func (s *MemoryStore) conversation(key string) *memConversation {
	c, ok := s.convs[key]
	if !ok {
		c = &memConversation{
			messages:     make(map[string]Message),
			participants: make(map[string]struct{}),
		}
		s.convs[key] = c
	}
	return c
}

func (s *MemoryStore) PushMessage(ctx context.Context, key string, msg NewMessage) (Message, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, err
	}

	s.mu.Lock()
	c := s.conversation(key)
	m := Message{
		ID:          uuid.Must(uuid.NewV7()).String(),
		Text:        msg.Text,
		SenderID:    msg.SenderID,
		SenderEmail: msg.SenderEmail,
		Timestamp:   s.now().UnixMilli(),
	}
	c.messages[m.ID] = m
	c.version++
	s.listVersion++
	s.mu.Unlock()

	s.notify(key)
	return m, nil
}

func (s *MemoryStore) AddParticipants(ctx context.Context, key string, ids ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	c := s.conversation(key)
	for _, id := range ids {
		if id != "" {
			c.participants[id] = struct{}{}
		}
	}
	s.listVersion++
	s.mu.Unlock()

	s.notify("")
	return nil
}

func (s *MemoryStore) Messages(ctx context.Context, key string) (map[string]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messagesLocked(key), nil
}

func (s *MemoryStore) messagesLocked(key string) map[string]Message {
	out := make(map[string]Message)
	if c, ok := s.convs[key]; ok {
		for id, m := range c.messages {
			out[id] = m
		}
	}
	return out
}

func (s *MemoryStore) Participants(ctx context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.participantsLocked(key), nil
}

func (s *MemoryStore) participantsLocked(key string) []string {
	out := []string{}
	if c, ok := s.convs[key]; ok {
		for id := range c.participants {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func (s *MemoryStore) Conversations(ctx context.Context) ([]Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationsLocked(), nil
}

func (s *MemoryStore) conversationsLocked() []Conversation {
	out := make([]Conversation, 0, len(s.convs))
	for key := range s.convs {
		out = append(out, Conversation{
			Key:          key,
			Participants: s.participantsLocked(key),
			LastMessage:  lastMessage(s.convs[key].messages),
		})
	}
	sortConversations(out)
	return out
}

func (s *MemoryStore) WatchMessages(ctx context.Context, key string, fn func(map[string]Message)) (Unsubscribe, error) {
	w := &watcher{deliver: func(v any) { fn(v.(map[string]Message)) }}

	s.mu.Lock()
	s.nextWatcher++
	id := s.nextWatcher
	if s.msgWatchers[key] == nil {
		s.msgWatchers[key] = make(map[int]*watcher)
	}
	s.msgWatchers[key][id] = w
	version, snapshot := s.messageSnapshotLocked(key)
	s.mu.Unlock()

	w.send(version, snapshot)

	return func() {
		s.mu.Lock()
		delete(s.msgWatchers[key], id)
		if len(s.msgWatchers[key]) == 0 {
			delete(s.msgWatchers, key)
		}
		s.mu.Unlock()
		w.stop()
	}, nil
}

func (s *MemoryStore) WatchConversations(ctx context.Context, fn func([]Conversation)) (Unsubscribe, error) {
	w := &watcher{deliver: func(v any) { fn(v.([]Conversation)) }}

	s.mu.Lock()
	s.nextWatcher++
	id := s.nextWatcher
	s.listWatchers[id] = w
	version, snapshot := s.listVersion+1, s.conversationsLocked()
	s.mu.Unlock()

	w.send(version, snapshot)

	return func() {
		s.mu.Lock()
		delete(s.listWatchers, id)
		s.mu.Unlock()
		w.stop()
	}, nil
}

// Versions handed to watchers are offset by one so a fresh watcher (version 0) accepts the first snapshot.
func (s *MemoryStore) messageSnapshotLocked(key string) (uint64, map[string]Message) {
	var version uint64
	if c, ok := s.convs[key]; ok {
		version = c.version
	}
	return version + 1, s.messagesLocked(key)
}

// notify fans out fresh snapshots. key "" means only the conversation list changed.
func (s *MemoryStore) notify(key string) {
	type pending struct {
		w        *watcher
		version  uint64
		snapshot any
	}
	var out []pending

	s.mu.Lock()
	if key != "" {
		version, snapshot := s.messageSnapshotLocked(key)
		for _, w := range s.msgWatchers[key] {
			out = append(out, pending{w, version, snapshot})
		}
	}
	if len(s.listWatchers) > 0 {
		list := s.conversationsLocked()
		for _, w := range s.listWatchers {
			out = append(out, pending{w, s.listVersion + 1, list})
		}
	}
	s.mu.Unlock()

	for _, p := range out {
		p.w.send(p.version, p.snapshot)
	}
}

var _ Store = (*MemoryStore)(nil)
