package chat

import (
	"context"
	"sync"
)

// State of a View's subscription
type State int

const (
	Unsubscribed State = iota
	Subscribed
)

func (s State) String() string {
	if s == Subscribed {
		return "subscribed"
	}
	return "unsubscribed"
}

// View keeps one conversation's messages ordered for display.
// It holds at most one store subscription; remounting tears the old one down first.
type View struct {
	store    Store
	order    SortOrder
	onChange func(key string, msgs []Message)

	// lifecycle serialises Mount and Close
	lifecycle sync.Mutex

	mu       sync.Mutex
	state    State
	key      string
	messages []Message
	unsub    Unsubscribe
	gen      uint64
	closed   bool
}

// NewView creates an unsubscribed view. onChange may be nil.
func NewView(store Store, order SortOrder, onChange func(key string, msgs []Message)) *View {
	return &View{store: store, order: order, onChange: onChange}
}

// Mount subscribes to key. Mounting the key that is already live is a no-op.
func (v *View) Mount(ctx context.Context, key string) error {
	if !ValidKey(key) {
		return ErrInvalidKey
	}

	v.lifecycle.Lock()
	defer v.lifecycle.Unlock()

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrViewClosed
	}
	if v.state == Subscribed && v.key == key {
		v.mu.Unlock()
		return nil
	}
	prev := v.unsub
	v.unsub = nil
	v.state = Unsubscribed
	v.key = key
	v.messages = nil
	v.gen++
	gen := v.gen
	v.mu.Unlock()

	if prev != nil {
		prev()
	}

	unsub, err := v.store.WatchMessages(ctx, key, func(snapshot map[string]Message) {
		v.apply(gen, key, snapshot)
	})
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.unsub = unsub
	v.state = Subscribed
	v.mu.Unlock()
	return nil
}

// Unmount drops the subscription but leaves the view reusable
func (v *View) Unmount() {
	v.lifecycle.Lock()
	defer v.lifecycle.Unlock()
	v.teardown(false)
}

// Close unmounts for good. No onChange call happens after Close returns.
func (v *View) Close() {
	v.lifecycle.Lock()
	defer v.lifecycle.Unlock()
	v.teardown(true)
}

func (v *View) teardown(closing bool) {
	v.mu.Lock()
	prev := v.unsub
	v.unsub = nil
	v.state = Unsubscribed
	v.messages = nil
	v.gen++
	if closing {
		v.closed = true
	}
	v.mu.Unlock()

	if prev != nil {
		prev()
	}
}

// apply replaces the local view with a pushed snapshot if it belongs to the current subscription
func (v *View) apply(gen uint64, key string, snapshot map[string]Message) {
	ordered := Order(snapshot, v.order)

	v.mu.Lock()
	if v.closed || gen != v.gen {
		v.mu.Unlock()
		return
	}
	v.messages = ordered
	v.mu.Unlock()

	if v.onChange != nil {
		v.onChange(key, cloneMessages(ordered))
	}
}

func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *View) Key() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.key
}

// Messages returns a copy of the ordered view
func (v *View) Messages() []Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	return cloneMessages(v.messages)
}

func (v *View) Order() SortOrder {
	return v.order
}

func cloneMessages(in []Message) []Message {
	out := make([]Message, len(in))
	copy(out, in)
	return out
}
