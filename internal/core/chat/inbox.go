package chat

import (
	"context"
	"sync"
)

// Inbox is the support console: every conversation, plus at most one selected thread shown newest first
type Inbox struct {
	store      Store
	onList     func([]Conversation)
	onMessages func(key string, msgs []Message)

	lifecycle sync.Mutex

	mu            sync.Mutex
	conversations []Conversation
	listUnsub     Unsubscribe
	view          *View
	closed        bool
}

func NewInbox(store Store, onList func([]Conversation), onMessages func(key string, msgs []Message)) *Inbox {
	return &Inbox{store: store, onList: onList, onMessages: onMessages}
}

// Open subscribes to the conversation list
func (i *Inbox) Open(ctx context.Context) error {
	i.lifecycle.Lock()
	defer i.lifecycle.Unlock()

	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return ErrViewClosed
	}
	if i.listUnsub != nil {
		i.mu.Unlock()
		return nil
	}
	i.mu.Unlock()

	unsub, err := i.store.WatchConversations(ctx, i.applyList)
	if err != nil {
		return err
	}

	i.mu.Lock()
	i.listUnsub = unsub
	i.mu.Unlock()
	return nil
}

func (i *Inbox) applyList(convs []Conversation) {
	list := make([]Conversation, len(convs))
	copy(list, convs)

	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return
	}
	i.conversations = list
	i.mu.Unlock()

	if i.onList != nil {
		i.onList(list)
	}
}

// Select opens one thread. A previously selected thread is disposed first.
func (i *Inbox) Select(ctx context.Context, key string) error {
	i.lifecycle.Lock()
	defer i.lifecycle.Unlock()

	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return ErrViewClosed
	}
	view := i.view
	if view == nil {
		view = NewView(i.store, Descending, i.onMessages)
		i.view = view
	}
	i.mu.Unlock()

	return view.Mount(ctx, key)
}

// Back leaves the selected thread and returns to the list
func (i *Inbox) Back() {
	i.lifecycle.Lock()
	defer i.lifecycle.Unlock()

	i.mu.Lock()
	view := i.view
	i.view = nil
	i.mu.Unlock()

	if view != nil {
		view.Close()
	}
}

// Close disposes the list subscription and any selected thread
func (i *Inbox) Close() {
	i.lifecycle.Lock()
	defer i.lifecycle.Unlock()

	i.mu.Lock()
	i.closed = true
	listUnsub := i.listUnsub
	i.listUnsub = nil
	view := i.view
	i.view = nil
	i.mu.Unlock()

	if listUnsub != nil {
		listUnsub()
	}
	if view != nil {
		view.Close()
	}
}

func (i *Inbox) Conversations() []Conversation {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]Conversation, len(i.conversations))
	copy(out, i.conversations)
	return out
}

// Selected returns the open thread's key, "" on the list screen
func (i *Inbox) Selected() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.view == nil {
		return ""
	}
	return i.view.Key()
}

// Messages of the selected thread, newest first
func (i *Inbox) Messages() []Message {
	i.mu.Lock()
	view := i.view
	i.mu.Unlock()
	if view == nil {
		return nil
	}
	return view.Messages()
}
