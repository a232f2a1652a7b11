package chat

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set, skipping redis integration test")
	}

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })

	require.NoError(t, rdb.Ping(context.Background()).Err())

	prefix := "test-chats-" + uuid.NewString()
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := rdb.Keys(ctx, prefix+":*").Result()
		if len(keys) > 0 {
			rdb.Del(ctx, keys...)
		}
	})

	return NewRedisStore(rdb, prefix)
}

func TestRedisStore_PushAndWatch(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	updates := make(chan []Message, 16)
	view := NewView(store, Ascending, func(key string, msgs []Message) {
		updates <- msgs
	})
	require.NoError(t, view.Mount(ctx, "user_r1"))
	defer view.Close()

	// initial empty snapshot
	select {
	case msgs := <-updates:
		assert.Empty(t, msgs)
	case <-time.After(3 * time.Second):
		t.Fatal("no initial snapshot")
	}

	sender := NewSender(store)
	_, err := sender.Send(ctx, SendRequest{Key: "user_r1", Text: "hello", SenderID: "r1", SupportID: "s9"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(view.Messages()) == 1
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, "hello", view.Messages()[0].Text)
	assert.NotZero(t, view.Messages()[0].Timestamp)

	ids, err := store.Participants(ctx, "user_r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "s9"}, ids)

	convs, err := store.Conversations(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "hello", convs[0].LastMessage.Text)
}

func TestRedisStore_UnsubscribeStopsDelivery(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	calls := make(chan struct{}, 16)
	unsub, err := store.WatchConversations(ctx, func([]Conversation) { calls <- struct{}{} })
	require.NoError(t, err)

	select {
	case <-calls:
	case <-time.After(3 * time.Second):
		t.Fatal("no initial snapshot")
	}

	unsub()
	unsub()

	_, err = store.PushMessage(ctx, "user_r2", NewMessage{Text: "x", SenderID: "r2"})
	require.NoError(t, err)

	time.Sleep(200 * time.Millisecond)
	assert.Len(t, calls, 0)
}
