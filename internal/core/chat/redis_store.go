package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisStore keeps the chat tree in redis:
//
//	{prefix}:{key}:messages      HASH  id -> Message JSON
//	{prefix}:{key}:participants  SET   user ids
//	{prefix}:index               SET   conversation keys
//
// Changes are announced on pub/sub channels {prefix}:{key} and {prefix}:index,
// and watchers re-read the full collection on every announcement.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "chats"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) messagesKey(key string) string {
	return fmt.Sprintf("%s:%s:messages", s.prefix, key)
}
func (s *RedisStore) participantsKey(key string) string {
	return fmt.Sprintf("%s:%s:participants", s.prefix, key)
}
func (s *RedisStore) indexKey() string          { return s.prefix + ":index" }
func (s *RedisStore) channel(key string) string { return s.prefix + ":" + key }

func (s *RedisStore) PushMessage(ctx context.Context, key string, msg NewMessage) (Message, error) {
	// server clock, not ours
	now, err := s.rdb.Time(ctx).Result()
	if err != nil {
		return Message{}, fmt.Errorf("redis time: %w", err)
	}

	m := Message{
		ID:          uuid.Must(uuid.NewV7()).String(),
		Text:        msg.Text,
		SenderID:    msg.SenderID,
		SenderEmail: msg.SenderEmail,
		Timestamp:   now.UnixMilli(),
	}
	data, err := json.Marshal(m)
	if err != nil {
		return Message{}, err
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.messagesKey(key), m.ID, data)
		pipe.SAdd(ctx, s.indexKey(), key)
		pipe.Publish(ctx, s.channel(key), m.ID)
		pipe.Publish(ctx, s.indexKey(), key)
		return nil
	})
	if err != nil {
		return Message{}, fmt.Errorf("redis push: %w", err)
	}

	return m, nil
}

func (s *RedisStore) AddParticipants(ctx context.Context, key string, ids ...string) error {
	members := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			members = append(members, id)
		}
	}
	if len(members) == 0 {
		return nil
	}

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, s.participantsKey(key), members...)
		pipe.SAdd(ctx, s.indexKey(), key)
		pipe.Publish(ctx, s.indexKey(), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis add participants: %w", err)
	}
	return nil
}

func (s *RedisStore) Messages(ctx context.Context, key string) (map[string]Message, error) {
	raw, err := s.rdb.HGetAll(ctx, s.messagesKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis messages: %w", err)
	}
	return decodeMessages(raw), nil
}

func (s *RedisStore) Participants(ctx context.Context, key string) ([]string, error) {
	ids, err := s.rdb.SMembers(ctx, s.participantsKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis participants: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *RedisStore) Conversations(ctx context.Context) ([]Conversation, error) {
	keys, err := s.rdb.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis conversation index: %w", err)
	}

	type pending struct {
		participants *redis.StringSliceCmd
		messages     *redis.MapStringStringCmd
	}
	cmds := make(map[string]pending, len(keys))

	_, err = s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			cmds[key] = pending{
				participants: pipe.SMembers(ctx, s.participantsKey(key)),
				messages:     pipe.HGetAll(ctx, s.messagesKey(key)),
			}
		}
		return nil
	})
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("redis conversations: %w", err)
	}

	out := make([]Conversation, 0, len(keys))
	for _, key := range keys {
		c := cmds[key]
		participants := c.participants.Val()
		sort.Strings(participants)
		out = append(out, Conversation{
			Key:          key,
			Participants: participants,
			LastMessage:  lastMessage(decodeMessages(c.messages.Val())),
		})
	}
	sortConversations(out)
	return out, nil
}

func (s *RedisStore) WatchMessages(ctx context.Context, key string, fn func(map[string]Message)) (Unsubscribe, error) {
	return s.watch(ctx, s.channel(key), func(ctx context.Context) error {
		msgs, err := s.Messages(ctx, key)
		if err != nil {
			return err
		}
		if ctx.Err() == nil {
			fn(msgs)
		}
		return nil
	})
}

func (s *RedisStore) WatchConversations(ctx context.Context, fn func([]Conversation)) (Unsubscribe, error) {
	return s.watch(ctx, s.indexKey(), func(ctx context.Context) error {
		convs, err := s.Conversations(ctx)
		if err != nil {
			return err
		}
		if ctx.Err() == nil {
			fn(convs)
		}
		return nil
	})
}

// watch subscribes to channel and runs load once up front and again per notification.
// Bursts of notifications collapse into a single reload.
func (s *RedisStore) watch(ctx context.Context, channel string, load func(context.Context) error) (Unsubscribe, error) {
	wctx, cancel := context.WithCancel(ctx)

	pubsub := s.rdb.Subscribe(wctx, channel)
	if _, err := pubsub.Receive(wctx); err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", channel, err)
	}

	reload := func() {
		if err := load(wctx); err != nil && wctx.Err() == nil {
			log.Warn().Err(err).Str("channel", channel).Msg("chat snapshot reload failed")
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		reload()

		ch := pubsub.Channel()
		for {
			select {
			case <-wctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
			drain:
				for {
					select {
					case _, ok := <-ch:
						if !ok {
							return
						}
					default:
						break drain
					}
				}
				reload()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			_ = pubsub.Close()
			<-done
		})
	}, nil
}

func decodeMessages(raw map[string]string) map[string]Message {
	out := make(map[string]Message, len(raw))
	for id, data := range raw {
		var m Message
		if err := json.Unmarshal([]byte(data), &m); err != nil {
			log.Warn().Err(err).Str("message_id", id).Msg("skipping undecodable chat message")
			continue
		}
		if m.ID == "" {
			m.ID = id
		}
		out[id] = m
	}
	return out
}

var _ Store = (*RedisStore)(nil)
