package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	domain "github.com/example/mini-network-chat/domain/chat"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces the chat keys in Redis.
const DefaultKeyPrefix = "chat:"

// appendScript assigns the next id and pushes the encoded message in one step
// so that list order always matches id order.
// KEYS[1] = message list, KEYS[2] = id counter
// ARGV[1] = JSON object of the message without its id
var appendScript = redis.NewScript(`
local id = redis.call('INCR', KEYS[2])
local entry = '{"id":' .. tostring(id) .. ',' .. string.sub(ARGV[1], 2)
redis.call('RPUSH', KEYS[1], entry)
return id
`)

// RedisStore keeps chat state in Redis: a set for usernames, a list for
// messages and a counter for message ids.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	ownsCli bool
}

var _ domain.Store = (*RedisStore)(nil)

// storedMessage is the list entry payload minus the id, which the append
// script splices in.
type storedMessage struct {
	Type      string    `json:"type"`
	Text      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Username  *string   `json:"username"`
}

// NewRedisStore creates a store on an existing client. The client is not
// closed by Close.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// DialRedis connects to Redis, checks the connection and returns a store
// that owns the client.
func DialRedis(ctx context.Context, opts *redis.Options, prefix string) (*RedisStore, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}
	s := NewRedisStore(client, prefix)
	s.ownsCli = true
	return s, nil
}

// Client returns the underlying Redis client.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

func (s *RedisStore) usersKey() string    { return s.prefix + "users" }
func (s *RedisStore) messagesKey() string { return s.prefix + "messages" }
func (s *RedisStore) counterKey() string  { return s.prefix + "next_id" }

func (s *RedisStore) AddUser(ctx context.Context, name string) (bool, error) {
	n, err := s.client.SAdd(ctx, s.usersKey(), name).Result()
	if err != nil {
		return false, fmt.Errorf("redis sadd error: %w", err)
	}
	return n == 1, nil
}

func (s *RedisStore) RemoveUser(ctx context.Context, name string) error {
	if err := s.client.SRem(ctx, s.usersKey(), name).Err(); err != nil {
		return fmt.Errorf("redis srem error: %w", err)
	}
	return nil
}

func (s *RedisStore) ListUsers(ctx context.Context) ([]string, error) {
	users, err := s.client.SMembers(ctx, s.usersKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers error: %w", err)
	}
	slices.Sort(users)
	return users, nil
}

func (s *RedisStore) CountUsers(ctx context.Context) (int, error) {
	n, err := s.client.SCard(ctx, s.usersKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("redis scard error: %w", err)
	}
	return int(n), nil
}

func (s *RedisStore) AppendMessage(ctx context.Context, msg domain.Message) (domain.Message, error) {
	payload, err := json.Marshal(storedMessage{
		Type:      msg.Type,
		Text:      msg.Text,
		Timestamp: msg.Timestamp,
		Username:  msg.Username,
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("redis marshal error: %w", err)
	}

	id, err := appendScript.Run(ctx, s.client,
		[]string{s.messagesKey(), s.counterKey()},
		string(payload),
	).Int64()
	if err != nil {
		return domain.Message{}, fmt.Errorf("redis append error: %w", err)
	}

	msg.ID = id
	return msg, nil
}

func (s *RedisStore) ListMessages(ctx context.Context) ([]domain.Message, error) {
	raw, err := s.client.LRange(ctx, s.messagesKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange error: %w", err)
	}

	msgs := make([]domain.Message, 0, len(raw))
	for i, entry := range raw {
		var m domain.Message
		if err := json.Unmarshal([]byte(entry), &m); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", domain.ErrCorruptMessage, i, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (s *RedisStore) ListMessagesSince(ctx context.Context, id int64) ([]domain.Message, error) {
	msgs, err := s.ListMessages(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Since(msgs, id), nil
}

func (s *RedisStore) TrimMessages(ctx context.Context, maxCount int) error {
	if maxCount <= 0 {
		if err := s.client.Del(ctx, s.messagesKey()).Err(); err != nil {
			return fmt.Errorf("redis del error: %w", err)
		}
		return nil
	}
	if err := s.client.LTrim(ctx, s.messagesKey(), int64(-maxCount), -1).Err(); err != nil {
		return fmt.Errorf("redis ltrim error: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.usersKey(), s.messagesKey()).Err(); err != nil {
		return fmt.Errorf("redis del error: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	if !s.ownsCli {
		return nil
	}
	return s.client.Close()
}
