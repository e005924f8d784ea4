package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	domain "github.com/example/mini-network-chat/domain/chat"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backendFactory func(t *testing.T) domain.Store

func backends() map[string]backendFactory {
	return map[string]backendFactory{
		BackendMemory: func(t *testing.T) domain.Store {
			return NewMemoryStore()
		},
		BackendRedis: func(t *testing.T) domain.Store {
			s, _ := newTestRedisStore(t)
			return s
		},
		BackendSQLite: func(t *testing.T) domain.Store {
			s, err := OpenSQLite(":memory:")
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, "test:chat:"), mr
}

func forEachBackend(t *testing.T, fn func(t *testing.T, s domain.Store)) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			fn(t, factory(t))
		})
	}
}

func TestStore_AddUser(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s domain.Store) {
		ctx := context.Background()

		added, err := s.AddUser(ctx, "Alice")
		require.NoError(t, err)
		assert.True(t, added)

		added, err = s.AddUser(ctx, "Alice")
		require.NoError(t, err)
		assert.False(t, added, "duplicate add should report false")

		added, err = s.AddUser(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, added, "usernames are case-sensitive")

		n, err := s.CountUsers(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		users, err := s.ListUsers(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Alice", "alice"}, users)
	})
}

func TestStore_RemoveUser(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s domain.Store) {
		ctx := context.Background()

		_, err := s.AddUser(ctx, "Alice")
		require.NoError(t, err)
		_, err = s.AddUser(ctx, "Bob")
		require.NoError(t, err)

		require.NoError(t, s.RemoveUser(ctx, "Alice"))
		require.NoError(t, s.RemoveUser(ctx, "Nobody"), "removing an absent name is not an error")

		users, err := s.ListUsers(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Bob"}, users)

		added, err := s.AddUser(ctx, "Alice")
		require.NoError(t, err)
		assert.True(t, added, "removed name can join again")
	})
}

func TestStore_AppendAndList(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s domain.Store) {
		ctx := context.Background()
		at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

		sys, err := s.AppendMessage(ctx, domain.NewSystemMessage("Alice joined the chat", at))
		require.NoError(t, err)
		assert.Equal(t, int64(1), sys.ID)

		msg, err := s.AppendMessage(ctx, domain.NewUserMessage("Alice", "hi", at))
		require.NoError(t, err)
		assert.Equal(t, int64(2), msg.ID)

		msgs, err := s.ListMessages(ctx)
		require.NoError(t, err)
		require.Len(t, msgs, 2)

		assert.Equal(t, int64(1), msgs[0].ID)
		assert.Equal(t, domain.TypeSystem, msgs[0].Type)
		assert.Nil(t, msgs[0].Username)
		assert.Equal(t, "Alice joined the chat", msgs[0].Text)
		assert.True(t, at.Equal(msgs[0].Timestamp))

		assert.Equal(t, int64(2), msgs[1].ID)
		assert.Equal(t, domain.TypeMessage, msgs[1].Type)
		require.NotNil(t, msgs[1].Username)
		assert.Equal(t, "Alice", *msgs[1].Username)
		assert.Equal(t, "hi", msgs[1].Text)
	})
}

func TestStore_ListMessagesSince(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s domain.Store) {
		ctx := context.Background()
		for i := 0; i < 5; i++ {
			_, err := s.AppendMessage(ctx, domain.NewUserMessage("Bob", fmt.Sprintf("m%d", i), time.Now()))
			require.NoError(t, err)
		}

		msgs, err := s.ListMessagesSince(ctx, 3)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, int64(4), msgs[0].ID)
		assert.Equal(t, int64(5), msgs[1].ID)

		msgs, err = s.ListMessagesSince(ctx, 5)
		require.NoError(t, err)
		assert.NotNil(t, msgs)
		assert.Empty(t, msgs)
	})
}

func TestStore_TrimMessages(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s domain.Store) {
		ctx := context.Background()
		for i := 0; i < 105; i++ {
			_, err := s.AppendMessage(ctx, domain.NewUserMessage("Bob", fmt.Sprintf("m%d", i), time.Now()))
			require.NoError(t, err)
			require.NoError(t, s.TrimMessages(ctx, domain.DefaultMaxMessages))
		}

		msgs, err := s.ListMessages(ctx)
		require.NoError(t, err)
		require.Len(t, msgs, domain.DefaultMaxMessages)
		assert.Equal(t, int64(6), msgs[0].ID)
		assert.Equal(t, int64(105), msgs[len(msgs)-1].ID)
		for i := 1; i < len(msgs); i++ {
			assert.Less(t, msgs[i-1].ID, msgs[i].ID)
		}

		require.NoError(t, s.TrimMessages(ctx, 0))
		msgs, err = s.ListMessages(ctx)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})
}

func TestStore_ClearKeepsIDsIncreasing(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s domain.Store) {
		ctx := context.Background()
		_, err := s.AddUser(ctx, "Alice")
		require.NoError(t, err)
		first, err := s.AppendMessage(ctx, domain.NewUserMessage("Alice", "one", time.Now()))
		require.NoError(t, err)

		require.NoError(t, s.Clear(ctx))

		n, err := s.CountUsers(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		msgs, err := s.ListMessages(ctx)
		require.NoError(t, err)
		assert.Empty(t, msgs)

		next, err := s.AppendMessage(ctx, domain.NewUserMessage("Alice", "two", time.Now()))
		require.NoError(t, err)
		assert.Greater(t, next.ID, first.ID)
	})
}

func TestStore_ConcurrentAppendsAreUnique(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s domain.Store) {
		ctx := context.Background()
		const workers, perWorker = 8, 10

		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < perWorker; i++ {
					if _, err := s.AppendMessage(ctx, domain.NewUserMessage("Bob", fmt.Sprintf("%d-%d", w, i), time.Now())); err != nil {
						t.Errorf("AppendMessage() error = %v", err)
					}
				}
			}(w)
		}
		wg.Wait()

		msgs, err := s.ListMessages(ctx)
		require.NoError(t, err)
		require.Len(t, msgs, workers*perWorker)
		for i := 1; i < len(msgs); i++ {
			assert.Less(t, msgs[i-1].ID, msgs[i].ID, "list must stay sorted by id")
		}
	})
}

func TestRedisStore_Keys(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	_, err := s.AddUser(ctx, "Alice")
	require.NoError(t, err)
	_, err = s.AppendMessage(ctx, domain.NewUserMessage("Alice", "hi", time.Now()))
	require.NoError(t, err)

	ok, err := mr.SIsMember("test:chat:users", "Alice")
	require.NoError(t, err)
	assert.True(t, ok)

	entries, err := mr.List("test:chat:messages")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0], `"id":1,`)

	counter, err := mr.Get("test:chat:next_id")
	require.NoError(t, err)
	assert.Equal(t, "1", counter)
}

func TestRedisStore_CorruptEntry(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	_, err := mr.Push("test:chat:messages", "{not json")
	require.NoError(t, err)

	_, err = s.ListMessages(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCorruptMessage)
}

func TestRedisStore_Unreachable(t *testing.T) {
	s, mr := newTestRedisStore(t)
	mr.Close()

	err := s.Ping(context.Background())
	assert.Error(t, err)
}

func TestMemoryStore_Closed(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Close())

	_, err := s.AddUser(context.Background(), "Alice")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Ping(context.Background()), ErrClosed)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, Config{Backend: BackendSQLite, DBPath: ":memory:"})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	mr := miniredis.RunT(t)
	s, err = Open(ctx, Config{Backend: BackendRedis, RedisAddr: mr.Addr(), KeyPrefix: "x:"})
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Config{Backend: "etcd"})
	assert.Error(t, err)
}
