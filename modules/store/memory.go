// Package store provides the chat state backends: process memory, Redis and
// SQLite. All of them satisfy domain/chat.Store.
package store

import (
	"context"
	"errors"
	"slices"
	"sync"

	domain "github.com/example/mini-network-chat/domain/chat"
)

// ErrClosed is returned by a backend after Close.
var ErrClosed = errors.New("store is closed")

// MemoryStore keeps chat state in process memory. State is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]struct{}
	order    []string
	messages []domain.Message
	nextID   int64
	closed   bool
}

var _ domain.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]struct{}),
		messages: make([]domain.Message, 0),
	}
}

func (s *MemoryStore) AddUser(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrClosed
	}
	if _, exists := s.users[name]; exists {
		return false, nil
	}
	s.users[name] = struct{}{}
	s.order = append(s.order, name)
	return true, nil
}

func (s *MemoryStore) RemoveUser(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if _, exists := s.users[name]; !exists {
		return nil
	}
	delete(s.users, name)
	s.order = slices.DeleteFunc(s.order, func(n string) bool { return n == name })
	return nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	return slices.Clone(s.order), nil
}

func (s *MemoryStore) CountUsers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrClosed
	}
	return len(s.users), nil
}

func (s *MemoryStore) AppendMessage(_ context.Context, msg domain.Message) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.Message{}, ErrClosed
	}
	s.nextID++
	msg.ID = s.nextID
	s.messages = append(s.messages, msg)
	return msg, nil
}

func (s *MemoryStore) ListMessages(_ context.Context) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out, nil
}

func (s *MemoryStore) ListMessagesSince(_ context.Context, id int64) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	return domain.Since(s.messages, id), nil
}

func (s *MemoryStore) TrimMessages(_ context.Context, maxCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if maxCount < 0 {
		maxCount = 0
	}
	if len(s.messages) > maxCount {
		kept := make([]domain.Message, maxCount)
		copy(kept, s.messages[len(s.messages)-maxCount:])
		s.messages = kept
	}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.users = make(map[string]struct{})
	s.order = nil
	s.messages = make([]domain.Message, 0)
	return nil
}

func (s *MemoryStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
