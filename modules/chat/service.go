package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/mini-network-chat/domain/chat"
	"github.com/example/mini-network-chat/events"
	"golang.org/x/sync/errgroup"
)

// Notifier receives chat state changes. Implementations must not block.
type Notifier interface {
	UserJoined(ev events.UserJoinedEvent)
	MessagePosted(ev events.MessagePostedEvent)
	ChatCleared(ev events.ChatClearedEvent)
}

type nopNotifier struct{}

func (nopNotifier) UserJoined(events.UserJoinedEvent)       {}
func (nopNotifier) MessagePosted(events.MessagePostedEvent) {}
func (nopNotifier) ChatCleared(events.ChatClearedEvent)     {}

// Service implements the chat operations over a domain.Store.
type Service struct {
	store       domain.Store
	notifier    Notifier
	now         func() time.Time
	maxMessages int
}

var _ ChatPort = (*Service)(nil)

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMaxMessages sets the retention cap.
func WithMaxMessages(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxMessages = n
		}
	}
}

// WithNotifier sets the receiver of chat state changes.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// NewService creates a chat service on store.
func NewService(store domain.Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		notifier:    nopNotifier{},
		now:         time.Now,
		maxMessages: domain.DefaultMaxMessages,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Join registers username and announces it with a system message.
func (s *Service) Join(ctx context.Context, username string) (*JoinResult, error) {
	name, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}

	added, err := s.store.AddUser(ctx, name)
	if err != nil {
		return nil, internal("add user", err)
	}
	if !added {
		return nil, ErrUsernameTaken
	}

	at := s.now()
	msg, err := s.append(ctx, domain.NewSystemMessage(fmt.Sprintf("%s joined the chat", name), at))
	if err != nil {
		// Free the name so the client can retry the join.
		if rmErr := s.store.RemoveUser(context.WithoutCancel(ctx), name); rmErr != nil {
			return nil, errors.Join(err, internal("remove user", rmErr))
		}
		return nil, err
	}

	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, internal("count users", err)
	}

	s.notifier.UserJoined(events.UserJoinedEvent{
		Username:  name,
		MessageID: msg.ID,
		UserCount: count,
		Timestamp: msg.Timestamp,
	})
	return &JoinResult{UserCount: count, MessageID: msg.ID}, nil
}

// SendMessage stores a message from username, registering the name if needed.
func (s *Service) SendMessage(ctx context.Context, username, text string) (*SendResult, error) {
	name, body, err := NormalizeMessage(username, text)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.AddUser(ctx, name); err != nil {
		return nil, internal("add user", err)
	}

	msg, err := s.append(ctx, domain.NewUserMessage(name, body, s.now()))
	if err != nil {
		return nil, err
	}

	s.notifier.MessagePosted(events.MessagePostedEvent{
		MessageID: msg.ID,
		Username:  name,
		Text:      msg.Text,
		Timestamp: msg.Timestamp,
	})
	return &SendResult{MessageID: msg.ID}, nil
}

// PostReply stores a message under a bot identity. It does not register the
// name and does not emit MessagePosted.
func (s *Service) PostReply(ctx context.Context, username, text string) (*SendResult, error) {
	msg, err := s.append(ctx, domain.NewUserMessage(username, text, s.now()))
	if err != nil {
		return nil, err
	}
	return &SendResult{MessageID: msg.ID}, nil
}

// Poll returns the messages newer than since. The message list and the user
// count are read concurrently.
func (s *Service) Poll(ctx context.Context, since int64) (*PollResult, error) {
	var (
		all   []domain.Message
		count int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		msgs, err := s.store.ListMessages(gctx)
		if err != nil {
			return internal("list messages", err)
		}
		all = msgs
		return nil
	})
	g.Go(func() error {
		n, err := s.store.CountUsers(gctx)
		if err != nil {
			return internal("count users", err)
		}
		count = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &PollResult{
		Messages:      domain.Since(all, since),
		UserCount:     count,
		LastMessageID: domain.LastID(all),
		ServerTime:    s.now().UTC(),
	}, nil
}

// Clear removes all users and messages.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return internal("clear", err)
	}
	s.notifier.ChatCleared(events.ChatClearedEvent{Timestamp: s.now().UTC()})
	return nil
}

func (s *Service) append(ctx context.Context, msg domain.Message) (domain.Message, error) {
	stored, err := s.store.AppendMessage(ctx, msg)
	if err != nil {
		return domain.Message{}, internal("append message", err)
	}
	if err := s.store.TrimMessages(ctx, s.maxMessages); err != nil {
		return domain.Message{}, internal("trim messages", err)
	}
	return stored, nil
}
