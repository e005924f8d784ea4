package bot

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/mini-network-chat/modules/chat"
	"github.com/go-monolith/mono/pkg/types"
)

// Poster stores a bot reply.
type Poster interface {
	PostReply(ctx context.Context, username, text string) (*chat.SendResult, error)
}

// Scheduler holds pending replies and posts them once they are due.
type Scheduler struct {
	mu      sync.Mutex
	pending []ScheduledReply
	poster  Poster
	timeout time.Duration
	logger  types.Logger

	stopChan chan struct{}
	doneChan chan struct{}
	stopOnce sync.Once
}

// NewScheduler creates a scheduler posting through poster.
func NewScheduler(poster Poster, logger types.Logger) *Scheduler {
	return &Scheduler{
		poster:  poster,
		timeout: 5 * time.Second,
		logger:  logger,
	}
}

// Schedule queues a reply.
func (s *Scheduler) Schedule(r ScheduledReply) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = append(s.pending, r)
	sort.SliceStable(s.pending, func(i, j int) bool {
		return s.pending[i].Due.Before(s.pending[j].Due)
	})
}

// Pending returns a copy of the queued replies in due order.
func (s *Scheduler) Pending() []ScheduledReply {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ScheduledReply, len(s.pending))
	copy(out, s.pending)
	return out
}

// RunDue posts every reply due at or before now and returns how many were
// posted. Failed posts are logged and dropped.
func (s *Scheduler) RunDue(ctx context.Context, now time.Time) int {
	s.mu.Lock()
	n := 0
	for n < len(s.pending) && !s.pending[n].Due.After(now) {
		n++
	}
	due := make([]ScheduledReply, n)
	copy(due, s.pending[:n])
	s.pending = s.pending[n:]
	s.mu.Unlock()

	posted := 0
	for _, r := range due {
		postCtx, cancel := context.WithTimeout(ctx, s.timeout)
		res, err := s.poster.PostReply(postCtx, r.Username, r.Text)
		cancel()
		if err != nil {
			s.logger.Error("Failed to post bot reply", "replyID", r.ID, "bot", r.Username, "error", err)
			continue
		}
		posted++
		s.logger.Debug("Posted bot reply", "replyID", r.ID, "bot", r.Username, "messageID", res.MessageID)
	}
	return posted
}

// Start launches the worker that checks the queue every tick.
func (s *Scheduler) Start(tick time.Duration) {
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	go s.run(tick)
}

func (s *Scheduler) run(tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	defer close(s.doneChan)

	for {
		select {
		case <-s.stopChan:
			return
		case now := <-ticker.C:
			s.RunDue(context.Background(), now)
		}
	}
}

// Stop halts the worker and drops pending replies. It returns the number of
// replies cancelled.
func (s *Scheduler) Stop(ctx context.Context) (int, error) {
	if s.stopChan != nil {
		s.stopOnce.Do(func() {
			close(s.stopChan)
		})
		select {
		case <-s.doneChan:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cancelled := len(s.pending)
	s.pending = nil
	return cancelled, nil
}
