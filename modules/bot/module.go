package bot

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/example/mini-network-chat/events"
	"github.com/example/mini-network-chat/modules/chat"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Config controls bot replies.
type Config struct {
	Probability float64
	Delay       time.Duration
	Tick        time.Duration
	Seed        uint64
}

// DefaultConfig returns the reply settings of the demo chat.
func DefaultConfig() Config {
	return Config{
		Probability: 0.3,
		Delay:       time.Second,
		Tick:        100 * time.Millisecond,
	}
}

// Module answers MessagePosted events with scheduled bot replies.
type Module struct {
	config    Config
	chatPort  chat.ChatPort
	responder *Responder
	scheduler *Scheduler
	logger    types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.DependentModule       = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the bot module. A zero Seed seeds from the runtime.
func NewModule(cfg Config, logger types.Logger) *Module {
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultConfig().Tick
	}
	var src rand.Source
	if cfg.Seed != 0 {
		src = rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)
	} else {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Module{
		config:    cfg,
		responder: NewResponder(rand.New(src), cfg.Probability, cfg.Delay),
		logger:    logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "bot"
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"chat"}
}

// SetDependencyServiceContainer receives the chat service container.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "chat" {
		m.SetChatPort(chat.NewChatAdapter(container))
	}
}

// SetChatPort sets the port replies are posted through.
func (m *Module) SetChatPort(port chat.ChatPort) {
	m.chatPort = port
	m.scheduler = NewScheduler(port, m.logger)
}

// RegisterEventConsumers subscribes to MessagePosted.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.MessagePostedV1, m.handleMessagePosted, m); err != nil {
		return fmt.Errorf("failed to register MessagePosted consumer: %w", err)
	}
	m.logger.Info("Registered event consumers", "events", []string{"MessagePosted"})
	return nil
}

func (m *Module) handleMessagePosted(_ context.Context, ev events.MessagePostedEvent, _ *mono.Msg) error {
	m.consider(ev)
	return nil
}

// consider schedules a reply to ev when the responder picks one.
func (m *Module) consider(ev events.MessagePostedEvent) (ScheduledReply, bool) {
	if m.scheduler == nil {
		return ScheduledReply{}, false
	}
	reply, ok := m.responder.Decide(ev.Username, ev.MessageID, ev.Timestamp)
	if !ok {
		return ScheduledReply{}, false
	}
	m.scheduler.Schedule(reply)
	m.logger.Debug("Scheduled bot reply",
		"replyID", reply.ID,
		"bot", reply.Username,
		"inReplyTo", ev.MessageID,
		"due", reply.Due)
	return reply, true
}

// Start launches the reply worker.
func (m *Module) Start(_ context.Context) error {
	if m.chatPort == nil {
		return fmt.Errorf("chatPort dependency not set")
	}
	m.scheduler.Start(m.config.Tick)
	m.logger.Info("Bot module started",
		"probability", m.config.Probability,
		"delay", m.config.Delay)
	return nil
}

// Stop halts the worker and cancels pending replies.
func (m *Module) Stop(ctx context.Context) error {
	if m.scheduler == nil {
		return nil
	}
	cancelled, err := m.scheduler.Stop(ctx)
	if err != nil {
		return fmt.Errorf("failed to stop bot worker: %w", err)
	}
	m.logger.Info("Bot module stopped", "cancelledReplies", cancelled)
	return nil
}

// Health reports the reply queue depth.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.scheduler == nil {
		return mono.HealthStatus{Healthy: false, Message: "chat dependency not set"}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"pendingReplies": len(m.scheduler.Pending()),
		},
	}
}
