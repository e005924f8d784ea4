package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/example/mini-network-chat/domain/chat"
	"github.com/example/mini-network-chat/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Module exposes the chat service as request-reply services and publishes
// chat events on the EventBus.
type Module struct {
	service  *Service
	eventBus mono.EventBus
	logger   types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
	_ Notifier                   = (*Module)(nil)
)

// NewModule creates the chat module on store.
func NewModule(store domain.Store, logger types.Logger, opts ...Option) *Module {
	m := &Module{logger: logger}
	m.service = NewService(store, append([]Option{WithNotifier(m)}, opts...)...)
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return "chat"
}

// Service returns the in-process chat service.
func (m *Module) Service() *Service {
	return m.service
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.MessagePostedV1.ToBase(),
		events.UserJoinedV1.ToBase(),
		events.ChatClearedV1.ToBase(),
	}
}

// RegisterServices registers the chat request-reply services.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceJoin, json.Unmarshal, json.Marshal, m.handleJoin,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceJoin, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceSendMessage, json.Unmarshal, json.Marshal, m.handleSendMessage,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceSendMessage, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServicePoll, json.Unmarshal, json.Marshal, m.handlePoll,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServicePoll, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceClear, json.Unmarshal, json.Marshal, m.handleClear,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceClear, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServicePostReply, json.Unmarshal, json.Marshal, m.handlePostReply,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServicePostReply, err)
	}

	m.logger.Info("Registered chat services",
		"services", []string{ServiceJoin, ServiceSendMessage, ServicePoll, ServiceClear, ServicePostReply})
	return nil
}

func (m *Module) handleJoin(ctx context.Context, req JoinRequest, _ *mono.Msg) (JoinResponse, error) {
	res, err := m.service.Join(ctx, req.Username)
	if err != nil {
		return JoinResponse{Status: m.status(ServiceJoin, err)}, nil
	}
	return JoinResponse{JoinResult: *res}, nil
}

func (m *Module) handleSendMessage(ctx context.Context, req SendMessageRequest, _ *mono.Msg) (SendMessageResponse, error) {
	res, err := m.service.SendMessage(ctx, req.Username, req.Message)
	if err != nil {
		return SendMessageResponse{Status: m.status(ServiceSendMessage, err)}, nil
	}
	return SendMessageResponse{SendResult: *res}, nil
}

func (m *Module) handlePostReply(ctx context.Context, req SendMessageRequest, _ *mono.Msg) (SendMessageResponse, error) {
	res, err := m.service.PostReply(ctx, req.Username, req.Message)
	if err != nil {
		return SendMessageResponse{Status: m.status(ServicePostReply, err)}, nil
	}
	return SendMessageResponse{SendResult: *res}, nil
}

func (m *Module) handlePoll(ctx context.Context, req PollRequest, _ *mono.Msg) (PollResponse, error) {
	res, err := m.service.Poll(ctx, req.Since)
	if err != nil {
		return PollResponse{Status: m.status(ServicePoll, err)}, nil
	}
	return PollResponse{PollResult: *res}, nil
}

func (m *Module) handleClear(ctx context.Context, _ ClearRequest, _ *mono.Msg) (ClearResponse, error) {
	if err := m.service.Clear(ctx); err != nil {
		return ClearResponse{Status: m.status(ServiceClear, err)}, nil
	}
	m.logger.Info("Chat data cleared")
	return ClearResponse{Cleared: true}, nil
}

// status converts err to its wire form. Internal causes are logged here and
// never leave the module.
func (m *Module) status(service string, err error) Status {
	kind := KindOf(err)
	if kind == KindInternal {
		m.logger.Error("Chat service failed", "service", service, "error", err)
	}
	return Status{ErrorKind: kind, Error: PublicMessage(err)}
}

// UserJoined publishes a UserJoined event.
func (m *Module) UserJoined(ev events.UserJoinedEvent) {
	if m.eventBus == nil {
		return
	}
	if err := events.UserJoinedV1.Publish(m.eventBus, ev, nil); err != nil {
		m.logger.Warn("Failed to publish UserJoined event", "username", ev.Username, "error", err)
	}
}

// MessagePosted publishes a MessagePosted event.
func (m *Module) MessagePosted(ev events.MessagePostedEvent) {
	if m.eventBus == nil {
		return
	}
	if err := events.MessagePostedV1.Publish(m.eventBus, ev, nil); err != nil {
		m.logger.Warn("Failed to publish MessagePosted event", "messageID", ev.MessageID, "error", err)
	}
}

// ChatCleared publishes a ChatCleared event.
func (m *Module) ChatCleared(ev events.ChatClearedEvent) {
	if m.eventBus == nil {
		return
	}
	if err := events.ChatClearedV1.Publish(m.eventBus, ev, nil); err != nil {
		m.logger.Warn("Failed to publish ChatCleared event", "error", err)
	}
}

// Start starts the chat module.
func (m *Module) Start(_ context.Context) error {
	if m.eventBus == nil {
		m.logger.Warn("EventBus not set, chat events will not be published")
	}
	m.logger.Info("Chat module started", "maxMessages", m.service.maxMessages)
	return nil
}

// Stop stops the chat module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Chat module stopped")
	return nil
}

// Health reports whether the chat state can be read.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	res, err := m.service.Poll(ctx, 0)
	if err != nil {
		var e *Error
		msg := err.Error()
		if errors.As(err, &e) && e.Err != nil {
			msg = e.Err.Error()
		}
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("chat state unavailable: %s", msg),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"users":         res.UserCount,
			"messages":      len(res.Messages),
			"lastMessageId": res.LastMessageID,
		},
	}
}
