package chat

import (
	"context"
	"time"

	domain "github.com/example/mini-network-chat/domain/chat"
)

// Service names registered by the chat module.
const (
	ServiceJoin        = "join"
	ServiceSendMessage = "send-message"
	ServicePoll        = "poll-messages"
	ServiceClear       = "clear-chat"
	ServicePostReply   = "post-reply"
)

// ChatPort is the contract the HTTP and bot adapters use to reach the chat
// core. Both Service and ChatAdapter implement it.
type ChatPort interface {
	Join(ctx context.Context, username string) (*JoinResult, error)
	SendMessage(ctx context.Context, username, text string) (*SendResult, error)
	Poll(ctx context.Context, since int64) (*PollResult, error)
	Clear(ctx context.Context) error
	PostReply(ctx context.Context, username, text string) (*SendResult, error)
}

// JoinResult is returned by a successful join.
type JoinResult struct {
	UserCount int   `json:"user_count"`
	MessageID int64 `json:"message_id"`
}

// SendResult is returned by a successful message send.
type SendResult struct {
	MessageID int64 `json:"message_id"`
}

// PollResult is the snapshot returned for a watermark.
type PollResult struct {
	Messages      []domain.Message `json:"messages"`
	UserCount     int              `json:"user_count"`
	LastMessageID int64            `json:"last_message_id"`
	ServerTime    time.Time        `json:"server_time"`
}

// Status carries a classified error across the request-reply boundary.
type Status struct {
	ErrorKind Kind   `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Err rebuilds the classified error, or nil on success.
func (s Status) Err() error {
	if s.ErrorKind == "" {
		return nil
	}
	return &Error{Kind: s.ErrorKind, Message: s.Error}
}

// JoinRequest is the request for the join service.
type JoinRequest struct {
	Username string `json:"username"`
}

// JoinResponse is the response for the join service.
type JoinResponse struct {
	JoinResult
	Status
}

// SendMessageRequest is the request for the send-message and post-reply services.
type SendMessageRequest struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// SendMessageResponse is the response for the send-message and post-reply services.
type SendMessageResponse struct {
	SendResult
	Status
}

// PollRequest is the request for the poll-messages service.
type PollRequest struct {
	Since int64 `json:"since"`
}

// PollResponse is the response for the poll-messages service.
type PollResponse struct {
	PollResult
	Status
}

// ClearRequest is the request for the clear-chat service.
type ClearRequest struct{}

// ClearResponse is the response for the clear-chat service.
type ClearResponse struct {
	Cleared bool `json:"cleared"`
	Status
}
