package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ChatAdapter implements ChatPort using the service container.
type ChatAdapter struct {
	container mono.ServiceContainer
}

var _ ChatPort = (*ChatAdapter)(nil)

// NewChatAdapter creates a new ChatAdapter.
func NewChatAdapter(container mono.ServiceContainer) ChatPort {
	if container == nil {
		panic("chat: ServiceContainer is nil")
	}
	return &ChatAdapter{container: container}
}

// Join registers a username.
func (a *ChatAdapter) Join(ctx context.Context, username string) (*JoinResult, error) {
	req := JoinRequest{Username: username}
	var resp JoinResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceJoin,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, transportError(ServiceJoin, err)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return &resp.JoinResult, nil
}

// SendMessage posts a message.
func (a *ChatAdapter) SendMessage(ctx context.Context, username, text string) (*SendResult, error) {
	req := SendMessageRequest{Username: username, Message: text}
	var resp SendMessageResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceSendMessage,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, transportError(ServiceSendMessage, err)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return &resp.SendResult, nil
}

// PostReply posts a bot reply.
func (a *ChatAdapter) PostReply(ctx context.Context, username, text string) (*SendResult, error) {
	req := SendMessageRequest{Username: username, Message: text}
	var resp SendMessageResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServicePostReply,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, transportError(ServicePostReply, err)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return &resp.SendResult, nil
}

// Poll fetches the messages newer than since.
func (a *ChatAdapter) Poll(ctx context.Context, since int64) (*PollResult, error) {
	req := PollRequest{Since: since}
	var resp PollResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServicePoll,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, transportError(ServicePoll, err)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return &resp.PollResult, nil
}

// Clear removes all chat data.
func (a *ChatAdapter) Clear(ctx context.Context) error {
	req := ClearRequest{}
	var resp ClearResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceClear,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return transportError(ServiceClear, err)
	}
	return resp.Err()
}

// transportError wraps request-reply failures as internal errors.
func transportError(service string, err error) error {
	return internal(fmt.Sprintf("call %s", service), err)
}
