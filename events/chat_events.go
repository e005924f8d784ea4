package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// MessagePostedEvent is emitted after a user message has been stored.
type MessagePostedEvent struct {
	MessageID int64     `json:"message_id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// UserJoinedEvent is emitted after a username has joined the chat.
type UserJoinedEvent struct {
	Username  string    `json:"username"`
	MessageID int64     `json:"message_id"`
	UserCount int       `json:"user_count"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatClearedEvent is emitted after all chat data has been removed.
type ChatClearedEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// Event definitions for the chat domain.
var (
	MessagePostedV1 = helper.EventDefinition[MessagePostedEvent](
		"chat",
		"MessagePosted",
		"v1",
	)

	UserJoinedV1 = helper.EventDefinition[UserJoinedEvent](
		"chat",
		"UserJoined",
		"v1",
	)

	ChatClearedV1 = helper.EventDefinition[ChatClearedEvent](
		"chat",
		"ChatCleared",
		"v1",
	)
)
