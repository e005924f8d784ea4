// Package chat holds the chat room entities shared by the store backends
// and the chat service.
package chat

import (
	"errors"
	"time"
)

// Message types.
const (
	TypeSystem  = "system"
	TypeMessage = "message"
)

// Validation and retention limits.
const (
	MinUsernameLength  = 2
	MaxUsernameLength  = 30
	MaxMessageLength   = 2000
	DefaultMaxMessages = 100
)

// ErrCorruptMessage is returned by a store when a persisted record cannot be decoded.
var ErrCorruptMessage = errors.New("stored message is malformed")

// Message is a single entry of the chat log.
// Username is nil for system messages.
type Message struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Text      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Username  *string   `json:"username"`
}

// NewSystemMessage builds a system entry without an id. Timestamps are kept
// in UTC at millisecond precision.
func NewSystemMessage(text string, at time.Time) Message {
	return Message{
		Type:      TypeSystem,
		Text:      text,
		Timestamp: at.UTC().Truncate(time.Millisecond),
	}
}

// NewUserMessage builds a message entry authored by username, without an id.
func NewUserMessage(username, text string, at time.Time) Message {
	name := username
	return Message{
		Type:      TypeMessage,
		Text:      text,
		Timestamp: at.UTC().Truncate(time.Millisecond),
		Username:  &name,
	}
}

// Author returns the username or an empty string for system messages.
func (m Message) Author() string {
	if m.Username == nil {
		return ""
	}
	return *m.Username
}

// LastID returns the highest id in msgs, or 0 when msgs is empty.
func LastID(msgs []Message) int64 {
	var last int64
	for _, m := range msgs {
		if m.ID > last {
			last = m.ID
		}
	}
	return last
}

// Since returns the messages with an id strictly greater than id.
// msgs must be sorted by ascending id.
func Since(msgs []Message, id int64) []Message {
	out := make([]Message, 0)
	for _, m := range msgs {
		if m.ID > id {
			out = append(out, m)
		}
	}
	return out
}
