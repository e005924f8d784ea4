package api

import domain "github.com/example/mini-network-chat/domain/chat"

// JoinResponse is returned by POST /api/join.
type JoinResponse struct {
	Success   bool  `json:"success"`
	UserCount int   `json:"userCount"`
	MessageID int64 `json:"messageId"`
}

// MessageResponse is returned by POST /api/message.
type MessageResponse struct {
	Success   bool  `json:"success"`
	MessageID int64 `json:"messageId"`
}

// MessagesResponse is returned by GET /api/messages.
type MessagesResponse struct {
	Success       bool             `json:"success"`
	Messages      []domain.Message `json:"messages"`
	UserCount     int              `json:"userCount"`
	LastMessageID int64            `json:"lastMessageId"`
	ServerTime    string           `json:"serverTime"`
}

// ClearResponse is returned by POST /api/clear.
type ClearResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the envelope for every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// joinBody and messageBody accept any JSON type per field; anything that is
// not a string counts as missing.
type joinBody struct {
	Username any `json:"username"`
}

type messageBody struct {
	Username any `json:"username"`
	Message  any `json:"message"`
}

func stringField(v any) string {
	s, _ := v.(string)
	return s
}
