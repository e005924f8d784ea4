package chat

import (
	"strings"
	"unicode/utf8"

	domain "github.com/example/mini-network-chat/domain/chat"
)

// NormalizeUsername validates a join username and returns it trimmed.
func NormalizeUsername(raw string) (string, error) {
	if raw == "" {
		return "", ErrUsernameRequired
	}
	name := strings.TrimSpace(raw)
	if !validUsernameLength(name) {
		return "", ErrUsernameLength
	}
	return name, nil
}

// NormalizeMessage validates a message send and returns the trimmed username
// and text.
func NormalizeMessage(rawUsername, rawText string) (string, string, error) {
	if rawUsername == "" || rawText == "" {
		return "", "", ErrFieldsRequired
	}
	text := strings.TrimSpace(rawText)
	if text == "" {
		return "", "", ErrMessageEmpty
	}
	if utf8.RuneCountInString(text) > domain.MaxMessageLength {
		return "", "", ErrMessageTooLong
	}
	name := strings.TrimSpace(rawUsername)
	if !validUsernameLength(name) {
		return "", "", ErrUsernameLength
	}
	return name, text, nil
}

func validUsernameLength(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= domain.MinUsernameLength && n <= domain.MaxUsernameLength
}
