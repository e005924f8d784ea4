package chat

import "context"

// Store is the storage contract for chat state: a set of usernames, an
// ordered bounded list of messages and the id counter backing it.
// Implementations must be safe for concurrent use.
type Store interface {
	// AddUser inserts name into the user set. It reports false when the
	// name was already present.
	AddUser(ctx context.Context, name string) (bool, error)
	// RemoveUser deletes name from the user set. Removing an absent name is
	// not an error.
	RemoveUser(ctx context.Context, name string) error
	ListUsers(ctx context.Context) ([]string, error)
	CountUsers(ctx context.Context) (int, error)

	// AppendMessage assigns the next id to msg, appends it and returns the
	// stored message.
	AppendMessage(ctx context.Context, msg Message) (Message, error)
	// ListMessages returns every stored message in ascending id order.
	ListMessages(ctx context.Context) ([]Message, error)
	ListMessagesSince(ctx context.Context, id int64) ([]Message, error)
	// TrimMessages keeps only the newest maxCount messages.
	TrimMessages(ctx context.Context, maxCount int) error

	// Clear removes all users and messages. The id counter is left alone so
	// ids stay unique across a clear.
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
