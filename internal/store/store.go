// Package store persists chat messages and serves recent room history.
package store

import (
	"context"
	"time"
)

// Message is a chat message as persisted by the store. It is immutable once
// created; the identity and timestamp are assigned by the store.
type Message struct {
	MessageID string
	Content   string
	Username  string
	RoomID    string
	Timestamp time.Time
}

// MessageStore is the persistence boundary used by the chat pipeline.
type MessageStore interface {
	// CreateMessage persists a new message and returns it with the
	// store-assigned identity and timestamp.
	CreateMessage(ctx context.Context, content, username, roomID string) (Message, error)

	// RecentMessages returns up to limit of the newest messages in a room,
	// in chronological order (oldest first). An unknown room yields an
	// empty result, not an error.
	RecentMessages(ctx context.Context, roomID string, limit int) ([]Message, error)
}
