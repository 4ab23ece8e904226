// Package chat implements the message pipeline: it validates inbound chat
// messages, persists them through the message store, and hands the persisted
// record to the broadcaster for fan-out to the room.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pyme-market/chat-server/internal/event"
	"github.com/pyme-market/chat-server/internal/store"
)

// Validation errors reported to the submitting connection. They are never
// fatal and nothing is persisted or broadcast when one occurs.
var (
	ErrEmptyContent    = errors.New("message content cannot be empty")
	ErrContentTooLong  = errors.New("message content is too long")
	ErrEmptyUsername   = errors.New("username cannot be empty")
	ErrUsernameTooLong = errors.New("username is too long")
)

// IsValidationError reports whether err is one of the message validation
// failures, as opposed to a storage error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyContent) ||
		errors.Is(err, ErrContentTooLong) ||
		errors.Is(err, ErrEmptyUsername) ||
		errors.Is(err, ErrUsernameTooLong)
}

// Broadcaster delivers an event to every connection in a room.
type Broadcaster interface {
	BroadcastToRoom(roomID string, evt event.Event)
}

// Service is the chat message pipeline.
type Service struct {
	store             store.MessageStore
	broadcaster       Broadcaster
	maxContentLength  int
	maxUsernameLength int
}

// NewService creates a pipeline over the given store and broadcaster.
// Non-positive limits fall back to the defaults (1000 characters of content,
// 50 characters of username).
func NewService(st store.MessageStore, b Broadcaster, maxContentLength, maxUsernameLength int) *Service {
	if maxContentLength <= 0 {
		maxContentLength = 1000
	}
	if maxUsernameLength <= 0 {
		maxUsernameLength = 50
	}
	return &Service{
		store:             st,
		broadcaster:       b,
		maxContentLength:  maxContentLength,
		maxUsernameLength: maxUsernameLength,
	}
}

// Submit validates and persists a chat message, then broadcasts the persisted
// record to the whole room. The sender receives its own message back, which
// confirms persistence. On any failure nothing is broadcast and the error is
// surfaced to the caller only.
func (s *Service) Submit(ctx context.Context, roomID, username, content string) (store.Message, error) {
	if err := s.validateContent(content); err != nil {
		return store.Message{}, err
	}
	if err := s.validateUsername(username); err != nil {
		return store.Message{}, err
	}

	msg, err := s.store.CreateMessage(ctx, content, username, roomID)
	if err != nil {
		return store.Message{}, fmt.Errorf("persist message: %w", err)
	}

	s.broadcaster.BroadcastToRoom(msg.RoomID, event.NewMessage(Payload(msg)))
	return msg, nil
}

// History returns the newest messages of a room in chronological order. The
// limit is clamped to the 1..100 range the store contract expects.
func (s *Service) History(ctx context.Context, roomID string, limit int) ([]store.Message, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}
	return s.store.RecentMessages(ctx, roomID, limit)
}

// Payload converts a persisted message into its wire representation.
func Payload(msg store.Message) event.MessagePayload {
	return event.NewMessagePayload(msg.MessageID, msg.Content, msg.Username, msg.RoomID, msg.Timestamp)
}

func (s *Service) validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > s.maxContentLength {
		return ErrContentTooLong
	}
	return nil
}

func (s *Service) validateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return ErrEmptyUsername
	}
	if utf8.RuneCountInString(username) > s.maxUsernameLength {
		return ErrUsernameTooLong
	}
	return nil
}
