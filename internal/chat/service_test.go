// Unit tests for the message pipeline: validation, persistence, fan-out, and
// history limit clamping.
package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pyme-market/chat-server/internal/event"
	"github.com/pyme-market/chat-server/internal/store"
)

// fakeStore records created messages and can be forced to fail.
type fakeStore struct {
	messages  []store.Message
	lastLimit int
	err       error
}

func (s *fakeStore) CreateMessage(_ context.Context, content, username, roomID string) (store.Message, error) {
	if s.err != nil {
		return store.Message{}, s.err
	}
	msg := store.Message{
		MessageID: "msg-1",
		Content:   content,
		Username:  username,
		RoomID:    roomID,
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	s.messages = append(s.messages, msg)
	return msg, nil
}

func (s *fakeStore) RecentMessages(_ context.Context, _ string, limit int) ([]store.Message, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.lastLimit = limit
	return s.messages, nil
}

// fakeBroadcaster records every event handed to it.
type fakeBroadcaster struct {
	rooms  []string
	events []event.Event
}

func (b *fakeBroadcaster) BroadcastToRoom(roomID string, evt event.Event) {
	b.rooms = append(b.rooms, roomID)
	b.events = append(b.events, evt)
}

// TestSubmitPersistsAndBroadcasts tests that a valid submission results in
// exactly one persisted message and one message event for the whole room,
// built from the store-assigned identity and timestamp.
func TestSubmitPersistsAndBroadcasts(t *testing.T) {
	st := &fakeStore{}
	b := &fakeBroadcaster{}
	svc := NewService(st, b, 1000, 50)

	msg, err := svc.Submit(context.Background(), "general", "alice", "hello")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if len(st.messages) != 1 {
		t.Errorf("Persisted %d messages, want 1", len(st.messages))
	}
	if len(b.events) != 1 {
		t.Fatalf("Broadcast %d events, want 1", len(b.events))
	}
	if b.rooms[0] != "general" {
		t.Errorf("Broadcast room = %q, want general", b.rooms[0])
	}

	evt, ok := b.events[0].(event.Message)
	if !ok {
		t.Fatalf("Broadcast event is %T, want event.Message", b.events[0])
	}
	if evt.MessageID != msg.MessageID || evt.Content != "hello" || evt.Username != "alice" || evt.RoomID != "general" {
		t.Errorf("Broadcast event = %+v, want the persisted record's fields", evt)
	}
	if evt.Timestamp != msg.Timestamp.Format(time.RFC3339Nano) {
		t.Errorf("Broadcast timestamp = %q, want the store-assigned one", evt.Timestamp)
	}
}

// TestSubmitValidation tests that invalid content or usernames are rejected
// before anything is persisted or broadcast.
func TestSubmitValidation(t *testing.T) {
	longContent := make([]byte, 0, 1001)
	for i := 0; i < 1001; i++ {
		longContent = append(longContent, 'a')
	}
	longUsername := make([]byte, 0, 51)
	for i := 0; i < 51; i++ {
		longUsername = append(longUsername, 'u')
	}

	cases := []struct {
		name     string
		username string
		content  string
		wantErr  error
	}{
		{"empty content", "alice", "", ErrEmptyContent},
		{"whitespace content", "alice", "   \t\n", ErrEmptyContent},
		{"content too long", "alice", string(longContent), ErrContentTooLong},
		{"empty username", "", "hello", ErrEmptyUsername},
		{"whitespace username", "  ", "hello", ErrEmptyUsername},
		{"username too long", string(longUsername), "hello", ErrUsernameTooLong},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := &fakeStore{}
			b := &fakeBroadcaster{}
			svc := NewService(st, b, 1000, 50)

			_, err := svc.Submit(context.Background(), "general", tc.username, tc.content)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Submit error = %v, want %v", err, tc.wantErr)
			}
			if !IsValidationError(err) {
				t.Errorf("IsValidationError(%v) = false, want true", err)
			}
			if len(st.messages) != 0 {
				t.Errorf("Persisted %d messages, want 0", len(st.messages))
			}
			if len(b.events) != 0 {
				t.Errorf("Broadcast %d events, want 0", len(b.events))
			}
		})
	}
}

// TestSubmitContentAtLimit tests that content of exactly the maximum length
// is accepted.
func TestSubmitContentAtLimit(t *testing.T) {
	st := &fakeStore{}
	b := &fakeBroadcaster{}
	svc := NewService(st, b, 10, 50)

	if _, err := svc.Submit(context.Background(), "general", "alice", "0123456789"); err != nil {
		t.Errorf("Submit at the content limit failed: %v", err)
	}
}

// TestSubmitStoreFailure tests that a persistence failure surfaces to the
// caller without any broadcast.
func TestSubmitStoreFailure(t *testing.T) {
	st := &fakeStore{err: errors.New("database is down")}
	b := &fakeBroadcaster{}
	svc := NewService(st, b, 1000, 50)

	_, err := svc.Submit(context.Background(), "general", "alice", "hello")
	if err == nil {
		t.Fatal("Submit with failing store returned nil error")
	}
	if IsValidationError(err) {
		t.Errorf("Storage error %v classified as a validation error", err)
	}
	if len(b.events) != 0 {
		t.Errorf("Broadcast %d events after storage failure, want 0", len(b.events))
	}
}

// TestHistoryClampsLimit tests that the limit handed to the store always
// stays within the 1..100 contract.
func TestHistoryClampsLimit(t *testing.T) {
	cases := []struct {
		requested int
		want      int
	}{
		{0, 1},
		{-5, 1},
		{20, 20},
		{100, 100},
		{500, 100},
	}

	for _, tc := range cases {
		st := &fakeStore{}
		svc := NewService(st, &fakeBroadcaster{}, 1000, 50)

		if _, err := svc.History(context.Background(), "general", tc.requested); err != nil {
			t.Fatalf("History(%d) failed: %v", tc.requested, err)
		}
		if st.lastLimit != tc.want {
			t.Errorf("History(%d) queried the store with limit %d, want %d", tc.requested, st.lastLimit, tc.want)
		}
	}
}
