// Tests for the SQLite message store: identity assignment, room scoping, and
// the chronological ordering of recent-history queries.
package store

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// TestCreateMessageAssignsIdentity tests that the store assigns a unique id
// and timestamp and that the record round-trips intact.
func TestCreateMessageAssignsIdentity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	msg, err := s.CreateMessage(ctx, "hello", "alice", "general")
	if err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}
	if msg.MessageID == "" {
		t.Error("CreateMessage assigned no id")
	}
	if msg.Timestamp.IsZero() {
		t.Error("CreateMessage assigned no timestamp")
	}

	other, err := s.CreateMessage(ctx, "again", "alice", "general")
	if err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}
	if other.MessageID == msg.MessageID {
		t.Error("Two messages share the same id")
	}

	got, err := s.RecentMessages(ctx, "general", 10)
	if err != nil {
		t.Fatalf("RecentMessages failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("RecentMessages returned %d messages, want 2", len(got))
	}
	if got[0].MessageID != msg.MessageID || got[0].Content != "hello" ||
		got[0].Username != "alice" || got[0].RoomID != "general" {
		t.Errorf("First message round-tripped as %+v, want the original fields", got[0])
	}
}

// TestRecentMessagesReturnsNewestChronologically tests that asking for 20 of
// 25 messages yields exactly the 20 newest, oldest first.
func TestRecentMessagesReturnsNewestChronologically(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := make([]Message, 0, 25)
	for i := 0; i < 25; i++ {
		msg, err := s.CreateMessage(ctx, "message", "alice", "general")
		if err != nil {
			t.Fatalf("CreateMessage %d failed: %v", i, err)
		}
		created = append(created, msg)
	}

	got, err := s.RecentMessages(ctx, "general", 20)
	if err != nil {
		t.Fatalf("RecentMessages failed: %v", err)
	}
	if len(got) != 20 {
		t.Fatalf("RecentMessages returned %d messages, want 20", len(got))
	}

	want := created[5:]
	for i := range got {
		if got[i].MessageID != want[i].MessageID {
			t.Fatalf("Message %d has id %s, want %s (not the 20 newest in order)", i, got[i].MessageID, want[i].MessageID)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Errorf("Timestamps are not non-decreasing at index %d", i)
		}
	}
}

// TestRecentMessagesScopedToRoom tests that history never leaks across rooms.
func TestRecentMessagesScopedToRoom(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateMessage(ctx, "in r1", "alice", "r1"); err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}
	if _, err := s.CreateMessage(ctx, "in r2", "bob", "r2"); err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}

	got, err := s.RecentMessages(ctx, "r1", 10)
	if err != nil {
		t.Fatalf("RecentMessages failed: %v", err)
	}
	if len(got) != 1 || got[0].Content != "in r1" {
		t.Errorf("RecentMessages(r1) = %+v, want only the r1 message", got)
	}
}

// TestRecentMessagesUnknownRoom tests that an unknown room yields an empty
// result, not an error.
func TestRecentMessagesUnknownRoom(t *testing.T) {
	s := newTestStore(t)

	got, err := s.RecentMessages(context.Background(), "nowhere", 10)
	if err != nil {
		t.Fatalf("RecentMessages failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("RecentMessages for unknown room returned %d messages, want 0", len(got))
	}
}
