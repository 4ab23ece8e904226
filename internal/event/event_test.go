// Tests for the event wire encoding: type discriminators and the guarantee
// that empty lists serialize as [] rather than null.
package event

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// TestEncodeCarriesDiscriminator tests that every event kind serializes with
// its "type" field set.
func TestEncodeCarriesDiscriminator(t *testing.T) {
	events := []Event{
		NewHistory(nil),
		NewUsersOnline([]string{"alice"}),
		NewMessage(NewMessagePayload("m1", "hi", "alice", "general", time.Now())),
		NewUserJoined("alice", []string{"alice"}),
		NewUserLeft("alice", nil),
		NewPing(),
	}

	for _, evt := range events {
		payload, err := Encode(evt)
		if err != nil {
			t.Fatalf("Encode(%s) failed: %v", evt.Kind(), err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(payload, &decoded); err != nil {
			t.Fatalf("Encoded %s event is not valid JSON: %v", evt.Kind(), err)
		}
		if decoded["type"] != evt.Kind() {
			t.Errorf("Encoded type = %v, want %s", decoded["type"], evt.Kind())
		}
	}
}

// TestEmptyListsEncodeAsArrays tests that events built from nil slices still
// serialize their lists as JSON arrays.
func TestEmptyListsEncodeAsArrays(t *testing.T) {
	for _, evt := range []Event{NewHistory(nil), NewUsersOnline(nil), NewUserLeft("alice", nil)} {
		payload, err := Encode(evt)
		if err != nil {
			t.Fatalf("Encode(%s) failed: %v", evt.Kind(), err)
		}
		if strings.Contains(string(payload), "null") {
			t.Errorf("Encoded %s event contains null: %s", evt.Kind(), payload)
		}
	}
}

// TestMessagePayloadFields tests the camelCase field names clients depend on.
func TestMessagePayloadFields(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	payload, err := Encode(NewMessage(NewMessagePayload("m1", "hi", "alice", "general", ts)))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("Failed to decode message event: %v", err)
	}

	want := map[string]string{
		"messageId": "m1",
		"content":   "hi",
		"username":  "alice",
		"roomId":    "general",
		"timestamp": ts.Format(time.RFC3339Nano),
	}
	for key, value := range want {
		if decoded[key] != value {
			t.Errorf("Field %s = %v, want %s", key, decoded[key], value)
		}
	}
}
