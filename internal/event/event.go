// Package event defines the closed set of chat events exchanged with clients
// and their JSON wire encoding. Every event carries a "type" discriminator so
// clients can dispatch on it without inspecting the rest of the payload.
package event

import (
	"encoding/json"
	"time"
)

// Event kinds as they appear in the "type" field on the wire.
const (
	KindHistory     = "history"
	KindUsersOnline = "users_online"
	KindMessage     = "message"
	KindUserJoined  = "user_joined"
	KindUserLeft    = "user_left"
	KindPing        = "ping"
)

// Event is implemented by every chat event variant. The set of
// implementations in this package is closed.
type Event interface {
	Kind() string
}

// MessagePayload is a persisted chat message as serialized to clients.
type MessagePayload struct {
	MessageID string `json:"messageId"`
	Content   string `json:"content"`
	Username  string `json:"username"`
	RoomID    string `json:"roomId"`
	Timestamp string `json:"timestamp"`
}

// NewMessagePayload builds a wire payload from persisted message fields.
func NewMessagePayload(messageID, content, username, roomID string, timestamp time.Time) MessagePayload {
	return MessagePayload{
		MessageID: messageID,
		Content:   content,
		Username:  username,
		RoomID:    roomID,
		Timestamp: timestamp.Format(time.RFC3339Nano),
	}
}

// History carries the recent messages of a room, oldest first. It is sent
// one-to-one to a connection that just joined, never broadcast.
type History struct {
	Type     string           `json:"type"`
	Messages []MessagePayload `json:"messages"`
}

// NewHistory creates a history event from messages in chronological order.
func NewHistory(messages []MessagePayload) History {
	if messages == nil {
		messages = []MessagePayload{}
	}
	return History{Type: KindHistory, Messages: messages}
}

// Kind returns the wire discriminator for history events.
func (History) Kind() string { return KindHistory }

// UsersOnline carries the distinct usernames currently present in a room.
type UsersOnline struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

// NewUsersOnline creates a presence snapshot event.
func NewUsersOnline(users []string) UsersOnline {
	if users == nil {
		users = []string{}
	}
	return UsersOnline{Type: KindUsersOnline, Users: users}
}

// Kind returns the wire discriminator for presence snapshot events.
func (UsersOnline) Kind() string { return KindUsersOnline }

// Message announces a persisted chat message to a room. The identity and
// timestamp come from the store, not from the submitting client.
type Message struct {
	Type      string `json:"type"`
	MessageID string `json:"messageId"`
	Content   string `json:"content"`
	Username  string `json:"username"`
	RoomID    string `json:"roomId"`
	Timestamp string `json:"timestamp"`
}

// NewMessage creates a message event from a persisted message payload.
func NewMessage(payload MessagePayload) Message {
	return Message{
		Type:      KindMessage,
		MessageID: payload.MessageID,
		Content:   payload.Content,
		Username:  payload.Username,
		RoomID:    payload.RoomID,
		Timestamp: payload.Timestamp,
	}
}

// Kind returns the wire discriminator for message events.
func (Message) Kind() string { return KindMessage }

// UserJoined announces a user joining a room, along with the refreshed
// presence list.
type UserJoined struct {
	Type        string   `json:"type"`
	Username    string   `json:"username"`
	Message     string   `json:"message"`
	UsersOnline []string `json:"usersOnline"`
}

// NewUserJoined creates a join announcement for the given user.
func NewUserJoined(username string, usersOnline []string) UserJoined {
	if usersOnline == nil {
		usersOnline = []string{}
	}
	return UserJoined{
		Type:        KindUserJoined,
		Username:    username,
		Message:     username + " joined the chat",
		UsersOnline: usersOnline,
	}
}

// Kind returns the wire discriminator for join events.
func (UserJoined) Kind() string { return KindUserJoined }

// UserLeft announces a user leaving a room, along with the refreshed
// presence list.
type UserLeft struct {
	Type        string   `json:"type"`
	Username    string   `json:"username"`
	Message     string   `json:"message"`
	UsersOnline []string `json:"usersOnline"`
}

// NewUserLeft creates a departure announcement for the given user.
func NewUserLeft(username string, usersOnline []string) UserLeft {
	if usersOnline == nil {
		usersOnline = []string{}
	}
	return UserLeft{
		Type:        KindUserLeft,
		Username:    username,
		Message:     username + " left the chat",
		UsersOnline: usersOnline,
	}
}

// Kind returns the wire discriminator for departure events.
func (UserLeft) Kind() string { return KindUserLeft }

// Ping is the periodic liveness probe sent to every open connection.
type Ping struct {
	Type string `json:"type"`
}

// NewPing creates a liveness probe event.
func NewPing() Ping { return Ping{Type: KindPing} }

// Kind returns the wire discriminator for ping events.
func (Ping) Kind() string { return KindPing }

// Encode serializes an event to its JSON wire form.
func Encode(e Event) ([]byte, error) {
	return json.Marshal(e)
}
