// Package server drives each connection's lifecycle through the Session
// type: registration, the initial history and presence snapshot, the inbound
// read loop, and teardown.
package server

import (
	"context"
	"encoding/json"
	"log"

	"github.com/pyme-market/chat-server/internal/chat"
	"github.com/pyme-market/chat-server/internal/event"
)

// Session is the per-connection control loop. One session runs per accepted
// connection, in that connection's handler goroutine.
type Session struct {
	client       *Client
	registry     *Registry
	broadcaster  *Broadcaster
	chat         *chat.Service
	historyLimit int
}

// NewSession creates a session for an accepted connection.
func NewSession(client *Client, registry *Registry, broadcaster *Broadcaster, svc *chat.Service, historyLimit int) *Session {
	if historyLimit <= 0 {
		historyLimit = 20
	}
	return &Session{
		client:       client,
		registry:     registry,
		broadcaster:  broadcaster,
		chat:         svc,
		historyLimit: historyLimit,
	}
}

// Run registers the connection, announces the join, delivers the welcome
// snapshot, and reads inbound frames until the connection dies. Teardown runs
// exactly once no matter what ends the session.
func (s *Session) Run(ctx context.Context) {
	c := s.client

	s.registry.Join(c.roomID, c.username, c)
	go c.writePump()

	log.Printf("User %s connected to room %s (connection %s)", c.username, c.roomID, c.id)

	s.broadcaster.BroadcastToRoomExcept(c.roomID,
		event.NewUserJoined(c.username, s.registry.OnlineUsers(c.roomID)), c)

	if !s.sendWelcome(ctx) {
		s.broadcaster.Disconnect(c)
		return
	}

	s.readLoop(ctx)
	s.broadcaster.Disconnect(c)
}

// sendWelcome delivers the recent history and the current presence list to
// the new connection only. A history fetch failure ends the session.
func (s *Session) sendWelcome(ctx context.Context) bool {
	c := s.client

	history, err := s.chat.History(ctx, c.roomID, s.historyLimit)
	if err != nil {
		log.Printf("Failed to load history for room %s: %v", c.roomID, err)
		return false
	}

	payloads := make([]event.MessagePayload, 0, len(history))
	for _, msg := range history {
		payloads = append(payloads, chat.Payload(msg))
	}

	if err := s.broadcaster.SendTo(c, event.NewHistory(payloads)); err != nil {
		log.Printf("Failed to send history to %s: %v", c.addr, err)
		return false
	}
	if err := s.broadcaster.SendTo(c, event.NewUsersOnline(s.registry.OnlineUsers(c.roomID))); err != nil {
		log.Printf("Failed to send presence to %s: %v", c.addr, err)
		return false
	}
	return true
}

// readLoop processes inbound frames strictly in arrival order until a read
// fails or the peer closes.
func (s *Session) readLoop(ctx context.Context) {
	c := s.client

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}

		c.touch()

		if !c.checkRateLimit() {
			continue
		}

		s.handleFrame(ctx, raw)
	}
}

// handleFrame dispatches one inbound frame. Chat message submissions go
// through the pipeline; every other frame type is silently ignored. No error
// here is allowed to end the session or touch other connections.
func (s *Session) handleFrame(ctx context.Context, raw []byte) {
	c := s.client

	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		log.Printf("Invalid frame from %s: %v", c.addr, err)
		return
	}

	switch frame.Type {
	case "message":
		if _, err := s.chat.Submit(ctx, c.roomID, c.username, frame.Content); err != nil {
			if chat.IsValidationError(err) {
				log.Printf("Rejected message from %s in room %s: %v", c.username, c.roomID, err)
			} else {
				log.Printf("Failed to persist message from %s in room %s: %v", c.username, c.roomID, err)
			}
		}
	default:
		// Unrecognized frame types are ignored at this layer.
	}
}
