// Package server fans chat events out to room members through the
// Broadcaster type, which also owns the shared teardown path for failed
// connections.
package server

import (
	"fmt"
	"log"

	"github.com/pyme-market/chat-server/internal/event"
)

// Broadcaster serializes an event once and delivers it to a snapshot of a
// room's connections. Individual send failures are isolated: a dead peer is
// torn down without affecting delivery to the rest of the room or the caller.
type Broadcaster struct {
	registry *Registry
}

// NewBroadcaster creates a broadcaster over the given registry.
func NewBroadcaster(registry *Registry) *Broadcaster {
	return &Broadcaster{registry: registry}
}

// BroadcastToRoom delivers an event to every connection in the room.
func (b *Broadcaster) BroadcastToRoom(roomID string, evt event.Event) {
	b.broadcast(roomID, evt, nil)
}

// BroadcastToRoomExcept delivers an event to every connection in the room
// except the given one, used for join announcements the joiner should not see.
func (b *Broadcaster) BroadcastToRoomExcept(roomID string, evt event.Event, exclude *Client) {
	b.broadcast(roomID, evt, exclude)
}

func (b *Broadcaster) broadcast(roomID string, evt event.Event, exclude *Client) {
	payload, err := event.Encode(evt)
	if err != nil {
		log.Printf("Failed to encode %s event for room %s: %v", evt.Kind(), roomID, err)
		return
	}

	var failed []*Client
	for _, c := range b.registry.Connections(roomID) {
		if c == exclude {
			continue
		}
		if !b.trySend(c, payload) {
			failed = append(failed, c)
		}
	}

	for _, c := range failed {
		b.Disconnect(c)
	}
}

// SendTo delivers an event to a single connection. It is used for the
// one-to-one history and presence snapshot sent to a newly joined connection.
func (b *Broadcaster) SendTo(c *Client, evt event.Event) error {
	payload, err := event.Encode(evt)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", evt.Kind(), err)
	}
	if !b.trySend(c, payload) {
		return fmt.Errorf("send %s event to %s: connection closed or buffer full", evt.Kind(), c.addr)
	}
	return nil
}

// trySend enqueues a payload on the client's send channel without blocking.
// The recover guard covers the window where teardown closes the channel
// between the closed check and the send.
func (b *Broadcaster) trySend(c *Client, payload []byte) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic sending to %s: %v", c.addr, r)
			ok = false
		}
	}()

	if c.isClosed() {
		return false
	}

	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// Disconnect tears a connection down exactly once regardless of what
// triggered it: read error, failed send, heartbeat failure, or shutdown. It
// leaves the registry, closes the transport, and announces the departure to
// the remaining room members. A failure while announcing routes the failed
// peer through this same path; the once-guard keeps that from recursing
// forever.
func (b *Broadcaster) Disconnect(c *Client) {
	c.closeOnce.Do(func() {
		b.registry.Leave(c.roomID, c.username, c)
		c.closed.Store(true)
		close(c.send)

		if c.conn != nil {
			if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
				log.Printf("Error closing connection %s: %v", c.id, err)
			}
		}

		log.Printf("User %s disconnected from room %s (connection %s)", c.username, c.roomID, c.id)

		b.broadcast(c.roomID, event.NewUserLeft(c.username, b.registry.OnlineUsers(c.roomID)), nil)
	})
}

// DisconnectAll tears down every open connection. Used during shutdown.
func (b *Broadcaster) DisconnectAll() {
	for _, roomID := range b.registry.Rooms() {
		for _, c := range b.registry.Connections(roomID) {
			b.Disconnect(c)
		}
	}
}
