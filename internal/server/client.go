// Package server manages individual WebSocket connections, handling the
// write pump, rate limiting, and lifecycle state for each one.
package server

import (
	"errors"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Client represents one WebSocket connection registered in a room. It owns
// the buffered send channel drained by its write pump and the last-activity
// timestamp the heartbeat loop refreshes.
type Client struct {
	id       string
	conn     *websocket.Conn
	send     chan []byte
	roomID   string
	username string
	addr     string

	closed     atomic.Bool
	closeOnce  sync.Once
	lastActive atomic.Int64

	maxMessageSize int64
	rateLimiter    *rateLimiter
	rateLimit      RateLimitConfig
}

// NewClient creates a Client for an accepted connection. The send channel is
// buffered so a broadcast never blocks on a slow peer; a peer that falls 256
// events behind is treated as failed.
func NewClient(conn *websocket.Conn, cfg Config, roomID, username, addr string) *Client {
	cfg = cfg.sanitized()
	if conn != nil {
		conn.SetReadLimit(cfg.MaxMessageSize)
	}

	c := &Client{
		id:             uuid.NewString(),
		conn:           conn,
		send:           make(chan []byte, 256),
		roomID:         roomID,
		username:       username,
		addr:           addr,
		maxMessageSize: cfg.MaxMessageSize,
		rateLimiter:    newRateLimiter(cfg.RateLimit.Burst, cfg.RateLimit.RefillInterval),
		rateLimit:      cfg.RateLimit,
	}
	c.touch()
	return c
}

// ID returns the connection's unique identity.
func (c *Client) ID() string { return c.id }

// Username returns the username the connection is registered under.
func (c *Client) Username() string { return c.username }

// RoomID returns the room the connection belongs to.
func (c *Client) RoomID() string { return c.roomID }

// LastActive returns the time of the connection's most recent successful
// read or delivered ping.
func (c *Client) LastActive() time.Time {
	return time.Unix(0, c.lastActive.Load())
}

func (c *Client) touch() {
	c.lastActive.Store(time.Now().UnixNano())
}

func (c *Client) isClosed() bool {
	return c.closed.Load()
}

// checkRateLimit reports whether the next inbound frame may be processed.
func (c *Client) checkRateLimit() bool {
	if c.rateLimiter != nil && !c.rateLimiter.allow() {
		log.Printf("Rate limit exceeded for %s (%d messages per %s); discarding message",
			c.addr, c.rateLimit.Burst, c.rateLimit.RefillInterval)
		return false
	}
	return true
}

// handleReadError logs an appropriate message for a failed read. Any read
// error ends the session; this only classifies it for the log.
func (c *Client) handleReadError(err error) {
	if err == nil {
		return
	}

	if errors.Is(err, websocket.ErrReadLimit) {
		log.Printf("Message from %s exceeded maximum size of %d bytes", c.addr, c.maxMessageSize)
		return
	}

	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure) {
		log.Printf("Client %s disconnected: %v", c.addr, err)
		return
	}

	if errors.Is(err, io.EOF) || isExpectedCloseError(err) {
		log.Printf("Client %s connection closed: %v", c.addr, err)
		return
	}

	log.Printf("WebSocket read error from %s: %v", c.addr, err)
}

// writePump drains the send channel onto the wire, one text frame per event.
// It exits when the channel is closed by teardown or when a write fails; in
// either case the connection is shut down.
func (c *Client) writePump() {
	defer c.closeConnection()

	for message := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Printf("Error setting write deadline for %s: %v", c.addr, err)
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			if !isExpectedCloseError(err) {
				log.Printf("Error writing to %s: %v", c.addr, err)
			}
			return
		}
	}

	// Send channel closed during teardown; tell the peer we are done.
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err == nil {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil && !isExpectedCloseError(err) {
			log.Printf("Error writing close message to %s: %v", c.addr, err)
		}
	}
}

// closeConnection closes the WebSocket connection, ignoring the errors that
// are expected when the peer already hung up.
func (c *Client) closeConnection() {
	if err := c.conn.Close(); err != nil {
		if !isExpectedCloseError(err) {
			log.Printf("Error closing connection to %s: %v", c.addr, err)
		}
	}
}
