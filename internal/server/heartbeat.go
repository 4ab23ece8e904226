// Package server keeps connections alive through the Heartbeat type, a
// single background loop that probes every open connection on a fixed
// interval and evicts the ones whose probe cannot be delivered.
package server

import (
	"context"
	"log"
	"time"

	"github.com/pyme-market/chat-server/internal/event"
)

// Heartbeat periodically sends a ping event to every connection in every
// room. A connection that cannot accept the ping goes through the same
// teardown path as any other failed send.
type Heartbeat struct {
	registry    *Registry
	broadcaster *Broadcaster
	interval    time.Duration
}

// NewHeartbeat creates a heartbeat loop over the given registry and
// broadcaster. A non-positive interval falls back to 30 seconds.
func NewHeartbeat(registry *Registry, broadcaster *Broadcaster, interval time.Duration) *Heartbeat {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Heartbeat{
		registry:    registry,
		broadcaster: broadcaster,
		interval:    interval,
	}
}

// Run blocks, probing all connections once per interval until ctx is
// cancelled. The cadence is strictly periodic: failures observed in one cycle
// never delay or skip the next one.
func (h *Heartbeat) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Heartbeat loop stopped")
			return
		case <-ticker.C:
			h.pingAll()
		}
	}
}

// pingAll sends one ping event to every connection in every room, refreshing
// the last-activity timestamp on each success and evicting each failure.
func (h *Heartbeat) pingAll() {
	payload, err := event.Encode(event.NewPing())
	if err != nil {
		log.Printf("Failed to encode ping event: %v", err)
		return
	}

	var failed []*Client
	for _, roomID := range h.registry.Rooms() {
		for _, c := range h.registry.Connections(roomID) {
			if h.broadcaster.trySend(c, payload) {
				c.touch()
			} else {
				failed = append(failed, c)
			}
		}
	}

	for _, c := range failed {
		log.Printf("Heartbeat failed for user %s in room %s; evicting connection %s", c.username, c.roomID, c.id)
		h.broadcaster.Disconnect(c)
	}
}
