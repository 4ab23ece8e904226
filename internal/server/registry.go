// Package server tracks room membership and presence through the Registry
// type. The registry is pure in-memory state: it performs no I/O and never
// holds its lock across a network operation.
package server

import "sync"

type connectionSet map[*Client]struct{}

type roomState struct {
	connections connectionSet
	// users maps a username to the connections it currently holds; a user
	// with several tabs open appears once with several connections.
	users map[string]connectionSet
}

// Registry maps room identifiers to their connections and presence tables.
// All methods are safe for concurrent use. Rooms are created lazily on first
// join and never destroyed; an empty room costs one map entry.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*roomState
}

// NewRegistry creates an empty registry. Each server owns exactly one,
// injected into the broadcaster, heartbeat loop, and session handlers.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*roomState)}
}

// Join registers a connection under the given room and username, creating the
// room and username bucket as needed. Joining twice with the same connection
// does not duplicate membership.
func (r *Registry) Join(roomID, username string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.rooms[roomID]
	if room == nil {
		room = &roomState{
			connections: make(connectionSet),
			users:       make(map[string]connectionSet),
		}
		r.rooms[roomID] = room
	}

	room.connections[c] = struct{}{}

	bucket := room.users[username]
	if bucket == nil {
		bucket = make(connectionSet)
		room.users[username] = bucket
	}
	bucket[c] = struct{}{}
}

// Leave removes a connection from the room's connection set and its username
// bucket, dropping the bucket when it empties. Leaving a room or connection
// that is not registered is a no-op.
func (r *Registry) Leave(roomID, username string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.rooms[roomID]
	if room == nil {
		return
	}

	delete(room.connections, c)

	if bucket := room.users[username]; bucket != nil {
		delete(bucket, c)
		if len(bucket) == 0 {
			delete(room.users, username)
		}
	}
}

// OnlineUsers returns the distinct usernames with at least one live
// connection in the room. An unknown room yields an empty list.
func (r *Registry) OnlineUsers(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[roomID]
	if room == nil {
		return []string{}
	}

	users := make([]string, 0, len(room.users))
	for username := range room.users {
		users = append(users, username)
	}
	return users
}

// ConnectionCount returns the number of live connections in the room, not the
// number of distinct users.
func (r *Registry) ConnectionCount(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[roomID]
	if room == nil {
		return 0
	}
	return len(room.connections)
}

// Connections returns a snapshot of the room's connections. Broadcasts send
// to the snapshot outside the lock, so joins and leaves that race with a
// broadcast only affect later broadcasts.
func (r *Registry) Connections(roomID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[roomID]
	if room == nil {
		return nil
	}

	clients := make([]*Client, 0, len(room.connections))
	for c := range room.connections {
		clients = append(clients, c)
	}
	return clients
}

// Rooms returns a snapshot of every registered room id, including rooms whose
// membership has since dropped to zero.
func (r *Registry) Rooms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]string, 0, len(r.rooms))
	for roomID := range r.rooms {
		rooms = append(rooms, roomID)
	}
	return rooms
}
