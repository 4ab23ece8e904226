// Package server exposes the HTTP surface: the WebSocket upgrade endpoint,
// the chat history and room listing endpoints, the health check, and the
// built-in test page.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"github.com/pyme-market/chat-server/internal/chat"
)

// Defaults applied when the connection's query parameters are absent.
const (
	DefaultRoom     = "general"
	DefaultUsername = "Anonymous"
)

// Server wires the HTTP handlers to the registry, broadcaster, and chat
// pipeline. It is the composition seam: every collaborator is injected, so
// tests construct isolated instances.
type Server struct {
	cfg         Config
	registry    *Registry
	broadcaster *Broadcaster
	chat        *chat.Service
	upgrader    websocket.Upgrader
}

// New creates a Server over the given collaborators. The configuration is
// sanitized and the origin policy is built once up front.
func New(cfg Config, registry *Registry, broadcaster *Broadcaster, svc *chat.Service) *Server {
	cfg = cfg.sanitized()
	policy := newOriginPolicy(cfg.AllowedOrigins)

	return &Server{
		cfg:         cfg,
		registry:    registry,
		broadcaster: broadcaster,
		chat:        svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     policy.check,
		},
	}
}

// ServeWS handles WebSocket upgrade requests. The username and room come
// from query parameters, with defaults applied when absent, and the session
// runs in the handler goroutine until the connection dies.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	username := r.URL.Query().Get("username")
	if username == "" {
		username = DefaultUsername
	}
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		roomID = DefaultRoom
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(conn, s.cfg, roomID, username, r.RemoteAddr)
	session := NewSession(client, s.registry, s.broadcaster, s.chat, s.cfg.HistoryLimit)
	session.Run(r.Context())
}

// HistoryHandler returns the newest messages of a room in chronological
// order. The limit query parameter defaults to 50 and is clamped to 1..100.
func (s *Server) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("room")

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	messages, err := s.chat.History(r.Context(), roomID, limit)
	if err != nil {
		log.Printf("Failed to load history for room %s: %v", roomID, err)
		writeJSONError(w, http.StatusInternalServerError, "error retrieving chat history")
		return
	}

	payloads := make([]any, 0, len(messages))
	for _, msg := range messages {
		payloads = append(payloads, chat.Payload(msg))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"messages": payloads,
		"total":    len(payloads),
	})
}

// RoomUsersHandler returns the online users and connection count of a room.
func (s *Server) RoomUsersHandler(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("room")

	writeJSON(w, http.StatusOK, map[string]any{
		"room_id":          roomID,
		"users_online":     s.registry.OnlineUsers(roomID),
		"connection_count": s.registry.ConnectionCount(roomID),
	})
}

// RoomsHandler lists every room that currently has at least one connection.
func (s *Server) RoomsHandler(w http.ResponseWriter, _ *http.Request) {
	rooms := make([]any, 0)
	for _, roomID := range s.registry.Rooms() {
		count := s.registry.ConnectionCount(roomID)
		if count == 0 {
			continue
		}
		rooms = append(rooms, map[string]any{
			"room_id":          roomID,
			"connection_count": count,
			"users_online":     s.registry.OnlineUsers(roomID),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"active_rooms": rooms,
		"total_rooms":  len(rooms),
	})
}

// HealthHandler provides a simple health check endpoint that returns server status.
func (s *Server) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Chat server is running!")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error writing JSON response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
