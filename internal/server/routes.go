// Package server wires the HTTP handlers into a ServeMux via routing helpers.
package server

import "net/http"

// Routes configures and returns an HTTP ServeMux with all application routes:
// health check, WebSocket endpoint, chat history, room listings, and the
// test page.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.HealthHandler)
	mux.HandleFunc("/ws", s.ServeWS)
	mux.HandleFunc("/test", s.TestPageHandler)
	mux.HandleFunc("GET /chat/history/{room}", s.HistoryHandler)
	mux.HandleFunc("GET /chat/rooms", s.RoomsHandler)
	mux.HandleFunc("GET /chat/rooms/{room}/users", s.RoomUsersHandler)
	return mux
}
