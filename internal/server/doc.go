// Package server implements the real-time chat fan-out core: the room
// registry, the broadcast engine, the heartbeat loop, and the per-connection
// session handler, along with the HTTP and WebSocket surface that exposes
// them.
//
// The implementation is organized into specialized files for configuration,
// registry, broadcasting, heartbeat, sessions, routing, and HTTP handlers to
// keep the codebase maintainable and testable as the project grows.
package server
