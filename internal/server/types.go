// Package server defines the inbound frame format and small utility helpers
// shared across the connection and session logic.
package server

import "strings"

// inboundFrame is the JSON envelope clients send. Only "message" frames carry
// a payload this layer looks at; room and username come from the connection's
// query parameters, never from the frame.
type inboundFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
