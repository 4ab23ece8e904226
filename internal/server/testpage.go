// Package server serves a minimal HTML page for exercising the chat
// endpoints by hand during development.
package server

import (
	"fmt"
	"log"
	"net/http"
)

// TestPageHandler serves an HTML test page for the WebSocket chat. It lets a
// developer pick a username and room, connect, and watch the event stream.
func (s *Server) TestPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	html := `<!DOCTYPE html>
<html>
<head>
    <title>Chat Server Test</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #events {
            border: 1px solid #ccc;
            height: 300px;
            padding: 10px;
            overflow-y: scroll;
            margin: 10px 0;
            background-color: #f9f9f9;
        }
        input[type="text"] { padding: 5px; margin-right: 10px; }
        button { padding: 5px 15px; cursor: pointer; }
    </style>
</head>
<body>
    <h1>Chat Server Test</h1>

    <div>
        <input type="text" id="username" placeholder="Username" value="Anonymous">
        <input type="text" id="room" placeholder="Room" value="general">
        <button id="connectButton" onclick="toggleConnection()">Connect</button>
    </div>

    <div id="events"></div>

    <div>
        <input type="text" id="content" placeholder="Type a message..." disabled>
        <button id="sendButton" onclick="sendMessage()" disabled>Send</button>
    </div>

    <script>
        let ws = null;
        const eventsDiv = document.getElementById('events');

        function show(text) {
            const line = document.createElement('div');
            line.textContent = text;
            eventsDiv.appendChild(line);
            eventsDiv.scrollTop = eventsDiv.scrollHeight;
        }

        function setConnected(connected) {
            document.getElementById('content').disabled = !connected;
            document.getElementById('sendButton').disabled = !connected;
            document.getElementById('connectButton').textContent = connected ? 'Disconnect' : 'Connect';
        }

        function toggleConnection() {
            if (ws && ws.readyState === WebSocket.OPEN) {
                ws.close();
                return;
            }
            const username = encodeURIComponent(document.getElementById('username').value);
            const room = encodeURIComponent(document.getElementById('room').value);
            ws = new WebSocket('ws://' + location.host + '/ws?username=' + username + '&room=' + room);
            ws.onopen = () => { show('connected'); setConnected(true); };
            ws.onmessage = (e) => show(e.data);
            ws.onclose = () => { show('disconnected'); setConnected(false); ws = null; };
            ws.onerror = (e) => show('error: ' + e);
        }

        function sendMessage() {
            const input = document.getElementById('content');
            if (input.value && ws && ws.readyState === WebSocket.OPEN) {
                ws.send(JSON.stringify({type: 'message', content: input.value}));
                input.value = '';
            }
        }

        document.getElementById('content').addEventListener('keypress', (e) => {
            if (e.key === 'Enter') sendMessage();
        });
    </script>
</body>
</html>`
	if _, err := fmt.Fprint(w, html); err != nil {
		log.Printf("Error writing HTML response: %v", err)
	}
}
