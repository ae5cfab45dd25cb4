package remote

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleWebSocket treats every text frame as a command line and answers it
// with a JSON Reply frame.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("WebSocket read failed: %v", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		line := strings.TrimSpace(string(data))
		if line == "" {
			continue
		}

		reply, err := s.submit(r.Context(), line)
		if err != nil {
			reply = Reply{Message: err.Error()}
		}

		out, err := json.Marshal(reply)
		if err != nil {
			s.logger.Error("Failed to marshal reply: %v", err)
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
			s.logger.Error("Failed to write WebSocket message: %v", err)
			return
		}
		if reply.Quit {
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "player stopped"))
			return
		}
	}
}
