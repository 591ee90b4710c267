package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The bridge is consumed by a local UI shell; same-host origins only
	CheckOrigin: func(r *http.Request) bool { return true },
}

// statusMessage is the frame pushed to WebSocket clients.
type statusMessage struct {
	Type      string      `json:"type"`
	Status    interface{} `json:"status"`
	Timestamp int64       `json:"timestamp"`
}

// handleWebSocket upgrades the connection and streams module status: once
// on connect, then on a fixed cadence until the client goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnw("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s.logger.Debugw("Status stream client connected", "remote", conn.RemoteAddr())

	// Drain reads so client close frames and pings are processed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := s.writeStatus(conn); err != nil {
		return
	}

	ticker := time.NewTicker(s.statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := s.writeStatus(conn); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeStatus(conn *websocket.Conn) error {
	msg := statusMessage{
		Type:      "module_status",
		Status:    s.facade.Status(),
		Timestamp: time.Now().UnixMilli(),
	}
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(msg)
}
