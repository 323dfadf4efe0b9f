package hub

import (
	"log/slog"
	"time"

	"telemetry-hub/internal/auth"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client is one registered subscriber.
type Client struct {
	ID       string
	Identity auth.Identity
	send     chan []byte
}

// Messages exposes the outbound queue. It is closed on Unregister.
func (c *Client) Messages() <-chan []byte {
	return c.send
}

// Serve pumps queued events to conn until the peer goes away, then
// unregisters the client. It blocks.
func (h *Hub) Serve(c *Client, conn *websocket.Conn) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		writePump(c, conn)
	}()
	readPump(c, conn)
	h.Unregister(c.ID)
	<-done
}

// Subscribers only listen; inbound frames are read to process control
// messages and detect disconnects.
func readPump(c *Client, conn *websocket.Conn) {
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				slog.Warn("Subscriber read error", "conn_id", c.ID, "error", err)
			}
			return
		}
	}
}

func writePump(c *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				slog.Debug("Subscriber write failed", "conn_id", c.ID, "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
