package websocket

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/quackers-game/transport/outbox"
)

// relay pumps frames from the client's outbound queue to the connection.
// It owns the write side of conn and closes it on exit. It stops when the
// queue is closed or a write fails.
func (h *Hub) relay(clientID string, conn Conn, sender *outbox.Queue) {
	var ping <-chan time.Time
	if h.opts.PingPeriod > 0 {
		ticker := time.NewTicker(h.opts.PingPeriod)
		defer ticker.Stop()
		ping = ticker.C
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Relay for client %s panicked: %v", clientID, r)
		}
		conn.Close()
	}()

	for {
		select {
		case <-sender.Ready():
			frames, open := sender.Drain()
			for _, f := range frames {
				if err := h.write(conn, f.Type, f.Data); err != nil {
					log.Printf("Error sending websocket message to client %s: %v", clientID, err)
					return
				}
			}

			if !open {
				// The peer may already be gone; nothing to do if this fails
				h.write(conn, websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

		case <-ping:
			if err := h.write(conn, websocket.PingMessage, nil); err != nil {
				log.Printf("Ping to client %s failed: %v", clientID, err)
				return
			}
		}
	}
}

func (h *Hub) write(conn Conn, messageType int, data []byte) error {
	if h.opts.WriteWait > 0 {
		conn.SetWriteDeadline(time.Now().Add(h.opts.WriteWait))
	}
	return conn.WriteMessage(messageType, data)
}
