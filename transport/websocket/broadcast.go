package websocket

import (
	"log"

	"github.com/wricardo/quackers-game/game/protocol"
)

// BroadcastDisconnect tells every other registered client that clientID
// left. Clients whose queue is already closed are skipped. It returns the
// number of clients notified.
func (h *Hub) BroadcastDisconnect(clientID string) int {
	frame := protocol.Encode(protocol.NewUserDisconnected(clientID))

	notified := h.clients.Broadcast(frame, clientID)
	if notified > 0 {
		log.Printf("Notified %d clients that %s disconnected", notified, clientID)
	}

	return notified
}
