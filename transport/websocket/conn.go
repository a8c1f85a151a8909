package websocket

import (
	"errors"
	"io"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the full-duplex message stream of one client. *websocket.Conn
// from gorilla satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// isCleanClose reports whether a read error means the peer ended the
// stream on purpose. Any close frame counts, whatever its code; a socket
// that drops without one surfaces as CloseAbnormalClosure and does not.
func isCleanClose(err error) bool {
	if errors.Is(err, io.EOF) {
		return true
	}

	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return closeErr.Code != websocket.CloseAbnormalClosure
	}
	return false
}
