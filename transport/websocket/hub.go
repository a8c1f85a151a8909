package websocket

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/quackers-game/game/engine"
	"github.com/wricardo/quackers-game/game/protocol"
	"github.com/wricardo/quackers-game/game/session"
	"github.com/wricardo/quackers-game/transport/outbox"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

var _ session.Sender = (*outbox.Queue)(nil)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Game clients are served from other origins
		return true
	},
}

// MessageHandler processes one inbound frame on behalf of a client. It
// receives the shared tables and world and may enqueue frames for any
// client. Its error is only logged; the connection stays open.
type MessageHandler interface {
	HandleInbound(ctx context.Context, clientID string, frame protocol.Frame,
		clients *session.Registry, players *session.GameTable, world *engine.World) error
}

// MessageHandlerFunc adapts a function to MessageHandler
type MessageHandlerFunc func(ctx context.Context, clientID string, frame protocol.Frame,
	clients *session.Registry, players *session.GameTable, world *engine.World) error

// HandleInbound calls f
func (f MessageHandlerFunc) HandleInbound(ctx context.Context, clientID string, frame protocol.Frame,
	clients *session.Registry, players *session.GameTable, world *engine.World) error {
	return f(ctx, clientID, frame, clients, players, world)
}

// State is a step of a connection's lifecycle
type State int

const (
	StateAdmitted State = iota
	StateActive
	StateTerminating
	StateRetired
)

func (s State) String() string {
	switch s {
	case StateAdmitted:
		return "admitted"
	case StateActive:
		return "active"
	case StateTerminating:
		return "terminating"
	case StateRetired:
		return "retired"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options tunes keepalive and lets callers observe connection lifecycles.
// Zero durations disable the matching deadline or ping.
type Options struct {
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64

	// OnStateChange is called when a connection enters a state. StateRetired
	// is reported after the connection's final actions have completed.
	OnStateChange func(clientID string, state State)
}

// DefaultOptions returns the production keepalive settings
func DefaultOptions() Options {
	return Options{
		WriteWait:      writeWait,
		PongWait:       pongWait,
		PingPeriod:     pingPeriod,
		MaxMessageSize: maxMessageSize,
	}
}

// Hub admits connections, supervises them and retires them, keeping the
// client registry and the game table in sync with live connections.
type Hub struct {
	clients *session.Registry
	players *session.GameTable
	world   *engine.World
	handler MessageHandler
	opts    Options

	newClientID func() string
	admitted    atomic.Int64
}

// NewHub creates a hub over the shared tables. handler may be nil, in
// which case inbound frames are dropped. A nil world uses the built-in
// configuration.
func NewHub(clients *session.Registry, players *session.GameTable, world *engine.World,
	handler MessageHandler, opts Options) *Hub {
	if world == nil {
		world = engine.NewWorldWithDefaults()
	}

	return &Hub{
		clients:     clients,
		players:     players,
		world:       world,
		handler:     handler,
		opts:        opts,
		newClientID: session.NewClientID,
	}
}

// Clients returns the client registry
func (h *Hub) Clients() *session.Registry {
	return h.clients
}

// Players returns the game table
func (h *Hub) Players() *session.GameTable {
	return h.players
}

// World returns the shared game context
func (h *Hub) World() *engine.World {
	return h.world
}

// TotalAdmitted returns how many connections were admitted since start
func (h *Hub) TotalAdmitted() int64 {
	return h.admitted.Load()
}

// ServeWS upgrades an HTTP request and supervises the resulting connection
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	if h.opts.MaxMessageSize > 0 {
		conn.SetReadLimit(h.opts.MaxMessageSize)
	}
	if h.opts.PongWait > 0 {
		conn.SetReadDeadline(time.Now().Add(h.opts.PongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(h.opts.PongWait))
			return nil
		})
	}

	go h.Serve(context.WithoutCancel(r.Context()), conn)
}

// Serve runs one connection from admission to retirement and returns once
// the client has been removed from both tables and, for a clean close,
// the other clients have been told it left.
func (h *Hub) Serve(ctx context.Context, conn Conn) {
	clientID := h.newClientID()
	sender := outbox.New()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Connection %s panicked: %v", clientID, r)
			h.retireAfterPanic(clientID, sender)
		}
	}()

	go h.relay(clientID, conn, sender)

	h.admit(clientID, sender)

	h.transition(clientID, StateActive)
	reason := h.receive(ctx, clientID, conn)

	h.transition(clientID, StateTerminating)
	h.clients.Remove(clientID)
	h.players.Remove(clientID)
	sender.Close()

	if reason != nil {
		log.Printf("%s disconnected with reason: %v", clientID, reason)
	} else {
		log.Printf("%s disconnected gracefully", clientID)
		h.BroadcastDisconnect(clientID)
	}

	h.transition(clientID, StateRetired)
}

// retireAfterPanic drops the client from both tables and stops its relay,
// which closes the connection. It does not announce the departure.
func (h *Hub) retireAfterPanic(clientID string, sender *outbox.Queue) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Cleanup for connection %s panicked: %v", clientID, r)
		}
	}()

	sender.Close()
	h.clients.Remove(clientID)
	h.players.Remove(clientID)
}

// admit registers the client in both tables before any frame is read
func (h *Hub) admit(clientID string, sender *outbox.Queue) {
	if err := h.clients.Insert(&session.ClientConnection{ClientID: clientID, Sender: sender}); err != nil {
		log.Printf("Failed to register client %s: %v", clientID, err)
	}
	if err := h.players.Insert(h.world.NewPlayer(clientID)); err != nil {
		log.Printf("Failed to create game data for client %s: %v", clientID, err)
	}

	total := h.admitted.Add(1)
	log.Printf("Client %s connected (active clients: %d, total: %d)", clientID, h.clients.Count(), total)

	h.transition(clientID, StateAdmitted)
}

// receive reads frames until the stream ends. A nil result means the peer
// closed the connection cleanly.
func (h *Hub) receive(ctx context.Context, clientID string, conn Conn) (reason error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Supervisor for client %s panicked: %v", clientID, r)
			reason = fmt.Errorf("supervisor panic: %v", r)
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if isCleanClose(err) {
				return nil
			}
			log.Printf("Error receiving message for client %s: %v", clientID, err)
			return fmt.Errorf("websocket error: %w", err)
		}

		h.dispatch(ctx, clientID, protocol.Frame{Type: messageType, Data: data})
	}
}

// dispatch hands a frame to the message handler. Handler failures never
// end the connection.
func (h *Hub) dispatch(ctx context.Context, clientID string, frame protocol.Frame) {
	if h.handler == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Message handler panicked for client %s: %v", clientID, r)
		}
	}()

	if err := h.handler.HandleInbound(ctx, clientID, frame, h.clients, h.players, h.world); err != nil {
		log.Printf("Failed to handle message from client %s: %v", clientID, err)
	}
}

func (h *Hub) transition(clientID string, state State) {
	if h.opts.OnStateChange != nil {
		h.opts.OnStateChange(clientID, state)
	}
}
