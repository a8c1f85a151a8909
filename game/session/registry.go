package session

import (
	"errors"
	"log"
	"sync"

	"github.com/wricardo/quackers-game/game/protocol"
)

var (
	ErrClientNotFound = errors.New("client not found")
	ErrInvalidClient  = errors.New("invalid client connection")
)

// Sender accepts frames for one client without blocking. Send fails once
// the client's connection is shutting down.
type Sender interface {
	Send(f protocol.Frame) error
}

// ClientConnection is the registry entry for one live transport endpoint
type ClientConnection struct {
	ClientID string
	Sender   Sender
}

// Send enqueues a frame on the client's outbound queue
func (c *ClientConnection) Send(f protocol.Frame) error {
	if c.Sender == nil {
		return ErrInvalidClient
	}
	return c.Sender.Send(f)
}

// Registry maps client IDs to their outbound queues
type Registry struct {
	clients map[string]*ClientConnection
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]*ClientConnection),
	}
}

// Insert adds a connection keyed by its ClientID, replacing any previous entry
func (r *Registry) Insert(conn *ClientConnection) error {
	if conn == nil || conn.ClientID == "" || conn.Sender == nil {
		return ErrInvalidClient
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients[conn.ClientID] = conn
	return nil
}

// Remove deletes a client and reports whether it was present.
// Removing an unknown client is a no-op.
func (r *Registry) Remove(clientID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.clients[clientID]; !exists {
		return false
	}
	delete(r.clients, clientID)
	return true
}

// Get retrieves a client connection by ID
func (r *Registry) Get(clientID string) (*ClientConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, exists := r.clients[clientID]
	return conn, exists
}

// Snapshot returns the current connections in no particular order
func (r *Registry) Snapshot() []*ClientConnection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*ClientConnection, 0, len(r.clients))
	for _, conn := range r.clients {
		result = append(result, conn)
	}

	return result
}

// Range calls fn for every connection while holding the read lock.
// fn must not block or call back into the registry.
func (r *Registry) Range(fn func(conn *ClientConnection) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, conn := range r.clients {
		if !fn(conn) {
			return
		}
	}
}

// Count returns the number of registered clients
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// SendTo enqueues a frame for a single client
func (r *Registry) SendTo(clientID string, f protocol.Frame) error {
	conn, exists := r.Get(clientID)
	if !exists {
		return ErrClientNotFound
	}
	return conn.Send(f)
}

// Broadcast enqueues a frame on every client except the one identified by
// except (pass "" to reach everyone). Recipients whose queue is already
// closed are logged and skipped. It returns the number of clients reached.
func (r *Registry) Broadcast(f protocol.Frame, except string) int {
	delivered := 0

	for _, conn := range r.Snapshot() {
		if conn.ClientID == except {
			continue
		}

		if err := conn.Send(f); err != nil {
			log.Printf("Skipping client %s during broadcast: %v", conn.ClientID, err)
			continue
		}
		delivered++
	}

	return delivered
}
