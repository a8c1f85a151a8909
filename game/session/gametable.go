package session

import (
	"fmt"
	"sync"

	"github.com/wricardo/quackers-game/game/engine"
)

// GameTable maps client IDs to their game attributes. It is locked
// independently from the Registry.
type GameTable struct {
	players map[string]*engine.ClientGameData
	mu      sync.RWMutex
}

// NewGameTable creates an empty table
func NewGameTable() *GameTable {
	return &GameTable{
		players: make(map[string]*engine.ClientGameData),
	}
}

// Insert stores data keyed by its ClientID, replacing any previous entry
func (t *GameTable) Insert(data engine.ClientGameData) error {
	if data.ClientID == "" {
		return fmt.Errorf("%w: empty client id", ErrInvalidClient)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.players[data.ClientID] = &data
	return nil
}

// Remove deletes a client's data and reports whether it was present.
// Removing an unknown client is a no-op.
func (t *GameTable) Remove(clientID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.players[clientID]; !exists {
		return false
	}
	delete(t.players, clientID)
	return true
}

// Get returns a copy of a client's data
func (t *GameTable) Get(clientID string) (engine.ClientGameData, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	data, exists := t.players[clientID]
	if !exists {
		return engine.ClientGameData{}, false
	}
	return *data, true
}

// Update runs fn on a client's data while holding the write lock and
// returns the updated copy. fn must not change ClientID.
func (t *GameTable) Update(clientID string, fn func(data *engine.ClientGameData)) (engine.ClientGameData, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, exists := t.players[clientID]
	if !exists {
		return engine.ClientGameData{}, ErrClientNotFound
	}

	fn(data)
	data.ClientID = clientID

	return *data, nil
}

// Snapshot returns copies of all entries in no particular order
func (t *GameTable) Snapshot() []engine.ClientGameData {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]engine.ClientGameData, 0, len(t.players))
	for _, data := range t.players {
		result = append(result, *data)
	}

	return result
}

// Count returns the number of entries
func (t *GameTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.players)
}
