package engine

import (
	"math/rand/v2"
	"sync"
)

// World is the game-wide context shared by every connection: the
// configuration and the cracker players race to collect.
type World struct {
	config  *GameConfig
	cracker Cracker
	mu      sync.RWMutex

	// randFloat returns a value in [0, 1); replaced in tests
	randFloat func() float64
}

// NewWorld creates a world for the provided configuration
func NewWorld(config *GameConfig) (*World, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	w := &World{
		config:    config,
		randFloat: rand.Float64,
	}
	w.cracker = w.randomCracker()

	return w, nil
}

// NewWorldWithDefaults creates a world with the built-in configuration
func NewWorldWithDefaults() *World {
	w, _ := NewWorld(DefaultGameConfig())
	return w
}

// Config returns the world's configuration
func (w *World) Config() *GameConfig {
	return w.config
}

// Cracker returns a copy of the current cracker
func (w *World) Cracker() Cracker {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cracker
}

// Clamp keeps a position inside the world bounds
func (w *World) Clamp(pos Position) Position {
	return ClampToWorld(pos, w.config.WorldWidth, w.config.WorldHeight)
}

// NewPlayer returns the starting attributes for a client
func (w *World) NewPlayer(clientID string) ClientGameData {
	return NewClientGameData(clientID, w.config)
}

// TryCollect checks whether the player touches the cracker. On a hit the
// cracker is respawned and the collected cracker is returned with true.
func (w *World) TryCollect(player ClientGameData) (Cracker, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !Touches(player, w.cracker) {
		return Cracker{}, false
	}

	collected := w.cracker
	w.cracker = w.randomCracker()
	return collected, true
}

// Respawn moves the cracker to a new random position
func (w *World) Respawn() Cracker {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cracker = w.randomCracker()
	return w.cracker
}

// randomCracker must be called with mu held (or before the world is shared)
func (w *World) randomCracker() Cracker {
	r := w.config.Cracker.Radius
	return Cracker{
		XPos:   r + w.randFloat()*(w.config.WorldWidth-2*r),
		YPos:   r + w.randFloat()*(w.config.WorldHeight-2*r),
		Radius: r,
		Points: w.config.Cracker.Points,
	}
}
