// Package engine provides the game rules shared by every connection of the
// Quackers game.
//
// The engine package implements:
//   - Per-client game attributes (ClientGameData) and their defaults
//   - The shared World: bounds and the collectible cracker
//   - Circle collision between players and the cracker
//   - Configuration defaults and validation
//
// Core Types:
//
// ClientGameData is the record kept for each connected client. World is the
// game-wide context handed to the message handler alongside the client
// tables. GameConfig tunes spawn position, sizes and defaults and is loaded
// from JSON files by the config package.
//
// Usage:
//
//	world := engine.NewWorldWithDefaults()
//	player := world.NewPlayer(clientID)
//
//	pos := world.Clamp(engine.Position{X: 2000, Y: -5})
//	player.XPos, player.YPos = pos.X, pos.Y
//
//	if cracker, ok := world.TryCollect(player); ok {
//		player.CrackerCount += cracker.Points
//	}
//
// Concurrency:
//
// World guards the cracker with its own lock. ClientGameData values are plain
// structs; the session.GameTable owns their synchronization.
package engine
