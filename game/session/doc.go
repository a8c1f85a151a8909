// Package session provides the shared per-client tables of the Quackers game.
//
// The session package implements:
//   - Client identifier generation
//   - The client Registry: client ID to outbound queue
//   - The GameTable: client ID to game attributes
//   - Fan-out of a frame to every registered client
//
// Concurrency:
//
// Registry and GameTable each carry their own lock and no operation holds
// both. Admission and teardown therefore touch the two tables one after the
// other, and readers may briefly see a client in one table but not the
// other. Every operation is individually atomic; Remove of an unknown ID is
// a no-op so teardown can safely run more than once.
//
// Broadcast snapshots the registry under its read lock and enqueues outside
// of it. Enqueueing never blocks because outbound queues are unbounded.
//
// Usage:
//
//	clients := session.NewRegistry()
//	players := session.NewGameTable()
//
//	id := session.NewClientID()
//	clients.Insert(&session.ClientConnection{ClientID: id, Sender: outbox.New()})
//	players.Insert(world.NewPlayer(id))
//
//	clients.Broadcast(frame, id) // everyone but id
package session
