// Package websocket provides WebSocket transport for the Quackers game.
//
// The websocket package implements:
//   - Connection admission with a fresh client ID
//   - One supervisor goroutine and one relay goroutine per connection
//   - Forwarding of inbound frames to a MessageHandler
//   - Teardown of the shared tables when a stream ends
//   - Disconnect notices to the remaining clients
//
// Connection Lifecycle:
//
// Every connection moves through four states:
//
//  1. admitted: ID generated, outbound queue created, relay started,
//     registry and game table populated
//  2. active: frames are read and passed to the MessageHandler; handler
//     errors and panics are logged and the connection stays active
//  3. terminating: the stream closed or failed; the client is removed from
//     both tables and its outbound queue is closed
//  4. retired: after a clean close every other client receives a
//     UserDisconnected notice; after a transport error nothing is sent
//
// Message Protocol:
//
// Frames are JSON envelopes {"action_type": ..., "data": ...}. The hub only
// produces the disconnect notice:
//
//	{"action_type":"UserDisconnected","data":{"disconnected_player_uuid":"<id>"}}
//
// Concurrency:
//
// The relay is the only writer of a connection. Anyone holding the client's
// outbound queue may enqueue; frames reach the peer in enqueue order. A
// failing write stops that relay only. Panics in a supervisor or relay are
// recovered so one connection cannot take down the others.
//
// Usage:
//
//	hub := websocket.NewHub(clients, players, world, handler, websocket.DefaultOptions())
//	router.HandleFunc("/ws", hub.ServeWS)
package websocket
