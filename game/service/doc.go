// Package service implements the game message handler of the Quackers game.
//
// Handler is plugged into the websocket hub and is called once per inbound
// frame with the sender's client ID and the shared tables. It understands
// three actions:
//
//	JoinGame   {"friendly_name", "color", "quack_pitch"}
//	PlayerMove {"x_pos", "y_pos"}
//	Quack      {}
//
// and answers with InitialGameState, PlayerJoined, PlayerMoved,
// PlayerQuacked and CrackerUpdate envelopes. Errors are returned to the hub,
// which logs them and keeps the connection open.
package service
