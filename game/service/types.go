package service

import (
	"github.com/wricardo/quackers-game/game/engine"
	"github.com/wricardo/quackers-game/game/protocol"
)

// Actions sent by clients
const (
	JoinGame   protocol.ActionType = "JoinGame"
	PlayerMove protocol.ActionType = "PlayerMove"
	Quack      protocol.ActionType = "Quack"
)

// Actions sent to clients
const (
	InitialGameState protocol.ActionType = "InitialGameState"
	PlayerJoined     protocol.ActionType = "PlayerJoined"
	PlayerMoved      protocol.ActionType = "PlayerMoved"
	PlayerQuacked    protocol.ActionType = "PlayerQuacked"
	CrackerUpdate    protocol.ActionType = "CrackerUpdate"
)

// JoinGameData sets a client's display attributes. Empty fields keep the
// current value.
type JoinGameData struct {
	FriendlyName string  `json:"friendly_name"`
	Color        string  `json:"color"`
	QuackPitch   float64 `json:"quack_pitch"`
}

// PlayerMoveData is the position a client reports for itself
type PlayerMoveData struct {
	XPos float64 `json:"x_pos"`
	YPos float64 `json:"y_pos"`
}

// InitialGameStateData is sent to a client right after it joins
type InitialGameStateData struct {
	ClientID string                  `json:"client_id"`
	Players  []engine.ClientGameData `json:"players"`
	Cracker  engine.Cracker          `json:"cracker"`
}

// PlayerJoinedData announces a new player to the others
type PlayerJoinedData struct {
	Player engine.ClientGameData `json:"player"`
}

// PlayerMovedData announces a position change
type PlayerMovedData struct {
	ClientID string  `json:"client_id"`
	XPos     float64 `json:"x_pos"`
	YPos     float64 `json:"y_pos"`
}

// PlayerQuackedData announces a quack
type PlayerQuackedData struct {
	ClientID   string  `json:"client_id"`
	QuackPitch float64 `json:"quack_pitch"`
}

// CrackerUpdateData announces that a cracker was collected and respawned
type CrackerUpdateData struct {
	Cracker      engine.Cracker `json:"cracker"`
	CollectedBy  string         `json:"collected_by"`
	CrackerCount int            `json:"cracker_count"`
}
