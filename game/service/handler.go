package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/wricardo/quackers-game/game/engine"
	"github.com/wricardo/quackers-game/game/protocol"
	"github.com/wricardo/quackers-game/game/session"
)

var ErrUnknownAction = errors.New("unknown action")

// Handler interprets inbound game messages and updates the shared state
type Handler struct{}

// NewHandler creates a message handler
func NewHandler() *Handler {
	return &Handler{}
}

// HandleInbound processes one frame sent by clientID. Non-text frames are
// ignored.
func (h *Handler) HandleInbound(ctx context.Context, clientID string, frame protocol.Frame,
	clients *session.Registry, players *session.GameTable, world *engine.World) error {
	if !frame.IsText() {
		return nil
	}

	in, err := protocol.Decode(frame)
	if err != nil {
		return err
	}

	switch in.ActionType {
	case JoinGame:
		var data JoinGameData
		if err := decodeData(in, &data); err != nil {
			return err
		}
		return h.join(clientID, data, clients, players, world)

	case PlayerMove:
		var data PlayerMoveData
		if err := decodeData(in, &data); err != nil {
			return err
		}
		return h.move(clientID, data, clients, players, world)

	case Quack:
		return h.quack(clientID, clients, players)

	default:
		return fmt.Errorf("%w: %s", ErrUnknownAction, in.ActionType)
	}
}

func (h *Handler) join(clientID string, data JoinGameData,
	clients *session.Registry, players *session.GameTable, world *engine.World) error {
	player, err := players.Update(clientID, func(p *engine.ClientGameData) {
		if name := sanitizeName(data.FriendlyName); name != "" {
			p.FriendlyName = name
		}
		if color := strings.TrimSpace(data.Color); color != "" {
			p.Color = color
		}
		if data.QuackPitch != 0 {
			p.QuackPitch = clampPitch(data.QuackPitch)
		}
	})
	if err != nil {
		return fmt.Errorf("join %s: %w", clientID, err)
	}

	snapshot := players.Snapshot()
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].ClientID < snapshot[j].ClientID })

	initial := protocol.Encode(protocol.Envelope{
		ActionType: InitialGameState,
		Data: InitialGameStateData{
			ClientID: clientID,
			Players:  snapshot,
			Cracker:  world.Cracker(),
		},
	})
	if err := clients.SendTo(clientID, initial); err != nil {
		return fmt.Errorf("send initial state to %s: %w", clientID, err)
	}

	clients.Broadcast(protocol.Encode(protocol.Envelope{
		ActionType: PlayerJoined,
		Data:       PlayerJoinedData{Player: player},
	}), clientID)

	return nil
}

func (h *Handler) move(clientID string, data PlayerMoveData,
	clients *session.Registry, players *session.GameTable, world *engine.World) error {
	pos := world.Clamp(engine.Position{X: data.XPos, Y: data.YPos})

	player, err := players.Update(clientID, func(p *engine.ClientGameData) {
		p.XPos, p.YPos = pos.X, pos.Y
	})
	if err != nil {
		return fmt.Errorf("move %s: %w", clientID, err)
	}

	clients.Broadcast(protocol.Encode(protocol.Envelope{
		ActionType: PlayerMoved,
		Data:       PlayerMovedData{ClientID: clientID, XPos: pos.X, YPos: pos.Y},
	}), clientID)

	collected, ok := world.TryCollect(player)
	if !ok {
		return nil
	}

	player, err = players.Update(clientID, func(p *engine.ClientGameData) {
		p.CrackerCount += collected.Points
	})
	if err != nil {
		// The client left between the move and the pickup
		return fmt.Errorf("collect cracker for %s: %w", clientID, err)
	}

	clients.Broadcast(protocol.Encode(protocol.Envelope{
		ActionType: CrackerUpdate,
		Data: CrackerUpdateData{
			Cracker:      world.Cracker(),
			CollectedBy:  clientID,
			CrackerCount: player.CrackerCount,
		},
	}), "")

	return nil
}

func (h *Handler) quack(clientID string, clients *session.Registry, players *session.GameTable) error {
	player, ok := players.Get(clientID)
	if !ok {
		return fmt.Errorf("quack %s: %w", clientID, session.ErrClientNotFound)
	}

	clients.Broadcast(protocol.Encode(protocol.Envelope{
		ActionType: PlayerQuacked,
		Data:       PlayerQuackedData{ClientID: clientID, QuackPitch: player.QuackPitch},
	}), clientID)

	return nil
}

func decodeData(in *protocol.Inbound, v any) error {
	if len(in.Data) == 0 || string(in.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(in.Data, v); err != nil {
		return fmt.Errorf("%w: %s payload: %v", protocol.ErrMalformedFrame, in.ActionType, err)
	}
	return nil
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if r := []rune(name); len(r) > engine.MaxNameLength {
		name = string(r[:engine.MaxNameLength])
	}
	return name
}

func clampPitch(p float64) float64 {
	if math.IsNaN(p) {
		return engine.DefaultQuackPitch
	}
	return math.Max(engine.MinQuackPitch, math.Min(engine.MaxQuackPitch, p))
}
