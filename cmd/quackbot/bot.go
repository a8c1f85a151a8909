package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/quackers-game/game/engine"
	"github.com/wricardo/quackers-game/game/protocol"
	"github.com/wricardo/quackers-game/game/service"
)

var ErrNoInitialState = errors.New("no initial game state received")

const (
	joinTimeout  = 5 * time.Second
	closeTimeout = time.Second
)

// Bot is one automated player connected over WebSocket. It always swims
// straight at the last cracker position it heard about.
type Bot struct {
	name  string
	conn  *websocket.Conn
	speed float64

	mu        sync.Mutex
	clientID  string
	pos       engine.Position
	cracker   engine.Cracker
	collected int
	departed  int

	done chan struct{}
}

// Dial connects a bot, joins the game with profile and waits for the
// initial game state.
func Dial(ctx context.Context, url string, profile service.JoinGameData, speed float64) (*Bot, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	b := &Bot{
		name:  profile.FriendlyName,
		conn:  conn,
		speed: speed,
		done:  make(chan struct{}),
	}

	if err := b.send(service.JoinGame, profile); err != nil {
		conn.Close()
		return nil, fmt.Errorf("join: %w", err)
	}

	if err := b.awaitInitialState(); err != nil {
		conn.Close()
		return nil, err
	}

	go b.readLoop()
	return b, nil
}

func (b *Bot) send(action protocol.ActionType, data any) error {
	frame := protocol.Encode(protocol.Envelope{ActionType: action, Data: data})
	return b.conn.WriteMessage(frame.Type, frame.Data)
}

func (b *Bot) awaitInitialState() error {
	b.conn.SetReadDeadline(time.Now().Add(joinTimeout))
	defer b.conn.SetReadDeadline(time.Time{})

	for {
		messageType, data, err := b.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNoInitialState, err)
		}

		in, err := protocol.Decode(protocol.Frame{Type: messageType, Data: data})
		if err != nil || in.ActionType != service.InitialGameState {
			continue
		}

		var state service.InitialGameStateData
		if err := json.Unmarshal(in.Data, &state); err != nil {
			return fmt.Errorf("%w: %v", ErrNoInitialState, err)
		}

		b.mu.Lock()
		b.clientID = state.ClientID
		b.cracker = state.Cracker
		for _, p := range state.Players {
			if p.ClientID == state.ClientID {
				b.pos = p.Position()
			}
		}
		b.mu.Unlock()
		return nil
	}
}

func (b *Bot) readLoop() {
	defer close(b.done)

	for {
		messageType, data, err := b.conn.ReadMessage()
		if err != nil {
			return
		}

		in, err := protocol.Decode(protocol.Frame{Type: messageType, Data: data})
		if err != nil {
			continue
		}
		b.apply(in)
	}
}

func (b *Bot) apply(in *protocol.Inbound) {
	switch in.ActionType {
	case service.CrackerUpdate:
		var update service.CrackerUpdateData
		if json.Unmarshal(in.Data, &update) != nil {
			return
		}
		b.mu.Lock()
		b.cracker = update.Cracker
		if update.CollectedBy == b.clientID {
			b.collected = update.CrackerCount
		}
		b.mu.Unlock()

	case protocol.UserDisconnected:
		b.mu.Lock()
		b.departed++
		b.mu.Unlock()
	}
}

// Step moves the bot one stride towards the cracker and reports the new
// position to the server.
func (b *Bot) Step() error {
	b.mu.Lock()
	b.pos = stepToward(b.pos, b.cracker.Position(), b.speed)
	pos := b.pos
	b.mu.Unlock()

	return b.send(service.PlayerMove, service.PlayerMoveData{XPos: pos.X, YPos: pos.Y})
}

// Quack makes the bot quack
func (b *Bot) Quack() error {
	return b.send(service.Quack, nil)
}

// Close leaves the game with a normal close handshake
func (b *Bot) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
	b.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeTimeout))

	select {
	case <-b.done:
	case <-time.After(closeTimeout):
	}
	return b.conn.Close()
}

// Name returns the bot's display name
func (b *Bot) Name() string {
	return b.name
}

// ClientID returns the id the server assigned
func (b *Bot) ClientID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.clientID
}

// Collected returns how many cracker points the bot has
func (b *Bot) Collected() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.collected
}

// Departed returns how many disconnect notices the bot has seen
func (b *Bot) Departed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.departed
}

// stepToward moves from towards to by at most speed
func stepToward(from, to engine.Position, speed float64) engine.Position {
	d := engine.Distance(from, to)
	if d <= speed || d == 0 {
		return to
	}
	ratio := speed / d
	return engine.Position{
		X: from.X + (to.X-from.X)*ratio,
		Y: from.Y + (to.Y-from.Y)*ratio,
	}
}
