package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/quackers-game/game/engine"
	"github.com/wricardo/quackers-game/game/protocol"
	"github.com/wricardo/quackers-game/game/session"
	"github.com/wricardo/quackers-game/transport/outbox"
)

type readResult struct {
	messageType int
	data        []byte
	err         error
}

// fakeConn is an in-memory Conn driven by the test
type fakeConn struct {
	reads chan readResult

	mu       sync.Mutex
	written  []protocol.Frame
	writeErr error
	wrote    chan struct{}

	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		reads:  make(chan readResult, 16),
		wrote:  make(chan struct{}, 64),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case r := <-c.reads:
		return r.messageType, r.data, r.err
	case <-c.closed:
		return 0, nil, errors.New("use of closed network connection")
	}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeErr != nil {
		return c.writeErr
	}
	if messageType == websocket.TextMessage || messageType == websocket.BinaryMessage {
		c.written = append(c.written, protocol.Frame{Type: messageType, Data: data})
		select {
		case c.wrote <- struct{}{}:
		default:
		}
	}
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) sendText(s string) {
	c.reads <- readResult{messageType: websocket.TextMessage, data: []byte(s)}
}

func (c *fakeConn) closeGracefully() {
	c.reads <- readResult{err: &websocket.CloseError{Code: websocket.CloseNormalClosure}}
}

func (c *fakeConn) fail(err error) {
	c.reads <- readResult{err: err}
}

func (c *fakeConn) frames() []protocol.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]protocol.Frame(nil), c.written...)
}

// waitFrames waits until at least n data frames were written
func (c *fakeConn) waitFrames(t *testing.T, n int) []protocol.Frame {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		if f := c.frames(); len(f) >= n {
			return f
		}
		select {
		case <-c.wrote:
		case <-deadline:
			t.Fatalf("Expected %d frames, got %d", n, len(c.frames()))
		}
	}
}

func (c *fakeConn) waitClosed(t *testing.T) {
	t.Helper()
	select {
	case <-c.closed:
	case <-time.After(time.Second):
		t.Fatal("Connection was not closed")
	}
}

type stateEvent struct {
	clientID string
	state    State
}

// testHub builds a hub with fresh tables and a channel of lifecycle events
func testHub(handler MessageHandler) (*Hub, chan stateEvent) {
	events := make(chan stateEvent, 256)
	opts := Options{
		OnStateChange: func(id string, s State) { events <- stateEvent{id, s} },
	}
	hub := NewHub(session.NewRegistry(), session.NewGameTable(), engine.NewWorldWithDefaults(), handler, opts)
	return hub, events
}

func waitState(t *testing.T, events chan stateEvent, state State) string {
	t.Helper()
	for {
		select {
		case e := <-events:
			if e.state == state {
				return e.clientID
			}
		case <-time.After(time.Second):
			t.Fatalf("Timed out waiting for state %s", state)
		}
	}
}

// serve starts a connection and returns its client ID once it is active
func serve(t *testing.T, hub *Hub, events chan stateEvent, conn *fakeConn) string {
	t.Helper()
	go hub.Serve(context.Background(), conn)
	return waitState(t, events, StateActive)
}

func decodeNotice(t *testing.T, f protocol.Frame) string {
	t.Helper()
	var env struct {
		ActionType string                        `json:"action_type"`
		Data       protocol.UserDisconnectedData `json:"data"`
	}
	if err := json.Unmarshal(f.Data, &env); err != nil {
		t.Fatalf("Failed to unmarshal frame %q: %v", f.Data, err)
	}
	if env.ActionType != string(protocol.UserDisconnected) {
		t.Fatalf("Expected UserDisconnected, got %s", env.ActionType)
	}
	return env.Data.DisconnectedPlayerUUID
}

func TestNewHub(t *testing.T) {
	hub, _ := testHub(nil)

	if hub.Clients() == nil || hub.Players() == nil || hub.World() == nil {
		t.Fatal("Hub accessors returned nil")
	}
	if hub.newClientID == nil {
		t.Error("Hub should have an ID generator")
	}
}

func TestNewHubNilWorldUsesDefaults(t *testing.T) {
	hub := NewHub(session.NewRegistry(), session.NewGameTable(), nil, nil, Options{})

	if hub.World() == nil {
		t.Fatal("Expected a default world")
	}
	if got := hub.World().Config().Name; got != engine.DefaultGameConfig().Name {
		t.Errorf("Expected built-in config, got %s", got)
	}
}

func TestLifecyclePanicIsContained(t *testing.T) {
	opts := Options{
		OnStateChange: func(id string, s State) {
			if s == StateActive {
				panic("observer failed")
			}
		},
	}
	hub := NewHub(session.NewRegistry(), session.NewGameTable(), engine.NewWorldWithDefaults(), nil, opts)

	observer := outbox.New()
	hub.Clients().Insert(&session.ClientConnection{ClientID: "observer", Sender: observer})

	conn := newFakeConn()
	hub.Serve(context.Background(), conn)

	if hub.Clients().Count() != 1 || hub.Players().Count() != 0 {
		t.Errorf("Expected only the observer to remain, got %d clients and %d players",
			hub.Clients().Count(), hub.Players().Count())
	}
	conn.waitClosed(t)

	if observer.Len() != 0 {
		t.Errorf("A failed connection should not be announced, observer has %d frames", observer.Len())
	}
}

func TestAdmissionPopulatesBothTables(t *testing.T) {
	hub, events := testHub(nil)
	conn := newFakeConn()

	id := serve(t, hub, events, conn)

	if _, ok := hub.Clients().Get(id); !ok {
		t.Error("Client should be in the registry once active")
	}
	data, ok := hub.Players().Get(id)
	if !ok {
		t.Fatal("Client should be in the game table once active")
	}
	if data.FriendlyName != engine.DefaultFriendlyName || data.CrackerCount != 0 {
		t.Errorf("Unexpected initial game data: %+v", data)
	}
	if hub.TotalAdmitted() != 1 {
		t.Errorf("Expected 1 admitted connection, got %d", hub.TotalAdmitted())
	}

	conn.closeGracefully()
	waitState(t, events, StateRetired)
}

func TestGracefulCloseBroadcastsDisconnect(t *testing.T) {
	hub, events := testHub(nil)
	ids := []string{"c1", "c2"}
	var next atomic.Int32
	hub.newClientID = func() string { return ids[next.Add(1)-1] }

	conn1, conn2 := newFakeConn(), newFakeConn()
	serve(t, hub, events, conn1)
	serve(t, hub, events, conn2)

	if hub.Clients().Count() != 2 || hub.Players().Count() != 2 {
		t.Fatalf("Expected 2 entries in each table, got %d/%d", hub.Clients().Count(), hub.Players().Count())
	}

	conn1.closeGracefully()
	if id := waitState(t, events, StateRetired); id != "c1" {
		t.Fatalf("Expected c1 to retire, got %s", id)
	}

	if hub.Clients().Count() != 1 || hub.Players().Count() != 1 {
		t.Errorf("Expected 1 entry in each table, got %d/%d", hub.Clients().Count(), hub.Players().Count())
	}
	if _, ok := hub.Players().Get("c2"); !ok {
		t.Error("c2 should remain")
	}

	frames := conn2.waitFrames(t, 1)
	if got := decodeNotice(t, frames[0]); got != "c1" {
		t.Errorf("Expected notice for c1, got %s", got)
	}

	// Give the relay a moment to write anything unexpected
	time.Sleep(20 * time.Millisecond)
	if n := len(conn2.frames()); n != 1 {
		t.Errorf("Expected exactly one notice, got %d frames", n)
	}

	conn1.waitClosed(t)
	if len(conn1.frames()) != 0 {
		t.Error("Departing client must not receive its own notice")
	}
}

func TestTransportErrorDoesNotBroadcast(t *testing.T) {
	var calls atomic.Int32
	handler := MessageHandlerFunc(func(ctx context.Context, clientID string, frame protocol.Frame,
		clients *session.Registry, players *session.GameTable, world *engine.World) error {
		calls.Add(1)
		return nil
	})
	hub, events := testHub(handler)

	observer := newFakeConn()
	observerID := serve(t, hub, events, observer)

	conn := newFakeConn()
	id := serve(t, hub, events, conn)

	conn.sendText(`{"action_type":"Quack"}`)
	conn.fail(errors.New("connection reset by peer"))

	if retired := waitState(t, events, StateRetired); retired != id {
		t.Fatalf("Expected %s to retire, got %s", id, retired)
	}

	if calls.Load() != 1 {
		t.Errorf("Expected handler to run once, ran %d times", calls.Load())
	}
	if _, ok := hub.Clients().Get(id); ok {
		t.Error("Errored client should be removed from the registry")
	}
	if _, ok := hub.Players().Get(id); ok {
		t.Error("Errored client should be removed from the game table")
	}

	time.Sleep(20 * time.Millisecond)
	if n := len(observer.frames()); n != 0 {
		t.Errorf("No notice expected after a transport error, observer got %d frames", n)
	}

	observer.closeGracefully()
	if retired := waitState(t, events, StateRetired); retired != observerID {
		t.Fatalf("Expected observer to retire, got %s", retired)
	}
	if hub.Clients().Count() != 0 || hub.Players().Count() != 0 {
		t.Error("Tables should end empty")
	}
}

func TestEOFIsCleanClose(t *testing.T) {
	hub, events := testHub(nil)

	observer := newFakeConn()
	serve(t, hub, events, observer)

	conn := newFakeConn()
	id := serve(t, hub, events, conn)
	conn.fail(io.EOF)
	waitState(t, events, StateRetired)

	frames := observer.waitFrames(t, 1)
	if got := decodeNotice(t, frames[0]); got != id {
		t.Errorf("Expected notice for %s, got %s", id, got)
	}
}

func TestConcurrentAdmissions(t *testing.T) {
	hub, events := testHub(nil)
	const n = 25

	conns := make([]*fakeConn, n)
	for i := range conns {
		conns[i] = newFakeConn()
		go hub.Serve(context.Background(), conns[i])
	}

	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		seen[waitState(t, events, StateActive)] = true
	}
	if len(seen) != n {
		t.Errorf("Expected %d distinct ids, got %d", n, len(seen))
	}
	if hub.Clients().Count() != n || hub.Players().Count() != n {
		t.Errorf("Expected %d entries in each table, got %d/%d", n, hub.Clients().Count(), hub.Players().Count())
	}
	for id := range seen {
		if _, ok := hub.Players().Get(id); !ok {
			t.Errorf("Missing game data for %s", id)
		}
	}

	for _, c := range conns {
		c.closeGracefully()
	}
	for i := 0; i < n; i++ {
		waitState(t, events, StateRetired)
	}

	if hub.Clients().Count() != 0 || hub.Players().Count() != 0 {
		t.Errorf("Tables should be empty, got %d/%d", hub.Clients().Count(), hub.Players().Count())
	}
}

func TestHandlerFailureKeepsConnection(t *testing.T) {
	var calls atomic.Int32
	handler := MessageHandlerFunc(func(ctx context.Context, clientID string, frame protocol.Frame,
		clients *session.Registry, players *session.GameTable, world *engine.World) error {
		switch calls.Add(1) {
		case 1:
			panic("cannot parse frame")
		case 2:
			return errors.New("unknown action")
		}
		return clients.SendTo(clientID, protocol.Text([]byte("ok")))
	})
	hub, events := testHub(handler)

	conn := newFakeConn()
	serve(t, hub, events, conn)

	conn.sendText("garbage")
	conn.sendText("still garbage")
	conn.sendText(`{"action_type":"Quack"}`)

	frames := conn.waitFrames(t, 1)
	if string(frames[0].Data) != "ok" {
		t.Errorf("Expected reply after handler failures, got %q", frames[0].Data)
	}
	if calls.Load() != 3 {
		t.Errorf("Expected 3 handler calls, got %d", calls.Load())
	}

	conn.closeGracefully()
	waitState(t, events, StateRetired)
}

func TestRelayPreservesOrder(t *testing.T) {
	hub, events := testHub(nil)
	conn := newFakeConn()
	id := serve(t, hub, events, conn)

	for _, m := range []string{"m1", "m2", "m3"} {
		if err := hub.Clients().SendTo(id, protocol.Text([]byte(m))); err != nil {
			t.Fatalf("SendTo failed: %v", err)
		}
	}

	frames := conn.waitFrames(t, 3)
	for i, want := range []string{"m1", "m2", "m3"} {
		if string(frames[i].Data) != want {
			t.Errorf("Frame %d: expected %s, got %s", i, want, frames[i].Data)
		}
	}

	conn.closeGracefully()
	waitState(t, events, StateRetired)
}

func TestRelayWriteFailureIsIsolated(t *testing.T) {
	hub, events := testHub(nil)

	healthy := newFakeConn()
	healthyID := serve(t, hub, events, healthy)

	broken := newFakeConn()
	broken.writeErr = errors.New("broken pipe")
	brokenID := serve(t, hub, events, broken)

	hub.Clients().Broadcast(protocol.Text([]byte("tick")), "")

	// The failed write closes the broken transport, which ends its supervisor
	broken.waitClosed(t)
	if retired := waitState(t, events, StateRetired); retired != brokenID {
		t.Fatalf("Expected %s to retire, got %s", brokenID, retired)
	}

	frames := healthy.waitFrames(t, 1)
	if string(frames[0].Data) != "tick" {
		t.Errorf("Healthy client should get the broadcast, got %q", frames[0].Data)
	}

	time.Sleep(20 * time.Millisecond)
	if n := len(healthy.frames()); n != 1 {
		t.Errorf("Transport failure must not broadcast a notice, healthy got %d frames", n)
	}
	if _, ok := hub.Clients().Get(healthyID); !ok {
		t.Error("Healthy client should stay registered")
	}

	healthy.closeGracefully()
	waitState(t, events, StateRetired)
}

func TestBroadcastDisconnectSkipsClosedRecipient(t *testing.T) {
	hub, _ := testHub(nil)

	queues := make(map[string]*outbox.Queue)
	for _, id := range []string{"b", "c"} {
		queues[id] = outbox.New()
		hub.Clients().Insert(&session.ClientConnection{ClientID: id, Sender: queues[id]})
	}
	queues["b"].Close()

	if notified := hub.BroadcastDisconnect("a"); notified != 1 {
		t.Errorf("Expected 1 notified client, got %d", notified)
	}

	frames, _ := queues["c"].Drain()
	if len(frames) != 1 {
		t.Fatalf("Expected c to receive one notice, got %d", len(frames))
	}
	if got := decodeNotice(t, frames[0]); got != "a" {
		t.Errorf("Expected notice for a, got %s", got)
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateAdmitted:    "admitted",
		StateActive:      "active",
		StateTerminating: "terminating",
		StateRetired:     "retired",
		State(9):         "state(9)",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("%d.String() = %s, want %s", int(s), s.String(), want)
		}
	}
}

func TestLifecycleOrder(t *testing.T) {
	hub, events := testHub(nil)
	conn := newFakeConn()

	go hub.Serve(context.Background(), conn)
	conn.closeGracefully()

	var got []string
	for len(got) < 4 {
		select {
		case e := <-events:
			got = append(got, e.state.String())
		case <-time.After(time.Second):
			t.Fatalf("Timed out, states so far: %v", got)
		}
	}

	want := fmt.Sprint([]string{"admitted", "active", "terminating", "retired"})
	if fmt.Sprint(got) != want {
		t.Errorf("Expected %s, got %v", want, got)
	}
}
