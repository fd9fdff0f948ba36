// Package client implements the peer side of the relay protocol: the lobby
// flow for both roles, the authoritative game loop on the host, and
// snapshot-overwrite rendering state on the guest.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/BlessPro/PongFocus/game"
	"github.com/BlessPro/PongFocus/models"
	"github.com/BlessPro/PongFocus/session"
)

// Callbacks are invoked from the client's read goroutine. All optional.
type Callbacks struct {
	OnState       func(models.GameSnapshot)
	OnPeerJoined  func(name string)
	OnPeerLeft    func()
	OnStart       func(role string, names models.StartNames)
	OnLeaderboard func(map[string]int)
	OnError       func(message string)
	OnGameOver    func(models.GameSnapshot)
	OnEvents      func(game.Events)
}

type Options struct {
	// Name is the display label sent with create/join requests.
	Name string
	// Theme and Level seed the host's authoritative state.
	Theme string
	Level int
	// TickRate overrides the default display-rate tick, mainly for tests.
	TickRate int
}

// Client is one peer's connection to the relay.
type Client struct {
	ws      *websocket.Conn
	writeMu sync.Mutex

	opts Options
	cb   Callbacks

	mu        sync.Mutex
	machine   *session.Machine
	roomCode  string
	hostName  string
	guestName string
	pending   chan lobbyReply
	loop      *game.Loop
	loopStop  context.CancelFunc
	view      *game.State
	wins      *Leaderboard
	rng       *rand.Rand

	done     chan struct{}
	doneOnce sync.Once
}

type lobbyReply struct {
	code     string
	hostName string
	err      error
}

// Dial connects to the relay and starts the read loop.
func Dial(url string, opts Options, cb Callbacks) (*Client, error) {
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	if opts.Theme == "" {
		opts.Theme = game.DefaultTheme
	}
	if opts.Level < 1 {
		opts.Level = 1
	}
	c := &Client{
		ws:      ws,
		opts:    opts,
		cb:      cb,
		machine: session.NewMachine(),
		view:    &game.State{},
		wins:    NewLeaderboard(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Close tears the session down. There is no reconnect: recovery is a fresh
// Dial and lobby flow.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.loopStop != nil {
		c.loopStop()
		c.loopStop = nil
	}
	c.machine.Apply(session.EvClosed)
	c.mu.Unlock()
	c.doneOnce.Do(func() { close(c.done) })
	return c.ws.Close()
}

// Done is closed when the transport has closed.
func (c *Client) Done() <-chan struct{} { return c.done }

// State returns the session machine's current state.
func (c *Client) State() session.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.State()
}

// RoomCode returns the joined room's code, or "".
func (c *Client) RoomCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomCode
}

// CreateRoom requests a room, optionally with an explicit code, and waits for
// the relay's reply. On success the client is the room's host.
func (c *Client) CreateRoom(ctx context.Context, requestedCode string) (string, error) {
	reply, err := c.lobbyRequest(ctx, models.CreateRoomMessage{
		Type:     models.TypeCreateRoom,
		Name:     c.opts.Name,
		RoomCode: requestedCode,
	})
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.machine.Apply(session.EvRoomCreated)
	c.roomCode = reply.code
	c.hostName = reply.hostName
	c.mu.Unlock()
	return reply.code, nil
}

// JoinRoom joins an existing room as guest. The code is case-normalized by
// the relay, so "ab12" joins "AB12".
func (c *Client) JoinRoom(ctx context.Context, code string) error {
	reply, err := c.lobbyRequest(ctx, models.JoinRoomMessage{
		Type:     models.TypeJoinRoom,
		Name:     c.opts.Name,
		RoomCode: code,
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.machine.Apply(session.EvRoomJoined)
	c.roomCode = reply.code
	c.hostName = reply.hostName
	c.guestName = c.opts.Name
	c.mu.Unlock()
	return nil
}

func (c *Client) lobbyRequest(ctx context.Context, msg interface{}) (lobbyReply, error) {
	ch := make(chan lobbyReply, 1)
	c.mu.Lock()
	if c.pending != nil {
		c.mu.Unlock()
		return lobbyReply{}, errors.New("lobby request already in flight")
	}
	if c.machine.State() != session.Unassigned {
		c.mu.Unlock()
		return lobbyReply{}, errors.New("already in a room")
	}
	c.pending = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.pending = nil
		c.mu.Unlock()
	}()

	if err := c.writeJSON(msg); err != nil {
		return lobbyReply{}, err
	}

	select {
	case <-ctx.Done():
		return lobbyReply{}, ctx.Err()
	case <-c.done:
		return lobbyReply{}, errors.New("connection closed")
	case reply := <-ch:
		if reply.err != nil {
			return lobbyReply{}, reply.err
		}
		return reply, nil
	}
}

// Ready signals this peer's readiness. The host starts the match once it has
// seen both readiness signals.
func (c *Client) Ready() error {
	c.mu.Lock()
	c.machine.Apply(session.EvLocalReady)
	c.mu.Unlock()

	if err := c.writeJSON(models.ReadyMessage{Type: models.TypeReady}); err != nil {
		return err
	}
	c.maybeStart()
	return nil
}

func (c *Client) writeJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) readLoop() {
	defer func() {
		c.Close()
	}()
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("read error: %v", err)
			}
			return
		}
		c.handleMessage(raw)
	}
}

type inbound struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode"`
	Role     string `json:"role"`
	HostName string `json:"hostName"`
	Name     string `json:"name"`
	Message  string `json:"message"`
}

func (c *Client) handleMessage(raw []byte) {
	var msg inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}

	switch msg.Type {
	case models.TypeRoomCreated, models.TypeRoomJoined:
		c.deliverReply(lobbyReply{code: msg.RoomCode, hostName: msg.HostName})
	case models.TypeError:
		if !c.deliverReply(lobbyReply{err: errors.New(msg.Message)}) && c.cb.OnError != nil {
			c.cb.OnError(msg.Message)
		}
	case models.TypePeerJoined:
		c.mu.Lock()
		c.machine.Apply(session.EvPeerJoined)
		c.guestName = msg.Name
		c.mu.Unlock()
		if c.cb.OnPeerJoined != nil {
			c.cb.OnPeerJoined(msg.Name)
		}
	case models.TypeReady:
		c.mu.Lock()
		c.machine.Apply(session.EvPeerReady)
		c.mu.Unlock()
		c.maybeStart()
	case models.TypeStart:
		c.handleStart(raw)
	case models.TypeInput:
		c.handleRemoteInput(raw)
	case models.TypeServe:
		c.withLoop(func(l *game.Loop) { l.Serve() })
	case models.TypePauseToggle:
		c.withLoop(func(l *game.Loop) { l.TogglePause() })
	case models.TypeState:
		c.handleState(raw)
	case models.TypeLeaderboard:
		c.handleLeaderboard(raw)
	case models.TypePeerLeft:
		c.handlePeerLeft()
	}
}

func (c *Client) deliverReply(reply lobbyReply) bool {
	c.mu.Lock()
	ch := c.pending
	c.mu.Unlock()
	if ch == nil {
		return false
	}
	select {
	case ch <- reply:
		return true
	default:
		return false
	}
}

// handleStart runs on the guest: the host announced the match.
func (c *Client) handleStart(raw []byte) {
	var msg models.StartMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}
	c.mu.Lock()
	_, ok := c.machine.Apply(session.EvStart)
	c.mu.Unlock()
	if !ok {
		return
	}
	if c.cb.OnStart != nil {
		c.cb.OnStart(msg.Role, msg.Names)
	}
}

// handleState runs on the guest: overwrite the whole local view from the
// snapshot. Receiving the same snapshot twice leaves the view unchanged.
func (c *Client) handleState(raw []byte) {
	var msg models.StateMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}
	c.mu.Lock()
	c.view.Apply(msg.GameSnapshot)
	c.mu.Unlock()
	if c.cb.OnState != nil {
		c.cb.OnState(msg.GameSnapshot)
	}
}

func (c *Client) handleLeaderboard(raw []byte) {
	var msg models.LeaderboardMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}
	if c.cb.OnLeaderboard != nil {
		c.cb.OnLeaderboard(msg.Data)
	}
}

func (c *Client) handlePeerLeft() {
	c.mu.Lock()
	c.machine.Apply(session.EvPeerLeft)
	loop := c.loop
	stop := c.loopStop
	c.loopStop = nil
	c.mu.Unlock()

	if loop != nil {
		loop.PeerLost()
	}
	if stop != nil {
		stop()
	}
	if c.cb.OnPeerLeft != nil {
		c.cb.OnPeerLeft()
	}
}

// View returns the guest's last applied snapshot.
func (c *Client) View() models.GameSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.Snapshot()
}
