package client

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlessPro/PongFocus/config"
	"github.com/BlessPro/PongFocus/game"
	"github.com/BlessPro/PongFocus/handlers"
	"github.com/BlessPro/PongFocus/models"
	"github.com/BlessPro/PongFocus/rooms"
	"github.com/BlessPro/PongFocus/session"
)

func startRelay(t *testing.T) string {
	t.Helper()
	h := handlers.New(&config.Config{}, rooms.NewRegistry(), nil)
	srv := httptest.NewServer(h.NewRouter())
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

type events struct {
	peerJoined  chan string
	peerLeft    chan struct{}
	started     chan string
	states      chan models.GameSnapshot
	leaderboard chan map[string]int
	errs        chan string
}

func newEvents() *events {
	return &events{
		peerJoined:  make(chan string, 8),
		peerLeft:    make(chan struct{}, 8),
		started:     make(chan string, 8),
		states:      make(chan models.GameSnapshot, 256),
		leaderboard: make(chan map[string]int, 8),
		errs:        make(chan string, 8),
	}
}

func (e *events) callbacks() Callbacks {
	return Callbacks{
		OnPeerJoined: func(name string) { e.peerJoined <- name },
		OnPeerLeft:   func() { e.peerLeft <- struct{}{} },
		OnStart: func(role string, _ models.StartNames) {
			select {
			case e.started <- role:
			default:
			}
		},
		OnState: func(snap models.GameSnapshot) {
			select {
			case e.states <- snap:
			default:
			}
		},
		OnLeaderboard: func(table map[string]int) { e.leaderboard <- table },
		OnError:       func(msg string) { e.errs <- msg },
	}
}

func waitState(t *testing.T, ch chan models.GameSnapshot, cond func(models.GameSnapshot) bool, what string) models.GameSnapshot {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case snap := <-ch:
			if cond(snap) {
				return snap
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", what)
		}
	}
}

func pairUp(t *testing.T, url string) (*Client, *Client, *events, *events) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hostEv := newEvents()
	host, err := Dial(url, Options{Name: "Alice", TickRate: 240}, hostEv.callbacks())
	require.NoError(t, err)
	t.Cleanup(func() { host.Close() })

	guestEv := newEvents()
	guest, err := Dial(url, Options{Name: "Bob"}, guestEv.callbacks())
	require.NoError(t, err)
	t.Cleanup(func() { guest.Close() })

	code, err := host.CreateRoom(ctx, "")
	require.NoError(t, err)
	require.Len(t, code, 6)
	require.Equal(t, session.HostInLobby, host.State())

	// Codes are case-normalized server-side.
	require.NoError(t, guest.JoinRoom(ctx, strings.ToLower(code)))
	require.Equal(t, session.GuestInLobby, guest.State())

	select {
	case name := <-hostEv.peerJoined:
		require.Equal(t, "Bob", name)
	case <-time.After(5 * time.Second):
		t.Fatal("host never saw the guest join")
	}

	return host, guest, hostEv, guestEv
}

func startMatch(t *testing.T, host, guest *Client, hostEv, guestEv *events) {
	t.Helper()
	require.NoError(t, host.Ready())
	require.NoError(t, guest.Ready())

	select {
	case role := <-hostEv.started:
		assert.Equal(t, models.RoleHost, role)
	case <-time.After(5 * time.Second):
		t.Fatal("host never started the match")
	}
	select {
	case role := <-guestEv.started:
		assert.Equal(t, models.RoleGuest, role)
	case <-time.After(5 * time.Second):
		t.Fatal("guest never received the start announcement")
	}
}

func TestClient_LobbyAndMatchStart(t *testing.T) {
	url := startRelay(t)
	host, guest, hostEv, guestEv := pairUp(t, url)
	startMatch(t, host, guest, hostEv, guestEv)

	assert.Equal(t, session.Playing, host.State())
	assert.Equal(t, session.Playing, guest.State())

	// The opening serve is pending; snapshots stream to the guest anyway.
	snap := waitState(t, guestEv.states, func(s models.GameSnapshot) bool { return s.WaitingForServe }, "opening snapshot")
	assert.Zero(t, snap.BallVX)
	assert.Contains(t, []int{-1, 1}, snap.PendingServeDirection)
}

func TestClient_GuestServeAndInputHonored(t *testing.T) {
	url := startRelay(t)
	host, guest, hostEv, guestEv := pairUp(t, url)
	startMatch(t, host, guest, hostEv, guestEv)

	// The guest's serve request launches the ball on the host.
	require.NoError(t, guest.Serve())
	waitState(t, guestEv.states, func(s models.GameSnapshot) bool {
		return !s.WaitingForServe && s.BallVX != 0
	}, "serve to launch the ball")

	// Held guest input moves the right paddle at the host's next ticks.
	require.NoError(t, guest.SetInput(false, true))
	start := (game.FieldHeight - game.PaddleHeight) / 2
	waitState(t, guestEv.states, func(s models.GameSnapshot) bool {
		return s.AIY > start
	}, "guest input to move its paddle")
}

func TestClient_PauseToggleIsBindingOnHostOnly(t *testing.T) {
	url := startRelay(t)
	host, guest, hostEv, guestEv := pairUp(t, url)
	startMatch(t, host, guest, hostEv, guestEv)

	// A guest's toggle is only a request; the host's loop makes it binding
	// and re-broadcasts the flag.
	require.NoError(t, guest.TogglePause())
	waitState(t, guestEv.states, func(s models.GameSnapshot) bool { return s.Paused }, "pause to propagate")

	require.NoError(t, host.TogglePause())
	waitState(t, guestEv.states, func(s models.GameSnapshot) bool { return !s.Paused }, "unpause to propagate")
}

func TestClient_GuestViewIsOverwrittenNotMerged(t *testing.T) {
	url := startRelay(t)
	host, guest, hostEv, guestEv := pairUp(t, url)
	startMatch(t, host, guest, hostEv, guestEv)

	require.NoError(t, guest.Serve())
	waitState(t, guestEv.states, func(s models.GameSnapshot) bool { return !s.WaitingForServe }, "rally to begin")

	// Freeze the match so the replicated state stops changing, then the
	// guest's view must equal the last snapshot field for field.
	require.NoError(t, host.TogglePause())
	snap := waitState(t, guestEv.states, func(s models.GameSnapshot) bool { return s.Paused }, "pause to freeze the state")
	assert.Eventually(t, func() bool {
		return guest.View() == snap
	}, 2*time.Second, 10*time.Millisecond, "guest view must converge to the frozen snapshot")
}

func TestClient_GuestDisconnectPausesHost(t *testing.T) {
	url := startRelay(t)
	host, guest, hostEv, guestEv := pairUp(t, url)
	startMatch(t, host, guest, hostEv, guestEv)

	require.NoError(t, guest.Serve())
	waitState(t, hostEv.states, func(s models.GameSnapshot) bool { return !s.WaitingForServe }, "rally to begin")

	guest.Close()

	select {
	case <-hostEv.peerLeft:
	case <-time.After(5 * time.Second):
		t.Fatal("host never learned of the guest's departure")
	}

	assert.Equal(t, session.PausedAwaitingPeer, host.State())
	assert.Eventually(t, func() bool {
		loop := host.currentLoop()
		if loop == nil {
			return false
		}
		snap := loop.Snapshot()
		return snap.Paused && snap.WaitingForServe
	}, 2*time.Second, 10*time.Millisecond, "host match must park paused and serve-pending")
}

func TestClient_HostDisconnectClosesGuest(t *testing.T) {
	url := startRelay(t)
	host, guest, hostEv, guestEv := pairUp(t, url)
	startMatch(t, host, guest, hostEv, guestEv)

	host.Close()

	select {
	case <-guestEv.peerLeft:
	case <-time.After(5 * time.Second):
		t.Fatal("guest never learned of the host's departure")
	}

	select {
	case msg := <-guestEv.errs:
		assert.Equal(t, "Host left the room", msg)
	case <-time.After(5 * time.Second):
		t.Fatal("guest never received the forced-close error")
	}

	select {
	case <-guest.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("guest transport should close after the room is destroyed")
	}
}

func TestClient_CreateRoomExplicitCodeConflict(t *testing.T) {
	url := startRelay(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first, err := Dial(url, Options{Name: "Alice"}, Callbacks{})
	require.NoError(t, err)
	t.Cleanup(func() { first.Close() })
	_, err = first.CreateRoom(ctx, "AB12")
	require.NoError(t, err)

	second, err := Dial(url, Options{Name: "Mallory"}, Callbacks{})
	require.NoError(t, err)
	t.Cleanup(func() { second.Close() })

	_, err = second.CreateRoom(ctx, "ab12")
	require.Error(t, err)
	assert.Equal(t, "Room already exists", err.Error())
	assert.Equal(t, session.Unassigned, second.State())
}

func TestLeaderboard_RecordsAndCopies(t *testing.T) {
	lb := NewLeaderboard()
	lb.RecordWin("Alice")
	lb.RecordWin("Alice")
	lb.RecordWin("Bob")
	lb.RecordWin("")

	table := lb.Table()
	assert.Equal(t, map[string]int{"Alice": 2, "Bob": 1}, table)

	// Mutating the copy must not leak back.
	table["Alice"] = 99
	assert.Equal(t, 2, lb.Table()["Alice"])
}
