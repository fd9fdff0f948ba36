// Package session defines the per-connection lifecycle shared by the relay's
// connection tracking and the client-side lobby flow. Transitions are pure
// functions of (state, event), so the machine is testable without a live
// transport.
package session

import "fmt"

type State int

const (
	Unassigned State = iota
	HostInLobby
	HostAwaitingReady
	GuestInLobby
	GuestAwaitingReady
	Playing
	PausedAwaitingPeer
	Closed
)

func (s State) String() string {
	switch s {
	case Unassigned:
		return "unassigned"
	case HostInLobby:
		return "host_in_lobby"
	case HostAwaitingReady:
		return "host_awaiting_ready"
	case GuestInLobby:
		return "guest_in_lobby"
	case GuestAwaitingReady:
		return "guest_awaiting_ready"
	case Playing:
		return "playing"
	case PausedAwaitingPeer:
		return "paused_awaiting_peer"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Event int

const (
	// EvRoomCreated and EvRoomJoined fire on a successful create_room /
	// join_room reply and assign the role exactly once.
	EvRoomCreated Event = iota
	EvRoomJoined
	// EvPeerJoined fires on the host when the guest occupies the room.
	EvPeerJoined
	// EvLocalReady and EvPeerReady are the two halves of the readiness
	// rendezvous. The host owns the start decision.
	EvLocalReady
	EvPeerReady
	// EvStart fires on the guest when the host announces match start.
	EvStart
	// EvPeerLeft fires on the surviving side of a disconnect. There is no
	// reconnection path; the only exit is EvClosed.
	EvPeerLeft
	// EvClosed fires when the transport closes, from any state.
	EvClosed
)

func (e Event) String() string {
	switch e {
	case EvRoomCreated:
		return "room_created"
	case EvRoomJoined:
		return "room_joined"
	case EvPeerJoined:
		return "peer_joined"
	case EvLocalReady:
		return "local_ready"
	case EvPeerReady:
		return "peer_ready"
	case EvStart:
		return "start"
	case EvPeerLeft:
		return "peer_left"
	case EvClosed:
		return "closed"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Machine tracks one connection's lifecycle plus the readiness flags that
// gate the host's start decision.
type Machine struct {
	state      State
	localReady bool
	peerReady  bool
}

func NewMachine() *Machine {
	return &Machine{state: Unassigned}
}

func (m *Machine) State() State { return m.state }

// Role reports "host", "guest" or "" for the current state.
func (m *Machine) Role() string {
	switch m.state {
	case HostInLobby, HostAwaitingReady:
		return "host"
	case GuestInLobby, GuestAwaitingReady:
		return "guest"
	default:
		return ""
	}
}

// CanStart reports whether the host has observed both its own readiness and
// the peer's. Only meaningful on the host side; the guest never starts.
func (m *Machine) CanStart() bool {
	return m.state == HostAwaitingReady && m.localReady && m.peerReady
}

// Apply dispatches one event and returns the resulting state. Illegal
// (state, event) pairs leave the machine unchanged and report ok=false;
// callers drop the triggering message, mirroring the relay's
// drop-malformed-silently policy.
func (m *Machine) Apply(ev Event) (State, bool) {
	if ev == EvClosed {
		m.state = Closed
		return m.state, true
	}

	next, ok := dispatch(m.state, ev)
	if !ok {
		return m.state, false
	}

	switch ev {
	case EvLocalReady:
		m.localReady = true
	case EvPeerReady:
		m.peerReady = true
	case EvPeerLeft:
		m.localReady = false
		m.peerReady = false
	}

	m.state = next
	return m.state, true
}

// dispatch is the transition table: (current state, event) -> next state.
func dispatch(s State, ev Event) (State, bool) {
	switch s {
	case Unassigned:
		switch ev {
		case EvRoomCreated:
			return HostInLobby, true
		case EvRoomJoined:
			return GuestInLobby, true
		}
	case HostInLobby:
		switch ev {
		case EvPeerJoined:
			return HostAwaitingReady, true
		case EvPeerLeft:
			return HostInLobby, true
		}
	case HostAwaitingReady:
		switch ev {
		case EvLocalReady, EvPeerReady:
			return HostAwaitingReady, true
		case EvStart:
			return Playing, true
		case EvPeerLeft:
			return HostInLobby, true
		}
	case GuestInLobby:
		switch ev {
		case EvLocalReady:
			return GuestAwaitingReady, true
		case EvPeerReady:
			return GuestInLobby, true
		case EvPeerLeft:
			return GuestInLobby, true
		}
	case GuestAwaitingReady:
		switch ev {
		case EvPeerReady:
			return GuestAwaitingReady, true
		case EvStart:
			return Playing, true
		case EvPeerLeft:
			return GuestAwaitingReady, true
		}
	case Playing:
		switch ev {
		case EvPeerLeft:
			return PausedAwaitingPeer, true
		}
	case PausedAwaitingPeer:
		// Terminal apart from Closed: no reconnection path exists.
	case Closed:
	}
	return s, false
}
