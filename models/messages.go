package models

// Wire message types exchanged over the websocket. The relay resolves
// create_room/join_room itself; every other type is forwarded opaquely to the
// other occupant of the sender's room.
const (
	TypeCreateRoom  = "create_room"
	TypeJoinRoom    = "join_room"
	TypeRoomCreated = "room_created"
	TypeRoomJoined  = "room_joined"
	TypePeerJoined  = "peer_joined"
	TypeReady       = "ready"
	TypeStart       = "start"
	TypeInput       = "input"
	TypeServe       = "serve"
	TypeState       = "state"
	TypePauseToggle = "pause_toggle"
	TypeLeaderboard = "leaderboard"
	TypePeerLeft    = "peer_left"
	TypeError       = "error"
)

const (
	RoleHost  = "host"
	RoleGuest = "guest"
)

type CreateRoomMessage struct {
	Type     string `json:"type"`
	Name     string `json:"name,omitempty"`
	RoomCode string `json:"roomCode,omitempty"`
}

type JoinRoomMessage struct {
	Type     string `json:"type"`
	Name     string `json:"name,omitempty"`
	RoomCode string `json:"roomCode"`
}

type RoomCreatedMessage struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode"`
	Role     string `json:"role"`
	HostName string `json:"hostName"`
}

type RoomJoinedMessage struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode"`
	Role     string `json:"role"`
	HostName string `json:"hostName"`
}

type PeerJoinedMessage struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type ReadyMessage struct {
	Type string `json:"type"`
}

// StartMessage is the host's match-start announcement, relayed to the guest.
type StartMessage struct {
	Type  string     `json:"type"`
	Role  string     `json:"role"`
	Names StartNames `json:"names"`
}

type StartNames struct {
	P1 string `json:"p1"`
	P2 string `json:"p2"`
}

// InputMessage carries the guest's currently-held movement keys. Serve is the
// one frame the guest requests a serve; a standalone serve message is honored
// the same way.
type InputMessage struct {
	Type  string `json:"type"`
	Up    bool   `json:"up"`
	Down  bool   `json:"down"`
	Serve bool   `json:"serve,omitempty"`
}

type ServeMessage struct {
	Type string `json:"type"`
}

// StateMessage carries the full authoritative snapshot, flat on the wire.
type StateMessage struct {
	Type string `json:"type"`
	GameSnapshot
}

type PauseToggleMessage struct {
	Type string `json:"type"`
}

type LeaderboardMessage struct {
	Type string         `json:"type"`
	Data map[string]int `json:"data"`
}

type PeerLeftMessage struct {
	Type string `json:"type"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
