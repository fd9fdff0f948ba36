package rooms

import (
	"crypto/rand"
	"math/big"
	"strings"
	"sync"

	"github.com/BlessPro/PongFocus/responses"
)

// Occupant is one side of a room: something the relay can push raw frames to.
// Connections are compared by identity, so the same value must be passed to
// Create/Join and to Peer.
type Occupant interface {
	Send(data []byte) error
	Close() error
}

// Room pairs a host and at most one guest. The host owns the room's lifetime:
// a room without a host cannot exist.
type Room struct {
	Code      string
	Host      Occupant
	Guest     Occupant
	HostName  string
	GuestName string
}

// RoomInfo is returned by the API for the room listing.
type RoomInfo struct {
	Code      string `json:"code"`
	HostName  string `json:"hostName"`
	GuestName string `json:"guestName,omitempty"`
	Occupants int    `json:"occupants"`
}

// Registry holds the active rooms. It is constructed once at service start
// and handed to the websocket handler; there is no package-level instance.
// The single mutex makes check+insert on create and slot occupation on join
// atomic, so racing requests for the same code yield exactly one winner.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

// Omits 0/O and 1/I so codes survive being read aloud.
const codeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 6

// Create registers a new room with the given connection as host. An explicit
// requested code is case-normalized and used verbatim; if it is taken the
// call fails with RoomExistsError and mutates nothing. With no requested code
// a fresh one is generated under the lock, so generated codes never collide.
func (r *Registry) Create(requestedCode string, host Occupant, hostName string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := NormalizeCode(requestedCode)
	if code != "" {
		if _, exists := r.rooms[code]; exists {
			return "", responses.RoomExistsError{Code: code}
		}
	} else {
		for {
			code = generateCode(codeLength)
			if _, exists := r.rooms[code]; !exists {
				break
			}
		}
	}

	r.rooms[code] = &Room{
		Code:     code,
		Host:     host,
		HostName: hostName,
	}
	return code, nil
}

// Join occupies the guest slot of an existing room and returns the host's
// display name for the room_joined reply.
func (r *Registry) Join(code string, guest Occupant, guestName string) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code = NormalizeCode(code)
	room, ok := r.rooms[code]
	if !ok {
		return nil, responses.RoomNotFoundError{Code: code}
	}
	if room.Guest != nil {
		return nil, responses.RoomFullError{Code: code}
	}

	room.Guest = guest
	room.GuestName = guestName
	return &Room{
		Code:      room.Code,
		Host:      room.Host,
		Guest:     guest,
		HostName:  room.HostName,
		GuestName: guestName,
	}, nil
}

// RemoveHost destroys the room and returns the orphaned guest, if any, so the
// caller can notify and force-close it. Returns nil, false if no such room.
func (r *Registry) RemoveHost(code string) (Occupant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[NormalizeCode(code)]
	if !ok {
		return nil, false
	}
	delete(r.rooms, room.Code)
	return room.Guest, true
}

// RemoveGuest clears the guest slot and returns the host so the caller can
// notify it. The room itself persists.
func (r *Registry) RemoveGuest(code string) (Occupant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[NormalizeCode(code)]
	if !ok {
		return nil, false
	}
	room.Guest = nil
	room.GuestName = ""
	return room.Host, true
}

// Peer returns the other occupant of the sender's room: the guest when the
// sender is the host, the host otherwise. ok is false when the room does not
// exist or the other slot is empty.
func (r *Registry) Peer(code string, sender Occupant) (Occupant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[NormalizeCode(code)]
	if !ok {
		return nil, false
	}
	var peer Occupant
	if sender == room.Host {
		peer = room.Guest
	} else {
		peer = room.Host
	}
	if peer == nil {
		return nil, false
	}
	return peer, true
}

// Lookup returns a copy of the room record.
func (r *Registry) Lookup(code string) (Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[NormalizeCode(code)]
	if !ok {
		return Room{}, false
	}
	return *room, true
}

// Rooms lists all active rooms with code and occupancy.
func (r *Registry) Rooms() []RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]RoomInfo, 0, len(r.rooms))
	for code, room := range r.rooms {
		occupants := 1
		if room.Guest != nil {
			occupants = 2
		}
		out = append(out, RoomInfo{
			Code:      code,
			HostName:  room.HostName,
			GuestName: room.GuestName,
			Occupants: occupants,
		})
	}
	return out
}

// NormalizeCode uppercases a room code; "ab12" and "AB12" address the same
// room.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func generateCode(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(codeChars)))
	for i := range b {
		idx, _ := rand.Int(rand.Reader, max)
		b[i] = codeChars[idx.Int64()]
	}
	return string(b)
}
