package handlers

import (
	"encoding/json"
	"log"

	"github.com/BlessPro/PongFocus/models"
	"github.com/BlessPro/PongFocus/responses"
)

// lobbyRequest is the only part of an inbound frame the relay ever decodes:
// the type discriminator plus the create/join fields. Everything else in the
// frame stays opaque and is forwarded byte-for-byte.
type lobbyRequest struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	RoomCode string `json:"roomCode"`
}

// processMessage resolves room-lifecycle requests itself and forwards every
// other known type to the other occupant of the sender's room. Malformed and
// unknown frames are dropped silently; they are not fatal to the connection.
func (h *Handler) processMessage(c *Connection, raw []byte) {
	var req lobbyRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return
	}

	switch req.Type {
	case models.TypeCreateRoom:
		h.handleCreateRoom(c, req)
	case models.TypeJoinRoom:
		h.handleJoinRoom(c, req)
	case models.TypeReady,
		models.TypeInput,
		models.TypeServe,
		models.TypeState,
		models.TypeStart,
		models.TypePauseToggle,
		models.TypeLeaderboard:
		h.forward(c, raw)
	default:
	}
}

func (h *Handler) handleCreateRoom(c *Connection, req lobbyRequest) {
	if c.roomCode != "" {
		c.sendMessage(models.ErrorMessage{Type: models.TypeError, Message: "Already in a room"})
		return
	}

	hostName := displayName(c, req.Name, "Host")
	code, err := h.registry.Create(req.RoomCode, c, hostName)
	if err != nil {
		c.sendMessage(models.ErrorMessage{Type: models.TypeError, Message: err.Error()})
		return
	}

	c.role = models.RoleHost
	c.roomCode = code
	c.name = hostName

	h.sessions.RoomCreated(code, hostName)
	log.Printf("Room %s created by connection %s (%s)", code, c.id, hostName)

	c.sendMessage(models.RoomCreatedMessage{
		Type:     models.TypeRoomCreated,
		RoomCode: code,
		Role:     models.RoleHost,
		HostName: hostName,
	})
}

func (h *Handler) handleJoinRoom(c *Connection, req lobbyRequest) {
	if c.roomCode != "" {
		c.sendMessage(models.ErrorMessage{Type: models.TypeError, Message: "Already in a room"})
		return
	}

	guestName := displayName(c, req.Name, "Guest")
	room, err := h.registry.Join(req.RoomCode, c, guestName)
	if err != nil {
		c.sendMessage(models.ErrorMessage{Type: models.TypeError, Message: err.Error()})
		return
	}

	c.role = models.RoleGuest
	c.roomCode = room.Code
	c.name = guestName

	h.sessions.RoomJoined(room.Code, guestName)
	log.Printf("Connection %s (%s) joined room %s", c.id, guestName, room.Code)

	c.sendMessage(models.RoomJoinedMessage{
		Type:     models.TypeRoomJoined,
		RoomCode: room.Code,
		Role:     models.RoleGuest,
		HostName: room.HostName,
	})

	if host, ok := h.registry.Peer(room.Code, c); ok {
		data, err := json.Marshal(models.PeerJoinedMessage{Type: models.TypePeerJoined, Name: guestName})
		if err == nil {
			host.Send(data)
		}
	}
}

// forward pushes the raw frame to the other occupant of the sender's room,
// unmodified and immediately. No room, or no peer in it, means the frame is
// dropped: the relay performs no buffering and no delivery guarantees beyond
// the transport's.
func (h *Handler) forward(c *Connection, raw []byte) {
	if c.roomCode == "" {
		return
	}
	peer, ok := h.registry.Peer(c.roomCode, c)
	if !ok {
		return
	}
	if err := peer.Send(raw); err != nil {
		log.Printf("forward from %s dropped: %v", c.id, err)
	}
}

// cleanup tears down the closing connection's room membership, synchronously
// with the close. A host's departure destroys the room and force-closes the
// guest; a guest's departure only frees the slot and pauses the host's view.
func (h *Handler) cleanup(c *Connection) {
	if c.roomCode == "" {
		return
	}

	peerLeft, _ := json.Marshal(models.PeerLeftMessage{Type: models.TypePeerLeft})

	switch c.role {
	case models.RoleHost:
		guest, ok := h.registry.RemoveHost(c.roomCode)
		if !ok {
			return
		}
		if guest != nil {
			guest.Send(peerLeft)
			hostLeft, _ := json.Marshal(models.ErrorMessage{
				Type:    models.TypeError,
				Message: responses.RoomHostLeftMessage,
			})
			guest.Send(hostLeft)
			guest.Close()
		}
		h.sessions.RoomClosed(c.roomCode, "host_left")
		log.Printf("Room %s destroyed (host %s left)", c.roomCode, c.id)
	case models.RoleGuest:
		host, ok := h.registry.RemoveGuest(c.roomCode)
		if !ok {
			return
		}
		if host != nil {
			host.Send(peerLeft)
		}
		log.Printf("Guest %s left room %s", c.id, c.roomCode)
	}
}

func displayName(c *Connection, requested, fallback string) string {
	if requested != "" {
		return requested
	}
	if c.name != "" {
		return c.name
	}
	return fallback
}
