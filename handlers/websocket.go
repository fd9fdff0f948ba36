package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/BlessPro/PongFocus/responses"
	"github.com/BlessPro/PongFocus/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 16
)

var errSendBufferFull = errors.New("send buffer full")

// Connection is one websocket client and its session: role and roomCode are
// set exactly once, on a successful create_room/join_room, and only ever
// touched from the connection's read goroutine.
type Connection struct {
	id   string
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
	name string

	role     string
	roomCode string
}

// Send queues a raw frame for the write pump. Dropping instead of blocking
// keeps one slow client from stalling its peer's tick loop.
func (c *Connection) Send(data []byte) error {
	select {
	case <-c.done:
		return websocket.ErrCloseSent
	case c.send <- data:
		return nil
	default:
		return errSendBufferFull
	}
}

func (c *Connection) Close() error {
	c.once.Do(func() { close(c.done) })
	if c.ws == nil {
		return nil
	}
	return c.ws.Close()
}

// sendMessage marshals a relay-originated control message onto the wire.
func (c *Connection) sendMessage(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("marshal error for connection %s: %v", c.id, err)
		return
	}
	if err := c.Send(data); err != nil {
		log.Printf("send error for connection %s: %v", c.id, err)
	}
}

// WsHandler upgrades the HTTP request and runs the connection until the
// transport closes. With JWT_SECRET configured the /ws/{token} form is
// required and the display name is taken from the token claims.
func (h *Handler) WsHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tokenStr := vars["token"]

	name := ""
	if h.cfg.JWTSecret != "" {
		claims, err := ValidateToken(tokenStr, h.cfg.JWTSecret)
		if err != nil {
			log.Println(err)
			utils.HandleError(w, responses.UnauthorizedError{Msg: "Error validating token."})
			return
		}
		name = claims.Name
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	c := &Connection{
		id:   uuid.New().String(),
		ws:   ws,
		send: make(chan []byte, 256),
		done: make(chan struct{}),
		name: name,
	}

	log.Printf("Connection %s established", c.id)

	go c.writePump()
	h.readPump(c)
}

func (h *Handler) readPump(c *Connection) {
	defer func() {
		h.cleanup(c)
		c.Close()
		log.Printf("Connection %s closed", c.id)
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Error reading message from connection %s: %v", c.id, err)
			}
			return
		}
		h.processMessage(c, message)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case <-c.done:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case message := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("error writing message: %v", err)
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
