package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlessPro/PongFocus/config"
	"github.com/BlessPro/PongFocus/models"
	"github.com/BlessPro/PongFocus/rooms"
)

func startRelay(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	h := New(&config.Config{}, rooms.NewRegistry(), nil)
	srv := httptest.NewServer(h.NewRouter())
	t.Cleanup(srv.Close)
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dialRelay(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func sendRaw(t *testing.T, ws *websocket.Conn, frame string) {
	t.Helper()
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(frame)))
}

func readRaw(t *testing.T, ws *websocket.Conn) []byte {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	return data
}

func TestRelay_EndToEndLobbyAndForwarding(t *testing.T) {
	_, url := startRelay(t)

	host := dialRelay(t, url)
	guest := dialRelay(t, url)

	sendRaw(t, host, `{"type":"create_room","name":"Alice","roomCode":"AB12"}`)
	created := decodeFrame(t, readRaw(t, host))
	require.Equal(t, models.TypeRoomCreated, created["type"])
	assert.Equal(t, "AB12", created["roomCode"])
	assert.Equal(t, models.RoleHost, created["role"])

	// Lower-case code joins the same room.
	sendRaw(t, guest, `{"type":"join_room","name":"Bob","roomCode":"ab12"}`)
	joined := decodeFrame(t, readRaw(t, guest))
	require.Equal(t, models.TypeRoomJoined, joined["type"])
	assert.Equal(t, "AB12", joined["roomCode"])
	assert.Equal(t, "Alice", joined["hostName"])

	peerJoined := decodeFrame(t, readRaw(t, host))
	assert.Equal(t, models.TypePeerJoined, peerJoined["type"])
	assert.Equal(t, "Bob", peerJoined["name"])

	// Guest -> host round trip, byte for byte.
	input := `{"type":"input","up":true,"down":false,"serve":false}`
	sendRaw(t, guest, input)
	assert.Equal(t, input, string(readRaw(t, host)))

	// Host -> guest round trip, byte for byte.
	state := `{"type":"state","playerY":120,"aiY":210,"ballX":400,"ballY":250,"ballVX":5,"ballVY":-1.26,"playerScore":3,"aiScore":2,"waitingForServe":false,"pendingServeDirection":1,"gameOver":false,"paused":false,"currentTheme":"classic"}`
	sendRaw(t, host, state)
	assert.Equal(t, state, string(readRaw(t, guest)))
}

func TestRelay_GuestDisconnectNotifiesHost(t *testing.T) {
	_, url := startRelay(t)

	host := dialRelay(t, url)
	guest := dialRelay(t, url)

	sendRaw(t, host, `{"type":"create_room","name":"Alice"}`)
	created := decodeFrame(t, readRaw(t, host))
	code := created["roomCode"].(string)

	sendRaw(t, guest, `{"type":"join_room","name":"Bob","roomCode":"`+code+`"}`)
	readRaw(t, guest) // room_joined
	readRaw(t, host)  // peer_joined

	guest.Close()

	peerLeft := decodeFrame(t, readRaw(t, host))
	assert.Equal(t, models.TypePeerLeft, peerLeft["type"])

	// The slot is free again for a replacement guest.
	replacement := dialRelay(t, url)
	sendRaw(t, replacement, `{"type":"join_room","name":"Carol","roomCode":"`+code+`"}`)
	rejoined := decodeFrame(t, readRaw(t, replacement))
	assert.Equal(t, models.TypeRoomJoined, rejoined["type"])
}

func TestRelay_HostDisconnectDestroysRoom(t *testing.T) {
	_, url := startRelay(t)

	host := dialRelay(t, url)
	guest := dialRelay(t, url)

	sendRaw(t, host, `{"type":"create_room","name":"Alice","roomCode":"GONE"}`)
	readRaw(t, host)

	sendRaw(t, guest, `{"type":"join_room","name":"Bob","roomCode":"GONE"}`)
	readRaw(t, guest) // room_joined
	readRaw(t, host)  // peer_joined

	host.Close()

	peerLeft := decodeFrame(t, readRaw(t, guest))
	assert.Equal(t, models.TypePeerLeft, peerLeft["type"])
	errMsg := decodeFrame(t, readRaw(t, guest))
	assert.Equal(t, models.TypeError, errMsg["type"])
	assert.Equal(t, "Host left the room", errMsg["message"])

	// The relay force-closes the orphaned guest.
	guest.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := guest.ReadMessage(); err != nil {
			break
		}
	}

	// The room is gone; the code can be taken again.
	late := dialRelay(t, url)
	sendRaw(t, late, `{"type":"create_room","name":"Carol","roomCode":"GONE"}`)
	created := decodeFrame(t, readRaw(t, late))
	assert.Equal(t, models.TypeRoomCreated, created["type"])
}
