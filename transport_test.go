package main

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Seednode/impostor/games/impostor"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig() *Config {
	return &Config{
		bind:       "127.0.0.1",
		port:       8080,
		maxPlayers: impostor.DefaultMaxPlayers,
		rateLimit:  1000,
		rateBurst:  1000,
	}
}

type testEnv struct {
	ts      *httptest.Server
	srv     *impostor.Server
	clients *Clients
}

func newTestEnv(t *testing.T, cfg *Config) *testEnv {
	t.Helper()

	clients := newClients()
	srv := impostor.NewServer(clients, impostor.Options{MaxPlayers: cfg.maxPlayers})
	ts := httptest.NewServer(newRouter(cfg, srv, clients, make(chan error, 64)))

	t.Cleanup(func() {
		clients.closeAll()
		ts.Close()
	})

	return &testEnv{ts: ts, srv: srv, clients: clients}
}

// dial connects a websocket client and consumes its session_info.
func (e *testEnv) dial(t *testing.T) (*websocket.Conn, string) {
	t.Helper()

	url := "ws" + strings.TrimPrefix(e.ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	info := readType(t, conn, impostor.TypeSessionInfo)
	id, _ := info["id"].(string)
	require.NotEmpty(t, id)

	return conn, id
}

func send(t *testing.T, conn *websocket.Conn, msg map[string]any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

// readType reads until a message of the given type arrives.
func readType(t *testing.T, conn *websocket.Conn, typ string) map[string]any {
	t.Helper()

	for {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

		var msg map[string]any
		require.NoError(t, conn.ReadJSON(&msg), "waiting for %s", typ)

		if msg["type"] == typ {
			return msg
		}
	}
}

func TestWebsocket_FullRoundTrip(t *testing.T) {
	env := newTestEnv(t, newTestConfig())

	ana, anaID := env.dial(t)
	send(t, ana, map[string]any{"type": "create_room", "displayName": "Ana"})

	created := readType(t, ana, impostor.TypeRoomCreated)
	code, _ := created["code"].(string)
	require.Len(t, code, impostor.CodeLength)
	assert.Equal(t, true, created["isHost"])

	conns := map[string]*websocket.Conn{"Ana": ana}
	for _, name := range []string{"Beto", "Cara"} {
		conn, _ := env.dial(t)
		send(t, conn, map[string]any{"type": "join_room", "code": strings.ToLower(code), "displayName": name})

		joined := readType(t, conn, impostor.TypeRoomJoined)
		assert.Equal(t, code, joined["code"])
		assert.Equal(t, false, joined["isHost"])

		conns[name] = conn
	}

	lobby := readType(t, conns["Cara"], impostor.TypeLobbyUpdated)
	assert.Equal(t, true, lobby["minPlayersMet"])
	assert.Len(t, lobby["players"], 3)

	send(t, ana, map[string]any{"type": "start_game", "code": code})

	impostors := 0
	for name, conn := range conns {
		role := readType(t, conn, impostor.TypeRoleRevealed)
		if role["isImpostor"] == true {
			impostors++
			assert.Nil(t, role["character"], name)
		} else {
			assert.Contains(t, impostor.Characters, role["character"], name)
		}
	}
	assert.Equal(t, 1, impostors)

	for _, conn := range conns {
		send(t, conn, map[string]any{"type": "role_acknowledged", "code": code})
	}

	round := readType(t, conns["Beto"], impostor.TypeRoundStarted)
	assert.Equal(t, anaID, round["hostId"])
	assert.Equal(t, "Ana", round["hostName"])

	send(t, ana, map[string]any{"type": "open_voting", "code": code})
	readType(t, conns["Cara"], impostor.TypeVotingOpened)

	send(t, conns["Beto"], map[string]any{"type": "cast_vote", "code": code, "candidateName": "Cara"})
	readType(t, conns["Beto"], impostor.TypeVoteAcknowledged)

	progress := readType(t, ana, impostor.TypeVoteProgress)
	assert.EqualValues(t, 1, progress["votedCount"])
	assert.EqualValues(t, 3, progress["total"])
}

func TestWebsocket_RejectsBadFrames(t *testing.T) {
	env := newTestEnv(t, newTestConfig())
	conn, _ := env.dial(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	assert.Equal(t, "malformed", readType(t, conn, impostor.TypeError)["code"])

	send(t, conn, map[string]any{"type": "self_destruct"})
	assert.Equal(t, "unknown_command", readType(t, conn, impostor.TypeError)["code"])

	send(t, conn, map[string]any{"type": "start_game", "code": "ZZZZZZ"})
	assert.Equal(t, "room_not_found", readType(t, conn, impostor.TypeError)["code"])
}

func TestWebsocket_RateLimited(t *testing.T) {
	cfg := newTestConfig()
	cfg.rateLimit = 0.001
	cfg.rateBurst = 1

	env := newTestEnv(t, cfg)
	conn, _ := env.dial(t)

	send(t, conn, map[string]any{"type": "create_room", "displayName": "Ana"})
	send(t, conn, map[string]any{"type": "create_room", "displayName": "Ana"})

	readType(t, conn, impostor.TypeRoomCreated)
	assert.Equal(t, "rate_limited", readType(t, conn, impostor.TypeError)["code"])
	assert.Equal(t, 1, env.srv.Rooms().Len())
}

func TestWebsocket_DisconnectMigratesHost(t *testing.T) {
	env := newTestEnv(t, newTestConfig())

	ana, _ := env.dial(t)
	send(t, ana, map[string]any{"type": "create_room", "displayName": "Ana"})
	code := readType(t, ana, impostor.TypeRoomCreated)["code"].(string)

	beto, _ := env.dial(t)
	send(t, beto, map[string]any{"type": "join_room", "code": code, "displayName": "Beto"})
	readType(t, beto, impostor.TypeRoomJoined)

	require.NoError(t, ana.Close())

	changed := readType(t, beto, impostor.TypeHostChanged)
	assert.Equal(t, "Beto", changed["newHostName"])

	lobby := readType(t, beto, impostor.TypeLobbyUpdated)
	assert.Equal(t, true, lobby["isHost"])
	assert.Len(t, lobby["players"], 1)
}

func TestClients_DropsSlowConnection(t *testing.T) {
	clients := newClients()
	c := &Client{id: "slow", send: make(chan any, 1)}
	clients.add(c)

	clients.Send("slow", "first")
	assert.Equal(t, 1, clients.Len())

	clients.Send("slow", "second")
	assert.Zero(t, clients.Len())

	assert.Equal(t, "first", <-c.send)
	_, open := <-c.send
	assert.False(t, open)

	// Removing an already-dropped client must not close the channel twice.
	clients.remove(c)
	clients.Send("slow", "third")
}
