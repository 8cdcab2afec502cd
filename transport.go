/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/Seednode/impostor/games/impostor"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"golang.org/x/time/rate"
)

const (
	maxMessageSize = 4096
	sendBuffer     = 32
	writeWait      = 10 * time.Second
)

var errRateLimited = impostor.ErrorMessage{
	Type:    impostor.TypeError,
	Code:    "rate_limited",
	Message: "You are sending messages too quickly.",
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket connection. Its id is the player's connection
// identity for as long as the socket stays open.
type Client struct {
	id      string
	conn    *websocket.Conn
	send    chan any
	limiter *rate.Limiter
}

// Clients tracks open connections and delivers game messages to them. It is
// the impostor.Sender for the whole process.
type Clients struct {
	mu      sync.Mutex
	clients map[string]*Client
}

func newClients() *Clients {
	return &Clients{clients: make(map[string]*Client)}
}

func (cs *Clients) add(c *Client) {
	cs.mu.Lock()
	cs.clients[c.id] = c
	cs.mu.Unlock()
}

func (cs *Clients) remove(c *Client) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cur, ok := cs.clients[c.id]; ok && cur == c {
		delete(cs.clients, c.id)
		close(c.send)
	}
}

// Send queues msg for the connection without blocking. A connection that
// cannot keep up is dropped; its reader then reports the disconnect.
func (cs *Clients) Send(id string, msg any) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	c, ok := cs.clients[id]
	if !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(cs.clients, id)
		close(c.send)
	}
}

func (cs *Clients) Len() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	return len(cs.clients)
}

// closeAll disconnects every client (used on shutdown).
func (cs *Clients) closeAll() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for id, c := range cs.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(cs.clients, id)
	}
}

func serveWS(cfg *Config, srv *impostor.Server, clients *Clients) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := &Client{
			id:      uuid.NewString(),
			conn:    conn,
			send:    make(chan any, sendBuffer),
			limiter: rate.NewLimiter(rate.Limit(cfg.rateLimit), cfg.rateBurst),
		}

		clients.add(client)
		clients.Send(client.id, impostor.SessionInfoMessage{
			Type: impostor.TypeSessionInfo,
			ID:   client.id,
		})

		logf(cfg, "GAMES: Connection %s opened from %s", client.id, realIP(r))

		go client.writePump()
		client.readPump(cfg, srv, clients)
	}
}

func (c *Client) readPump(cfg *Config, srv *impostor.Server, clients *Clients) {
	defer func() {
		clients.remove(c)
		srv.Disconnect(c.id)
		_ = c.conn.Close()

		logf(cfg, "GAMES: Connection %s closed", c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		if !c.limiter.Allow() {
			clients.Send(c.id, errRateLimited)
			continue
		}

		cmd, err := impostor.DecodeCommand(data)
		if err != nil {
			clients.Send(c.id, impostor.NewErrorMessage(err))
			continue
		}

		srv.Handle(c.id, cmd)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}

	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}
