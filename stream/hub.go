// Package stream pushes tick and portfolio updates to websocket
// clients so a UI can render live without polling. The hub is optional
// glue around the core; a session works fine without it.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/papertrade/trading"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 64
)

// Hub fans tick events out to connected websocket clients. Slow
// clients are dropped rather than allowed to block the broadcast path.
type Hub struct {
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	clients    map[*client]bool
	upgrader   websocket.Upgrader
	log        logrus.FieldLogger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub(log logrus.FieldLogger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 256),
		clients:    make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// Run owns the client set until ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				c.conn.Close()
			}
			return

		case c := <-h.register:
			h.clients[c] = true

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Client can't keep up; drop it.
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// BroadcastTick implements trading.Broadcaster. Events are JSON-encoded
// once and fanned out; a full broadcast queue drops the event instead
// of blocking the tick path.
func (h *Hub) BroadcastTick(ev trading.TickEvent) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.log.WithError(err).Warn("stream: encode tick")
		return
	}

	select {
	case h.broadcast <- msg:
	default:
		h.log.Debug("stream: broadcast queue full, tick dropped")
	}
}

// ServeWS upgrades an HTTP request to a websocket subscription.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("stream: upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}
	h.register <- c

	go c.writeLoop()
	go c.readLoop(h)
}

func (c *client) writeLoop() {
	defer c.conn.Close()

	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readLoop discards inbound messages; clients are subscribe-only. Its
// job is to notice the peer going away.
func (c *client) readLoop(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
