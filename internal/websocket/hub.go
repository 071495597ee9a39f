// Package websocket pushes advisory updates to connected dashboards.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	wildcard "github.com/IGLOU-EU/go-wildcard/v2"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	sendBufferSize = 64
)

// Message is the envelope for every frame the hub sends or receives.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Client is one connected dashboard.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string
}

// Hub maintains active clients and fans broadcast frames out to them.
type Hub struct {
	clients        map[*Client]bool
	broadcast      chan []byte
	register       chan *Client
	unregister     chan *Client
	mu             sync.RWMutex
	getState       func() interface{}
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewHub creates a hub. getState supplies the snapshot sent to each new
// client; allowedOrigins is a list of origin patterns (empty allows all).
func NewHub(getState func() interface{}, allowedOrigins []string) *Hub {
	h := &Hub{
		clients:        make(map[*Client]bool),
		broadcast:      make(chan []byte, 256),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		getState:       getState,
		allowedOrigins: allowedOrigins,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// Run processes registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Info().Str("client", client.id).Msg("Dashboard client connected")
			go h.sendInitialState(client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Info().Str("client", client.id).Msg("Dashboard client disconnected")

		case message := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			for _, client := range clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer, drop it rather than stall the hub.
					h.mu.Lock()
					if _, ok := h.clients[client]; ok {
						delete(h.clients, client)
						close(client.send)
					}
					h.mu.Unlock()
				}
			}

		case <-pingTicker.C:
			h.broadcastMessage(Message{
				Type: "ping",
				Data: map[string]int64{"timestamp": time.Now().Unix()},
			})

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// HandleWebSocket upgrades the request and hands the connection to the hub.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("origin", r.Header.Get("Origin")).Msg("WebSocket upgrade failed")
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		id:   fmt.Sprintf("client-%d", time.Now().UnixNano()),
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastAdvisory pushes a fresh advisory snapshot to every client.
func (h *Hub) BroadcastAdvisory(snapshot interface{}) {
	h.broadcastMessage(Message{Type: "advisoryUpdate", Data: snapshot})
}

// BroadcastEvent pushes a single advisory event to every client.
func (h *Hub) BroadcastEvent(event interface{}) {
	h.broadcastMessage(Message{Type: "event", Data: event})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) sendInitialState(client *Client) {
	welcome, err := json.Marshal(Message{
		Type: "welcome",
		Data: map[string]string{"message": "Connected to Hearth"},
	})
	if err == nil {
		select {
		case client.send <- welcome:
		default:
		}
	}

	if h.getState == nil {
		return
	}
	initial, err := json.Marshal(Message{Type: "initialState", Data: h.getState()})
	if err != nil {
		log.Error().Err(err).Str("client", client.id).Msg("Failed to marshal initial state")
		return
	}
	select {
	case client.send <- initial:
	default:
		log.Warn().Str("client", client.id).Msg("Send buffer full, skipping initial state")
	}
}

func (h *Hub) broadcastMessage(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("type", msg.Type).Msg("Failed to marshal broadcast message")
		return
	}
	select {
	case h.broadcast <- data:
	default:
		log.Warn().Str("type", msg.Type).Msg("Broadcast channel full, dropping message")
	}
}

// checkOrigin admits non-browser clients (no Origin header) and any origin
// matching a configured pattern. An empty pattern list allows everything,
// which suits a dashboard served from the same host.
func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.allowedOrigins) == 0 {
		return true
	}
	return originAllowed(h.allowedOrigins, origin)
}

func originAllowed(patterns []string, origin string) bool {
	for _, pattern := range patterns {
		if wildcard.Match(pattern, origin) {
			return true
		}
	}
	return false
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("client", c.id).Msg("WebSocket read error")
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Debug().Err(err).Str("client", c.id).Msg("Ignoring unparseable client message")
			continue
		}

		switch msg.Type {
		case "ping":
			pong, err := json.Marshal(Message{
				Type: "pong",
				Data: map[string]int64{"timestamp": time.Now().Unix()},
			})
			if err == nil {
				select {
				case c.send <- pong:
				default:
				}
			}
		case "requestState":
			if c.hub.getState == nil {
				continue
			}
			state, err := json.Marshal(Message{Type: "advisoryUpdate", Data: c.hub.getState()})
			if err == nil {
				select {
				case c.send <- state:
				default:
				}
			}
		default:
			log.Debug().Str("client", c.id).Str("type", msg.Type).Msg("Unhandled client message")
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			// Drain anything queued behind the frame we just wrote.
			n := len(c.send)
			for i := 0; i < n; i++ {
				select {
				case queued := <-c.send:
					if err := c.conn.WriteMessage(websocket.TextMessage, queued); err != nil {
						return
					}
				default:
				}
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
