package network

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sikidle/server/internal/domain/generator"
	"github.com/sikidle/server/internal/domain/prestige"
	"github.com/sikidle/server/internal/engine"
	"github.com/sikidle/server/internal/platform/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// PlayerAction represents an incoming command from the frontend.
type PlayerAction struct {
	Type    string          `json:"type"` // "CLICK", "PURCHASE", "PRESTIGE", "BOOST"
	Payload json.RawMessage `json:"payload"`
}

// Client represents an active WebSocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, hub.clientSendBuffer),
	}
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// ReadPump pumps messages from the websocket connection to the session.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}

		var action PlayerAction
		if err := json.Unmarshal(message, &action); err != nil {
			c.hub.logger.Error("Failed to parse PlayerAction from WebSocket: %v", err)
			continue
		}

		c.handlePlayerAction(action)
	}
}

// handlePlayerAction routes a frontend command into the serialized session
// entry points. Even an input burst here cannot double-spend: every call
// lands behind the session mutex.
func (c *Client) handlePlayerAction(action PlayerAction) {
	switch action.Type {
	case "CLICK":
		c.hub.session.Click()
		metrics.Get().RecordClick()

	case "PURCHASE":
		var parsed struct {
			Generator string `json:"generator"`
		}
		if err := json.Unmarshal(action.Payload, &parsed); err != nil {
			c.hub.logger.Warn("Failed to parse purchase payload: %v", err)
			return
		}
		if c.hub.session.PurchaseGenerator(generator.Type(parsed.Generator)) {
			metrics.Get().RecordPurchase()
		}

	case "PRESTIGE":
		var parsed struct {
			Tier string `json:"tier"`
		}
		if err := json.Unmarshal(action.Payload, &parsed); err != nil {
			c.hub.logger.Warn("Failed to parse prestige payload: %v", err)
			return
		}
		res := c.hub.session.PerformPrestige(prestige.Tier(parsed.Tier))
		if res.Eligible {
			metrics.Get().RecordPrestige()
		}

	case "BOOST":
		var parsed struct {
			Category string  `json:"category"`
			Factor   float64 `json:"factor"`
			Seconds  float64 `json:"seconds"`
		}
		if err := json.Unmarshal(action.Payload, &parsed); err != nil {
			c.hub.logger.Warn("Failed to parse boost payload: %v", err)
			return
		}
		c.hub.session.ActivateBoost(
			engine.Category(parsed.Category),
			parsed.Factor,
			time.Duration(parsed.Seconds*float64(time.Second)),
		)

	default:
		c.hub.logger.Warn("Unknown PlayerAction type: %s", action.Type)
	}

	// Push a fresh view so the acting client sees the result immediately
	// instead of waiting for the next tick broadcast.
	c.hub.BroadcastState()
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
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
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
