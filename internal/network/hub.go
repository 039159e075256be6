package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sikidle/server/internal/engine"
	"github.com/sikidle/server/internal/events"
	"github.com/sikidle/server/internal/platform/config"
	"github.com/sikidle/server/internal/platform/logger"
	"github.com/sikidle/server/internal/platform/metrics"
)

// Hub maintains the set of active clients and broadcasts state views and
// economy events to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	session    *engine.Session
	logger     *logger.Logger

	// clientSendBuffer sizes each client's outbound queue.
	clientSendBuffer int
}

// NewHub initializes a new WebSocket Hub over the session, with channel
// buffers sized from the configuration.
func NewHub(session *engine.Session, log *logger.Logger, cfg *config.Config) *Hub {
	return &Hub{
		broadcast:        make(chan []byte, cfg.BroadcastChannelBuffer),
		register:         make(chan *Client),
		unregister:       make(chan *Client),
		clients:          make(map[*Client]bool),
		session:          session,
		logger:           log,
		clientSendBuffer: cfg.ClientSendBuffer,
	}
}

// Run starts the Hub's main loop to handle client connections and
// broadcasts. Call in a goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().ClientConnected(1)
			h.logger.Info("New WebSocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.Get().ClientConnected(-1)
				h.logger.Info("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					metrics.Get().MessageSent()
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// envelope wraps every outbound message with a kind tag so the frontend can
// route state updates and events through one socket.
type envelope struct {
	Kind    string      `json:"kind"` // "state" or "event"
	Payload interface{} `json:"payload"`
}

// BroadcastState serializes the current session view and sends it to all
// connected clients.
func (h *Hub) BroadcastState() {
	h.send(envelope{Kind: "state", Payload: h.session.View()})
}

// BroadcastEvent sends one economy event to all connected clients.
func (h *Hub) BroadcastEvent(event events.GameEvent) {
	h.send(envelope{Kind: "event", Payload: event})
}

func (h *Hub) send(env envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("Failed to serialize %s broadcast: %v", env.Kind, err)
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		// A full broadcast channel means clients are lagging; dropping a
		// frame is preferable to stalling the caller.
	}
}

// StartEventPoller spawns a goroutine to poll the event log and push new
// events to the Hub. The Hub runs independently from the session's
// mutation path while picking up the same events.
func (h *Hub) StartEventPoller(ctx context.Context, eventLog *events.Log) {
	go func() {
		pollInterval := time.NewTicker(200 * time.Millisecond)
		defer pollInterval.Stop()

		lastProcessed := 0

		for {
			select {
			case <-ctx.Done():
				return
			case <-pollInterval.C:
				newEvents := eventLog.Since(lastProcessed)
				for _, event := range newEvents {
					h.BroadcastEvent(event)
				}
				lastProcessed += len(newEvents)
			}
		}
	}()
}
