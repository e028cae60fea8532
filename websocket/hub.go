package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Mims9141/structuredchat/services"
)

var upgrader = websocket.Upgrader{
	// In production, adjust the CheckOrigin function to allow only trusted origins.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub tracks live connections and turns service events into frames on the
// right sockets. It is the concrete Notifier for both services.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*Client

	store   *services.SessionStore
	debates *services.DebateService
	log     zerolog.Logger
}

// NewHub builds the hub around the two services it fronts.
func NewHub(store *services.SessionStore, debates *services.DebateService) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		store:   store,
		debates: debates,
		log:     log.With().Str("component", "ws").Logger(),
	}
}

// HandleWS upgrades the request, registers an anonymous session, and starts
// the pumps. The optional name query parameter becomes the display name; the
// welcome frame tells the client the id it was assigned.
func (h *Hub) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	sess := h.store.Register(c.Query("name"))
	client := &Client{
		hub:  h,
		conn: conn,
		id:   sess.ID,
		name: sess.Name,
		send: make(chan []byte, sendBufferSize),
	}

	h.mu.Lock()
	h.clients[sess.ID] = client
	h.mu.Unlock()

	go client.writePump()
	go client.readPump()

	h.Send(sess.ID, "welcome", welcomePayload{ConnID: sess.ID, Name: sess.Name})
	h.log.Info().Str("conn", sess.ID).Str("name", sess.Name).Msg("client connected")
}

// unregister removes the client and lets the services tear down whatever the
// session was part of. Both teardown calls are idempotent, so the eviction
// path and the read loop exit can race here safely.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if cur, ok := h.clients[c.id]; ok && cur == c {
		delete(h.clients, c.id)
	}
	h.mu.Unlock()

	h.store.Disconnect(c.id)
	h.debates.HandleDisconnect(c.id)
	h.log.Info().Str("conn", c.id).Msg("client disconnected")
}

// Send queues one event for one connection. A client whose buffer is full is
// evicted rather than allowed to stall everyone behind the hub lock.
func (h *Hub) Send(connID, event string, payload interface{}) {
	frame, err := json.Marshal(Envelope{
		Type:      event,
		Payload:   payload,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		h.log.Error().Str("event", event).Err(err).Msg("marshal frame")
		return
	}

	h.mu.Lock()
	client, ok := h.clients[connID]
	if !ok {
		h.mu.Unlock()
		return
	}
	select {
	case client.send <- frame:
		h.mu.Unlock()
	default:
		delete(h.clients, connID)
		h.mu.Unlock()
		close(client.send)
		h.log.Warn().Str("conn", connID).Str("event", event).Msg("send buffer full, evicting client")
	}
}

// Broadcast queues one event for every connection.
func (h *Hub) Broadcast(event string, payload interface{}) {
	frame, err := json.Marshal(Envelope{
		Type:      event,
		Payload:   payload,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		h.log.Error().Str("event", event).Err(err).Msg("marshal frame")
		return
	}

	h.mu.Lock()
	for id, client := range h.clients {
		select {
		case client.send <- frame:
		default:
			close(client.send)
			delete(h.clients, id)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) sendError(connID string, err error) {
	h.Send(connID, services.EventError, services.ErrorPayload{
		Code:    services.ErrorCode(err),
		Message: err.Error(),
	})
}
