package websocket

import (
	"encoding/json"
	"testing"

	"github.com/Mims9141/structuredchat/models"
	"github.com/Mims9141/structuredchat/services"
)

func newTestHub() (*Hub, *services.SessionStore, *services.DebateService) {
	store := services.NewSessionStore(services.Config{})
	debates := services.NewDebateService(services.DebateConfig{})
	hub := NewHub(store, debates)
	store.SetNotifier(hub)
	debates.SetNotifier(hub)
	return hub, store, debates
}

// attach registers a session and wires a pumpless client into the hub so
// dispatched frames land on its send channel.
func attach(t *testing.T, hub *Hub, store *services.SessionStore, name string) *Client {
	t.Helper()
	sess := store.Register(name)
	client := &Client{
		hub:  hub,
		id:   sess.ID,
		name: sess.Name,
		send: make(chan []byte, sendBufferSize),
	}
	hub.mu.Lock()
	hub.clients[sess.ID] = client
	hub.mu.Unlock()
	return client
}

// decodedFrame is the outbound envelope as seen by a client, with the
// payload left raw for per-test decoding.
type decodedFrame struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

// nextFrame decodes the next queued envelope on the client.
func nextFrame(t *testing.T, c *Client) decodedFrame {
	t.Helper()
	select {
	case raw := <-c.send:
		var env decodedFrame
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("bad frame %s: %v", raw, err)
		}
		return env
	default:
		t.Fatalf("no frame queued")
		return decodedFrame{}
	}
}

func TestDispatchRoutesRequestMatch(t *testing.T) {
	hub, store, _ := newTestHub()
	client := attach(t, hub, store, "Ada")

	client.dispatch([]byte(`{"type":"request-match","payload":{"mode":"text"}}`))

	sess, ok := store.Session(client.id)
	if !ok {
		t.Fatalf("session lost")
	}
	if sess.Mode != models.ModeText {
		t.Errorf("Expected the session queued in text, got %q", sess.Mode)
	}

	env := nextFrame(t, client)
	if env.Type != services.EventQueueJoined {
		t.Errorf("Expected a queue-joined frame, got %s", env.Type)
	}
	if env.Timestamp == 0 {
		t.Errorf("Envelope should carry a timestamp")
	}
}

func TestDispatchRejectsUnknownType(t *testing.T) {
	hub, store, _ := newTestHub()
	client := attach(t, hub, store, "Ada")

	client.dispatch([]byte(`{"type":"no-such-op","payload":{}}`))

	env := nextFrame(t, client)
	if env.Type != services.EventError {
		t.Fatalf("Expected an error frame, got %s", env.Type)
	}
	var p struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		t.Fatalf("bad error payload: %v", err)
	}
	if p.Code != "protocol-violation" {
		t.Errorf("Expected protocol-violation, got %q", p.Code)
	}
}

func TestDispatchRejectsMalformedFrames(t *testing.T) {
	hub, store, _ := newTestHub()
	client := attach(t, hub, store, "Ada")

	client.dispatch([]byte(`not json at all`))
	env := nextFrame(t, client)
	if env.Type != services.EventError {
		t.Errorf("Expected an error frame for garbage input, got %s", env.Type)
	}

	client.dispatch([]byte(`{"type":"send-message","payload":"not an object"}`))
	env = nextFrame(t, client)
	if env.Type != services.EventError {
		t.Errorf("Expected an error frame for a malformed payload, got %s", env.Type)
	}
}

func TestDispatchReportsServiceErrors(t *testing.T) {
	hub, store, _ := newTestHub()
	client := attach(t, hub, store, "Ada")

	// Messaging into a room the session is not in surfaces not-found.
	client.dispatch([]byte(`{"type":"send-message","payload":{"roomId":"missing","text":"hi"}}`))

	env := nextFrame(t, client)
	if env.Type != services.EventError {
		t.Fatalf("Expected an error frame, got %s", env.Type)
	}
	var p struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		t.Fatalf("bad error payload: %v", err)
	}
	if p.Code != "not-found" {
		t.Errorf("Expected not-found, got %q", p.Code)
	}
}

func TestDispatchCreateDebate(t *testing.T) {
	hub, store, debates := newTestHub()
	client := attach(t, hub, store, "Ada")

	client.dispatch([]byte(`{"type":"create-debate","payload":{"name":"AI rights","segmentCount":4}}`))

	list := debates.List()
	if len(list) != 1 {
		t.Fatalf("Expected 1 debate room, got %d", len(list))
	}
	if list[0].Name != "AI rights" || list[0].SegmentsTotal != 4 {
		t.Errorf("Debate built wrong: %+v", list[0])
	}
	if list[0].Debater1 == nil || list[0].Debater1.ConnID != client.id {
		t.Errorf("Creator not seated: %+v", list[0].Debater1)
	}

	env := nextFrame(t, client)
	if env.Type != services.EventDebateCreated {
		t.Errorf("Expected debate-created first, got %s", env.Type)
	}
}

func TestDispatchRelayNeedsDestination(t *testing.T) {
	hub, store, _ := newTestHub()
	client := attach(t, hub, store, "Ada")

	client.dispatch([]byte(`{"type":"relay-offer","payload":{"payload":{"sdp":"v=0"}}}`))

	env := nextFrame(t, client)
	if env.Type != services.EventError {
		t.Errorf("Expected an error without roomId or code, got %s", env.Type)
	}
}

func TestDispatchPresenceQuery(t *testing.T) {
	hub, store, _ := newTestHub()
	client := attach(t, hub, store, "Ada")

	client.dispatch([]byte(`{"type":"presence"}`))

	env := nextFrame(t, client)
	if env.Type != services.EventPresenceCounts {
		t.Fatalf("Expected presence-counts, got %s", env.Type)
	}
	var counts models.PresenceCounts
	if err := json.Unmarshal(env.Payload, &counts); err != nil {
		t.Fatalf("bad presence payload: %v", err)
	}
	if counts.Total != 1 {
		t.Errorf("Expected total 1, got %d", counts.Total)
	}
}

func TestSlowClientEvicted(t *testing.T) {
	hub, store, _ := newTestHub()
	sess := store.Register("Slow")
	client := &Client{hub: hub, id: sess.ID, name: sess.Name, send: make(chan []byte, 1)}
	hub.mu.Lock()
	hub.clients[sess.ID] = client
	hub.mu.Unlock()

	hub.Send(sess.ID, "one", nil) // fills the buffer
	hub.Send(sess.ID, "two", nil) // overflows and evicts

	hub.mu.Lock()
	_, present := hub.clients[sess.ID]
	hub.mu.Unlock()
	if present {
		t.Errorf("A slow client should be evicted")
	}

	<-client.send // the buffered frame
	if _, open := <-client.send; open {
		t.Errorf("The send channel should be closed after eviction")
	}
}

func TestBroadcastSkipsNobody(t *testing.T) {
	hub, store, _ := newTestHub()
	a := attach(t, hub, store, "A")
	b := attach(t, hub, store, "B")

	hub.Broadcast("presence-counts", models.PresenceCounts{Total: 2})

	for _, c := range []*Client{a, b} {
		env := nextFrame(t, c)
		if env.Type != "presence-counts" {
			t.Errorf("Expected the broadcast on every client, got %s", env.Type)
		}
	}
}
