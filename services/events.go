package services

import (
	"encoding/json"

	"github.com/Mims9141/structuredchat/models"
)

// Outbound event names. These are the wire contract; renaming any of them
// breaks deployed clients.
const (
	EventQueueJoined      = "queue-joined"
	EventMatchFound       = "match-found"
	EventMessageReceived  = "message-received"
	EventTyping           = "typing"
	EventPeerLeft         = "peer-left"
	EventPeerDisconnected = "peer-disconnected"
	EventSegmentChanged   = "segment-changed"
	EventPresenceCounts   = "presence-counts"
	EventError            = "error"

	EventDebateCreated  = "debate-created"
	EventDebateJoined   = "debate-joined"
	EventDebateState    = "debate-state"
	EventDebateChat     = "debate-chat"
	EventViewerJoined   = "viewer-joined"
	EventDebateReaction = "debate-reaction"
	EventDebatePoll     = "debate-poll"

	EventRelayOffer  = "relay-offer"
	EventRelayAnswer = "relay-answer"
	EventRelayIce    = "relay-ice"
)

// QueueJoinedPayload confirms the requester is waiting in a queue.
type QueueJoinedPayload struct {
	Mode models.Mode `json:"mode"`
}

// MatchFoundPayload tells a member which room it landed in and who it is
// paired with. SegmentSeconds lets the authority drive its local timer.
type MatchFoundPayload struct {
	RoomID         string      `json:"roomId"`
	Role           models.Role `json:"role"`
	PeerID         string      `json:"peerId"`
	PeerName       string      `json:"peerName"`
	ResolvedMode   models.Mode `json:"resolvedMode"`
	Segment        int         `json:"segment"`
	Round          int         `json:"round"`
	SegmentSeconds int         `json:"segmentSeconds"`
}

// MessagePayload is a relayed chat line.
type MessagePayload struct {
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"ts"`
}

// TypingPayload mirrors a peer's typing indicator in text rooms.
type TypingPayload struct {
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	IsTyping   bool   `json:"isTyping"`
}

// PeerLeftPayload signals an explicit leave; the remaining member may requeue
// without treating it as an error.
type PeerLeftPayload struct {
	RoomID string `json:"roomId"`
}

// PeerDisconnectedPayload signals the peer dropped. ResumeMode is the
// remaining member's original requested mode, so a wildcard request stays a
// wildcard across rematches.
type PeerDisconnectedPayload struct {
	RoomID     string      `json:"roomId"`
	ResumeMode models.Mode `json:"resumeMode"`
}

// SegmentChangedPayload announces the new turn position.
type SegmentChangedPayload struct {
	Segment int `json:"segment"`
	Round   int `json:"round"`
}

// ErrorPayload reports a rejected action back to its sender.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DebateCreatedPayload acknowledges room creation to the creator.
type DebateCreatedPayload struct {
	Code string `json:"code"`
}

// DebateJoinedPayload carries the joiner's granted role and the snapshot it
// should render from.
type DebateJoinedPayload struct {
	Role  string             `json:"role"`
	State models.DebateState `json:"state"`
}

// DebateChatPayload is a chat line fanned out to a debate room.
type DebateChatPayload struct {
	Code       string `json:"code"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"ts"`
}

// ViewerJoinedPayload is sent to seated debaters so they can open a peer
// connection toward the new viewer.
type ViewerJoinedPayload struct {
	Code       string `json:"code"`
	ViewerID   string `json:"viewerId"`
	ViewerName string `json:"viewerName"`
}

// DebateReactionPayload is a transient viewer reaction.
type DebateReactionPayload struct {
	Code      string `json:"code"`
	SenderID  string `json:"senderId"`
	Reaction  string `json:"reaction"`
	Timestamp int64  `json:"ts"`
}

// DebatePollPayload carries the full poll tallies of a room, re-broadcast
// after every create and vote.
type DebatePollPayload struct {
	Code  string             `json:"code"`
	Polls []models.PollTally `json:"polls"`
}

// RelayPayload wraps an opaque signaling blob with the sender's identity so
// the recipient can correlate peers. The blob is never inspected.
type RelayPayload struct {
	RoomID  string          `json:"roomId,omitempty"`
	Code    string          `json:"code,omitempty"`
	From    string          `json:"from"`
	Payload json.RawMessage `json:"payload"`
}
