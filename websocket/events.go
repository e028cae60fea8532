package websocket

import "encoding/json"

// ClientMessage is the inbound frame: a type tag plus a type-specific
// payload. Unknown payload fields are ignored.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Envelope is the outbound frame shape shared by every event.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type welcomePayload struct {
	ConnID string `json:"connId"`
	Name   string `json:"name"`
}

type requestMatchPayload struct {
	Mode        string `json:"mode"`
	DisplayName string `json:"displayName,omitempty"`
}

type roomPayload struct {
	RoomID string `json:"roomId"`
}

type messagePayload struct {
	RoomID string `json:"roomId"`
	Text   string `json:"text"`
}

type typingPayload struct {
	RoomID   string `json:"roomId"`
	IsTyping bool   `json:"isTyping"`
}

type reportPayload struct {
	RoomID string `json:"roomId"`
	Reason string `json:"reason"`
}

// relayPayload addresses a signaling blob. RoomID targets the 1:1 peer;
// Code plus Target addresses one member of a debate room.
type relayPayload struct {
	RoomID  string          `json:"roomId,omitempty"`
	Code    string          `json:"code,omitempty"`
	Target  string          `json:"target,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

type createDebatePayload struct {
	Name         string `json:"name"`
	SegmentCount int    `json:"segmentCount,omitempty"`
}

type joinDebatePayload struct {
	Code string `json:"code"`
	Role string `json:"role"`
	Name string `json:"name,omitempty"`
}

type debateCodePayload struct {
	Code string `json:"code"`
}

type debateChatPayload struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

type debateQuestionPayload struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

type debateReactionPayload struct {
	Code     string `json:"code"`
	Reaction string `json:"reaction"`
}

type createPollPayload struct {
	Code     string   `json:"code"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type votePollPayload struct {
	Code   string `json:"code"`
	PollID string `json:"pollId"`
	Option string `json:"option"`
}
