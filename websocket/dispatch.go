package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/Mims9141/structuredchat/services"
)

// dispatch parses one inbound frame and routes it to the owning service.
// Rejected actions are answered on the sender's socket only; nothing here
// writes to the connection directly.
func (c *Client) dispatch(raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.reject("malformed frame")
		return
	}

	switch msg.Type {
	case "request-match":
		var p requestMatchPayload
		if !c.bind(msg.Payload, &p) {
			return
		}
		if _, err := c.hub.store.RequestMatch(c.id, p.Mode, p.DisplayName); err != nil {
			c.hub.sendError(c.id, err)
		}

	case "leave-queue":
		c.hub.store.LeaveQueue(c.id)

	case "join-room":
		var p roomPayload
		if !c.bind(msg.Payload, &p) {
			return
		}
		if err := c.hub.store.JoinRoom(c.id, p.RoomID); err != nil {
			c.hub.sendError(c.id, err)
		}

	case "send-message":
		var p messagePayload
		if !c.bind(msg.Payload, &p) {
			return
		}
		if err := c.hub.store.SendMessage(c.id, p.RoomID, p.Text); err != nil {
			c.hub.sendError(c.id, err)
		}

	case "typing":
		var p typingPayload
		if !c.bind(msg.Payload, &p) {
			return
		}
		if err := c.hub.store.Typing(c.id, p.RoomID, p.IsTyping); err != nil {
			c.hub.sendError(c.id, err)
		}

	case "relay-offer", "relay-answer", "relay-ice":
		var p relayPayload
		if !c.bind(msg.Payload, &p) {
			return
		}
		c.relay(msg.Type, p)

	case "advance-segment":
		var p roomPayload
		if !c.bind(msg.Payload, &p) {
			return
		}
		if err := c.hub.store.AdvanceSegment(c.id, p.RoomID); err != nil {
			c.hub.sendError(c.id, err)
		}

	case "skip-segment":
		var p roomPayload
		if !c.bind(msg.Payload, &p) {
			return
		}
		if err := c.hub.store.SkipSegment(c.id, p.RoomID); err != nil {
			c.hub.sendError(c.id, err)
		}

	case "leave-room":
		var p roomPayload
		if !c.bind(msg.Payload, &p) {
			return
		}
		if err := c.hub.store.LeaveRoom(c.id, p.RoomID); err != nil {
			c.hub.sendError(c.id, err)
		}

	case "report":
		var p reportPayload
		if !c.bind(msg.Payload, &p) {
			return
		}
		if err := c.hub.store.Report(c.id, p.RoomID, p.Reason); err != nil {
			c.hub.sendError(c.id, err)
		}

	case "presence":
		c.hub.Send(c.id, services.EventPresenceCounts, c.hub.store.Counts())

	case "create-debate":
		var p createDebatePayload
		if !c.bind(msg.Payload, &p) {
			return
		}
		if _, err := c.hub.debates.Create(c.id, c.name, p.Name, p.SegmentCount); err != nil {
			c.hub.sendError(c.id, err)
		}

	case "join-debate":
		var p joinDebatePayload
		if !c.bind(msg.Payload, &p) {
			return
		}
		name := p.Name
		if name == "" {
			name = c.name
		}
		if err := c.hub.debates.Join(c.id, name, p.Code, p.Role); err != nil {
			c.hub.sendError(c.id, err)
		}

	case "start-debate":
		var p debateCodePayload
		if !c.bind(msg.Payload, &p) {
			return
		}
		if err := c.hub.debates.Start(c.id, p.Code); err != nil {
			c.hub.sendError(c.id, err)
		}

	case "debate-chat":
		var p debateChatPayload
		if !c.bind(msg.Payload, &p) {
			return
		}
		if err := c.hub.debates.Chat(c.id, p.Code, p.Text); err != nil {
			c.hub.sendError(c.id, err)
		}

	case "debate-question":
		var p debateQuestionPayload
		if !c.bind(msg.Payload, &p) {
			return
		}
		if err := c.hub.debates.SubmitQuestion(c.id, p.Code, p.Text); err != nil {
			c.hub.sendError(c.id, err)
		}

	case "debate-qna-next":
		var p debateCodePayload
		if !c.bind(msg.Payload, &p) {
			return
		}
		if err := c.hub.debates.NextQuestion(c.id, p.Code); err != nil {
			c.hub.sendError(c.id, err)
		}

	case "debate-reaction":
		var p debateReactionPayload
		if !c.bind(msg.Payload, &p) {
			return
		}
		if err := c.hub.debates.Reaction(c.id, p.Code, p.Reaction); err != nil {
			c.hub.sendError(c.id, err)
		}

	case "create-poll":
		var p createPollPayload
		if !c.bind(msg.Payload, &p) {
			return
		}
		if err := c.hub.debates.CreatePoll(c.id, p.Code, p.Question, p.Options); err != nil {
			c.hub.sendError(c.id, err)
		}

	case "vote-poll":
		var p votePollPayload
		if !c.bind(msg.Payload, &p) {
			return
		}
		if err := c.hub.debates.VotePoll(c.id, p.Code, p.PollID, p.Option); err != nil {
			c.hub.sendError(c.id, err)
		}

	case "leave-debate":
		var p debateCodePayload
		if !c.bind(msg.Payload, &p) {
			return
		}
		if err := c.hub.debates.Leave(c.id, p.Code); err != nil {
			c.hub.sendError(c.id, err)
		}

	default:
		c.reject(fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

// relay routes a signaling frame by its addressing: RoomID goes to the 1:1
// peer, Code plus Target to one debate member.
func (c *Client) relay(event string, p relayPayload) {
	switch {
	case p.RoomID != "":
		if err := c.hub.store.Relay(c.id, p.RoomID, event, p.Payload); err != nil {
			c.hub.sendError(c.id, err)
		}
	case p.Code != "":
		if err := c.hub.debates.Relay(c.id, p.Code, event, p.Target, p.Payload); err != nil {
			c.hub.sendError(c.id, err)
		}
	default:
		c.reject("relay needs roomId or code")
	}
}

// bind unmarshals a payload, answering the sender with a protocol error on
// failure.
func (c *Client) bind(raw json.RawMessage, v interface{}) bool {
	if err := json.Unmarshal(raw, v); err != nil {
		c.reject("malformed payload")
		return false
	}
	return true
}

func (c *Client) reject(message string) {
	c.hub.Send(c.id, services.EventError, services.ErrorPayload{
		Code:    "protocol-violation",
		Message: message,
	})
}
