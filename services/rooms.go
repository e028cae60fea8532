package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Mims9141/structuredchat/models"
)

// closedRoom carries everything a teardown needs to do after the lock is
// released: who to notify, what mode they resume with, and the archive record.
type closedRoom struct {
	peerID   string
	peerMode models.Mode
	record   models.RoomRecord
}

// JoinRoom re-syncs a member that navigated onto the room page: it validates
// membership and replays the current segment position to the caller. Signaling
// starts from here on the client side.
func (s *SessionStore) JoinRoom(connID, roomID string) error {
	s.mu.Lock()
	room, _, err := s.memberRoomLocked(connID, roomID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	payload := SegmentChangedPayload{Segment: room.Segment, Round: room.Round}
	s.mu.Unlock()

	s.send(connID, EventSegmentChanged, payload)
	return nil
}

// SendMessage relays a chat line to the other member and records it in the
// room transcript. Blank lines are dropped.
func (s *SessionStore) SendMessage(connID, roomID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.mu.Lock()
	room, _, err := s.memberRoomLocked(connID, roomID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	now := time.Now()
	entry := models.TranscriptEntry{
		SenderID:   connID,
		SenderName: room.NameOf(connID),
		Text:       text,
		SentAt:     now,
	}
	if len(room.Transcript) >= transcriptCap {
		room.Transcript = room.Transcript[1:]
	}
	room.Transcript = append(room.Transcript, entry)
	peerID, _ := room.PeerOf(connID)
	payload := MessagePayload{
		SenderID:   connID,
		SenderName: entry.SenderName,
		Text:       text,
		Timestamp:  now.Unix(),
	}
	s.mu.Unlock()

	s.send(peerID, EventMessageReceived, payload)
	return nil
}

// Typing forwards a typing indicator to the other member.
func (s *SessionStore) Typing(connID, roomID string, isTyping bool) error {
	s.mu.Lock()
	room, _, err := s.memberRoomLocked(connID, roomID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	peerID, _ := room.PeerOf(connID)
	payload := TypingPayload{
		SenderID:   connID,
		SenderName: room.NameOf(connID),
		IsTyping:   isTyping,
	}
	s.mu.Unlock()

	s.send(peerID, EventTyping, payload)
	return nil
}

// Relay forwards an opaque signaling payload to the other member, tagged with
// the sender id. The event name is one of the relay-* events and passes
// through unchanged.
func (s *SessionStore) Relay(connID, roomID, event string, payload json.RawMessage) error {
	s.mu.Lock()
	room, _, err := s.memberRoomLocked(connID, roomID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	peerID, _ := room.PeerOf(connID)
	s.mu.Unlock()

	s.send(peerID, event, RelayPayload{RoomID: roomID, From: connID, Payload: payload})
	return nil
}

// AdvanceSegment moves the room to the next segment. Only the authority
// (user1) may call it; its local timer is the single advancement source.
func (s *SessionStore) AdvanceSegment(connID, roomID string) error {
	return s.advance(connID, roomID, false)
}

// SkipSegment cuts the current segment short, subject to the configured skip
// policy.
func (s *SessionStore) SkipSegment(connID, roomID string) error {
	return s.advance(connID, roomID, true)
}

func (s *SessionStore) advance(connID, roomID string, skip bool) error {
	s.mu.Lock()
	room, role, err := s.memberRoomLocked(connID, roomID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if skip {
		if !models.SkipAllowed(s.skipPolicy, room.Segment, role) {
			s.mu.Unlock()
			return fmt.Errorf("%w: segment %d, %s policy", ErrSkipDenied, room.Segment, s.skipPolicy)
		}
	} else if role != models.RoleUser1 {
		s.mu.Unlock()
		return ErrNotAuthority
	}
	wrapped := room.Advance(time.Now())
	payload := SegmentChangedPayload{Segment: room.Segment, Round: room.Round}
	peerID, _ := room.PeerOf(connID)
	s.mu.Unlock()

	// The initiator already knows the new position; only the other member
	// needs to hear about it.
	s.send(peerID, EventSegmentChanged, payload)
	s.log.Debug().
		Str("room", roomID).
		Int("segment", payload.Segment).
		Int("round", payload.Round).
		Bool("skip", skip).
		Bool("wrapped", wrapped).
		Msg("segment advanced")
	return nil
}

// LeaveRoom destroys the room on an explicit leave. The remaining member gets
// peer-left, which the client treats as a clean exit rather than an error.
func (s *SessionStore) LeaveRoom(connID, roomID string) error {
	s.mu.Lock()
	room, _, err := s.memberRoomLocked(connID, roomID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	closed := s.closeRoomLocked(room, connID, "left")
	s.mu.Unlock()

	s.send(closed.peerID, EventPeerLeft, PeerLeftPayload{RoomID: roomID})
	go s.archive.RoomClosed(closed.record)
	s.log.Info().Str("room", roomID).Str("conn", connID).Msg("room left")
	s.broadcastPresence()
	return nil
}

// Report files a report against the other member and tears the room down.
// The reported member only sees a plain peer-left; the report itself goes to
// the archive sink for moderation tooling.
func (s *SessionStore) Report(connID, roomID, reason string) error {
	s.mu.Lock()
	room, _, err := s.memberRoomLocked(connID, roomID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	peerID, _ := room.PeerOf(connID)
	report := models.ReportRecord{
		RoomID:       roomID,
		ReporterID:   connID,
		ReportedID:   peerID,
		ReportedName: room.NameOf(peerID),
		Reason:       reason,
		FiledAt:      time.Now(),
	}
	closed := s.closeRoomLocked(room, connID, "reported")
	s.mu.Unlock()

	s.send(closed.peerID, EventPeerLeft, PeerLeftPayload{RoomID: roomID})
	go s.archive.ReportFiled(report)
	go s.archive.RoomClosed(closed.record)
	s.log.Warn().Str("room", roomID).Str("reporter", connID).Msg("report filed")
	s.broadcastPresence()
	return nil
}

// memberRoomLocked resolves a room id and checks the caller's membership.
func (s *SessionStore) memberRoomLocked(connID, roomID string) (*models.Room, models.Role, error) {
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, "", fmt.Errorf("%w: room %s", ErrNotFound, roomID)
	}
	role, member := room.RoleOf(connID)
	if !member {
		return nil, "", ErrNotInRoom
	}
	return room, role, nil
}

// closeRoomLocked removes the room and detaches both members in the same lock
// hold, so no reader can observe a half-empty room. The peer's resume mode is
// its original requested mode, preserving wildcard semantics across rematches.
func (s *SessionStore) closeRoomLocked(room *models.Room, leaverID, reason string) *closedRoom {
	delete(s.rooms, room.ID)
	for _, member := range []string{room.User1, room.User2} {
		if ms, ok := s.sessions[member]; ok && ms.RoomID == room.ID {
			ms.RoomID = ""
		}
	}

	out := &closedRoom{
		record: models.RoomRecord{
			RoomID:     room.ID,
			Mode:       room.Mode,
			User1Name:  room.User1Name,
			User2Name:  room.User2Name,
			Reason:     reason,
			Rounds:     room.Round,
			Segment:    room.Segment,
			CreatedAt:  room.CreatedAt,
			ClosedAt:   time.Now(),
			Transcript: room.Transcript,
		},
	}
	peerID, _ := room.PeerOf(leaverID)
	if ps, ok := s.sessions[peerID]; ok {
		out.peerID = peerID
		out.peerMode = ps.Mode
	}
	return out
}
