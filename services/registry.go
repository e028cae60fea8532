package services

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Mims9141/structuredchat/models"
)

// Register creates a session for a freshly connected client and announces the
// new presence totals. The returned copy carries the issued connection id.
func (s *SessionStore) Register(name string) models.Session {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "anonymous"
	}
	sess := &models.Session{
		ID:          uuid.New().String(),
		Name:        name,
		ConnectedAt: time.Now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.log.Debug().Str("conn", sess.ID).Str("name", name).Msg("session registered")
	s.broadcastPresence()
	return *sess
}

// Session returns a copy of the session record for a connection id.
func (s *SessionStore) Session(connID string) (models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[connID]
	if !ok {
		return models.Session{}, false
	}
	return *sess, true
}

// Disconnect tears down everything a connection holds: its queue entry, its
// session record, and its 1:1 room if any. The remaining room member is told
// the peer dropped, along with the mode it should requeue with. Idempotent;
// a second call for the same id is a no-op.
func (s *SessionStore) Disconnect(connID string) {
	s.mu.Lock()
	sess, ok := s.sessions[connID]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.sessions, connID)
	s.removeFromQueuesLocked(connID)

	var closed *closedRoom
	if sess.RoomID != "" {
		if room, exists := s.rooms[sess.RoomID]; exists {
			closed = s.closeRoomLocked(room, connID, "disconnected")
		}
	}
	s.mu.Unlock()

	if closed != nil {
		s.send(closed.peerID, EventPeerDisconnected, PeerDisconnectedPayload{
			RoomID:     closed.record.RoomID,
			ResumeMode: closed.peerMode,
		})
		go s.archive.RoomClosed(closed.record)
	}

	s.log.Info().Str("conn", connID).Msg("session closed")
	s.broadcastPresence()
}
