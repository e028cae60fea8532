package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Mims9141/structuredchat/models"
)

// RequestMatch pairs the connection with a waiting compatible peer, or queues
// it. The search and the claim of the matched entry happen under one lock
// hold, so two simultaneous requesters can never both take the same entry.
// A repeated request while still queued replaces the old entry. Returns true
// when the caller ended up queued.
func (s *SessionStore) RequestMatch(connID, modeStr, displayName string) (bool, error) {
	mode, err := models.ParseMode(modeStr)
	if err != nil {
		return false, fmt.Errorf("%w: %q", ErrBadMode, modeStr)
	}

	s.mu.Lock()
	sess, ok := s.sessions[connID]
	if !ok {
		s.mu.Unlock()
		return false, fmt.Errorf("%w: session %s", ErrNotFound, connID)
	}
	if sess.RoomID != "" {
		s.mu.Unlock()
		return false, ErrAlreadyInRoom
	}
	if displayName != "" {
		sess.Name = displayName
	}
	sess.Mode = mode
	s.removeFromQueuesLocked(connID)

	entry, found := s.claimLocked(connID, mode)
	if !found {
		s.queues[mode] = append(s.queues[mode], models.QueueEntry{
			ConnID:     connID,
			Mode:       mode,
			EnqueuedAt: time.Now(),
		})
		s.mu.Unlock()

		s.send(connID, EventQueueJoined, QueueJoinedPayload{Mode: mode})
		s.log.Debug().Str("conn", connID).Str("mode", string(mode)).Msg("queued")
		s.broadcastPresence()
		return true, nil
	}

	peer := s.sessions[entry.ConnID]
	now := time.Now()
	room := &models.Room{
		ID:              uuid.New().String(),
		Mode:            models.ResolveMode(mode, entry.Mode),
		User1:           connID,
		User2:           peer.ID,
		User1Name:       sess.Name,
		User2Name:       peer.Name,
		CreatedAt:       now,
		Segment:         0,
		Round:           1,
		SegmentStart:    now,
		SegmentDuration: s.segmentDuration,
	}
	s.rooms[room.ID] = room
	sess.RoomID = room.ID
	peer.RoomID = room.ID

	toRequester := s.matchPayloadLocked(room, models.RoleUser1, peer.ID, peer.Name)
	toPeer := s.matchPayloadLocked(room, models.RoleUser2, connID, sess.Name)
	s.mu.Unlock()

	s.send(connID, EventMatchFound, toRequester)
	s.send(peer.ID, EventMatchFound, toPeer)
	s.log.Info().
		Str("room", room.ID).
		Str("mode", string(room.Mode)).
		Str("user1", connID).
		Str("user2", peer.ID).
		Msg("matched")
	s.broadcastPresence()
	return false, nil
}

// LeaveQueue removes the connection's queue entry, wherever it sits. No-op if
// the connection is not queued.
func (s *SessionStore) LeaveQueue(connID string) {
	s.mu.Lock()
	removed := s.removeFromQueuesLocked(connID)
	s.mu.Unlock()

	if removed {
		s.log.Debug().Str("conn", connID).Msg("left queue")
		s.broadcastPresence()
	}
}

// claimLocked finds and removes the oldest compatible queue entry. Concrete
// requesters scan their own queue, then the wildcard queue. Wildcard
// requesters scan video, audio, text in that priority order before falling
// back to other wildcards. Entries whose session died or got roomed in the
// meantime are dropped during the scan instead of matched.
func (s *SessionStore) claimLocked(connID string, mode models.Mode) (models.QueueEntry, bool) {
	var order []models.Mode
	if mode.IsConcrete() {
		order = []models.Mode{mode, models.ModeAny}
	} else {
		order = append(append([]models.Mode{}, models.ConcreteModes...), models.ModeAny)
	}

	for _, qm := range order {
		queue := s.queues[qm]
		for i := 0; i < len(queue); i++ {
			entry := queue[i]
			peer, alive := s.sessions[entry.ConnID]
			if entry.ConnID == connID || !alive || peer.RoomID != "" {
				queue = append(queue[:i], queue[i+1:]...)
				i--
				continue
			}
			if !mode.CompatibleWith(entry.Mode) {
				continue
			}
			s.queues[qm] = append(queue[:i], queue[i+1:]...)
			return entry, true
		}
		s.queues[qm] = queue
	}
	return models.QueueEntry{}, false
}

func (s *SessionStore) removeFromQueuesLocked(connID string) bool {
	removed := false
	for qm, queue := range s.queues {
		for i := 0; i < len(queue); i++ {
			if queue[i].ConnID == connID {
				queue = append(queue[:i], queue[i+1:]...)
				i--
				removed = true
			}
		}
		s.queues[qm] = queue
	}
	return removed
}

func (s *SessionStore) matchPayloadLocked(room *models.Room, role models.Role, peerID, peerName string) MatchFoundPayload {
	return MatchFoundPayload{
		RoomID:         room.ID,
		Role:           role,
		PeerID:         peerID,
		PeerName:       peerName,
		ResolvedMode:   room.Mode,
		Segment:        room.Segment,
		Round:          room.Round,
		SegmentSeconds: int(room.SegmentDuration / time.Second),
	}
}
