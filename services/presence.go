package services

import "github.com/Mims9141/structuredchat/models"

// Counts derives the presence snapshot: total live sessions, and per concrete
// mode the queue depth plus members of active rooms. Wildcard queue entries
// display under video.
func (s *SessionStore) Counts() models.PresenceCounts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countsLocked()
}

func (s *SessionStore) countsLocked() models.PresenceCounts {
	perMode := map[models.Mode]int{
		models.ModeVideo: 0,
		models.ModeAudio: 0,
		models.ModeText:  0,
	}
	for qm, queue := range s.queues {
		display := qm
		if display == models.ModeAny {
			display = models.ModeVideo
		}
		perMode[display] += len(queue)
	}
	for _, room := range s.rooms {
		perMode[room.Mode] += 2
	}
	return models.PresenceCounts{
		Total:   len(s.sessions),
		PerMode: perMode,
	}
}

// broadcastPresence pushes fresh counts to every connection. Called after each
// mutating operation; eventual consistency is fine, exactness is not required.
func (s *SessionStore) broadcastPresence() {
	s.broadcast(EventPresenceCounts, s.Counts())
}
