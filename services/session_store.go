package services

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Mims9141/structuredchat/models"
)

const defaultSegmentDuration = 60 * time.Second

// transcriptCap bounds the per-room chat history kept for archiving. Oldest
// lines are dropped first.
const transcriptCap = 500

// Config carries the tunables of the 1:1 session core.
type Config struct {
	SegmentDuration time.Duration
	SkipPolicy      models.SkipPolicy
}

// SessionStore owns every session, matchmaking queue, and 1:1 room. All three
// live behind one mutex so that a match claim, a disconnect, and a room
// teardown can never interleave halfway: an operation sees either the state
// before another one or after it, never in between.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	queues   map[models.Mode][]models.QueueEntry
	rooms    map[string]*models.Room

	notifier Notifier
	archive  ArchiveSink

	segmentDuration time.Duration
	skipPolicy      models.SkipPolicy

	log zerolog.Logger
}

// NewSessionStore builds the store with defaults applied for zero-value
// config fields.
func NewSessionStore(cfg Config) *SessionStore {
	if cfg.SegmentDuration <= 0 {
		cfg.SegmentDuration = defaultSegmentDuration
	}
	if _, ok := models.ParseSkipPolicy(string(cfg.SkipPolicy)); !ok {
		cfg.SkipPolicy = models.SkipAuthority
	}
	return &SessionStore{
		sessions:        make(map[string]*models.Session),
		queues:          make(map[models.Mode][]models.QueueEntry),
		rooms:           make(map[string]*models.Room),
		archive:         NoopArchive{},
		segmentDuration: cfg.SegmentDuration,
		skipPolicy:      cfg.SkipPolicy,
		log:             log.With().Str("component", "sessions").Logger(),
	}
}

// SetNotifier wires the outbound event sink. Must be called before the first
// connection registers.
func (s *SessionStore) SetNotifier(n Notifier) {
	s.notifier = n
}

// SetArchiveSink wires durable storage for closed-room records.
func (s *SessionStore) SetArchiveSink(a ArchiveSink) {
	if a == nil {
		a = NoopArchive{}
	}
	s.archive = a
}

func (s *SessionStore) send(connID, event string, payload interface{}) {
	if s.notifier == nil || connID == "" {
		return
	}
	s.notifier.Send(connID, event, payload)
}

func (s *SessionStore) broadcast(event string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.Broadcast(event, payload)
}
