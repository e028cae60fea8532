package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Mims9141/structuredchat/models"
)

// recordedEvent is one notification captured by the fake notifier. Broadcasts
// record with an empty ConnID.
type recordedEvent struct {
	ConnID  string
	Event   string
	Payload interface{}
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeNotifier) Send(connID, event string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{connID, event, payload})
}

func (f *fakeNotifier) Broadcast(event string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{"", event, payload})
}

// lastEvent returns the most recent event of the given type sent directly to
// connID.
func (f *fakeNotifier) lastEvent(connID, event string) (recordedEvent, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.events) - 1; i >= 0; i-- {
		if f.events[i].ConnID == connID && f.events[i].Event == event {
			return f.events[i], true
		}
	}
	return recordedEvent{}, false
}

func (f *fakeNotifier) countEvents(connID, event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, ev := range f.events {
		if ev.ConnID == connID && ev.Event == event {
			n++
		}
	}
	return n
}

func (f *fakeNotifier) broadcastCount(event string) int {
	return f.countEvents("", event)
}

type fakeArchive struct {
	mu      sync.Mutex
	rooms   []models.RoomRecord
	debates []models.DebateRecord
	reports []models.ReportRecord
}

func (f *fakeArchive) RoomClosed(rec models.RoomRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms = append(f.rooms, rec)
}

func (f *fakeArchive) DebateEnded(rec models.DebateRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.debates = append(f.debates, rec)
}

func (f *fakeArchive) ReportFiled(rec models.ReportRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, rec)
}

func (f *fakeArchive) roomCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rooms)
}

func (f *fakeArchive) debateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.debates)
}

func (f *fakeArchive) reportCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reports)
}

func (f *fakeArchive) roomAt(i int) models.RoomRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rooms[i]
}

func (f *fakeArchive) debateAt(i int) models.DebateRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.debates[i]
}

func (f *fakeArchive) reportAt(i int) models.ReportRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reports[i]
}

// denyGate refuses every audience action.
type denyGate struct{}

func (denyGate) AllowQuestion(string, string) bool { return false }

func (denyGate) AllowReaction(string, string) bool { return false }

// fakePolls is an in-memory PollBox mirroring the Redis store's contract.
type fakePolls struct {
	mu    sync.Mutex
	polls map[string][]*fakePoll
}

type fakePoll struct {
	id       string
	question string
	options  []string
	counts   map[string]int64
	voters   map[string]bool
}

func newFakePolls() *fakePolls {
	return &fakePolls{polls: make(map[string][]*fakePoll)}
}

func (f *fakePolls) Create(code, question string, options []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if strings.TrimSpace(question) == "" || len(options) < 2 {
		return "", fmt.Errorf("invalid poll")
	}
	p := &fakePoll{
		id:       fmt.Sprintf("poll-%d", len(f.polls[code])+1),
		question: question,
		options:  options,
		counts:   make(map[string]int64, len(options)),
		voters:   make(map[string]bool),
	}
	for _, opt := range options {
		p.counts[opt] = 0
	}
	f.polls[code] = append(f.polls[code], p)
	return p.id, nil
}

func (f *fakePolls) Vote(code, pollID, option, voterID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.polls[code] {
		if p.id != pollID {
			continue
		}
		if _, ok := p.counts[option]; !ok {
			return false, fmt.Errorf("unknown option %q", option)
		}
		if p.voters[voterID] {
			return false, nil
		}
		p.voters[voterID] = true
		p.counts[option]++
		return true, nil
	}
	return false, fmt.Errorf("unknown poll %q", pollID)
}

func (f *fakePolls) Tally(code string) ([]models.PollTally, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.PollTally, 0, len(f.polls[code]))
	for i, p := range f.polls[code] {
		counts := make(map[string]int64, len(p.counts))
		for k, v := range p.counts {
			counts[k] = v
		}
		out = append(out, models.PollTally{
			PollID:    p.id,
			Question:  p.question,
			Options:   p.options,
			Counts:    counts,
			Voters:    int64(len(p.voters)),
			CreatedAt: int64(i),
		})
	}
	return out, nil
}

// waitFor polls until the condition holds. Archive writes run on their own
// goroutines, so assertions on them need a grace period.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached before deadline")
}

func newTestStore(cfg Config) (*SessionStore, *fakeNotifier) {
	store := NewSessionStore(cfg)
	notifier := &fakeNotifier{}
	store.SetNotifier(notifier)
	return store, notifier
}

func newTestDebates(cfg DebateConfig) (*DebateService, *fakeNotifier) {
	ds := NewDebateService(cfg)
	notifier := &fakeNotifier{}
	ds.SetNotifier(notifier)
	return ds, notifier
}

// manualTickConfig keeps the background ticker effectively idle so tests
// drive phase boundaries by calling tick themselves.
func manualTickConfig() DebateConfig {
	return DebateConfig{
		SegmentDuration: time.Nanosecond,
		QnADuration:     time.Nanosecond,
		TickInterval:    time.Hour,
	}
}

func debateRoomOf(ds *DebateService, code string) *debateRoom {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.rooms[code]
}

// pairUp registers two members and matches them in the given mode. The second
// registrant triggers the match, so it comes back as user1.
func pairUp(t *testing.T, store *SessionStore, notifier *fakeNotifier, mode string) (trigger, queued, roomID string) {
	t.Helper()
	q := store.Register("Queued")
	tr := store.Register("Trigger")
	if _, err := store.RequestMatch(q.ID, mode, ""); err != nil {
		t.Fatalf("queueing first member: %v", err)
	}
	if _, err := store.RequestMatch(tr.ID, mode, ""); err != nil {
		t.Fatalf("matching second member: %v", err)
	}
	ev, ok := notifier.lastEvent(tr.ID, EventMatchFound)
	if !ok {
		t.Fatalf("no match happened")
	}
	return tr.ID, q.ID, ev.Payload.(MatchFoundPayload).RoomID
}
