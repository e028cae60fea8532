package services

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Mims9141/structuredchat/models"
	"github.com/Mims9141/structuredchat/utils"
)

const (
	defaultDebateSegment = 120 * time.Second
	defaultQnADuration   = 600 * time.Second
	defaultTickInterval  = time.Second
	defaultSegmentsTotal = 6
	maxSegmentsTotal     = 12

	// pendingQuestionCap bounds the questions one viewer can have queued.
	pendingQuestionCap = 50
)

// DebateConfig carries the tunables of the debate variant.
type DebateConfig struct {
	SegmentDuration time.Duration
	QnADuration     time.Duration
	TickInterval    time.Duration
	DefaultSegments int
	MaxSegments     int
}

// DebateService owns every debate room. Room state is guarded per room; the
// service lock covers the room map and the connection membership index.
type DebateService struct {
	mu         sync.RWMutex
	rooms      map[string]*debateRoom
	membership map[string]string // connID -> room code

	notifier  Notifier
	archive   ArchiveSink
	publisher EventPublisher
	gate      RateGate
	polls     PollBox

	cfg DebateConfig
	log zerolog.Logger
}

// debateRoom is the mutable state of one debate. The phase only ever moves
// forward; the per-room ticker is the single advancement source once the
// debate starts.
type debateRoom struct {
	mu   sync.Mutex
	code string
	name string

	phase         models.DebatePhase
	segmentsTotal int
	segment       int
	deadline      time.Time

	debater1     *models.DebateSeat
	debater2     *models.DebateSeat
	debater1Name string
	debater2Name string
	viewers      map[string]*viewer

	order    []string
	cursor   int
	selected *models.Question

	questionsAsked int
	peakViewers    int
	createdAt      time.Time
	startedAt      time.Time
	transcript     []models.TranscriptEntry

	stop    chan struct{}
	stopped bool
}

type viewer struct {
	connID  string
	name    string
	pending []models.Question
}

// NewDebateService builds the service with defaults applied for zero-value
// config fields.
func NewDebateService(cfg DebateConfig) *DebateService {
	if cfg.SegmentDuration <= 0 {
		cfg.SegmentDuration = defaultDebateSegment
	}
	if cfg.QnADuration <= 0 {
		cfg.QnADuration = defaultQnADuration
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTickInterval
	}
	if cfg.DefaultSegments <= 0 {
		cfg.DefaultSegments = defaultSegmentsTotal
	}
	if cfg.MaxSegments <= 0 {
		cfg.MaxSegments = maxSegmentsTotal
	}
	return &DebateService{
		rooms:      make(map[string]*debateRoom),
		membership: make(map[string]string),
		archive:    NoopArchive{},
		cfg:        cfg,
		log:        log.With().Str("component", "debates").Logger(),
	}
}

// SetNotifier wires the outbound event sink.
func (ds *DebateService) SetNotifier(n Notifier) {
	ds.notifier = n
}

// SetArchiveSink wires durable storage for ended debates.
func (ds *DebateService) SetArchiveSink(a ArchiveSink) {
	if a == nil {
		a = NoopArchive{}
	}
	ds.archive = a
}

// SetPublisher wires the external event stream. Optional.
func (ds *DebateService) SetPublisher(p EventPublisher) {
	ds.publisher = p
}

// SetRateGate wires rate limiting for viewer questions and reactions.
// Optional; without one, everything is admitted.
func (ds *DebateService) SetRateGate(g RateGate) {
	ds.gate = g
}

// SetPollBox wires audience poll storage. Optional; without one, poll
// operations report ErrNoPolls.
func (ds *DebateService) SetPollBox(p PollBox) {
	ds.polls = p
}

// Create opens a new debate room with the creator seated as debater1 and
// returns the initial snapshot. Segment counts outside [1, max] are clamped.
func (ds *DebateService) Create(connID, connName, roomName string, segments int) (models.DebateState, error) {
	if segments <= 0 {
		segments = ds.cfg.DefaultSegments
	}
	if segments > ds.cfg.MaxSegments {
		segments = ds.cfg.MaxSegments
	}
	roomName = strings.TrimSpace(roomName)
	if roomName == "" {
		roomName = "untitled debate"
	}

	ds.mu.Lock()
	if _, joined := ds.membership[connID]; joined {
		ds.mu.Unlock()
		return models.DebateState{}, ErrAlreadyJoined
	}
	code := utils.GenerateRoomCode()
	for _, exists := ds.rooms[code]; exists; _, exists = ds.rooms[code] {
		code = utils.GenerateRoomCode()
	}
	room := &debateRoom{
		code:          code,
		name:          roomName,
		phase:         models.PhaseLobby,
		segmentsTotal: segments,
		debater1:      &models.DebateSeat{ConnID: connID, Name: connName},
		viewers:       make(map[string]*viewer),
		createdAt:     time.Now(),
		stop:          make(chan struct{}),
	}
	ds.rooms[code] = room
	ds.membership[connID] = code
	ds.mu.Unlock()

	room.mu.Lock()
	state := room.stateLocked(time.Now())
	room.mu.Unlock()

	ds.send(connID, EventDebateCreated, DebateCreatedPayload{Code: code})
	ds.send(connID, EventDebateJoined, DebateJoinedPayload{Role: "debater1", State: state})
	ds.publish(code, "created", state)
	ds.log.Info().Str("code", code).Str("conn", connID).Int("segments", segments).Msg("debate created")
	return state, nil
}

// Join seats the connection as a debater (first free slot) or adds it as a
// viewer. Debater slots can only be claimed during the lobby; viewers may
// join any phase before ended. Debaters are told about each new viewer so
// they can initiate signaling toward it.
func (ds *DebateService) Join(connID, connName, code, role string) error {
	ds.mu.Lock()
	room, ok := ds.rooms[code]
	if !ok {
		ds.mu.Unlock()
		return fmt.Errorf("%w: debate %s", ErrNotFound, code)
	}
	if _, joined := ds.membership[connID]; joined {
		ds.mu.Unlock()
		return ErrAlreadyJoined
	}

	room.mu.Lock()
	if room.phase == models.PhaseEnded {
		room.mu.Unlock()
		ds.mu.Unlock()
		return fmt.Errorf("%w: debate has ended", ErrWrongPhase)
	}

	var granted string
	switch role {
	case "debater":
		if room.phase != models.PhaseLobby {
			room.mu.Unlock()
			ds.mu.Unlock()
			return fmt.Errorf("%w: debater slots close after the lobby", ErrWrongPhase)
		}
		switch {
		case room.debater1 == nil:
			room.debater1 = &models.DebateSeat{ConnID: connID, Name: connName}
			granted = "debater1"
		case room.debater2 == nil:
			room.debater2 = &models.DebateSeat{ConnID: connID, Name: connName}
			granted = "debater2"
		default:
			room.mu.Unlock()
			ds.mu.Unlock()
			return ErrSlotTaken
		}
	case "viewer":
		room.viewers[connID] = &viewer{connID: connID, name: connName}
		if len(room.viewers) > room.peakViewers {
			room.peakViewers = len(room.viewers)
		}
		granted = "viewer"
	default:
		room.mu.Unlock()
		ds.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrBadRole, role)
	}
	ds.membership[connID] = code

	state := room.stateLocked(time.Now())
	occupants := room.occupantsLocked()
	var debaters []string
	for _, seat := range []*models.DebateSeat{room.debater1, room.debater2} {
		if seat != nil && seat.ConnID != connID {
			debaters = append(debaters, seat.ConnID)
		}
	}
	room.mu.Unlock()
	ds.mu.Unlock()

	ds.send(connID, EventDebateJoined, DebateJoinedPayload{Role: granted, State: state})
	if granted == "viewer" {
		for _, d := range debaters {
			ds.send(d, EventViewerJoined, ViewerJoinedPayload{Code: code, ViewerID: connID, ViewerName: connName})
		}
	}
	for _, id := range occupants {
		if id != connID {
			ds.send(id, EventDebateState, state)
		}
	}
	ds.publish(code, "joined", state)
	ds.log.Debug().Str("code", code).Str("conn", connID).Str("role", granted).Msg("debate joined")
	return nil
}

// Start moves the room from lobby into the first debate segment and spawns
// the room ticker. Only a seated debater may start, and only once both slots
// are filled.
func (ds *DebateService) Start(connID, code string) error {
	room, err := ds.room(code)
	if err != nil {
		return err
	}

	room.mu.Lock()
	if room.seatOf(connID) == "" {
		room.mu.Unlock()
		return ErrNotDebater
	}
	if room.phase != models.PhaseLobby {
		room.mu.Unlock()
		return fmt.Errorf("%w: phase is %s", ErrWrongPhase, room.phase)
	}
	if room.debater1 == nil || room.debater2 == nil {
		room.mu.Unlock()
		return ErrStartNotReady
	}
	now := time.Now()
	room.phase = models.PhaseDebate
	room.segment = 0
	room.startedAt = now
	room.deadline = now.Add(ds.cfg.SegmentDuration)
	room.debater1Name = room.debater1.Name
	room.debater2Name = room.debater2.Name
	state := room.stateLocked(now)
	occupants := room.occupantsLocked()
	room.mu.Unlock()

	go ds.run(room)
	ds.sendEach(occupants, EventDebateState, state)
	ds.publish(code, "started", state)
	ds.log.Info().Str("code", code).Str("conn", connID).Msg("debate started")
	return nil
}

// Chat fans a chat line out to everyone in the room and records it in the
// transcript. Blank lines are dropped.
func (ds *DebateService) Chat(connID, code, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	room, err := ds.room(code)
	if err != nil {
		return err
	}

	room.mu.Lock()
	name := room.memberNameLocked(connID)
	if name == "" {
		room.mu.Unlock()
		return ErrNotInRoom
	}
	now := time.Now()
	if len(room.transcript) >= transcriptCap {
		room.transcript = room.transcript[1:]
	}
	room.transcript = append(room.transcript, models.TranscriptEntry{
		SenderID:   connID,
		SenderName: name,
		Text:       text,
		SentAt:     now,
	})
	payload := DebateChatPayload{
		Code:       code,
		SenderID:   connID,
		SenderName: name,
		Text:       text,
		Timestamp:  now.Unix(),
	}
	occupants := room.occupantsLocked()
	room.mu.Unlock()

	ds.sendEach(occupants, EventDebateChat, payload)
	ds.publish(code, "chat", payload)
	return nil
}

// SubmitQuestion queues a question under the asking viewer for the Q&A draw.
// Rate-limited submissions are dropped silently, matching the relay-only
// treatment of chat noise.
func (ds *DebateService) SubmitQuestion(connID, code, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if ds.gate != nil && !ds.gate.AllowQuestion(code, connID) {
		ds.log.Debug().Str("code", code).Str("conn", connID).Msg("question rate limited")
		return nil
	}
	room, err := ds.room(code)
	if err != nil {
		return err
	}

	room.mu.Lock()
	if room.phase == models.PhaseEnded {
		room.mu.Unlock()
		return fmt.Errorf("%w: debate has ended", ErrWrongPhase)
	}
	v, ok := room.viewers[connID]
	if !ok {
		seated := room.seatOf(connID) != ""
		room.mu.Unlock()
		if seated {
			return ErrNotViewer
		}
		return ErrNotInRoom
	}
	now := time.Now()
	if len(v.pending) < pendingQuestionCap {
		v.pending = append(v.pending, models.Question{
			ID:         uuid.New().String(),
			ViewerID:   connID,
			ViewerName: v.name,
			Text:       text,
			AskedAt:    now,
		})
	}
	state := room.stateLocked(now)
	occupants := room.occupantsLocked()
	room.mu.Unlock()

	ds.sendEach(occupants, EventDebateState, state)
	ds.publish(code, "question", state)
	return nil
}

// NextQuestion draws the next Q&A item via randomized round-robin over
// viewers and broadcasts the updated state. Debaters only, Q&A phase only.
func (ds *DebateService) NextQuestion(connID, code string) error {
	room, err := ds.room(code)
	if err != nil {
		return err
	}

	room.mu.Lock()
	if room.seatOf(connID) == "" {
		room.mu.Unlock()
		return ErrNotDebater
	}
	if room.phase != models.PhaseQnA {
		room.mu.Unlock()
		return fmt.Errorf("%w: q&a is not active", ErrWrongPhase)
	}
	q, drawn := room.nextQuestionLocked()
	if drawn {
		room.selected = &q
		room.questionsAsked++
	} else {
		room.selected = nil
	}
	state := room.stateLocked(time.Now())
	occupants := room.occupantsLocked()
	room.mu.Unlock()

	ds.sendEach(occupants, EventDebateState, state)
	if drawn {
		ds.publish(code, "question-selected", q)
	}
	return nil
}

// Reaction fans a transient viewer reaction out to the room, rate limited per
// sender.
func (ds *DebateService) Reaction(connID, code, reaction string) error {
	reaction = strings.TrimSpace(reaction)
	if reaction == "" {
		return nil
	}
	if ds.gate != nil && !ds.gate.AllowReaction(code, connID) {
		return nil
	}
	room, err := ds.room(code)
	if err != nil {
		return err
	}

	room.mu.Lock()
	if room.memberNameLocked(connID) == "" {
		room.mu.Unlock()
		return ErrNotInRoom
	}
	payload := DebateReactionPayload{
		Code:      code,
		SenderID:  connID,
		Reaction:  reaction,
		Timestamp: time.Now().Unix(),
	}
	occupants := room.occupantsLocked()
	room.mu.Unlock()

	ds.sendEach(occupants, EventDebateReaction, payload)
	ds.publish(code, "reaction", payload)
	return nil
}

// CreatePoll opens an audience poll in the room. Only a seated debater may
// open one, and not after the debate has ended. The updated tallies are
// broadcast to everyone.
func (ds *DebateService) CreatePoll(connID, code, question string, options []string) error {
	if ds.polls == nil {
		return ErrNoPolls
	}
	room, err := ds.room(code)
	if err != nil {
		return err
	}

	room.mu.Lock()
	if room.seatOf(connID) == "" {
		room.mu.Unlock()
		return ErrNotDebater
	}
	if room.phase == models.PhaseEnded {
		room.mu.Unlock()
		return fmt.Errorf("%w: debate has ended", ErrWrongPhase)
	}
	room.mu.Unlock()

	pollID, err := ds.polls.Create(code, question, options)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPollInvalid, err)
	}
	ds.log.Info().Str("code", code).Str("poll", pollID).Str("conn", connID).Msg("poll opened")
	ds.broadcastPolls(room)
	return nil
}

// VotePoll records a viewer's ballot. One ballot per viewer per poll; a
// duplicate is dropped silently, the same as other audience noise.
func (ds *DebateService) VotePoll(connID, code, pollID, option string) error {
	if ds.polls == nil {
		return ErrNoPolls
	}
	room, err := ds.room(code)
	if err != nil {
		return err
	}

	room.mu.Lock()
	if _, ok := room.viewers[connID]; !ok {
		seated := room.seatOf(connID) != ""
		room.mu.Unlock()
		if seated {
			return ErrNotViewer
		}
		return ErrNotInRoom
	}
	room.mu.Unlock()

	accepted, err := ds.polls.Vote(code, pollID, option, connID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPollInvalid, err)
	}
	if !accepted {
		return nil
	}
	ds.broadcastPolls(room)
	return nil
}

// PollTallies returns the room's poll results.
func (ds *DebateService) PollTallies(code string) ([]models.PollTally, error) {
	if ds.polls == nil {
		return nil, ErrNoPolls
	}
	if _, err := ds.room(code); err != nil {
		return nil, err
	}
	return ds.polls.Tally(code)
}

// broadcastPolls pushes the current tallies to everyone in the room. Tally
// reads hit Redis, so this never runs under a room lock.
func (ds *DebateService) broadcastPolls(room *debateRoom) {
	tallies, err := ds.polls.Tally(room.code)
	if err != nil {
		ds.log.Warn().Str("code", room.code).Err(err).Msg("poll tally failed")
		return
	}
	room.mu.Lock()
	occupants := room.occupantsLocked()
	room.mu.Unlock()
	payload := DebatePollPayload{Code: room.code, Polls: tallies}
	ds.sendEach(occupants, EventDebatePoll, payload)
	ds.publish(room.code, "poll", payload)
}

// Relay forwards an opaque signaling payload to one explicit room member.
// With two debaters and many viewers there is no implicit peer, so the
// target id is required.
func (ds *DebateService) Relay(connID, code, event, target string, payload json.RawMessage) error {
	room, err := ds.room(code)
	if err != nil {
		return err
	}

	room.mu.Lock()
	if !room.isMemberLocked(connID) {
		room.mu.Unlock()
		return ErrNotInRoom
	}
	if target == "" || !room.isMemberLocked(target) {
		room.mu.Unlock()
		return fmt.Errorf("%w: relay target", ErrNotFound)
	}
	room.mu.Unlock()

	ds.send(target, event, RelayPayload{Code: code, From: connID, Payload: payload})
	return nil
}

// Leave removes the connection from its debate room. A viewer leaving only
// shrinks the audience. A seated debater leaving during debate or Q&A ends
// the session for everyone; losing one of two speakers is not recoverable
// the way a 1:1 peer loss is. The room itself is destroyed when the last
// occupant departs.
func (ds *DebateService) Leave(connID, code string) error {
	ds.mu.Lock()
	room, ok := ds.rooms[code]
	if !ok {
		ds.mu.Unlock()
		return fmt.Errorf("%w: debate %s", ErrNotFound, code)
	}
	if ds.membership[connID] != code {
		ds.mu.Unlock()
		return ErrNotInRoom
	}
	delete(ds.membership, connID)

	now := time.Now()
	room.mu.Lock()
	seat := room.seatOf(connID)
	switch seat {
	case "debater1":
		room.debater1 = nil
	case "debater2":
		room.debater2 = nil
	default:
		delete(room.viewers, connID)
	}
	var record *models.DebateRecord
	if seat != "" && (room.phase == models.PhaseDebate || room.phase == models.PhaseQnA) {
		rec := room.endLocked(now)
		record = &rec
	}
	empty := room.debater1 == nil && room.debater2 == nil && len(room.viewers) == 0
	if empty {
		delete(ds.rooms, code)
		room.stopTickerLocked()
	}
	state := room.stateLocked(now)
	occupants := room.occupantsLocked()
	room.mu.Unlock()
	ds.mu.Unlock()

	ds.sendEach(occupants, EventDebateState, state)
	if record != nil {
		go ds.archive.DebateEnded(*record)
		ds.publish(code, "ended", state)
		ds.log.Info().Str("code", code).Str("conn", connID).Msg("debate ended by departure")
	}
	if empty {
		ds.log.Info().Str("code", code).Msg("debate room destroyed")
	}
	return nil
}

// HandleDisconnect applies Leave semantics when a connection drops without an
// explicit leave. No-op for connections not in any debate.
func (ds *DebateService) HandleDisconnect(connID string) {
	ds.mu.RLock()
	code, ok := ds.membership[connID]
	ds.mu.RUnlock()
	if !ok {
		return
	}
	if err := ds.Leave(connID, code); err != nil {
		ds.log.Debug().Str("conn", connID).Err(err).Msg("disconnect cleanup")
	}
}

// Snapshot returns the current state of one room.
func (ds *DebateService) Snapshot(code string) (models.DebateState, bool) {
	room, err := ds.room(code)
	if err != nil {
		return models.DebateState{}, false
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.stateLocked(time.Now()), true
}

// List returns snapshots of every live room, newest first.
func (ds *DebateService) List() []models.DebateState {
	ds.mu.RLock()
	rooms := make([]*debateRoom, 0, len(ds.rooms))
	for _, room := range ds.rooms {
		rooms = append(rooms, room)
	}
	ds.mu.RUnlock()

	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].createdAt.After(rooms[j].createdAt)
	})
	now := time.Now()
	states := make([]models.DebateState, 0, len(rooms))
	for _, room := range rooms {
		room.mu.Lock()
		states = append(states, room.stateLocked(now))
		room.mu.Unlock()
	}
	return states
}

// run drives the room clock until the room stops. One goroutine per started
// debate; stopTickerLocked is its only exit.
func (ds *DebateService) run(room *debateRoom) {
	ticker := time.NewTicker(ds.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-room.stop:
			return
		case <-ticker.C:
			ds.tick(room)
		}
	}
}

// tick recomputes remaining time, advances past expired deadlines, and
// broadcasts the full snapshot. Ticks against rooms that already ended are
// no-ops.
func (ds *DebateService) tick(room *debateRoom) {
	now := time.Now()
	room.mu.Lock()
	if room.phase != models.PhaseDebate && room.phase != models.PhaseQnA {
		room.mu.Unlock()
		return
	}
	prevPhase := room.phase
	var record *models.DebateRecord
	if !now.Before(room.deadline) {
		switch room.phase {
		case models.PhaseDebate:
			room.segment++
			if room.segment >= room.segmentsTotal {
				room.phase = models.PhaseQnA
				room.deadline = now.Add(ds.cfg.QnADuration)
			} else {
				room.deadline = now.Add(ds.cfg.SegmentDuration)
			}
		case models.PhaseQnA:
			rec := room.endLocked(now)
			record = &rec
		}
	}
	state := room.stateLocked(now)
	occupants := room.occupantsLocked()
	phase := room.phase
	room.mu.Unlock()

	ds.sendEach(occupants, EventDebateState, state)
	if record != nil {
		go ds.archive.DebateEnded(*record)
		ds.publish(room.code, "ended", state)
		ds.log.Info().Str("code", room.code).Msg("debate ended by timeout")
	} else if phase != prevPhase {
		ds.publish(room.code, "phase", state)
	}
}

func (ds *DebateService) room(code string) (*debateRoom, error) {
	ds.mu.RLock()
	room, ok := ds.rooms[code]
	ds.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: debate %s", ErrNotFound, code)
	}
	return room, nil
}

func (ds *DebateService) send(connID, event string, payload interface{}) {
	if ds.notifier == nil || connID == "" {
		return
	}
	ds.notifier.Send(connID, event, payload)
}

func (ds *DebateService) sendEach(connIDs []string, event string, payload interface{}) {
	for _, id := range connIDs {
		ds.send(id, event, payload)
	}
}

func (ds *DebateService) publish(code, eventType string, payload interface{}) {
	if ds.publisher == nil {
		return
	}
	ds.publisher.Publish(code, eventType, payload)
}

// endLocked marks the room terminal, halts its clock, and builds the archive
// record. Phase never moves again afterwards.
func (r *debateRoom) endLocked(now time.Time) models.DebateRecord {
	r.phase = models.PhaseEnded
	r.deadline = now
	r.stopTickerLocked()
	return models.DebateRecord{
		Code:           r.code,
		Name:           r.name,
		Debater1Name:   r.debater1Name,
		Debater2Name:   r.debater2Name,
		SegmentsTotal:  r.segmentsTotal,
		QuestionsAsked: r.questionsAsked,
		PeakViewers:    r.peakViewers,
		StartedAt:      r.startedAt,
		EndedAt:        now,
		Transcript:     r.transcript,
	}
}

// stopTickerLocked releases the room clock. Safe to call from every teardown
// path; only the first call closes the channel.
func (r *debateRoom) stopTickerLocked() {
	if !r.stopped {
		close(r.stop)
		r.stopped = true
	}
}

func (r *debateRoom) seatOf(connID string) string {
	if r.debater1 != nil && r.debater1.ConnID == connID {
		return "debater1"
	}
	if r.debater2 != nil && r.debater2.ConnID == connID {
		return "debater2"
	}
	return ""
}

func (r *debateRoom) memberNameLocked(connID string) string {
	if r.debater1 != nil && r.debater1.ConnID == connID {
		return r.debater1.Name
	}
	if r.debater2 != nil && r.debater2.ConnID == connID {
		return r.debater2.Name
	}
	if v, ok := r.viewers[connID]; ok {
		return v.name
	}
	return ""
}

func (r *debateRoom) isMemberLocked(connID string) bool {
	return r.memberNameLocked(connID) != ""
}

func (r *debateRoom) occupantsLocked() []string {
	ids := make([]string, 0, len(r.viewers)+2)
	if r.debater1 != nil {
		ids = append(ids, r.debater1.ConnID)
	}
	if r.debater2 != nil {
		ids = append(ids, r.debater2.ConnID)
	}
	for id := range r.viewers {
		ids = append(ids, id)
	}
	return ids
}

func (r *debateRoom) stateLocked(now time.Time) models.DebateState {
	state := models.DebateState{
		Code:             r.code,
		Name:             r.name,
		Phase:            r.phase,
		Segment:          r.segment,
		SegmentsTotal:    r.segmentsTotal,
		Debater1:         r.debater1,
		Debater2:         r.debater2,
		ViewerCount:      len(r.viewers),
		PendingQuestions: r.pendingLocked(),
		SelectedQuestion: r.selected,
	}
	switch r.phase {
	case models.PhaseDebate:
		state.Speaker = models.DebateSpeaker(r.segment)
		state.RemainingSeconds = remainingSeconds(r.deadline, now)
	case models.PhaseQnA:
		state.Speaker = models.SpeakerBoth
		state.RemainingSeconds = remainingSeconds(r.deadline, now)
	}
	return state
}

func (r *debateRoom) pendingLocked() int {
	total := 0
	for _, v := range r.viewers {
		total += len(v.pending)
	}
	return total
}

func remainingSeconds(deadline, now time.Time) int {
	left := deadline.Sub(now)
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}
