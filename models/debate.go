package models

import "time"

// DebatePhase is the lifecycle stage of a debate room. Transitions are
// monotonic: lobby -> debate -> qna -> ended, never backwards.
type DebatePhase string

const (
	PhaseLobby  DebatePhase = "lobby"
	PhaseDebate DebatePhase = "debate"
	PhaseQnA    DebatePhase = "qna"
	PhaseEnded  DebatePhase = "ended"
)

// Speaker names who holds the mic in the current debate segment.
type Speaker string

const (
	SpeakerDebater1 Speaker = "debater1"
	SpeakerDebater2 Speaker = "debater2"
	SpeakerBoth     Speaker = "both"
	SpeakerNone     Speaker = ""
)

// DebateSpeaker derives the active speaker from a segment index. Even
// segments belong to debater1, odd to debater2.
func DebateSpeaker(segment int) Speaker {
	if segment%2 == 0 {
		return SpeakerDebater1
	}
	return SpeakerDebater2
}

// Question is a viewer-submitted Q&A item, queued per viewer until drawn.
type Question struct {
	ID         string    `json:"id"`
	ViewerID   string    `json:"viewerId"`
	ViewerName string    `json:"viewerName"`
	Text       string    `json:"text"`
	AskedAt    time.Time `json:"askedAt"`
}

// DebateSeat is a filled debater slot as exposed in state snapshots.
type DebateSeat struct {
	ConnID string `json:"connId"`
	Name   string `json:"name"`
}

// PollTally is the aggregated result of one audience poll, as broadcast to
// the room and served over REST.
type PollTally struct {
	PollID    string           `json:"pollId"`
	Question  string           `json:"question"`
	Options   []string         `json:"options"`
	Counts    map[string]int64 `json:"counts"`
	Voters    int64            `json:"voters"`
	CreatedAt int64            `json:"createdAt"`
}

// DebateState is the full room snapshot broadcast on every tick and served
// over REST. Clients render from this alone; no deltas.
type DebateState struct {
	Code             string      `json:"code"`
	Name             string      `json:"name"`
	Phase            DebatePhase `json:"phase"`
	Segment          int         `json:"segment"`
	SegmentsTotal    int         `json:"segmentsTotal"`
	Speaker          Speaker     `json:"speaker"`
	RemainingSeconds int         `json:"remainingSeconds"`
	Debater1         *DebateSeat `json:"debater1,omitempty"`
	Debater2         *DebateSeat `json:"debater2,omitempty"`
	ViewerCount      int         `json:"viewerCount"`
	PendingQuestions int         `json:"pendingQuestions"`
	SelectedQuestion *Question   `json:"selectedQuestion,omitempty"`
}
