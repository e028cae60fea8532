package services

import "github.com/Mims9141/structuredchat/models"

// Notifier delivers outbound events to live connections. The websocket hub
// implements it; tests substitute a recorder.
type Notifier interface {
	Send(connID, event string, payload interface{})
	Broadcast(event string, payload interface{})
}

// ArchiveSink receives lifecycle records for durable storage. Implementations
// must tolerate being called from multiple goroutines.
type ArchiveSink interface {
	RoomClosed(rec models.RoomRecord)
	DebateEnded(rec models.DebateRecord)
	ReportFiled(rec models.ReportRecord)
}

// NoopArchive drops every record. Wired when no database is configured so the
// in-memory core never has to nil-check its sink.
type NoopArchive struct{}

func (NoopArchive) RoomClosed(models.RoomRecord) {}

func (NoopArchive) DebateEnded(models.DebateRecord) {}

func (NoopArchive) ReportFiled(models.ReportRecord) {}

// EventPublisher feeds debate room events to the external stream for
// out-of-process consumers. Publishing is best effort.
type EventPublisher interface {
	Publish(code, eventType string, payload interface{})
}

// RateGate answers whether a viewer action is inside its rate window. A nil
// gate admits everything.
type RateGate interface {
	AllowQuestion(code, connID string) bool
	AllowReaction(code, connID string) bool
}

// PollBox holds audience poll state for debate rooms. Vote reports false for
// a duplicate ballot without treating it as an error.
type PollBox interface {
	Create(code, question string, options []string) (string, error)
	Vote(code, pollID, option, voterID string) (bool, error)
	Tally(code string) ([]models.PollTally, error)
}
