package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TranscriptEntry is one archived chat line from a room.
type TranscriptEntry struct {
	SenderID   string    `bson:"senderId" json:"senderId"`
	SenderName string    `bson:"senderName" json:"senderName"`
	Text       string    `bson:"text" json:"text"`
	SentAt     time.Time `bson:"sentAt" json:"sentAt"`
}

// RoomRecord is the archive document written when a 1:1 room closes.
// Reason is one of "left", "disconnected", "reported".
type RoomRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	RoomID     string             `bson:"roomId" json:"roomId"`
	Mode       Mode               `bson:"mode" json:"mode"`
	User1Name  string             `bson:"user1Name" json:"user1Name"`
	User2Name  string             `bson:"user2Name" json:"user2Name"`
	Reason     string             `bson:"reason" json:"reason"`
	Rounds     int                `bson:"rounds" json:"rounds"`
	Segment    int                `bson:"segment" json:"segment"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	ClosedAt   time.Time          `bson:"closedAt" json:"closedAt"`
	Transcript []TranscriptEntry  `bson:"transcript,omitempty" json:"transcript,omitempty"`
}

// DebateRecord is the archive document written when a debate room that
// actually ran reaches its end.
type DebateRecord struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Code           string             `bson:"code" json:"code"`
	Name           string             `bson:"name" json:"name"`
	Debater1Name   string             `bson:"debater1Name" json:"debater1Name"`
	Debater2Name   string             `bson:"debater2Name" json:"debater2Name"`
	SegmentsTotal  int                `bson:"segmentsTotal" json:"segmentsTotal"`
	QuestionsAsked int                `bson:"questionsAsked" json:"questionsAsked"`
	PeakViewers    int                `bson:"peakViewers" json:"peakViewers"`
	StartedAt      time.Time          `bson:"startedAt" json:"startedAt"`
	EndedAt        time.Time          `bson:"endedAt" json:"endedAt"`
	Transcript     []TranscriptEntry  `bson:"transcript,omitempty" json:"transcript,omitempty"`
}

// ReportRecord is the archive document for a member report. Filing one tears
// the room down; the record is what moderation tooling reads later.
type ReportRecord struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	RoomID       string             `bson:"roomId" json:"roomId"`
	ReporterID   string             `bson:"reporterId" json:"reporterId"`
	ReportedID   string             `bson:"reportedId" json:"reportedId"`
	ReportedName string             `bson:"reportedName" json:"reportedName"`
	Reason       string             `bson:"reason" json:"reason"`
	FiledAt      time.Time          `bson:"filedAt" json:"filedAt"`
}
