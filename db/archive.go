package db

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Mims9141/structuredchat/models"
)

const insertTimeout = 10 * time.Second

// Archive writes closed rooms, ended debates, and reports to MongoDB. Every
// write is best-effort: failures are logged and dropped so teardown never
// stalls on the database.
type Archive struct {
	db  *mongo.Database
	log zerolog.Logger
}

// NewArchive builds the sink against the connected database.
func NewArchive() *Archive {
	return &Archive{
		db:  MongoDatabase,
		log: log.With().Str("component", "archive").Logger(),
	}
}

// RoomClosed records a closed 1:1 room, transcript included.
func (a *Archive) RoomClosed(rec models.RoomRecord) {
	a.insert("room_history", rec)
}

// DebateEnded records a finished debate.
func (a *Archive) DebateEnded(rec models.DebateRecord) {
	a.insert("debate_history", rec)
}

// ReportFiled records a member report for moderation review.
func (a *Archive) ReportFiled(rec models.ReportRecord) {
	a.insert("reports", rec)
}

func (a *Archive) insert(collection string, doc interface{}) {
	if a == nil || a.db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
	defer cancel()

	if _, err := a.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		a.log.Error().Str("collection", collection).Err(err).Msg("archive insert failed")
	}
}
