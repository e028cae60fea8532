package models

import "time"

// Session is a live connection known to the registry. Queue entries and rooms
// reference sessions by id and never own them.
type Session struct {
	ID          string
	Name        string
	Mode        Mode // last requested mode, empty until the first match request
	RoomID      string
	ConnectedAt time.Time
}

// QueueEntry is a waiting connection inside one matchmaking queue. A
// connection id appears in at most one queue at any time.
type QueueEntry struct {
	ConnID     string
	Mode       Mode
	EnqueuedAt time.Time
}

// PresenceCounts is the liveness snapshot pushed to every connection. Wildcard
// queue entries are folded into the video column for display.
type PresenceCounts struct {
	Total   int          `json:"total"`
	PerMode map[Mode]int `json:"perMode"`
}
