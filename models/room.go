package models

import "time"

// Role identifies a member's position in a 1:1 room. User1 is the requester
// that completed the match; it drives segment timing and speaks first.
type Role string

const (
	RoleUser1 Role = "user1"
	RoleUser2 Role = "user2"
)

// SkipPolicy controls who may cut a segment short.
type SkipPolicy string

const (
	// SkipAuthority restricts skips to the timing authority (user1).
	SkipAuthority SkipPolicy = "authority"
	// SkipAnyone lets either member skip.
	SkipAnyone SkipPolicy = "anyone"
	// SkipAlternating grants the skip to whoever is speaking in the
	// current segment.
	SkipAlternating SkipPolicy = "alternating"
)

// ParseSkipPolicy validates a configured skip policy string.
func ParseSkipPolicy(s string) (SkipPolicy, bool) {
	switch SkipPolicy(s) {
	case SkipAuthority, SkipAnyone, SkipAlternating:
		return SkipPolicy(s), true
	}
	return "", false
}

// Room is a paired 1:1 session running the 4-segment turn cycle. Exactly two
// members while active; destroyed when either member leaves or disconnects.
type Room struct {
	ID              string
	Mode            Mode // resolved, never ModeAny
	User1           string
	User2           string
	User1Name       string
	User2Name       string
	CreatedAt       time.Time
	Segment         int // 0..3
	Round           int // starts at 1, increments on 3->0 wraparound
	SegmentStart    time.Time
	SegmentDuration time.Duration
	Transcript      []TranscriptEntry
}

// speakingOrder fixes who holds the floor in each segment of a round.
var speakingOrder = [4]Role{RoleUser1, RoleUser2, RoleUser2, RoleUser1}

// SegmentSpeaker returns the role holding the floor for a segment index.
func SegmentSpeaker(segment int) Role {
	return speakingOrder[segment%4]
}

// CanSpeak reports whether the given role holds the floor in the given
// segment. Out-of-range segments never grant the floor.
func CanSpeak(segment int, role Role) bool {
	if segment < 0 || segment > 3 {
		return false
	}
	return speakingOrder[segment] == role
}

// SkipAllowed reports whether a member with the given role may skip the
// current segment under the configured policy.
func SkipAllowed(policy SkipPolicy, segment int, role Role) bool {
	switch policy {
	case SkipAnyone:
		return true
	case SkipAlternating:
		return SegmentSpeaker(segment) == role
	default:
		return role == RoleUser1
	}
}

// RoleOf returns the role a connection holds in the room.
func (r *Room) RoleOf(connID string) (Role, bool) {
	switch connID {
	case r.User1:
		return RoleUser1, true
	case r.User2:
		return RoleUser2, true
	}
	return "", false
}

// PeerOf returns the other member's connection id.
func (r *Room) PeerOf(connID string) (string, bool) {
	switch connID {
	case r.User1:
		return r.User2, true
	case r.User2:
		return r.User1, true
	}
	return "", false
}

// NameOf returns the display name recorded for a member.
func (r *Room) NameOf(connID string) string {
	switch connID {
	case r.User1:
		return r.User1Name
	case r.User2:
		return r.User2Name
	}
	return ""
}

// Advance moves the room to the next segment, resets the segment clock, and
// reports whether the round wrapped.
func (r *Room) Advance(now time.Time) bool {
	r.Segment = (r.Segment + 1) % 4
	r.SegmentStart = now
	if r.Segment == 0 {
		r.Round++
		return true
	}
	return false
}

// Remaining returns how much of the current segment is left at the given
// instant, floored at zero.
func (r *Room) Remaining(now time.Time) time.Duration {
	left := r.SegmentDuration - now.Sub(r.SegmentStart)
	if left < 0 {
		return 0
	}
	return left
}
