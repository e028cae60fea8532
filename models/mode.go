package models

import "fmt"

// Mode is the chat format a connection asks for. ModeAny is a wildcard that
// resolves to a concrete mode at match time.
type Mode string

const (
	ModeVideo Mode = "video"
	ModeAudio Mode = "audio"
	ModeText  Mode = "text"
	ModeAny   Mode = "any"
)

// ConcreteModes lists the modes a room can actually run in, in matchmaking
// priority order for wildcard requesters.
var ConcreteModes = []Mode{ModeVideo, ModeAudio, ModeText}

// ParseMode validates a wire-level mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeVideo, ModeAudio, ModeText, ModeAny:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// IsConcrete reports whether the mode names an actual chat format.
func (m Mode) IsConcrete() bool {
	return m == ModeVideo || m == ModeAudio || m == ModeText
}

// CompatibleWith reports whether two requested modes can be paired.
func (m Mode) CompatibleWith(other Mode) bool {
	if m == ModeAny || other == ModeAny {
		return true
	}
	return m == other
}

// ResolveMode picks the effective room mode for two requested modes. A
// wildcard defers to the concrete side; two wildcards default to video.
func ResolveMode(a, b Mode) Mode {
	if a == ModeAny && b == ModeAny {
		return ModeVideo
	}
	if a == ModeAny {
		return b
	}
	return a
}
