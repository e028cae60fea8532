package services

import "errors"

// Protocol violations: the client asked for something its current state does
// not allow. These are rejected without touching any state.
var (
	ErrBadMode       = errors.New("invalid mode")
	ErrBadRole       = errors.New("invalid role")
	ErrAlreadyInRoom = errors.New("already in a room")
	ErrNotInRoom     = errors.New("not a member of this room")
	ErrNotAuthority  = errors.New("only the segment authority may advance")
	ErrSkipDenied    = errors.New("skip not permitted")
	ErrAlreadyJoined = errors.New("already joined a debate")
	ErrSlotTaken     = errors.New("debater slots are full")
	ErrNotDebater    = errors.New("only a seated debater may do this")
	ErrNotViewer     = errors.New("only a viewer may do this")
	ErrWrongPhase    = errors.New("not allowed in the current phase")
	ErrStartNotReady = errors.New("both debater slots must be filled")
	ErrPollInvalid   = errors.New("invalid poll request")

	// ErrNoPolls reports that no poll backend is wired; deployments without
	// Redis run with polls disabled.
	ErrNoPolls = errors.New("polls are not available")
)

// ErrNotFound covers operations against unknown sessions, rooms, or codes.
var ErrNotFound = errors.New("not found")

// ErrorCode maps a service error to the stable code carried by the error
// event. Unknown errors report as internal.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not-found"
	case errors.Is(err, ErrBadMode),
		errors.Is(err, ErrBadRole),
		errors.Is(err, ErrAlreadyInRoom),
		errors.Is(err, ErrNotInRoom),
		errors.Is(err, ErrNotAuthority),
		errors.Is(err, ErrSkipDenied),
		errors.Is(err, ErrAlreadyJoined),
		errors.Is(err, ErrSlotTaken),
		errors.Is(err, ErrNotDebater),
		errors.Is(err, ErrNotViewer),
		errors.Is(err, ErrWrongPhase),
		errors.Is(err, ErrStartNotReady),
		errors.Is(err, ErrPollInvalid):
		return "protocol-violation"
	}
	return "internal"
}
