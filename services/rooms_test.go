package services

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/Mims9141/structuredchat/models"
)

func TestSendMessageReachesPeerOnly(t *testing.T) {
	store, notifier := newTestStore(Config{})
	trigger, queued, roomID := pairUp(t, store, notifier, "text")

	if err := store.SendMessage(trigger, roomID, "  hello  "); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	ev, ok := notifier.lastEvent(queued, EventMessageReceived)
	if !ok {
		t.Fatalf("Peer got no message")
	}
	p := ev.Payload.(MessagePayload)
	if p.Text != "hello" {
		t.Errorf("Expected trimmed text %q, got %q", "hello", p.Text)
	}
	if p.SenderID != trigger || p.SenderName != "Trigger" {
		t.Errorf("Sender identity wrong: %+v", p)
	}
	if _, ok := notifier.lastEvent(trigger, EventMessageReceived); ok {
		t.Errorf("Sender must not receive its own message")
	}

	// Blank messages are dropped silently.
	if err := store.SendMessage(trigger, roomID, "   "); err != nil {
		t.Errorf("Blank message should be a silent no-op, got %v", err)
	}
	if n := notifier.countEvents(queued, EventMessageReceived); n != 1 {
		t.Errorf("Expected exactly 1 delivered message, got %d", n)
	}

	if err := store.SendMessage(trigger, "no-such-room", "hi"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestAdvanceAuthorityOnly(t *testing.T) {
	store, notifier := newTestStore(Config{})
	trigger, queued, roomID := pairUp(t, store, notifier, "video")

	if err := store.AdvanceSegment(queued, roomID); !errors.Is(err, ErrNotAuthority) {
		t.Errorf("Expected ErrNotAuthority for user2, got %v", err)
	}

	if err := store.AdvanceSegment(trigger, roomID); err != nil {
		t.Fatalf("Authority advance failed: %v", err)
	}
	ev, ok := notifier.lastEvent(queued, EventSegmentChanged)
	if !ok {
		t.Fatalf("Peer got no segment-changed")
	}
	p := ev.Payload.(SegmentChangedPayload)
	if p.Segment != 1 || p.Round != 1 {
		t.Errorf("Expected segment 1 round 1, got %d/%d", p.Segment, p.Round)
	}
	// The initiator drives its own timer locally and gets no echo.
	if _, ok := notifier.lastEvent(trigger, EventSegmentChanged); ok {
		t.Errorf("Initiator should not be echoed its own advance")
	}
}

func TestAdvanceWrapIncrementsRound(t *testing.T) {
	store, notifier := newTestStore(Config{})
	trigger, queued, roomID := pairUp(t, store, notifier, "video")

	for i := 0; i < 4; i++ {
		if err := store.AdvanceSegment(trigger, roomID); err != nil {
			t.Fatalf("advance %d failed: %v", i, err)
		}
	}
	ev, ok := notifier.lastEvent(queued, EventSegmentChanged)
	if !ok {
		t.Fatalf("Peer got no segment-changed")
	}
	p := ev.Payload.(SegmentChangedPayload)
	if p.Segment != 0 || p.Round != 2 {
		t.Errorf("Expected wraparound to segment 0 round 2, got %d/%d", p.Segment, p.Round)
	}
}

func TestSkipPolicies(t *testing.T) {
	// Default authority policy: only user1 may skip.
	store, notifier := newTestStore(Config{})
	trigger, queued, roomID := pairUp(t, store, notifier, "video")
	if err := store.SkipSegment(queued, roomID); !errors.Is(err, ErrSkipDenied) {
		t.Errorf("Expected skip denied under authority policy, got %v", err)
	}
	if err := store.SkipSegment(trigger, roomID); err != nil {
		t.Errorf("Authority skip failed: %v", err)
	}

	// Anyone policy: both members may skip.
	store, notifier = newTestStore(Config{SkipPolicy: models.SkipAnyone})
	_, queued, roomID = pairUp(t, store, notifier, "video")
	if err := store.SkipSegment(queued, roomID); err != nil {
		t.Errorf("Expected user2 skip allowed under anyone policy, got %v", err)
	}

	// Alternating policy: only the current segment's speaker may skip.
	store, notifier = newTestStore(Config{SkipPolicy: models.SkipAlternating})
	trigger, queued, roomID = pairUp(t, store, notifier, "video")
	if err := store.SkipSegment(queued, roomID); !errors.Is(err, ErrSkipDenied) {
		t.Errorf("Segment 0 belongs to user1; user2 skip should fail, got %v", err)
	}
	if err := store.SkipSegment(trigger, roomID); err != nil {
		t.Fatalf("Speaker skip failed: %v", err)
	}
	// Segment 1 belongs to user2.
	if err := store.SkipSegment(trigger, roomID); !errors.Is(err, ErrSkipDenied) {
		t.Errorf("Segment 1 belongs to user2; user1 skip should fail, got %v", err)
	}
	if err := store.SkipSegment(queued, roomID); err != nil {
		t.Errorf("user2 skip in its own segment failed: %v", err)
	}
}

func TestLeaveRoomNotifiesPeerAndArchives(t *testing.T) {
	store, notifier := newTestStore(Config{})
	archive := &fakeArchive{}
	store.SetArchiveSink(archive)
	trigger, queued, roomID := pairUp(t, store, notifier, "text")

	store.SendMessage(trigger, roomID, "first")
	if err := store.LeaveRoom(trigger, roomID); err != nil {
		t.Fatalf("LeaveRoom failed: %v", err)
	}

	ev, ok := notifier.lastEvent(queued, EventPeerLeft)
	if !ok {
		t.Fatalf("Peer got no peer-left")
	}
	if ev.Payload.(PeerLeftPayload).RoomID != roomID {
		t.Errorf("peer-left names the wrong room")
	}
	if err := store.SendMessage(queued, roomID, "late"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected the room to be gone, got %v", err)
	}

	waitFor(t, func() bool { return archive.roomCount() == 1 })
	rec := archive.roomAt(0)
	if rec.Reason != "left" {
		t.Errorf("Expected close reason left, got %q", rec.Reason)
	}
	if rec.Mode != models.ModeText || rec.RoomID != roomID {
		t.Errorf("Record identity wrong: %+v", rec)
	}
	if len(rec.Transcript) != 1 || rec.Transcript[0].Text != "first" {
		t.Errorf("Transcript not archived: %+v", rec.Transcript)
	}
}

func TestDisconnectTellsPeerResumeMode(t *testing.T) {
	store, notifier := newTestStore(Config{})
	archive := &fakeArchive{}
	store.SetArchiveSink(archive)

	wild := store.Register("Wild")
	vid := store.Register("Vid")
	// Wild waits with a wildcard; Vid triggers a video match against it.
	store.RequestMatch(wild.ID, "any", "")
	store.RequestMatch(vid.ID, "video", "")
	ev, ok := notifier.lastEvent(vid.ID, EventMatchFound)
	if !ok {
		t.Fatalf("no match happened")
	}
	roomID := ev.Payload.(MatchFoundPayload).RoomID

	store.Disconnect(vid.ID)

	dev, ok := notifier.lastEvent(wild.ID, EventPeerDisconnected)
	if !ok {
		t.Fatalf("Remaining member got no peer-disconnected")
	}
	p := dev.Payload.(PeerDisconnectedPayload)
	if p.RoomID != roomID {
		t.Errorf("Wrong room id %s", p.RoomID)
	}
	// The room ran as video, but Wild originally asked for any; the resume
	// hint keeps the wildcard.
	if p.ResumeMode != models.ModeAny {
		t.Errorf("Expected resume mode any, got %s", p.ResumeMode)
	}

	waitFor(t, func() bool { return archive.roomCount() == 1 })
	if got := archive.roomAt(0).Reason; got != "disconnected" {
		t.Errorf("Expected close reason disconnected, got %q", got)
	}
}

func TestReportTearsDownQuietly(t *testing.T) {
	store, notifier := newTestStore(Config{})
	archive := &fakeArchive{}
	store.SetArchiveSink(archive)
	trigger, queued, roomID := pairUp(t, store, notifier, "video")

	if err := store.Report(queued, roomID, "abuse"); err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	// The reported member sees a plain peer-left and learns nothing about
	// the report.
	if _, ok := notifier.lastEvent(trigger, EventPeerLeft); !ok {
		t.Errorf("Reported member should see peer-left")
	}
	if _, ok := notifier.lastEvent(trigger, EventPeerDisconnected); ok {
		t.Errorf("Reported member should not see peer-disconnected")
	}

	waitFor(t, func() bool { return archive.reportCount() == 1 && archive.roomCount() == 1 })
	rep := archive.reportAt(0)
	if rep.ReporterID != queued || rep.ReportedID != trigger {
		t.Errorf("Report parties wrong: %+v", rep)
	}
	if rep.Reason != "abuse" || rep.RoomID != roomID {
		t.Errorf("Report detail wrong: %+v", rep)
	}
	if got := archive.roomAt(0).Reason; got != "reported" {
		t.Errorf("Expected room close reason reported, got %q", got)
	}

	if err := store.Report(queued, roomID, "again"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after teardown, got %v", err)
	}
}

func TestRelayTagsSender(t *testing.T) {
	store, notifier := newTestStore(Config{})
	trigger, queued, roomID := pairUp(t, store, notifier, "video")

	blob := json.RawMessage(`{"sdp":"v=0"}`)
	if err := store.Relay(trigger, roomID, EventRelayOffer, blob); err != nil {
		t.Fatalf("Relay failed: %v", err)
	}

	ev, ok := notifier.lastEvent(queued, EventRelayOffer)
	if !ok {
		t.Fatalf("Peer got no relay-offer")
	}
	p := ev.Payload.(RelayPayload)
	if p.From != trigger {
		t.Errorf("Expected sender tag %s, got %s", trigger, p.From)
	}
	if string(p.Payload) != `{"sdp":"v=0"}` {
		t.Errorf("Signaling blob altered: %s", p.Payload)
	}

	outsider := store.Register("Outsider")
	if err := store.Relay(outsider.ID, roomID, EventRelayOffer, blob); !errors.Is(err, ErrNotInRoom) {
		t.Errorf("Expected ErrNotInRoom, got %v", err)
	}
}

func TestJoinRoomReplaysPosition(t *testing.T) {
	store, notifier := newTestStore(Config{})
	trigger, queued, roomID := pairUp(t, store, notifier, "video")

	store.AdvanceSegment(trigger, roomID)
	if err := store.JoinRoom(queued, roomID); err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}
	// One notification from the advance, one replay on join.
	if n := notifier.countEvents(queued, EventSegmentChanged); n != 2 {
		t.Errorf("Expected the segment position to be replayed, got %d events", n)
	}

	outsider := store.Register("Outsider")
	if err := store.JoinRoom(outsider.ID, roomID); !errors.Is(err, ErrNotInRoom) {
		t.Errorf("Expected ErrNotInRoom, got %v", err)
	}
}

func TestTypingForwardsToPeer(t *testing.T) {
	store, notifier := newTestStore(Config{})
	trigger, queued, roomID := pairUp(t, store, notifier, "text")

	if err := store.Typing(trigger, roomID, true); err != nil {
		t.Fatalf("Typing failed: %v", err)
	}
	ev, ok := notifier.lastEvent(queued, EventTyping)
	if !ok {
		t.Fatalf("Peer got no typing event")
	}
	p := ev.Payload.(TypingPayload)
	if !p.IsTyping || p.SenderID != trigger {
		t.Errorf("Typing payload wrong: %+v", p)
	}
}
