package services

import (
	"testing"

	"github.com/Mims9141/structuredchat/models"
)

func TestCountsFoldWildcardIntoVideo(t *testing.T) {
	store, _ := newTestStore(Config{})
	a := store.Register("A")
	store.RequestMatch(a.ID, "any", "")

	counts := store.Counts()
	if counts.Total != 1 {
		t.Errorf("Expected total 1, got %d", counts.Total)
	}
	if counts.PerMode[models.ModeVideo] != 1 {
		t.Errorf("Expected the wildcard waiter under video, got %v", counts.PerMode)
	}
	if counts.PerMode[models.ModeAny] != 0 {
		t.Errorf("Wildcard must not get its own column, got %v", counts.PerMode)
	}
}

func TestCountsIncludeRoomMembers(t *testing.T) {
	store, _ := newTestStore(Config{})
	a := store.Register("A")
	b := store.Register("B")
	c := store.Register("C")
	store.RequestMatch(a.ID, "text", "")
	store.RequestMatch(b.ID, "text", "")
	store.RequestMatch(c.ID, "audio", "")

	counts := store.Counts()
	if counts.Total != 3 {
		t.Errorf("Expected 3 sessions, got %d", counts.Total)
	}
	if counts.PerMode[models.ModeText] != 2 {
		t.Errorf("Expected the text room to count 2 members, got %d", counts.PerMode[models.ModeText])
	}
	if counts.PerMode[models.ModeAudio] != 1 {
		t.Errorf("Expected 1 audio waiter, got %d", counts.PerMode[models.ModeAudio])
	}

	store.Disconnect(a.ID)
	counts = store.Counts()
	if counts.Total != 2 {
		t.Errorf("Expected 2 sessions after disconnect, got %d", counts.Total)
	}
	if counts.PerMode[models.ModeText] != 0 {
		t.Errorf("Expected the text room gone after disconnect, got %d", counts.PerMode[models.ModeText])
	}
}

func TestPresenceBroadcastOnChange(t *testing.T) {
	store, notifier := newTestStore(Config{})

	sess := store.Register("A")
	if notifier.broadcastCount(EventPresenceCounts) == 0 {
		t.Errorf("Expected a presence broadcast after registration")
	}

	before := notifier.broadcastCount(EventPresenceCounts)
	store.Disconnect(sess.ID)
	if notifier.broadcastCount(EventPresenceCounts) <= before {
		t.Errorf("Expected a presence broadcast after disconnect")
	}
}

func TestRegisterDefaultsName(t *testing.T) {
	store, _ := newTestStore(Config{})
	sess := store.Register("   ")
	if sess.Name != "anonymous" {
		t.Errorf("Expected blank names to default to anonymous, got %q", sess.Name)
	}
	if sess.ID == "" {
		t.Errorf("Expected a generated connection id")
	}

	other := store.Register("B")
	if other.ID == sess.ID {
		t.Errorf("Connection ids must be unique")
	}
}
