package models

import "testing"

func TestDebateSpeakerParity(t *testing.T) {
	for seg := 0; seg < 8; seg++ {
		want := SpeakerDebater1
		if seg%2 == 1 {
			want = SpeakerDebater2
		}
		if got := DebateSpeaker(seg); got != want {
			t.Errorf("Segment %d speaker = %s, want %s", seg, got, want)
		}
	}
}
