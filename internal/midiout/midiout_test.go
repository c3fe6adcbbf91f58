package midiout

import (
	"testing"

	"github.com/upaura/music-app/internal/synth"
)

func TestDrumNotesCoverEveryTrack(t *testing.T) {
	if len(drumNotes) != len(synth.Profiles) {
		t.Fatalf("drumNotes has %d entries, want one per track (%d)", len(drumNotes), len(synth.Profiles))
	}
	// GM percussion keys: bass drum, acoustic snare, closed hi-hat, hand clap
	want := []uint8{36, 38, 42, 39}
	for i, n := range drumNotes {
		if n != want[i] {
			t.Errorf("drumNotes[%d] = %d, want %d", i, n, want[i])
		}
	}
}

func TestVelocityForStaysPlayable(t *testing.T) {
	for _, p := range synth.Profiles {
		v := velocityFor(p)
		if v < 90 || v > 127 {
			t.Errorf("velocityFor(%s) = %d, want 90..127", p.Name, v)
		}
	}
	// Louder synth tracks map to harder hits
	if velocityFor(synth.Profiles[0]) <= velocityFor(synth.Profiles[2]) {
		t.Error("Kick velocity not above hi-hat velocity")
	}
}

func TestTriggerBoundsAndQueue(t *testing.T) {
	s := &Sink{hits: make(chan int, 4), done: make(chan struct{})}

	s.Trigger(-1)
	s.Trigger(len(drumNotes))
	if len(s.hits) != 0 {
		t.Errorf("Out-of-range triggers queued %d hits, want 0", len(s.hits))
	}

	s.Trigger(0)
	s.Trigger(3)
	if len(s.hits) != 2 {
		t.Errorf("Queued %d hits, want 2", len(s.hits))
	}
	if got := <-s.hits; got != 0 {
		t.Errorf("First hit = %d, want 0", got)
	}
}

func TestTriggerNeverBlocks(t *testing.T) {
	s := &Sink{hits: make(chan int, 1), done: make(chan struct{})}
	s.Trigger(0)
	s.Trigger(1) // queue full, must drop rather than block
	if len(s.hits) != 1 {
		t.Errorf("Queue holds %d hits, want 1 with overflow dropped", len(s.hits))
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	s := &Sink{hits: make(chan int, 1), done: make(chan struct{})}
	s.Close()
	s.Close()
	select {
	case <-s.done:
	default:
		t.Error("done channel not closed")
	}
}
