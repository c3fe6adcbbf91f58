// Package midiout mirrors sequencer hits to an external MIDI device as
// General MIDI drum notes. Wiring it up is optional; the engine sounds the
// same without it.
package midiout

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // register the MIDI driver

	"github.com/upaura/music-app/internal/synth"
)

// GM percussion key numbers for the sequencer tracks: bass drum, acoustic
// snare, closed hi-hat, hand clap.
var drumNotes = [...]uint8{36, 38, 42, 39}

// GM percussion channel (10, zero-based 9).
const drumChannel = 9

// Sink forwards track triggers to a MIDI output port. Triggers are queued
// and sent from a background goroutine so the audio render path never waits
// on device I/O.
type Sink struct {
	name string
	send func(midi.Message) error

	mu        sync.Mutex // serializes send between run loop and note-off timers
	hits      chan int
	done      chan struct{}
	closeOnce sync.Once
}

// Open connects to the first MIDI output port whose name contains portName,
// case-insensitively.
func Open(portName string) (*Sink, error) {
	want := strings.ToLower(portName)
	for _, port := range midi.GetOutPorts() {
		if !strings.Contains(strings.ToLower(port.String()), want) {
			continue
		}
		send, err := midi.SendTo(port)
		if err != nil {
			return nil, fmt.Errorf("open MIDI port %s: %w", port, err)
		}
		s := &Sink{
			name: port.String(),
			send: send,
			hits: make(chan int, 64),
			done: make(chan struct{}),
		}
		go s.run()
		log.Printf("midiout: sending drum hits to %q", s.name)
		return s, nil
	}
	return nil, fmt.Errorf("no MIDI output port matches %q", portName)
}

// Port returns the name of the connected output port.
func (s *Sink) Port() string {
	return s.name
}

// Trigger queues a drum hit for a track. Never blocks; hits are dropped if
// the device cannot keep up. Implements sequencer.Trigger.
func (s *Sink) Trigger(track int) {
	if track < 0 || track >= len(drumNotes) {
		return
	}
	select {
	case s.hits <- track:
	default:
	}
}

// Close stops the send loop. Queued hits are discarded.
func (s *Sink) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (s *Sink) run() {
	for {
		select {
		case <-s.done:
			return
		case track := <-s.hits:
			s.hit(track)
		}
	}
}

// hit sends the note-on and schedules the note-off for when the synth
// envelope would have rung out.
func (s *Sink) hit(track int) {
	note := drumNotes[track]
	profile := synth.Profiles[track]

	s.mu.Lock()
	err := s.send(midi.NoteOn(drumChannel, note, velocityFor(profile)))
	s.mu.Unlock()
	if err != nil {
		log.Printf("midiout: note on failed: %v", err)
		return
	}

	time.AfterFunc(profile.GainDecay, func() {
		select {
		case <-s.done:
			return
		default:
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.send(midi.NoteOff(drumChannel, note)); err != nil {
			log.Printf("midiout: note off failed: %v", err)
		}
	})
}

// velocityFor maps a track's envelope level onto a playable velocity range.
// The raw mixer gains sit well below 1.0 and would land near-silent notes.
func velocityFor(p synth.Profile) uint8 {
	return uint8(90 + p.Gain*70)
}
