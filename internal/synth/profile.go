package synth

import "time"

// Waveform selects the oscillator shape for a voice.
type Waveform int

const (
	Sine Waveform = iota
	Triangle
	Square
	Sawtooth
)

func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Triangle:
		return "triangle"
	case Square:
		return "square"
	case Sawtooth:
		return "sawtooth"
	}
	return "unknown"
}

// Profile describes one track's percussive timbre: oscillator shape, start
// frequency with an optional downward sweep, and an exponentially decaying
// gain envelope. A voice ends when its gain envelope completes.
type Profile struct {
	Name      string
	Wave      Waveform
	Freq      float64       // start frequency in Hz
	FreqDecay time.Duration // 0 = constant pitch; otherwise sweep toward the floor
	Gain      float64       // envelope start level
	GainDecay time.Duration // time to decay from Gain to the envelope floor
}

// Profiles is the fixed track-index to timbre mapping. Index identity is part
// of the sequencer contract: 0 kick, 1 snare, 2 hi-hat, 3 clap.
var Profiles = [...]Profile{
	{Name: "Kick", Wave: Sine, Freq: 150, FreqDecay: 500 * time.Millisecond, Gain: 0.5, GainDecay: 500 * time.Millisecond},
	{Name: "Snare", Wave: Triangle, Freq: 200, Gain: 0.3, GainDecay: 200 * time.Millisecond},
	{Name: "Hi-Hat", Wave: Square, Freq: 800, Gain: 0.15, GainDecay: 100 * time.Millisecond},
	{Name: "Clap", Wave: Sawtooth, Freq: 250, Gain: 0.2, GainDecay: 150 * time.Millisecond},
}

// TrackNames returns the display names of all track profiles in index order.
func TrackNames() []string {
	names := make([]string, len(Profiles))
	for i, p := range Profiles {
		names[i] = p.Name
	}
	return names
}
