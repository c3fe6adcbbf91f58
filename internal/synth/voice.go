package synth

import (
	"math"

	"github.com/upaura/music-app/internal/audio"
)

// envelopeFloor is the near-zero target of the exponential envelopes.
// Exponential ramps cannot reach zero, so both gain and frequency decay
// toward this floor instead.
const envelopeFloor = 0.01

// voice is one fire-and-forget percussive event. Each trigger spawns an
// independent voice; the voice advances its own phase and envelopes and
// reports done once the gain decay has run its course.
type voice struct {
	profile Profile
	phase   float64 // oscillator phase in [0,1)
	age     int     // samples rendered so far
}

func newVoice(p Profile) *voice {
	return &voice{profile: p}
}

// renderInto adds up to len(dst) mono samples into dst, advancing the voice.
// Returns false once the voice has fully decayed.
func (v *voice) renderInto(dst []float64) bool {
	total := int(v.profile.GainDecay.Seconds() * audio.SampleRate)
	for i := range dst {
		if v.age >= total {
			return false
		}
		t := float64(v.age) / audio.SampleRate
		dst[i] += v.sample() * v.gainAt(t)
		v.phase += v.freqAt(t) / audio.SampleRate
		if v.phase >= 1 {
			v.phase -= 1
		}
		v.age++
	}
	return v.age < total
}

// gainAt is the exponential gain envelope: Gain decaying to the floor over
// GainDecay, the same curve as a Web Audio exponential ramp.
func (v *voice) gainAt(t float64) float64 {
	d := v.profile.GainDecay.Seconds()
	if t >= d {
		return 0
	}
	return v.profile.Gain * math.Pow(envelopeFloor/v.profile.Gain, t/d)
}

// freqAt is the oscillator frequency at voice time t. Profiles without a
// frequency sweep hold their start pitch.
func (v *voice) freqAt(t float64) float64 {
	if v.profile.FreqDecay <= 0 {
		return v.profile.Freq
	}
	d := v.profile.FreqDecay.Seconds()
	if t >= d {
		return envelopeFloor
	}
	return v.profile.Freq * math.Pow(envelopeFloor/v.profile.Freq, t/d)
}

// sample evaluates the oscillator at the current phase, range [-1, 1].
func (v *voice) sample() float64 {
	switch v.profile.Wave {
	case Sine:
		return math.Sin(v.phase * 2 * math.Pi)
	case Triangle:
		if v.phase < 0.5 {
			return 4*v.phase - 1
		}
		return 3 - 4*v.phase
	case Square:
		if v.phase < 0.5 {
			return 1
		}
		return -1
	case Sawtooth:
		return 2*v.phase - 1
	}
	return 0
}
