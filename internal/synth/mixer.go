package synth

import (
	"sync"

	"github.com/upaura/music-app/internal/audio"
)

// pcmScale maps the summed [-1,1] voice signal to int16. Leaves headroom for
// all four tracks sounding at once; rare overlap peaks clip at the limit.
const pcmScale = 28000

// maxVoices bounds concurrent voices. The step cadence keeps the live count
// in the single digits at legal tempos, so hitting the cap means a runaway
// trigger source; the oldest voice is dropped rather than growing the slice.
const maxVoices = 64

// Mixer sums all live voices into interleaved stereo PCM. Triggers are
// fire-and-forget: they never block and never fail, overlapping voices just
// stack.
type Mixer struct {
	mu      sync.Mutex
	voices  []*voice
	scratch []float64
	volume  float64
}

func NewMixer() *Mixer {
	return &Mixer{volume: 1}
}

// SetVolume sets the master volume, clamped to 0..1.
func (m *Mixer) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	m.mu.Lock()
	m.volume = v
	m.mu.Unlock()
}

// Volume returns the master volume.
func (m *Mixer) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// Trigger spawns a voice for the given track index. Unknown indices are
// ignored.
func (m *Mixer) Trigger(track int) {
	if track < 0 || track >= len(Profiles) {
		return
	}
	m.mu.Lock()
	if len(m.voices) >= maxVoices {
		m.voices = m.voices[1:]
	}
	m.voices = append(m.voices, newVoice(Profiles[track]))
	m.mu.Unlock()
}

// ActiveVoices returns the number of voices still sounding.
func (m *Mixer) ActiveVoices() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// Render fills dst (interleaved stereo int16, even length) with the mix of
// all live voices. Finished voices are dropped. Renders silence when no
// voice is live.
func (m *Mixer) Render(dst []int16) {
	n := len(dst) / 2

	m.mu.Lock()
	defer m.mu.Unlock()

	if cap(m.scratch) < n {
		m.scratch = make([]float64, n)
	}
	scratch := m.scratch[:n]
	for i := range scratch {
		scratch[i] = 0
	}

	live := m.voices[:0]
	for _, v := range m.voices {
		if v.renderInto(scratch) {
			live = append(live, v)
		}
	}
	m.voices = live

	for i, s := range scratch {
		out := audio.ClipToInt16(s * pcmScale * m.volume)
		dst[2*i] = out
		dst[2*i+1] = out
	}
}
