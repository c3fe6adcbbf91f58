package sequencer

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/upaura/music-app/internal/audio"
	"github.com/upaura/music-app/internal/synth"
)

// State is the transport state.
type State int

const (
	Stopped State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "stopped"
}

const (
	DefaultTempo = 120
	MinTempo     = 60
	MaxTempo     = 200
)

// StepEvent is published on every step advance for UI highlighting.
// Step is -1 when playback stops (no column highlighted).
type StepEvent struct {
	Step   int   `json:"step"`
	Tracks []int `json:"tracks"`
}

// Trigger is an additional sink for percussive events, fired alongside the
// built-in mixer on every active cell. Implementations must not block.
type Trigger interface {
	Trigger(track int)
}

// EngineConfig holds sequencer engine parameters.
type EngineConfig struct {
	Store  Store
	Tempo  int     // starting tempo in BPM; 0 means DefaultTempo
	Volume float64 // master volume; 0 leaves the mixer at full level
}

// Status is a point-in-time snapshot of the engine for the API layer.
type Status struct {
	State  string   `json:"state"`
	Step   int      `json:"step"`
	Tempo  int      `json:"tempo"`
	Grid   [][]bool `json:"grid"`
	Voices int      `json:"voices"`
}

// Engine owns the grid, the transport state machine, and the synth mixer,
// and renders the live mix as PCM frames at real-time rate.
//
// The step clock rides the audio sample timeline rather than a wall-clock
// interval timer: frames are paced by a ticker, but step boundaries are
// counted in samples, so ticker jitter never accumulates into drift.
type Engine struct {
	store Store
	mixer *synth.Mixer

	frameCh chan []int16
	stepCh  chan StepEvent

	mu             sync.Mutex
	grid           *Grid
	tempo          int
	state          State
	step           int // -1 while stopped
	stepRemain     int // samples until the next step boundary
	samplesPerStep int
	extra          []Trigger
}

// NewEngine creates a stopped engine with an empty grid.
func NewEngine(cfg EngineConfig) *Engine {
	tempo := cfg.Tempo
	if tempo == 0 {
		tempo = DefaultTempo
	}
	mixer := synth.NewMixer()
	if cfg.Volume > 0 {
		mixer.SetVolume(cfg.Volume)
	}
	return &Engine{
		store:   cfg.Store,
		mixer:   mixer,
		grid:    NewGrid(),
		tempo:   clampTempo(tempo),
		state:   Stopped,
		step:    -1,
		frameCh: make(chan []int16, 100),
		stepCh:  make(chan StepEvent, 32),
	}
}

// clampTempo bounds a BPM value to the legal range rather than rejecting it.
func clampTempo(bpm int) int {
	if bpm < MinTempo {
		return MinTempo
	}
	if bpm > MaxTempo {
		return MaxTempo
	}
	return bpm
}

// samplesPerStep converts a tempo to the sixteenth-note step length in
// samples: one beat is 60/tempo seconds, one step a quarter of that.
func samplesPerStep(tempo int) int {
	return audio.SampleRate * 60 / (tempo * 4)
}

// Frames returns the channel of outgoing PCM frames (20ms each).
func (e *Engine) Frames() <-chan []int16 {
	return e.frameCh
}

// Steps returns the channel of step events for UI subscribers.
func (e *Engine) Steps() <-chan StepEvent {
	return e.stepCh
}

// AddTrigger attaches an extra percussion sink (e.g. a MIDI out port).
func (e *Engine) AddTrigger(t Trigger) {
	e.mu.Lock()
	e.extra = append(e.extra, t)
	e.mu.Unlock()
}

// Run renders the live mix in real time. Blocks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	defer close(e.frameCh)

	ticker := time.NewTicker(audio.FrameDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		frame := make([]int16, audio.FrameSamples)
		e.renderFrame(frame)

		select {
		case e.frameCh <- frame:
		case <-ctx.Done():
			return
		}
	}
}

// renderFrame fills one interleaved stereo frame, advancing steps at their
// exact sample boundaries while playing. Voices triggered by earlier steps
// keep decaying after a stop.
func (e *Engine) renderFrame(frame []int16) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Playing {
		e.mixer.Render(frame)
		return
	}

	offset := 0
	remaining := audio.FrameSize
	for remaining > 0 {
		if e.stepRemain == 0 {
			e.advanceStepLocked()
		}
		n := remaining
		if e.stepRemain < n {
			n = e.stepRemain
		}
		e.mixer.Render(frame[offset*audio.Channels : (offset+n)*audio.Channels])
		offset += n
		remaining -= n
		e.stepRemain -= n
	}
}

// advanceStepLocked moves to the next step and fires it. Caller holds mu.
func (e *Engine) advanceStepLocked() {
	e.step = (e.step + 1) % StepCount
	e.stepRemain = e.samplesPerStep
	e.fireStepLocked()
}

// fireStepLocked triggers every active track at the current step and
// publishes the step event. Trigger fan-out is fire-and-forget; a full
// event channel drops the event rather than stalling the render path.
func (e *Engine) fireStepLocked() {
	tracks := e.grid.ActiveTracks(e.step)
	for _, tr := range tracks {
		e.mixer.Trigger(tr)
		for _, t := range e.extra {
			t.Trigger(tr)
		}
	}
	select {
	case e.stepCh <- StepEvent{Step: e.step, Tracks: tracks}:
	default:
	}
}

// Play starts playback from step 0. The first step sounds immediately, not
// after one interval. No-op while already playing.
func (e *Engine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Playing {
		return
	}
	e.playLocked()
	log.Printf("sequencer: playing at %d BPM", e.tempo)
}

func (e *Engine) playLocked() {
	if e.state == Playing {
		return
	}
	e.state = Playing
	e.samplesPerStep = samplesPerStep(e.tempo)
	e.step = 0
	e.stepRemain = e.samplesPerStep
	e.fireStepLocked()
}

// Stop halts playback. After Stop returns no further step events fire; the
// render loop advances steps only under the same lock. Already-triggered
// voices ring out their envelopes. Idempotent.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Stopped {
		return
	}
	e.stopLocked()
	log.Println("sequencer: stopped")
}

func (e *Engine) stopLocked() {
	if e.state == Stopped {
		return
	}
	e.state = Stopped
	e.step = -1
	select {
	case e.stepCh <- StepEvent{Step: -1}:
	default:
	}
}

// SetTempo clamps and applies a tempo. While playing, playback restarts
// from step 0 at the new interval. Returns the effective tempo.
func (e *Engine) SetTempo(bpm int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tempo = clampTempo(bpm)
	log.Printf("sequencer: tempo set to %d BPM", e.tempo)
	if e.state == Playing {
		e.state = Stopped
		e.playLocked()
	}
	return e.tempo
}

// ToggleCell flips a grid cell. While playing the edit is ignored: the
// current value comes back with applied=false and the grid is unchanged.
func (e *Engine) ToggleCell(track, step int) (value bool, applied bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !validCell(track, step) {
		return false, false, &OutOfRangeError{Track: track, Step: step}
	}
	if e.state == Playing {
		return e.grid.Cell(track, step), false, nil
	}
	if err := e.grid.Toggle(track, step); err != nil {
		return false, false, err
	}
	return e.grid.Cell(track, step), true, nil
}

// Clear stops playback if running, then empties the grid.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	e.grid.Clear()
}

// LoadPattern validates and installs a pattern: stop if playing, then swap
// grid and tempo together. A malformed pattern leaves the engine untouched.
func (e *Engine) LoadPattern(p Pattern) error {
	g := NewGrid()
	if err := g.SetRows(p.Rows); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	e.grid = g
	e.tempo = clampTempo(p.Tempo)
	return nil
}

// Save snapshots the current grid and tempo and persists them under the
// given name. Runs on the caller's goroutine; playback is never held up by
// store I/O.
func (e *Engine) Save(ctx context.Context, name string) (Pattern, error) {
	e.mu.Lock()
	p := Pattern{Name: name, Tempo: e.tempo, Rows: e.grid.Rows()}
	e.mu.Unlock()

	saved, err := e.store.Save(ctx, p)
	if err != nil {
		return Pattern{}, err
	}
	log.Printf("sequencer: saved pattern %q (id %d, tempo %d)", saved.Name, saved.ID, saved.Tempo)
	return saved, nil
}

// Patterns lists all persisted patterns, newest first.
func (e *Engine) Patterns(ctx context.Context) ([]Pattern, error) {
	return e.store.LoadAll(ctx)
}

// LoadSaved fetches a persisted pattern by id and installs it. The pattern
// collaborator has no single-pattern endpoint, so this lists and selects.
func (e *Engine) LoadSaved(ctx context.Context, id int) (Pattern, error) {
	pats, err := e.store.LoadAll(ctx)
	if err != nil {
		return Pattern{}, fmt.Errorf("load patterns: %w", err)
	}
	for _, p := range pats {
		if p.ID == id {
			if err := e.LoadPattern(p); err != nil {
				return Pattern{}, err
			}
			return p, nil
		}
	}
	return Pattern{}, &NotFoundError{ID: id}
}

// DeleteSaved removes a persisted pattern by id.
func (e *Engine) DeleteSaved(ctx context.Context, id int) error {
	return e.store.Remove(ctx, id)
}

// Tempo returns the current tempo in BPM.
func (e *Engine) Tempo() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tempo
}

// Playing reports whether the transport is running.
func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == Playing
}

// CurrentStep returns the step under the playhead, -1 while stopped.
func (e *Engine) CurrentStep() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.step
}

// Snapshot returns a deep copy of the grid rows.
func (e *Engine) Snapshot() [][]bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.grid.Rows()
}

// Status returns the current engine state for the API layer.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		State:  e.state.String(),
		Step:   e.step,
		Tempo:  e.tempo,
		Grid:   e.grid.Rows(),
		Voices: e.mixer.ActiveVoices(),
	}
}
