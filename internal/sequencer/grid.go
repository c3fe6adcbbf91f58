package sequencer

import "fmt"

const (
	TrackCount = 4  // kick, snare, hi-hat, clap
	StepCount  = 16 // sixteenth notes across four beats
)

// Grid is the fixed TrackCount x StepCount pattern matrix. Dimensions never
// change for the lifetime of a Grid. Grid itself is plain data; the Engine
// owns all concurrency rules around it.
type Grid struct {
	cells [TrackCount][StepCount]bool
}

// NewGrid returns an empty grid (all cells false).
func NewGrid() *Grid {
	return &Grid{}
}

func validCell(track, step int) bool {
	return track >= 0 && track < TrackCount && step >= 0 && step < StepCount
}

// Toggle flips the cell at (track, step). Toggling twice restores the
// original value.
func (g *Grid) Toggle(track, step int) error {
	if !validCell(track, step) {
		return &OutOfRangeError{Track: track, Step: step}
	}
	g.cells[track][step] = !g.cells[track][step]
	return nil
}

// Cell reports whether (track, step) is active. Out-of-range cells read as
// inactive.
func (g *Grid) Cell(track, step int) bool {
	if !validCell(track, step) {
		return false
	}
	return g.cells[track][step]
}

// Clear resets every cell to false.
func (g *Grid) Clear() {
	g.cells = [TrackCount][StepCount]bool{}
}

// ActiveTracks returns the indices of tracks active at the given step, in
// track order. Returns nil for an out-of-range step.
func (g *Grid) ActiveTracks(step int) []int {
	if step < 0 || step >= StepCount {
		return nil
	}
	var tracks []int
	for t := 0; t < TrackCount; t++ {
		if g.cells[t][step] {
			tracks = append(tracks, t)
		}
	}
	return tracks
}

// Rows returns a deep copy of the grid as TrackCount rows of StepCount
// booleans, the canonical serialized shape.
func (g *Grid) Rows() [][]bool {
	rows := make([][]bool, TrackCount)
	for t := 0; t < TrackCount; t++ {
		row := make([]bool, StepCount)
		copy(row, g.cells[t][:])
		rows[t] = row
	}
	return rows
}

// SetRows replaces the grid contents from a row matrix. The matrix must be
// exactly TrackCount x StepCount; anything else fails with
// MalformedPatternError and leaves the grid untouched.
func (g *Grid) SetRows(rows [][]bool) error {
	if len(rows) != TrackCount {
		return &MalformedPatternError{Reason: fmt.Sprintf("expected %d tracks, got %d", TrackCount, len(rows))}
	}
	for t, row := range rows {
		if len(row) != StepCount {
			return &MalformedPatternError{Reason: fmt.Sprintf("track %d has %d steps, expected %d", t, len(row), StepCount)}
		}
	}
	for t, row := range rows {
		copy(g.cells[t][:], row)
	}
	return nil
}
