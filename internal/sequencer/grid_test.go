package sequencer

import (
	"errors"
	"testing"
)

func TestToggleInvolution(t *testing.T) {
	g := NewGrid()
	g.cells[2][7] = true // one pre-set cell so both directions are covered

	for track := 0; track < TrackCount; track++ {
		for step := 0; step < StepCount; step++ {
			before := g.Cell(track, step)
			if err := g.Toggle(track, step); err != nil {
				t.Fatalf("Toggle(%d,%d) error: %v", track, step, err)
			}
			if g.Cell(track, step) == before {
				t.Errorf("Toggle(%d,%d) did not flip the cell", track, step)
			}
			if err := g.Toggle(track, step); err != nil {
				t.Fatalf("Second Toggle(%d,%d) error: %v", track, step, err)
			}
			if g.Cell(track, step) != before {
				t.Errorf("Double toggle (%d,%d) did not restore %v", track, step, before)
			}
		}
	}
}

func TestToggleOutOfRange(t *testing.T) {
	g := NewGrid()
	cases := []struct{ track, step int }{
		{-1, 0}, {TrackCount, 0}, {0, -1}, {0, StepCount}, {99, 99},
	}
	for _, c := range cases {
		err := g.Toggle(c.track, c.step)
		if err == nil {
			t.Errorf("Toggle(%d,%d) succeeded, want OutOfRangeError", c.track, c.step)
			continue
		}
		var oor *OutOfRangeError
		if !errors.As(err, &oor) {
			t.Errorf("Toggle(%d,%d) error type %T, want OutOfRangeError", c.track, c.step, err)
		}
	}

	// Grid must be untouched after rejected toggles
	for track := 0; track < TrackCount; track++ {
		for step := 0; step < StepCount; step++ {
			if g.Cell(track, step) {
				t.Fatalf("Cell (%d,%d) active after rejected toggles", track, step)
			}
		}
	}
}

func TestClearEmptiesEveryColumn(t *testing.T) {
	g := NewGrid()
	g.Toggle(0, 0)
	g.Toggle(1, 5)
	g.Toggle(3, 15)

	g.Clear()

	for step := 0; step < StepCount; step++ {
		if tracks := g.ActiveTracks(step); len(tracks) != 0 {
			t.Errorf("ActiveTracks(%d) = %v after Clear, want empty", step, tracks)
		}
	}
}

func TestActiveTracks(t *testing.T) {
	g := NewGrid()
	g.Toggle(0, 3)
	g.Toggle(2, 3)
	g.Toggle(3, 3)
	g.Toggle(1, 8)

	got := g.ActiveTracks(3)
	want := []int{0, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("ActiveTracks(3) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ActiveTracks(3)[%d] = %d, want %d (track order)", i, got[i], want[i])
		}
	}

	if tracks := g.ActiveTracks(0); len(tracks) != 0 {
		t.Errorf("ActiveTracks(0) = %v, want empty", tracks)
	}
	if tracks := g.ActiveTracks(-1); tracks != nil {
		t.Errorf("ActiveTracks(-1) = %v, want nil", tracks)
	}
	if tracks := g.ActiveTracks(StepCount); tracks != nil {
		t.Errorf("ActiveTracks(%d) = %v, want nil", StepCount, tracks)
	}
}

func TestCellOutOfRangeReadsInactive(t *testing.T) {
	g := NewGrid()
	if g.Cell(-1, 0) || g.Cell(0, -1) || g.Cell(TrackCount, 0) || g.Cell(0, StepCount) {
		t.Error("Out-of-range Cell read as active")
	}
}

func TestRowsRoundTrip(t *testing.T) {
	g := NewGrid()
	g.Toggle(0, 0)
	g.Toggle(1, 4)
	g.Toggle(2, 2)
	g.Toggle(2, 6)
	g.Toggle(3, 12)

	restored := NewGrid()
	if err := restored.SetRows(g.Rows()); err != nil {
		t.Fatalf("SetRows(Rows()) error: %v", err)
	}

	for track := 0; track < TrackCount; track++ {
		for step := 0; step < StepCount; step++ {
			if restored.Cell(track, step) != g.Cell(track, step) {
				t.Errorf("Round-trip mismatch at (%d,%d)", track, step)
			}
		}
	}
}

func TestRowsDeepCopy(t *testing.T) {
	g := NewGrid()
	rows := g.Rows()
	rows[1][5] = true
	if g.Cell(1, 5) {
		t.Error("Mutating Rows() result leaked into the grid")
	}
}

func TestSetRowsRejectsWrongShape(t *testing.T) {
	makeRows := func(tracks, steps int) [][]bool {
		rows := make([][]bool, tracks)
		for i := range rows {
			rows[i] = make([]bool, steps)
		}
		return rows
	}

	cases := []struct {
		name string
		rows [][]bool
	}{
		{"nil", nil},
		{"three tracks", makeRows(3, 16)},
		{"five tracks", makeRows(5, 16)},
		{"short row", func() [][]bool { r := makeRows(4, 16); r[2] = make([]bool, 15); return r }()},
		{"long row", func() [][]bool { r := makeRows(4, 16); r[0] = make([]bool, 17); return r }()},
		{"empty rows", makeRows(4, 0)},
	}

	for _, c := range cases {
		g := NewGrid()
		g.Toggle(1, 1) // sentinel to prove the grid survives a rejected load
		err := g.SetRows(c.rows)
		if err == nil {
			t.Errorf("SetRows(%s) succeeded, want MalformedPatternError", c.name)
			continue
		}
		var malformed *MalformedPatternError
		if !errors.As(err, &malformed) {
			t.Errorf("SetRows(%s) error type %T, want MalformedPatternError", c.name, err)
		}
		if !g.Cell(1, 1) {
			t.Errorf("SetRows(%s) modified the grid on failure", c.name)
		}
	}
}
