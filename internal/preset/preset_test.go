package preset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/upaura/music-app/internal/sequencer"
)

func TestLoadBuiltins(t *testing.T) {
	lib, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	all := lib.All()
	if len(all) < 4 {
		t.Fatalf("Library has %d presets, want at least 4 built-ins", len(all))
	}
	for _, p := range all {
		if !p.Builtin {
			t.Errorf("Preset %q not marked builtin", p.Name)
		}
		if p.Tempo < sequencer.MinTempo || p.Tempo > sequencer.MaxTempo {
			t.Errorf("Preset %q tempo %d outside %d..%d", p.Name, p.Tempo, sequencer.MinTempo, sequencer.MaxTempo)
		}
	}
}

func TestBuiltinGridsFitTheSequencer(t *testing.T) {
	lib, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	for _, p := range lib.All() {
		pat := p.Pattern()
		g := sequencer.NewGrid()
		if err := g.SetRows(pat.Rows); err != nil {
			t.Errorf("Preset %q does not fit the grid: %v", p.Name, err)
		}
	}
}

func TestFourOnTheFloorCells(t *testing.T) {
	lib, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	p, ok := lib.Find("Four on the Floor")
	if !ok {
		t.Fatal("Built-in Four on the Floor missing")
	}

	rows := p.Pattern().Rows
	for step := 0; step < sequencer.StepCount; step++ {
		wantKick := step%4 == 0
		if rows[0][step] != wantKick {
			t.Errorf("Kick step %d = %v, want %v", step, rows[0][step], wantKick)
		}
	}
	if !rows[3][4] || !rows[3][12] {
		t.Error("Clap missing from backbeat steps")
	}
	if p.Tempo != 120 {
		t.Errorf("Tempo = %d, want 120", p.Tempo)
	}
}

func TestFindIsCaseInsensitive(t *testing.T) {
	lib, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if _, ok := lib.Find("ROCK BEAT"); !ok {
		t.Error("Find(ROCK BEAT) failed, want case-insensitive match")
	}
	if _, ok := lib.Find("No Such Groove"); ok {
		t.Error("Find matched a preset that does not exist")
	}
}

func TestParseSteps(t *testing.T) {
	row, err := parseSteps("x...x...x...x...")
	if err != nil {
		t.Fatalf("parseSteps error: %v", err)
	}
	for i, hit := range row {
		if hit != (i%4 == 0) {
			t.Errorf("Step %d = %v, want %v", i, hit, i%4 == 0)
		}
	}

	if _, err := parseSteps("x..."); err == nil {
		t.Error("Short step string accepted")
	}
	if _, err := parseSteps("x...x...x...x...x..."); err == nil {
		t.Error("Long step string accepted")
	}
	if _, err := parseSteps("x...q...x...x..."); err == nil {
		t.Error("Invalid character accepted")
	}

	row, err = parseSteps("X---x...X---x...")
	if err != nil {
		t.Fatalf("parseSteps with X and - error: %v", err)
	}
	if !row[0] || row[1] {
		t.Error("Uppercase X or dash rest parsed wrong")
	}
}

func TestUserDirPresets(t *testing.T) {
	dir := t.TempDir()

	good := "name: Garage Groove\ntempo: 130\nkick: \"x.......x.......\"\nsnare: \"....x.......x...\"\nhihat: \"..x...x...x...x.\"\nclap: \"................\"\n"
	if err := os.WriteFile(filepath.Join(dir, "garage.yaml"), []byte(good), 0644); err != nil {
		t.Fatal(err)
	}
	bad := "kick: \"too short\"\n"
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a preset"), 0644); err != nil {
		t.Fatal(err)
	}

	lib, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	p, ok := lib.Find("Garage Groove")
	if !ok {
		t.Fatal("User preset not loaded")
	}
	if p.Builtin {
		t.Error("User preset marked builtin")
	}
	if p.Tempo != 130 {
		t.Errorf("User preset tempo = %d, want 130", p.Tempo)
	}
	if !p.Pattern().Rows[0][8] {
		t.Error("User preset lost a kick cell")
	}

	// The broken file is skipped, not fatal
	for _, p := range lib.All() {
		if p.Name == "broken" {
			t.Error("Broken preset file was loaded")
		}
	}
}

func TestUserPresetNameFallsBackToFilename(t *testing.T) {
	dir := t.TempDir()
	anon := "tempo: 120\nkick: \"x...x...x...x...\"\nsnare: \"................\"\nhihat: \"................\"\nclap: \"................\"\n"
	if err := os.WriteFile(filepath.Join(dir, "late_night.yml"), []byte(anon), 0644); err != nil {
		t.Fatal(err)
	}

	lib, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if _, ok := lib.Find("late night"); !ok {
		t.Error("Nameless preset did not take its filename")
	}
}

func TestLoadMissingUserDir(t *testing.T) {
	lib, err := Load("/no/such/directory")
	if err != nil {
		t.Fatalf("Load with missing dir error: %v", err)
	}
	if len(lib.All()) < 4 {
		t.Error("Built-ins lost when user dir is missing")
	}
}

func TestPatternReturnsACopy(t *testing.T) {
	lib, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	p, ok := lib.Find("Rock Beat")
	if !ok {
		t.Fatal("Rock Beat missing")
	}

	a := p.Pattern()
	b := p.Pattern()
	a.Rows[0][0] = !a.Rows[0][0]
	if a.Rows[0][0] == b.Rows[0][0] {
		t.Error("Pattern copies share grid storage")
	}
}
