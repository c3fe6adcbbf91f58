// Package preset ships built-in drum patterns and loads user-defined ones
// from a config directory. Presets are YAML files naming a tempo and one
// step string per track, sixteen characters of "x" (hit) and "." (rest).
package preset

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/upaura/music-app/internal/sequencer"
)

//go:embed presets/*.yaml
var builtinFS embed.FS

// presetFile is the on-disk YAML shape.
type presetFile struct {
	Name  string `yaml:"name"`
	Tempo int    `yaml:"tempo"`
	Kick  string `yaml:"kick"`
	Snare string `yaml:"snare"`
	HiHat string `yaml:"hihat"`
	Clap  string `yaml:"clap"`
}

// Preset is a ready-to-load drum pattern.
type Preset struct {
	Name    string `json:"name"`
	Tempo   int    `json:"tempo"`
	Builtin bool   `json:"builtin"`
	rows    [][]bool
}

// Pattern converts the preset to the sequencer's form. The grid is copied
// so installed patterns never alias the library.
func (p Preset) Pattern() sequencer.Pattern {
	rows := make([][]bool, len(p.rows))
	for i, row := range p.rows {
		rows[i] = make([]bool, len(row))
		copy(rows[i], row)
	}
	return sequencer.Pattern{Name: p.Name, Tempo: p.Tempo, Rows: rows}
}

// Library holds every available preset, built-ins first.
type Library struct {
	presets []Preset
}

// Load builds the preset library from the embedded files plus, when dir is
// non-empty, any YAML files found there. A broken user file is skipped with
// a log line; a broken built-in is a packaging error and fails the load.
func Load(dir string) (*Library, error) {
	lib := &Library{}

	err := fs.WalkDir(builtinFS, "presets", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(builtinFS, path)
		if err != nil {
			return err
		}
		p, err := parsePreset(data, path)
		if err != nil {
			return err
		}
		p.Builtin = true
		lib.presets = append(lib.presets, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load built-in presets: %w", err)
	}

	if dir != "" {
		lib.loadUserDir(dir)
	}

	return lib, nil
}

// loadUserDir appends presets from a user directory, skipping unreadable or
// malformed files.
func (l *Library) loadUserDir(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("preset: cannot read %s: %v", dir, err)
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("preset: skipping %s: %v", path, err)
			continue
		}
		p, err := parsePreset(data, path)
		if err != nil {
			log.Printf("preset: skipping %s: %v", path, err)
			continue
		}
		l.presets = append(l.presets, p)
	}
}

// parsePreset decodes one preset file and validates its step strings.
func parsePreset(data []byte, path string) (Preset, error) {
	var f presetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Preset{}, fmt.Errorf("parse %s: %w", path, err)
	}

	name := strings.TrimSpace(f.Name)
	if name == "" {
		base := filepath.Base(path)
		name = strings.ReplaceAll(strings.TrimSuffix(base, filepath.Ext(base)), "_", " ")
	}

	rows := make([][]bool, sequencer.TrackCount)
	for i, steps := range []string{f.Kick, f.Snare, f.HiHat, f.Clap} {
		row, err := parseSteps(steps)
		if err != nil {
			return Preset{}, fmt.Errorf("%s: track %d: %w", path, i, err)
		}
		rows[i] = row
	}

	return Preset{Name: name, Tempo: f.Tempo, rows: rows}, nil
}

// parseSteps turns a sixteen-character step string into a row. "x" marks a
// hit, "." a rest; "-" is accepted as a rest too.
func parseSteps(s string) ([]bool, error) {
	if len(s) != sequencer.StepCount {
		return nil, fmt.Errorf("step string %q has %d characters, want %d", s, len(s), sequencer.StepCount)
	}
	row := make([]bool, len(s))
	for i, c := range s {
		switch c {
		case 'x', 'X':
			row[i] = true
		case '.', '-':
		default:
			return nil, fmt.Errorf("step string %q has invalid character %q", s, c)
		}
	}
	return row, nil
}

// All returns every preset, built-ins first.
func (l *Library) All() []Preset {
	out := make([]Preset, len(l.presets))
	copy(out, l.presets)
	return out
}

// Find looks up a preset by name, case-insensitively.
func (l *Library) Find(name string) (Preset, bool) {
	for _, p := range l.presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}
