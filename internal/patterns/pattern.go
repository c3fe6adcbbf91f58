// Package patterns persists sequencer patterns, either through the
// pattern-service REST API or an in-memory store for offline use. Both
// implementations satisfy sequencer.Store.
package patterns

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/upaura/music-app/internal/sequencer"
)

// wirePattern is a pattern as the pattern service represents it. The
// grid_data field arrives either as a structured JSON array or as a
// JSON-encoded string holding one, depending on the writer; decodeGridData
// accepts both.
type wirePattern struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	GridData  json.RawMessage `json:"grid_data"`
	Tempo     int             `json:"tempo"`
	CreatedAt string          `json:"created_at"`
}

// createdAtLayouts covers the timestamp shapes the service emits: RFC 3339
// and the zoneless ISO form.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func parseCreatedAt(s string) time.Time {
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// validateRows checks that a grid has exactly the sequencer's dimensions.
// Persistence is lossless or it is an error; rows are never truncated or
// padded to fit.
func validateRows(rows [][]bool) error {
	if len(rows) != sequencer.TrackCount {
		return &sequencer.MalformedPatternError{
			Reason: fmt.Sprintf("grid has %d rows, want %d", len(rows), sequencer.TrackCount),
		}
	}
	for i, row := range rows {
		if len(row) != sequencer.StepCount {
			return &sequencer.MalformedPatternError{
				Reason: fmt.Sprintf("row %d has %d steps, want %d", i, len(row), sequencer.StepCount),
			}
		}
	}
	return nil
}

// encodeGridData serializes a validated grid to the string form the pattern
// service stores.
func encodeGridData(rows [][]bool) (string, error) {
	if err := validateRows(rows); err != nil {
		return "", err
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return "", &sequencer.MalformedPatternError{Reason: "encode grid: " + err.Error()}
	}
	return string(b), nil
}

// decodeGridData parses a grid_data payload in either wire form, then
// validates its shape.
func decodeGridData(raw json.RawMessage) ([][]bool, error) {
	if len(raw) == 0 {
		return nil, &sequencer.MalformedPatternError{Reason: "missing grid data"}
	}

	var rows [][]bool
	if err := json.Unmarshal(raw, &rows); err != nil {
		// String form: the array is JSON-encoded once more.
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, &sequencer.MalformedPatternError{Reason: "grid data is neither an array nor an encoded string"}
		}
		if err := json.Unmarshal([]byte(s), &rows); err != nil {
			return nil, &sequencer.MalformedPatternError{Reason: "encoded grid string does not hold a boolean grid"}
		}
	}

	if err := validateRows(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// toPattern converts a wire pattern to the sequencer's form.
func (w wirePattern) toPattern() (sequencer.Pattern, error) {
	rows, err := decodeGridData(w.GridData)
	if err != nil {
		return sequencer.Pattern{}, err
	}
	return sequencer.Pattern{
		ID:        w.ID,
		Name:      w.Name,
		Tempo:     w.Tempo,
		Rows:      rows,
		CreatedAt: parseCreatedAt(w.CreatedAt),
	}, nil
}

// copyRows deep-copies a grid so stored patterns never share cells with a
// live grid.
func copyRows(rows [][]bool) [][]bool {
	out := make([][]bool, len(rows))
	for i, row := range rows {
		out[i] = make([]bool, len(row))
		copy(out[i], row)
	}
	return out
}
