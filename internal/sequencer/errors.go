package sequencer

import "fmt"

// OutOfRangeError reports a cell index outside the fixed grid bounds.
type OutOfRangeError struct {
	Track int
	Step  int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("cell (%d,%d) outside the %dx%d grid", e.Track, e.Step, TrackCount, StepCount)
}

// MalformedPatternError reports grid data that does not match the fixed
// 4x16 shape. Malformed data is rejected whole, never truncated or padded.
type MalformedPatternError struct {
	Reason string
}

func (e *MalformedPatternError) Error() string {
	return "malformed pattern: " + e.Reason
}

// ValidationError reports an invalid field on a save request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an operation on a pattern id that does not exist
// in the store.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("pattern %d not found", e.ID)
}
