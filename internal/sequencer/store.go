package sequencer

import (
	"context"
	"time"
)

// Pattern is a named, tempo-tagged grid snapshot. ID and CreatedAt are
// assigned by the store on save and are zero until then.
type Pattern struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Tempo     int       `json:"tempo"`
	Rows      [][]bool  `json:"grid"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists patterns. Implementations list newest-first, reject
// empty or whitespace-only names with ValidationError, and fail removal of
// unknown ids with NotFoundError. Errors surface synchronously; no
// implementation retries on its own.
type Store interface {
	LoadAll(ctx context.Context) ([]Pattern, error)
	Save(ctx context.Context, p Pattern) (Pattern, error)
	Remove(ctx context.Context, id int) error
}
