package patterns

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/upaura/music-app/internal/sequencer"
)

// MemStore keeps patterns in memory with the same contract as the REST
// client. Used when no pattern service is configured; contents vanish on
// restart.
type MemStore struct {
	mu       sync.Mutex
	nextID   int
	patterns []sequencer.Pattern // newest first
}

var _ sequencer.Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory pattern store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// LoadAll returns every stored pattern, newest first.
func (s *MemStore) LoadAll(ctx context.Context) ([]sequencer.Pattern, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sequencer.Pattern, len(s.patterns))
	copy(out, s.patterns)
	return out, nil
}

// Save stores a copy of the pattern and returns it with an assigned id and
// timestamp.
func (s *MemStore) Save(ctx context.Context, p sequencer.Pattern) (sequencer.Pattern, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return sequencer.Pattern{}, &sequencer.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if err := validateRows(p.Rows); err != nil {
		return sequencer.Pattern{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	stored := sequencer.Pattern{
		ID:        s.nextID,
		Name:      name,
		Tempo:     p.Tempo,
		Rows:      copyRows(p.Rows),
		CreatedAt: time.Now().UTC(),
	}
	s.patterns = append([]sequencer.Pattern{stored}, s.patterns...)
	return stored, nil
}

// Remove deletes a stored pattern by id.
func (s *MemStore) Remove(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.patterns {
		if p.ID == id {
			s.patterns = append(s.patterns[:i], s.patterns[i+1:]...)
			return nil
		}
	}
	return &sequencer.NotFoundError{ID: id}
}
