package service

import (
	"sync"

	"github.com/hyperjump/kotae/internal/models"
)

// stateTracker holds the visible state of the most recently started run.
// Updates from a run that has since been superseded are dropped.
type stateTracker struct {
	mu    sync.Mutex
	gen   uint64
	state models.RunState
}

func (t *stateTracker) begin(query string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	t.state = models.RunState{
		Steps:        []models.Step{},
		CurrentQuery: query,
		IsProcessing: true,
	}
	return t.gen
}

func (t *stateTracker) append(gen uint64, step models.Step) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen {
		return
	}
	t.state.Steps = append(t.state.Steps, step)
}

func (t *stateTracker) finish(gen uint64, steps []models.Step) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen {
		return
	}
	t.state.Steps = append([]models.Step(nil), steps...)
	t.state.IsProcessing = false
}

func (t *stateTracker) snapshot() models.RunState {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.state
	s.Steps = append([]models.Step{}, t.state.Steps...)
	return s
}
