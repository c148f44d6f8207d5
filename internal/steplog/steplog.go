// Package steplog records the ordered, timestamped trace of an agent run.
package steplog

import (
	"sync"
	"time"

	"github.com/hyperjump/kotae/internal/models"
)

// Observer is called synchronously after every append.
type Observer func(models.Step)

// Log is an append-only sequence of steps. Safe for concurrent use.
type Log struct {
	mu       sync.Mutex
	steps    []models.Step
	last     int64
	now      func() time.Time
	observer Observer
}

// Option configures a Log.
type Option func(*Log)

// WithObserver registers a callback invoked on each appended step.
func WithObserver(fn Observer) Option {
	return func(l *Log) {
		l.observer = fn
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		if now != nil {
			l.now = now
		}
	}
}

// New creates an empty log.
func New(opts ...Option) *Log {
	l := &Log{now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append records a step and returns it. Timestamps never go backwards even
// if the clock does.
func (l *Log) Append(t models.StepType, content string) models.Step {
	l.mu.Lock()
	ts := l.now().UnixMilli()
	if ts < l.last {
		ts = l.last
	}
	l.last = ts
	step := models.Step{Type: t, Content: content, Timestamp: ts}
	l.steps = append(l.steps, step)
	obs := l.observer
	l.mu.Unlock()

	if obs != nil {
		obs(step)
	}
	return step
}

// Steps returns a copy of the recorded steps.
func (l *Log) Steps() []models.Step {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Step, len(l.steps))
	copy(out, l.steps)
	return out
}

// Len returns the number of recorded steps.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.steps)
}

// Last returns the most recent step of type t.
func (l *Log) Last(t models.StepType) (models.Step, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.steps) - 1; i >= 0; i-- {
		if l.steps[i].Type == t {
			return l.steps[i], true
		}
	}
	return models.Step{}, false
}
