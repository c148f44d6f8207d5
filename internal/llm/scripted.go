package llm

import (
	"context"
	"sync"
)

// ScriptedProvider replays a fixed list of replies. Once the script runs out
// the last reply is repeated. It backs the "scripted" provider type for
// offline demos and is the model used throughout the tests.
type ScriptedProvider struct {
	mu      sync.Mutex
	replies []string
	errs    map[int]error
	calls   [][]Message
}

var _ Provider = (*ScriptedProvider)(nil)

// NewScriptedProvider returns a provider that answers with replies in order.
func NewScriptedProvider(replies ...string) *ScriptedProvider {
	return &ScriptedProvider{replies: replies, errs: map[int]error{}}
}

// FailOn makes the n-th call (0-based) return err.
func (s *ScriptedProvider) FailOn(n int, err error) *ScriptedProvider {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[n] = err
	return s
}

func (s *ScriptedProvider) Name() string { return "scripted" }

// Chat returns the next scripted reply.
func (s *ScriptedProvider) Chat(ctx context.Context, history []Message, _ ...Option) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.calls)
	snapshot := make([]Message, len(history))
	copy(snapshot, history)
	s.calls = append(s.calls, snapshot)

	if err, ok := s.errs[n]; ok {
		return "", err
	}
	if len(s.replies) == 0 {
		return "", nil
	}
	if n >= len(s.replies) {
		return s.replies[len(s.replies)-1], nil
	}
	return s.replies[n], nil
}

// Calls returns the conversation sent on each call so far.
func (s *ScriptedProvider) Calls() [][]Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]Message, len(s.calls))
	copy(out, s.calls)
	return out
}
