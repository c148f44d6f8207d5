// Package agent runs the reasoning loop: it asks the model what to do next,
// dispatches retrieval or analysis when the reply asks for them, and records
// every move in a step log.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/knowledge"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/steplog"
	"github.com/hyperjump/kotae/internal/tools"
)

const DefaultMaxIterations = 5

// FallbackAnswer is shown when a run ends without a result.
const FallbackAnswer = "Unable to generate a complete answer. Please try again."

var (
	ErrNotConfigured = errors.New("agent not initialized")
	ErrEmptyQuery    = errors.New("query cannot be empty")
)

// Agent answers questions over a document snapshot.
type Agent struct {
	model         llm.Provider
	maxIterations int
	systemPrompt  string
	callOpts      []llm.Option
	logger        *zap.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithMaxIterations bounds the number of model turns per run.
func WithMaxIterations(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

// WithSystemPrompt replaces the default instruction.
func WithSystemPrompt(p string) Option {
	return func(a *Agent) {
		if strings.TrimSpace(p) != "" {
			a.systemPrompt = p
		}
	}
}

// WithCallOptions sets options passed on every model call.
func WithCallOptions(opts ...llm.Option) Option {
	return func(a *Agent) {
		a.callOpts = append(a.callOpts, opts...)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Agent) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an agent. A nil model yields an agent whose runs fail with
// ErrNotConfigured.
func New(model llm.Provider, opts ...Option) *Agent {
	a := &Agent{
		model:         model,
		maxIterations: DefaultMaxIterations,
		systemPrompt:  DefaultSystemPrompt,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ready reports whether a model is attached.
func (a *Agent) Ready() bool {
	return a != nil && a.model != nil
}

// MaxIterations returns the turn bound.
func (a *Agent) MaxIterations() int { return a.maxIterations }

// StepBudget is the most steps a single run may record.
func (a *Agent) StepBudget() int { return 2*a.maxIterations + 1 }

// Result is the outcome of a run. Err is set when the model failed; Answer
// is then empty and the steps end with the recorded failure.
type Result struct {
	Answer     string
	Steps      []models.Step
	Iterations int
	Err        error
}

// Completed reports whether the run produced an answer.
func (r *Result) Completed() bool {
	return r.Err == nil && r.Answer != ""
}

// DisplayAnswer returns the answer or the fallback text.
func (r *Result) DisplayAnswer() string {
	if r.Answer == "" {
		return FallbackAnswer
	}
	return r.Answer
}

type runConfig struct {
	observer steplog.Observer
}

// RunOption configures a single run.
type RunOption func(*runConfig)

// WithStepObserver receives every step as it is recorded.
func WithStepObserver(fn steplog.Observer) RunOption {
	return func(c *runConfig) {
		c.observer = fn
	}
}

// Run answers query using docs. It returns an error only for invalid input
// or a missing model; model failures are reported through Result.Err.
func (a *Agent) Run(ctx context.Context, query string, docs *knowledge.Snapshot, opts ...RunOption) (*Result, error) {
	if !a.Ready() {
		return nil, ErrNotConfigured
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	var logOpts []steplog.Option
	if cfg.observer != nil {
		logOpts = append(logOpts, steplog.WithObserver(cfg.observer))
	}
	log := steplog.New(logOpts...)

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: a.systemPrompt},
		{Role: llm.RoleUser, Content: query},
	}
	budget := a.StepBudget()
	res := &Result{}
	lastObservation := ""
	retrieved := false

	for turn := 1; turn <= a.maxIterations; turn++ {
		res.Iterations = turn

		reply, err := a.model.Chat(ctx, messages, a.callOpts...)
		if err != nil {
			a.logger.Warn("model call failed",
				zap.String("model", a.model.Name()),
				zap.Int("turn", turn),
				zap.Error(err))
			log.Append(models.StepThought, "Error during processing: "+err.Error())
			res.Err = fmt.Errorf("model call failed: %w", err)
			break
		}
		a.logger.Debug("model reply", zap.Int("turn", turn), zap.Int("length", len(reply)))
		log.Append(models.StepThought, reply)

		lower := strings.ToLower(reply)
		// A tool round costs action + observation, and the next turn needs
		// room for its own thought and result.
		noRoom := log.Len()+4 > budget
		if hasFinalMarker(lower) || turn == a.maxIterations || noRoom {
			log.Append(models.StepResult, reply)
			res.Answer = reply
			break
		}

		var observation string
		done := false
		switch {
		case containsAny(lower, "retrieve", "search"):
			phrase := extractSearchPhrase(reply, query)
			log.Append(models.StepAction, fmt.Sprintf("Retrieving documents related to: %q", phrase))
			observation = tools.Retrieve(docs, phrase)
			retrieved = true
			lastObservation = observation
		case containsAny(lower, "analyze", "extract"):
			source := lastObservation
			if !retrieved {
				source = tools.Concat(docs)
			}
			log.Append(models.StepAction, fmt.Sprintf("Analyzing content for: %q", query))
			observation = tools.Analyze(source, query)
		default:
			log.Append(models.StepResult, reply)
			res.Answer = reply
			done = true
		}
		if done {
			break
		}

		log.Append(models.StepObservation, observation)
		messages = append(messages,
			llm.Message{Role: llm.RoleAssistant, Content: reply},
			llm.Message{Role: llm.RoleUser, Content: "Tool result:\n" + observation + "\n\nContinue your analysis."},
		)
	}

	res.Steps = log.Steps()
	a.logger.Info("agent run finished",
		zap.Int("iterations", res.Iterations),
		zap.Int("steps", len(res.Steps)),
		zap.Bool("answered", res.Answer != ""))
	return res, nil
}

func hasFinalMarker(lower string) bool {
	return strings.Contains(lower, "final answer") || strings.Contains(lower, "answer:")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
