// Package service answers questions: it runs the agent over the current
// documents, serves repeated questions from the answer cache, records every
// query in the history, and reports analytics over that history.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/agent"
	"github.com/hyperjump/kotae/internal/cache"
	"github.com/hyperjump/kotae/internal/knowledge"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/steplog"
	"github.com/hyperjump/kotae/internal/storage"
)

const (
	DefaultHistoryLimit = 50
	trendWindow         = time.Hour
	rankingSize         = 10
)

// QueryService runs queries and reports on them.
type QueryService struct {
	agent   *agent.Agent
	docs    *knowledge.Store
	storage storage.Storage
	cache   *cache.AnswerCache // optional
	logger  *zap.Logger

	historyLimit int
	started      time.Time
	now          func() time.Time
	state        stateTracker
}

// Option configures a QueryService.
type Option func(*QueryService)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *QueryService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCache enables answer caching.
func WithCache(c *cache.AnswerCache) Option {
	return func(s *QueryService) { s.cache = c }
}

// WithHistoryLimit sets how many history entries are returned by default.
func WithHistoryLimit(n int) Option {
	return func(s *QueryService) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// WithClock replaces time.Now for timing and record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *QueryService) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a query service.
func New(ag *agent.Agent, docs *knowledge.Store, store storage.Storage, opts ...Option) *QueryService {
	s := &QueryService{
		agent:        ag,
		docs:         docs,
		storage:      store,
		logger:       zap.NewNop(),
		historyLimit: DefaultHistoryLimit,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.started = s.now()
	s.state.state.Steps = []models.Step{}
	return s
}

// Ready reports whether queries can be answered.
func (s *QueryService) Ready() bool {
	return s.agent.Ready()
}

// Query answers req. observer, if non-nil, receives each step as it is
// produced (or replayed, for a cached answer). It returns an error only for
// invalid input or a missing model; a failed model call yields a response
// with Success false.
func (s *QueryService) Query(ctx context.Context, req *models.QueryRequest, observer steplog.Observer) (*models.QueryResponse, error) {
	if err := req.Validate(); err != nil {
		if req.Query == "" {
			return nil, agent.ErrEmptyQuery
		}
		return nil, err
	}
	if !s.agent.Ready() {
		return nil, agent.ErrNotConfigured
	}

	start := s.now()
	snap := s.docs.Snapshot()
	useCache := s.cache != nil && req.CacheEnabled()

	if useCache {
		if cached, ok := s.cache.Get(req.Query, snap.Version()); ok {
			gen := s.state.begin(req.Query)
			for _, step := range cached.Steps {
				s.state.append(gen, step)
				if observer != nil {
					observer(step)
				}
			}
			s.state.finish(gen, cached.Steps)
			resp := &models.QueryResponse{
				Success:   true,
				Result:    cached.Result,
				Steps:     cached.Steps,
				FromCache: true,
				TimeMS:    s.now().Sub(start).Milliseconds(),
			}
			s.logger.Info("answer served from cache", zap.String("query", req.Query))
			s.record(ctx, req.Query, resp, start)
			return resp, nil
		}
	}

	gen := s.state.begin(req.Query)
	res, err := s.agent.Run(ctx, req.Query, snap, agent.WithStepObserver(func(step models.Step) {
		s.state.append(gen, step)
		if observer != nil {
			observer(step)
		}
	}))
	if err != nil {
		s.state.finish(gen, nil)
		return nil, err
	}
	s.state.finish(gen, res.Steps)

	resp := &models.QueryResponse{
		Success: res.Err == nil,
		Result:  res.DisplayAnswer(),
		Steps:   res.Steps,
		TimeMS:  s.now().Sub(start).Milliseconds(),
	}
	if res.Err != nil {
		resp.Result = ""
		resp.Error = res.Err.Error()
	}
	if useCache && res.Completed() {
		s.cache.Set(req.Query, snap.Version(), res.Answer, res.Steps)
	}
	s.logger.Info("query processed",
		zap.String("query", req.Query),
		zap.Int("steps", len(res.Steps)),
		zap.Bool("success", resp.Success),
		zap.Int64("time_ms", resp.TimeMS))
	s.record(ctx, req.Query, resp, start)
	return resp, nil
}

// record saves the query in the history. Failures are logged, not returned.
func (s *QueryService) record(ctx context.Context, query string, resp *models.QueryResponse, start time.Time) {
	rec := &models.QueryRecord{
		ID:         uuid.New().String(),
		Query:      query,
		Result:     resp.Result,
		Steps:      resp.Steps,
		Success:    resp.Success,
		Error:      resp.Error,
		FromCache:  resp.FromCache,
		DurationMS: resp.TimeMS,
		CreatedAt:  start.UTC(),
	}
	if err := s.storage.SaveQuery(context.WithoutCancel(ctx), rec); err != nil {
		s.logger.Warn("failed to save query history", zap.Error(err))
	}
}

// State returns the state of the most recent run.
func (s *QueryService) State() models.RunState {
	return s.state.snapshot()
}

// History returns recent queries, newest first. limit <= 0 uses the default.
func (s *QueryService) History(ctx context.Context, limit int) ([]*models.QueryRecord, error) {
	if limit <= 0 {
		limit = s.historyLimit
	}
	recs, err := s.storage.ListQueries(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list query history: %w", err)
	}
	return recs, nil
}

// Analytics summarizes the query history.
func (s *QueryService) Analytics(ctx context.Context) (*models.Analytics, error) {
	metrics, err := s.storage.QueryMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute metrics: %w", err)
	}
	docs, err := s.storage.CountDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	metrics.TotalDocuments = docs
	metrics.UptimeSeconds = s.now().Sub(s.started).Seconds()

	trends, err := s.storage.QueryTrends(ctx, trendWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to compute trends: %w", err)
	}
	top, err := s.storage.TopQueries(ctx, rankingSize)
	if err != nil {
		return nil, fmt.Errorf("failed to rank queries: %w", err)
	}
	slowest, err := s.storage.SlowestQueries(ctx, rankingSize)
	if err != nil {
		return nil, fmt.Errorf("failed to rank slow queries: %w", err)
	}
	return &models.Analytics{
		Metrics:        *metrics,
		Trends:         *trends,
		TopQueries:     top,
		SlowestQueries: slowest,
	}, nil
}
