package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hyperjump/kotae/internal/models"
)

// SaveQuery appends a record to the query history.
func (s *SQLiteStorage) SaveQuery(ctx context.Context, rec *models.QueryRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	steps := rec.Steps
	if steps == nil {
		steps = []models.Step{}
	}
	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		return fmt.Errorf("failed to marshal steps: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO queries (id, query, result, steps, steps_count, success, error, from_cache, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Query, rec.Result, string(stepsJSON), len(rec.Steps),
		rec.Success, rec.Error, rec.FromCache, rec.DurationMS, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save query: %w", err)
	}
	return nil
}

// ListQueries returns the most recent history records, newest first.
func (s *SQLiteStorage) ListQueries(ctx context.Context, limit int) ([]*models.QueryRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, result, steps, success, error, from_cache, duration_ms, created_at
		 FROM queries ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.QueryRecord
	for rows.Next() {
		var rec models.QueryRecord
		var stepsJSON string
		if err := rows.Scan(&rec.ID, &rec.Query, &rec.Result, &stepsJSON, &rec.Success,
			&rec.Error, &rec.FromCache, &rec.DurationMS, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(stepsJSON), &rec.Steps); err != nil {
			return nil, fmt.Errorf("failed to unmarshal steps for %s: %w", rec.ID, err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// QueryMetrics aggregates the whole history. Uptime and document count are
// left for the caller.
func (s *SQLiteStorage) QueryMetrics(ctx context.Context) (*models.Metrics, error) {
	var m models.Metrics
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(success), 0),
		        COALESCE(SUM(from_cache), 0),
		        COALESCE(AVG(duration_ms), 0),
		        COALESCE(AVG(steps_count), 0)
		 FROM queries`,
	).Scan(&m.TotalQueries, &m.SuccessfulQueries, &m.CacheHits, &m.AvgQueryTimeMS, &m.AvgStepsPerQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate queries: %w", err)
	}
	m.FailedQueries = m.TotalQueries - m.SuccessfulQueries
	if m.TotalQueries > 0 {
		m.SuccessRate = float64(m.SuccessfulQueries) / float64(m.TotalQueries)
		m.CacheHitRate = float64(m.CacheHits) / float64(m.TotalQueries)
	}
	return &m, nil
}

// QueryTrends aggregates the queries recorded within window of now.
func (s *SQLiteStorage) QueryTrends(ctx context.Context, window time.Duration) (*models.Trends, error) {
	t := models.Trends{WindowMinutes: int(window / time.Minute)}
	cutoff := time.Now().UTC().Add(-window)
	var successes int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(duration_ms), 0), COALESCE(SUM(success), 0)
		 FROM queries WHERE created_at >= ?`, cutoff,
	).Scan(&t.QueriesInWindow, &t.AvgTimeMS, &successes)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate trends: %w", err)
	}
	if t.QueriesInWindow > 0 {
		t.SuccessRate = float64(successes) / float64(t.QueriesInWindow)
	}
	return &t, nil
}

// TopQueries returns the most frequently asked query texts.
func (s *SQLiteStorage) TopQueries(ctx context.Context, limit int) ([]models.QueryCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT query, COUNT(*) AS n FROM queries
		 GROUP BY query ORDER BY n DESC, MIN(rowid) ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.QueryCount{}
	for rows.Next() {
		var qc models.QueryCount
		if err := rows.Scan(&qc.Query, &qc.Count); err != nil {
			return nil, err
		}
		out = append(out, qc)
	}
	return out, rows.Err()
}

// SlowestQueries returns the executions with the longest duration.
func (s *SQLiteStorage) SlowestQueries(ctx context.Context, limit int) ([]models.SlowQuery, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT query, duration_ms, created_at FROM queries
		 ORDER BY duration_ms DESC, rowid ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.SlowQuery{}
	for rows.Next() {
		var sq models.SlowQuery
		var at time.Time
		if err := rows.Scan(&sq.Query, &sq.DurationMS, &at); err != nil {
			return nil, err
		}
		sq.Timestamp = at.UTC().Format(time.RFC3339)
		out = append(out, sq)
	}
	return out, rows.Err()
}
