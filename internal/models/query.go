package models

import (
	"strings"
	"time"
)

// QueryRequest is a question submitted to the agent.
type QueryRequest struct {
	Query    string `json:"query" validate:"required,max=4000"`
	UseCache *bool  `json:"use_cache,omitempty"`
}

// Validate trims the query and checks it is non-empty.
func (q *QueryRequest) Validate() error {
	q.Query = strings.TrimSpace(q.Query)
	return validateStruct(q)
}

// CacheEnabled returns whether the answer cache may be used; defaults to true.
func (q *QueryRequest) CacheEnabled() bool {
	if q.UseCache != nil {
		return *q.UseCache
	}
	return true
}

// QueryResponse is returned for a processed query.
type QueryResponse struct {
	Success   bool   `json:"success"`
	Result    string `json:"result"`
	Steps     []Step `json:"steps"`
	Error     string `json:"error,omitempty"`
	FromCache bool   `json:"from_cache"`
	TimeMS    int64  `json:"time_ms"`
}

// QueryRecord is a persisted entry of the query history.
type QueryRecord struct {
	ID         string    `json:"id" db:"id"`
	Query      string    `json:"query" db:"query"`
	Result     string    `json:"result" db:"result"`
	Steps      []Step    `json:"steps" db:"steps"`
	Success    bool      `json:"success" db:"success"`
	Error      string    `json:"error,omitempty" db:"error"`
	FromCache  bool      `json:"from_cache" db:"from_cache"`
	DurationMS int64     `json:"duration_ms" db:"duration_ms"`
	CreatedAt  time.Time `json:"timestamp" db:"created_at"`
}
