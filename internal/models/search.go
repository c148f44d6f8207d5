package models

import (
	"strings"
)

// DocumentSearchQuery is a full-text search over the knowledge base.
type DocumentSearchQuery struct {
	Query  string `json:"q"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
	Fuzzy  bool   `json:"fuzzy,omitempty"`
}

// Normalize trims the query and clamps the limit into [1, maxLimit],
// using defaultLimit when unset. Returns an error if the query is empty.
func (q *DocumentSearchQuery) Normalize(defaultLimit, maxLimit int) error {
	q.Query = strings.TrimSpace(q.Query)
	if q.Query == "" {
		return invalid("query cannot be empty")
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if maxLimit > 0 && q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return nil
}

// DocumentHit is one search result.
type DocumentHit struct {
	Title     string   `json:"title"`
	Score     float64  `json:"score"`
	Preview   string   `json:"content_preview,omitempty"`
	Fragments []string `json:"fragments,omitempty"`
	Rank      int      `json:"rank"`
}

// DocumentSearchResponse is the result page of a document search.
type DocumentSearchResponse struct {
	Results   []DocumentHit `json:"results"`
	Count     int           `json:"count"`
	Total     int           `json:"total"`
	QueryTime int64         `json:"query_time_ms"`
	Query     string        `json:"query"`
}
