// Package search provides full-text search over the knowledge base.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/knowledge"
	"github.com/hyperjump/kotae/internal/models"
)

// ErrUnavailable is returned when no keyword index is configured.
var ErrUnavailable = errors.New("document search is not available")

// titleBoost ranks title matches above body matches.
const titleBoost = 2.0

// Engine runs keyword search and resolves hits against the current documents.
type Engine struct {
	keywordIndex keyword.KeywordIndex
	docs         *knowledge.Store
	config       config.RetrievalConfig
}

// NewEngine creates a search engine. keywordIndex may be nil, in which case
// Search returns ErrUnavailable.
func NewEngine(keywordIndex keyword.KeywordIndex, docs *knowledge.Store, cfg config.RetrievalConfig) *Engine {
	return &Engine{
		keywordIndex: keywordIndex,
		docs:         docs,
		config:       cfg,
	}
}

// Search runs the query and returns one page of results. Hits for documents
// no longer in the knowledge base are dropped.
func (e *Engine) Search(ctx context.Context, query *models.DocumentSearchQuery) (*models.DocumentSearchResponse, error) {
	startTime := time.Now()
	if err := ProcessQuery(query, e.config); err != nil {
		return nil, err
	}
	if e.keywordIndex == nil {
		return nil, ErrUnavailable
	}

	hits, err := e.keywordIndex.Search(ctx, query.Query, query.Offset+query.Limit, &keyword.SearchOptions{
		TitleBoost:   titleBoost,
		FuzzyEnabled: query.Fuzzy,
		Highlight:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}

	snap := e.docs.Snapshot()
	live := make([]*keyword.KeywordResult, 0, len(hits))
	for _, h := range hits {
		if _, ok := snap.Get(h.Title); ok {
			live = append(live, h)
		}
	}

	start := query.Offset
	if start > len(live) {
		start = len(live)
	}
	end := start + query.Limit
	if end > len(live) {
		end = len(live)
	}
	page := live[start:end]

	response := &models.DocumentSearchResponse{
		Results: make([]models.DocumentHit, 0, len(page)),
		Total:   len(live),
		Query:   query.Query,
	}
	for i, h := range page {
		content, _ := snap.Get(h.Title)
		response.Results = append(response.Results, models.DocumentHit{
			Title:     h.Title,
			Score:     h.Score,
			Preview:   Preview(content, models.PreviewLength),
			Fragments: h.Fragments,
			Rank:      start + i + 1,
		})
	}
	response.Count = len(response.Results)
	response.QueryTime = time.Since(startTime).Milliseconds()
	return response, nil
}
