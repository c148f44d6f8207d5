package search

import (
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/models"
)

// ProcessQuery validates the query and applies the configured limits.
func ProcessQuery(query *models.DocumentSearchQuery, cfg config.RetrievalConfig) error {
	defaultLimit := cfg.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return query.Normalize(defaultLimit, cfg.MaxLimit)
}
