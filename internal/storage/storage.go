// Package storage defines the persistence interface for documents and query history.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hyperjump/kotae/internal/models"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("not found")

// Storage defines document and query history persistence operations.
type Storage interface {
	// Document operations, keyed by title
	UpsertDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, title string) (*models.Document, error)
	DeleteDocument(ctx context.Context, title string) error
	ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error)
	CountDocuments(ctx context.Context) (int64, error)

	// Query history
	SaveQuery(ctx context.Context, rec *models.QueryRecord) error
	ListQueries(ctx context.Context, limit int) ([]*models.QueryRecord, error)

	// Analytics
	QueryMetrics(ctx context.Context) (*models.Metrics, error)
	QueryTrends(ctx context.Context, window time.Duration) (*models.Trends, error)
	TopQueries(ctx context.Context, limit int) ([]models.QueryCount, error)
	SlowestQueries(ctx context.Context, limit int) ([]models.SlowQuery, error)

	Close() error
}
