// Package models defines core data structures for documents, agent steps, and queries.
package models

import (
	"strings"
	"time"

	"github.com/hyperjump/kotae/pkg/utils"
)

// Document sources.
const (
	SourceUpload = "upload"
	SourceFile   = "file"
	SourceWatch  = "watch"
)

// PreviewLength is the number of characters shown in document listings.
const PreviewLength = 200

// Document is a knowledge-base entry. Title is the key.
type Document struct {
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	MimeType  string    `json:"mime_type,omitempty" db:"mime_type"`
	Source    string    `json:"source,omitempty" db:"source"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DocumentInput is the input for adding or replacing a document.
type DocumentInput struct {
	Title    string `json:"title" validate:"required,max=512"`
	Content  string `json:"content" validate:"required"`
	MimeType string `json:"mime_type,omitempty"`
	Source   string `json:"-"`
}

// Validate trims the title and checks required fields.
func (in *DocumentInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	return validateStruct(in)
}

// DocumentSummary is the listing form of a document.
type DocumentSummary struct {
	Title          string `json:"title"`
	ContentPreview string `json:"content_preview"`
	Size           int    `json:"size"`
}

// Summarize builds the listing form of a document.
func Summarize(title, content string) DocumentSummary {
	return DocumentSummary{
		Title:          title,
		ContentPreview: utils.Truncate(content, PreviewLength),
		Size:           len(content),
	}
}
