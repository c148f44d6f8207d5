// Package tools implements the two capabilities the agent can invoke:
// keyword retrieval over the document set and sentence-level analysis.
package tools

import (
	"strings"

	"github.com/hyperjump/kotae/internal/knowledge"
	"github.com/hyperjump/kotae/pkg/utils"
)

const (
	// NoDocumentsFound is returned by Retrieve when nothing matches.
	NoDocumentsFound = "No relevant documents found."

	// ExcerptLength is the number of characters of content kept per hit.
	ExcerptLength = 500

	excerptSeparator = "\n\n---\n\n"
)

// Retrieve returns an excerpt of every document whose title or content
// contains phrase, case-insensitively, in insertion order.
func Retrieve(docs *knowledge.Snapshot, phrase string) string {
	if docs == nil {
		return NoDocumentsFound
	}
	needle := strings.ToLower(phrase)

	var hits []string
	docs.Each(func(title, content string) bool {
		if strings.Contains(strings.ToLower(title), needle) ||
			strings.Contains(strings.ToLower(content), needle) {
			hits = append(hits, "["+title+"]\n"+utils.Truncate(content, ExcerptLength))
		}
		return true
	})

	if len(hits) == 0 {
		return NoDocumentsFound
	}
	return strings.Join(hits, excerptSeparator)
}

// Concat joins every document's content, used when analysis runs before
// anything was retrieved.
func Concat(docs *knowledge.Snapshot) string {
	if docs == nil {
		return ""
	}
	var b strings.Builder
	docs.Each(func(_, content string) bool {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(content)
		return true
	})
	return b.String()
}
