package tools

import (
	"regexp"
	"strings"
)

const (
	// NoFindings is returned by Analyze when no sentence shares a query word.
	NoFindings = "No specific findings related to the query."

	findingsHeader = "Key findings:\n"
	maxFindings    = 3
)

var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

// Analyze keeps the first sentences of text that contain any word of query.
func Analyze(text, query string) string {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return NoFindings
	}

	var found []string
	for _, s := range sentenceBoundary.Split(text, -1) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		lower := strings.ToLower(s)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				found = append(found, s)
				break
			}
		}
		if len(found) == maxFindings {
			break
		}
	}

	if len(found) == 0 {
		return NoFindings
	}
	return findingsHeader + strings.Join(found, "\n")
}
