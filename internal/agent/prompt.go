package agent

import (
	"regexp"
	"strings"
)

// DefaultSystemPrompt tells the model which keywords drive the loop.
const DefaultSystemPrompt = `You are a helpful assistant that answers questions using a private document collection.

You work in steps. On each turn reply with exactly one of:
- To look up documents, write: search for: <words to look for>
- To pull key sentences out of what you retrieved, write: analyze
- When you know the answer, write: Final Answer: <your answer>

Base your answer only on information found in the documents. If they do not contain the answer, say so clearly in your Final Answer. Be concise and direct.`

var (
	toolCallPattern  = regexp.MustCompile(`(?i)\b(?:retrieve|search)\w*\s*\(\s*["'“]?([^"'”)]+?)["'”]?\s*\)`)
	quotedPattern    = regexp.MustCompile(`["“]([^"”]+)["”]`)
	searchForPattern = regexp.MustCompile(`(?i)\b(?:search(?:\s+for)?|retrieve)\s*:\s*(.+)`)
)

// extractSearchPhrase pulls the text the model wants to look up out of its
// reply: a tool(args) form, then quoted text, then a "search for: X" line.
// Falls back to the user's query.
func extractSearchPhrase(reply, query string) string {
	for _, re := range []*regexp.Regexp{toolCallPattern, quotedPattern, searchForPattern} {
		if m := re.FindStringSubmatch(reply); m != nil {
			if phrase := cleanPhrase(m[1]); phrase != "" {
				return phrase
			}
		}
	}
	return query
}

func cleanPhrase(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.Trim(strings.TrimSpace(s), `"'“”.`)
}
