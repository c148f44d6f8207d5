package search

import (
	"strings"

	"github.com/hyperjump/kotae/pkg/utils"
)

// Preview returns the first maxLen characters of content with whitespace
// collapsed onto a single line.
func Preview(content string, maxLen int) string {
	return utils.Truncate(strings.Join(strings.Fields(content), " "), maxLen)
}
