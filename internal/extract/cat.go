package extract

import (
	"fmt"
	"strings"

	"github.com/lu4p/cat"
)

// extractWithCat reads ODT and RTF through lu4p/cat. For ODT, a failure or an
// empty result falls back to the OpenDocument reader.
func extractWithCat(content []byte, ext string) (string, error) {
	text, err := cat.FromBytes(content)
	if err == nil && strings.TrimSpace(text) != "" {
		return strings.TrimSpace(text), nil
	}
	if ext == ".odt" {
		return extractODF(content, "ODT")
	}
	if err != nil {
		return "", fmt.Errorf("extract RTF: %w", err)
	}
	return "", nil
}
