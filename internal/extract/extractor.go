// Package extract provides text extraction from uploaded and watched document files.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupported is returned for binary content in a format we cannot read.
var ErrUnsupported = errors.New("unsupported document format")

// textExtensions are read as plain text with encoding detection.
var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".rst": true, ".csv": true, ".json": true,
	".log": true, ".html": true, ".xml": true, ".yaml": true, ".yml": true, "": true,
}

var mimeTypes = map[string]string{
	".txt":  "text/plain",
	".md":   "text/markdown",
	".rst":  "text/x-rst",
	".csv":  "text/csv",
	".json": "application/json",
	".html": "text/html",
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".odt":  "application/vnd.oasis.opendocument.text",
	".ods":  "application/vnd.oasis.opendocument.spreadsheet",
	".odp":  "application/vnd.oasis.opendocument.presentation",
	".rtf":  "application/rtf",
}

// Extractor extracts plain text from document files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its text content.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, filepath.Ext(path))
}

// ExtractBytes extracts text from content based on the given extension
// (with leading dot, any case). Plain text is decoded as UTF-8, falling back
// to Latin-1. Unknown extensions are treated as text unless the content is
// binary, in which case ErrUnsupported is returned.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	ext = strings.ToLower(ext)
	switch ext {
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".xlsx":
		return extractExcel(content)
	case ".pptx":
		return extractPPTX(content)
	case ".odp", ".ods":
		return extractODF(content, strings.ToUpper(ext[1:]))
	case ".odt", ".rtf":
		return extractWithCat(content, ext)
	}
	if !textExtensions[ext] && looksBinary(content) {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
	return decodeText(content), nil
}

// Supported reports whether ext names a format with a dedicated extractor or a text format.
func Supported(ext string) bool {
	ext = strings.ToLower(ext)
	_, ok := mimeTypes[ext]
	return ok || textExtensions[ext]
}

// MimeType returns the MIME type recorded for a document with extension ext.
func MimeType(ext string) string {
	if m, ok := mimeTypes[strings.ToLower(ext)]; ok {
		return m
	}
	return "text/plain"
}

// looksBinary reports whether the first KiB contains a NUL byte.
func looksBinary(content []byte) bool {
	head := content
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.IndexByte(head, 0) >= 0
}
