// Package indexer maintains the knowledge base: it persists documents to
// storage, indexes them for keyword search, and swaps the in-memory document
// snapshot the agent reads from.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/knowledge"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
)

// ErrEmptyContent is returned when a file yields no text.
var ErrEmptyContent = errors.New("document has no text content")

// Indexer writes documents to storage, the keyword index and the document store.
type Indexer struct {
	storage      storage.Storage
	keywordIndex keyword.KeywordIndex // optional
	docs         *knowledge.Store
	extractor    *extract.Extractor
	onChange     []func()
	logger       *zap.Logger

	// writes are serialized so storage and the snapshot agree on order
	mu sync.Mutex
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output (document added, deleted, etc.).
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// WithOnChange registers fn to run after every change to the document set.
func WithOnChange(fn func()) IndexerOption {
	return func(idx *Indexer) {
		if fn != nil {
			idx.onChange = append(idx.onChange, fn)
		}
	}
}

// NewIndexer creates an indexer. keywordIndex may be nil. extractor may be
// nil; when nil, files are read as plain text.
func NewIndexer(
	storage storage.Storage,
	keywordIndex keyword.KeywordIndex,
	docs *knowledge.Store,
	extractor *extract.Extractor,
	opts ...IndexerOption,
) *Indexer {
	idx := &Indexer{
		storage:      storage,
		keywordIndex: keywordIndex,
		docs:         docs,
		extractor:    extractor,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Documents returns the document store the indexer maintains.
func (idx *Indexer) Documents() *knowledge.Store {
	return idx.docs
}

// LoadAll rebuilds the document store from storage and brings the keyword
// index in line with it. Called once at startup.
func (idx *Indexer) LoadAll(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	stored, err := idx.storage.ListDocuments(ctx, 0, -1)
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}

	entries := make([]knowledge.Entry, 0, len(stored))
	present := make(map[string]bool, len(stored))
	for _, doc := range stored {
		entries = append(entries, knowledge.Entry{Title: doc.Title, Content: doc.Content})
		present[doc.Title] = true
	}

	if idx.keywordIndex != nil {
		for _, doc := range stored {
			if err := idx.keywordIndex.Index(ctx, doc); err != nil {
				return fmt.Errorf("failed to index document %q: %w", doc.Title, err)
			}
		}
		ids, err := idx.keywordIndex.IDs(ctx)
		if err != nil {
			return fmt.Errorf("failed to list keyword index: %w", err)
		}
		for _, id := range ids {
			if present[id] {
				continue
			}
			if err := idx.keywordIndex.Delete(ctx, id); err != nil && idx.logger != nil {
				idx.logger.Warn("failed to drop stale keyword entry", zap.String("title", id), zap.Error(err))
			}
		}
	}

	idx.docs.Replace(entries)
	idx.notify()
	if idx.logger != nil {
		idx.logger.Info("knowledge base loaded", zap.Int("documents", len(entries)))
	}
	return nil
}

// AddDocument validates, stores and indexes a document, replacing any
// document with the same title.
func (idx *Indexer) AddDocument(ctx context.Context, in *models.DocumentInput) (*models.Document, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	content := Preprocess(in.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	source := in.Source
	if source == "" {
		source = models.SourceUpload
	}
	mimeType := in.MimeType
	if mimeType == "" {
		mimeType = "text/plain"
	}
	doc := &models.Document{
		Title:    strings.TrimSpace(in.Title),
		Content:  content,
		MimeType: mimeType,
		Source:   source,
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.write(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// IndexBytes extracts text from an uploaded file and adds it under its base
// file name.
func (idx *Indexer) IndexBytes(ctx context.Context, filename string, content []byte, source string) (*models.Document, error) {
	title := filepath.Base(filename)
	ext := filepath.Ext(title)
	text, err := idx.extractBytes(content, ext)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", title, err)
	}
	return idx.AddDocument(ctx, &models.DocumentInput{
		Title:    title,
		Content:  text,
		MimeType: extract.MimeType(ext),
		Source:   source,
	})
}

// IndexFile indexes a single file from disk. The document title is the base
// file name. Returns an error if the extension is not in allowedExts (when
// non-empty) or the path is not a regular file. A file whose text matches the
// stored document is skipped.
func (idx *Indexer) IndexFile(ctx context.Context, path string, allowedExts []string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
		return fmt.Errorf("extension %q not allowed", ext)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", path)
	}

	text, err := idx.extractContent(path)
	if err != nil {
		return fmt.Errorf("extract content: %w", err)
	}
	title := filepath.Base(path)
	content := Preprocess(text)
	if content == "" {
		return fmt.Errorf("%s: %w", title, ErrEmptyContent)
	}

	if existing, err := idx.storage.GetDocument(ctx, title); err == nil && existing.Content == content {
		if idx.logger != nil {
			idx.logger.Debug("file unchanged, skipped", zap.String("path", path))
		}
		return nil
	}

	_, err = idx.AddDocument(ctx, &models.DocumentInput{
		Title:    title,
		Content:  content,
		MimeType: extract.MimeType(ext),
		Source:   models.SourceWatch,
	})
	if err != nil {
		return err
	}
	if idx.logger != nil {
		idx.logger.Debug("file indexed", zap.String("path", path), zap.String("title", title))
	}
	return nil
}

// IndexDirectory walks dir (recursively when recursive is true) and indexes
// each regular file whose extension is in allowedExts. Files that fail to
// extract are logged and skipped. Returns the number of files indexed.
func (idx *Indexer) IndexDirectory(ctx context.Context, dir string, allowedExts []string, recursive bool) (int, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}
	n := 0
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != absDir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
			return nil
		}
		// Resolve symlinks so we only index regular files
		finfo, statErr := os.Stat(path)
		if statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		if indexErr := idx.IndexFile(ctx, path, allowedExts); indexErr != nil {
			if idx.logger != nil {
				idx.logger.Warn("skipping file", zap.String("path", path), zap.Error(indexErr))
			}
			return nil
		}
		n++
		return nil
	})
	return n, err
}

// DeleteDocument removes a document by title. Returns storage.ErrNotFound
// if no such document exists.
func (idx *Indexer) DeleteDocument(ctx context.Context, title string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if err := idx.storage.DeleteDocument(ctx, title); err != nil {
		return err
	}
	if idx.keywordIndex != nil {
		if err := idx.keywordIndex.Delete(ctx, title); err != nil && idx.logger != nil {
			idx.logger.Warn("failed to delete from keyword index", zap.String("title", title), zap.Error(err))
		}
	}
	idx.docs.Delete(title)
	idx.notify()
	if idx.logger != nil {
		idx.logger.Debug("document deleted", zap.String("title", title))
	}
	return nil
}

// RemoveFile deletes the document that was indexed from path, if any.
func (idx *Indexer) RemoveFile(ctx context.Context, path string) error {
	err := idx.DeleteDocument(ctx, filepath.Base(path))
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

// write persists doc, indexes it and publishes it. Caller holds idx.mu.
func (idx *Indexer) write(ctx context.Context, doc *models.Document) error {
	if err := idx.storage.UpsertDocument(ctx, doc); err != nil {
		return err
	}
	// The stored row is authoritative; a keyword index miss only affects search.
	if idx.keywordIndex != nil {
		if err := idx.keywordIndex.Index(ctx, doc); err != nil && idx.logger != nil {
			idx.logger.Warn("failed to index document", zap.String("title", doc.Title), zap.Error(err))
		}
	}
	idx.docs.Put(doc.Title, doc.Content)
	idx.notify()
	if idx.logger != nil {
		idx.logger.Debug("document stored",
			zap.String("title", doc.Title),
			zap.String("source", doc.Source),
			zap.Int("size", len(doc.Content)))
	}
	return nil
}

func (idx *Indexer) notify() {
	for _, fn := range idx.onChange {
		fn()
	}
}

func (idx *Indexer) extractContent(path string) (string, error) {
	if idx.extractor != nil {
		return idx.extractor.Extract(path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func (idx *Indexer) extractBytes(content []byte, ext string) (string, error) {
	if idx.extractor != nil {
		return idx.extractor.ExtractBytes(content, ext)
	}
	return string(content), nil
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
