package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/agent"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/indexer"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/search"
	"github.com/hyperjump/kotae/internal/storage"
)

const maxJSONBody = 8 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"version":   s.version,
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes())
	var input models.DocumentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		if isTooLarge(err) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "document too large")
			return
		}
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	input.Source = models.SourceUpload
	s.logger.Debug("upload document request", zap.String("title", input.Title), zap.Int("size", len(input.Content)))

	doc, err := s.indexer.AddDocument(r.Context(), &input)
	if err != nil {
		s.respondIndexError(w, err)
		return
	}
	s.logger.Info("Document uploaded", zap.String("title", doc.Title))
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Document '" + doc.Title + "' uploaded successfully",
		"document_id": doc.Title,
	})
}

func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes())
	file, header, err := r.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		s.respondError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read file")
		return
	}
	s.logger.Debug("upload file request", zap.String("filename", header.Filename), zap.Int("size", len(content)))

	doc, err := s.indexer.IndexBytes(r.Context(), header.Filename, content, models.SourceFile)
	if err != nil {
		s.respondIndexError(w, err)
		return
	}
	s.logger.Info("File uploaded", zap.String("title", doc.Title), zap.String("mime_type", doc.MimeType))
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "File '" + doc.Title + "' uploaded successfully",
		"document_id": doc.Title,
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	snap := s.indexer.Documents().Snapshot()
	docs := make([]models.DocumentSummary, 0, snap.Len())
	snap.Each(func(title, content string) bool {
		docs = append(docs, models.Summarize(title, content))
		return true
	})
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"documents": docs,
		"count":     len(docs),
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	title := titleParam(r)
	doc, err := s.storage.GetDocument(r.Context(), title)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "Document not found")
			return
		}
		s.logger.Error("get document failed", zap.String("title", title), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"document": doc,
	})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	title := titleParam(r)
	s.logger.Debug("delete document request", zap.String("title", title))
	if err := s.indexer.DeleteDocument(r.Context(), title); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "Document not found")
			return
		}
		s.logger.Error("deletion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("Document deleted", zap.String("title", title))
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Document '" + title + "' deleted successfully",
	})
}

func (s *Server) handleSearchDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := models.DocumentSearchQuery{Query: q.Get("q")}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		query.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "offset must be an integer")
			return
		}
		query.Offset = n
	}
	query.Fuzzy, _ = strconv.ParseBool(q.Get("fuzzy"))

	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("limit", query.Limit))
	resp, err := s.engine.Search(r.Context(), &query)
	if err != nil {
		switch {
		case errors.Is(err, search.ErrUnavailable):
			s.respondError(w, http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, models.ErrValidation):
			s.respondError(w, http.StatusBadRequest, err.Error())
		default:
			s.logger.Error("search failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"results":       resp.Results,
		"count":         resp.Count,
		"total":         resp.Total,
		"query_time_ms": resp.QueryTime,
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Info("Processing query", zap.String("query", req.Query))

	resp, err := s.queries.Query(r.Context(), &req, nil)
	if err != nil {
		s.respondQueryError(w, err)
		return
	}
	if !resp.Success {
		s.logger.Error("Error processing query", zap.String("error", resp.Error))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleQueryHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}
	recs, err := s.queries.History(r.Context(), limit)
	if err != nil {
		s.logger.Error("Error getting query history", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []*models.QueryRecord{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"queries": recs,
		"count":   len(recs),
	})
}

func (s *Server) handleAgentState(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"state":   s.queries.State(),
	})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	a, err := s.queries.Analytics(r.Context())
	if err != nil {
		s.logger.Error("analytics failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*models.Analytics
	}{true, a})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docCount, err := s.storage.CountDocuments(ctx)
	if err != nil {
		s.logger.Error("status: count documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"success":          true,
		"version":          s.version,
		"documents":        docCount,
		"document_version": s.indexer.Documents().Version(),
		"agent_ready":      s.queries.Ready(),
		"model":            s.model,
	}
	if s.cache != nil {
		resp["cache"] = s.cache.Stats()
	}
	if s.watch != nil {
		resp["watch_directories"] = s.watch.Directories()
	}
	if len(s.diskPaths) > 0 {
		if diskBytes, err := storage.DiskUsageBytes(s.diskPaths...); err == nil {
			resp["disk_usage_bytes"] = diskBytes
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWatchDirectories(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"directories": s.watch.Directories(),
	})
}

func (s *Server) respondIndexError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, indexer.ErrEmptyContent),
		errors.Is(err, extract.ErrUnsupported):
		s.respondError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("Error uploading document", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondQueryError(w http.ResponseWriter, err error) {
	if errors.Is(err, agent.ErrNotConfigured) {
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.respondError(w, http.StatusBadRequest, err.Error())
}

func (s *Server) maxUploadBytes() int64 {
	mb := s.config.MaxUploadMB
	if mb <= 0 {
		mb = 20
	}
	return int64(mb) << 20
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]interface{}{"success": false, "error": message})
}

// titleParam returns the decoded {title} URL parameter.
func titleParam(r *http.Request) string {
	raw := chi.URLParam(r, "title")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
