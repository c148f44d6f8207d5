package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fasthttp/websocket"

	"github.com/hyperjump/kotae/internal/models"
)

func writeJSONResponse(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_Query(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/query" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req models.QueryRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSONResponse(w, http.StatusOK, models.QueryResponse{Success: true, Result: "echo: " + req.Query})
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL+"/").Query(context.Background(), &models.QueryRequest{Query: "hi"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !resp.Success || resp.Result != "echo: hi" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestClient_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSONResponse(w, http.StatusServiceUnavailable, map[string]interface{}{"success": false, "error": "agent not configured"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Query(context.Background(), &models.QueryRequest{Query: "hi"})
	if err == nil || !strings.Contains(err.Error(), "agent not configured") {
		t.Fatalf("expected server error message, got %v", err)
	}
}

func TestClient_UploadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/documents/upload-file" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		f, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if string(data) != "hello" {
			t.Errorf("uploaded content = %q", data)
		}
		writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true, "document_id": header.Filename})
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	id, err := NewClient(srv.URL).UploadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if id != "notes.txt" {
		t.Errorf("document id = %q", id)
	}
}

func TestClient_SearchAndDelete(t *testing.T) {
	var deleted string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/documents/search":
			q := r.URL.Query()
			if q.Get("q") != "go lang" || q.Get("limit") != "3" || q.Get("fuzzy") != "true" {
				t.Errorf("unexpected query string %s", r.URL.RawQuery)
			}
			writeJSONResponse(w, http.StatusOK, models.DocumentSearchResponse{
				Results: []models.DocumentHit{{Title: "go", Rank: 1}},
				Count:   1,
				Total:   1,
			})
		case r.Method == http.MethodDelete:
			deleted = r.URL.EscapedPath()
			writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	resp, err := c.Search(context.Background(), &models.DocumentSearchQuery{Query: "go lang", Limit: 3, Fuzzy: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Total != 1 || resp.Query != "go lang" {
		t.Errorf("resp = %+v", resp)
	}

	if err := c.DeleteDocument(context.Background(), "my notes"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if deleted != "/api/documents/my%20notes" {
		t.Errorf("delete path = %q", deleted)
	}
}

func TestClient_StreamQuery(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws/query" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var req models.QueryRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		success := true
		_ = conn.WriteJSON(map[string]interface{}{"type": "step", "step_type": "thought", "content": "Analyzing query: " + req.Query, "timestamp": 1})
		_ = conn.WriteJSON(map[string]interface{}{"type": "step", "step_type": "result", "content": "Final Answer: 42", "timestamp": 2})
		_ = conn.WriteJSON(map[string]interface{}{"type": "result", "content": "Final Answer: 42", "success": success, "time_ms": 9})
		_ = conn.WriteJSON(map[string]interface{}{"type": "complete"})
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	var streamed []models.Step
	resp, err := NewClient(srv.URL).StreamQuery(context.Background(), &models.QueryRequest{Query: "life"}, func(s models.Step) {
		streamed = append(streamed, s)
	})
	if err != nil {
		t.Fatalf("StreamQuery: %v", err)
	}
	if len(streamed) != 2 || streamed[0].Content != "Analyzing query: life" {
		t.Errorf("streamed = %+v", streamed)
	}
	if !resp.Success || resp.Result != "Final Answer: 42" || resp.TimeMS != 9 || len(resp.Steps) != 2 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestClient_StreamQueryError(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_, _, _ = conn.ReadMessage()
		_ = conn.WriteJSON(map[string]interface{}{"type": "error", "content": "Query cannot be empty"})
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).StreamQuery(context.Background(), &models.QueryRequest{Query: " "}, nil)
	if err == nil || err.Error() != "Query cannot be empty" {
		t.Fatalf("expected stream error, got %v", err)
	}
}
