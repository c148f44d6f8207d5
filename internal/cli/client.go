package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fasthttp/websocket"

	"github.com/hyperjump/kotae/internal/models"
)

// DefaultServerURL is where the CLI expects a running server.
const DefaultServerURL = "http://localhost:8000"

// Client talks to a running kotae server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Minute},
	}
}

type apiError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("server request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var ae apiError
		if json.Unmarshal(body, &ae) == nil && ae.Error != "" {
			return fmt.Errorf("server returned %s: %s", resp.Status, ae.Error)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// Query asks a question and waits for the full response.
func (c *Client) Query(ctx context.Context, req *models.QueryRequest) (*models.QueryResponse, error) {
	var resp models.QueryResponse
	if err := c.postJSON(ctx, "/api/query", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type streamMessage struct {
	Type      string          `json:"type"`
	StepType  models.StepType `json:"step_type"`
	Content   string          `json:"content"`
	Timestamp int64           `json:"timestamp"`
	Success   *bool           `json:"success"`
	FromCache bool            `json:"from_cache"`
	TimeMS    int64           `json:"time_ms"`
	Error     string          `json:"error"`
}

// StreamQuery asks a question over the WebSocket endpoint, calling onStep for
// each step as the agent records it.
func (c *Client) StreamQuery(ctx context.Context, req *models.QueryRequest, onStep func(models.Step)) (*models.QueryResponse, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/query"

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", u, err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("failed to send query: %w", err)
	}

	resp := &models.QueryResponse{}
	for {
		var msg streamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("failed to read stream: %w", err)
		}
		switch msg.Type {
		case "step":
			step := models.Step{Type: msg.StepType, Content: msg.Content, Timestamp: msg.Timestamp}
			resp.Steps = append(resp.Steps, step)
			if onStep != nil {
				onStep(step)
			}
		case "result":
			resp.Result = msg.Content
			resp.Success = msg.Success != nil && *msg.Success
			resp.FromCache = msg.FromCache
			resp.TimeMS = msg.TimeMS
			resp.Error = msg.Error
		case "complete":
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return resp, nil
		case "error":
			return nil, errors.New(msg.Content)
		}
	}
}

// UploadText uploads a document from text.
func (c *Client) UploadText(ctx context.Context, title, content string) (string, error) {
	var out struct {
		DocumentID string `json:"document_id"`
	}
	in := models.DocumentInput{Title: title, Content: content}
	if err := c.postJSON(ctx, "/api/documents/upload", &in, &out); err != nil {
		return "", err
	}
	return out.DocumentID, nil
}

// UploadFile uploads a file for server-side text extraction.
func (c *Client) UploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/documents/upload-file", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var out struct {
		DocumentID string `json:"document_id"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.DocumentID, nil
}

// ListDocuments returns all document summaries.
func (c *Client) ListDocuments(ctx context.Context) ([]models.DocumentSummary, error) {
	var out struct {
		Documents []models.DocumentSummary `json:"documents"`
	}
	if err := c.get(ctx, "/api/documents/", &out); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

// DeleteDocument removes a document by title.
func (c *Client) DeleteDocument(ctx context.Context, title string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/documents/"+url.PathEscape(title), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// Search runs a full-text document search.
func (c *Client) Search(ctx context.Context, q *models.DocumentSearchQuery) (*models.DocumentSearchResponse, error) {
	params := url.Values{}
	params.Set("q", q.Query)
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Fuzzy {
		params.Set("fuzzy", "true")
	}
	var out models.DocumentSearchResponse
	if err := c.get(ctx, "/api/documents/search?"+params.Encode(), &out); err != nil {
		return nil, err
	}
	out.Query = q.Query
	return &out, nil
}

// History returns recent queries, newest first.
func (c *Client) History(ctx context.Context, limit int) ([]*models.QueryRecord, error) {
	path := "/api/queries/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out struct {
		Queries []*models.QueryRecord `json:"queries"`
	}
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Queries, nil
}

// Status returns the server status.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var out Status
	if err := c.get(ctx, "/api/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
