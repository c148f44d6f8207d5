package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fasthttp/websocket"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/agent"
	"github.com/hyperjump/kotae/internal/models"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 << 10
)

// Message types sent over /ws/query.
const (
	wsStep     = "step"
	wsResult   = "result"
	wsComplete = "complete"
	wsError    = "error"
)

type wsRequest struct {
	Query    string `json:"query"`
	UseCache *bool  `json:"use_cache,omitempty"`
}

type wsMessage struct {
	Type      string          `json:"type"`
	StepType  models.StepType `json:"step_type,omitempty"`
	Content   string          `json:"content,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
	Success   *bool           `json:"success,omitempty"`
	FromCache bool            `json:"from_cache,omitempty"`
	TimeMS    int64           `json:"time_ms,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// handleQueryWebSocket answers queries over a socket, one at a time, streaming
// each step as the agent records it.
func (s *Server) handleQueryWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(s.config.AllowedOrigins, r.Header.Get("Origin"))
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)
	s.logger.Info("WebSocket connection established", zap.String("remote", r.RemoteAddr))

	ctx := r.Context()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(data, &req); err != nil {
			if s.send(conn, wsMessage{Type: wsError, Content: "invalid message: expected {\"query\": \"...\"}"}) != nil {
				return
			}
			continue
		}

		var writeErr error
		resp, err := s.queries.Query(ctx, &models.QueryRequest{Query: req.Query, UseCache: req.UseCache}, func(step models.Step) {
			if writeErr != nil {
				return
			}
			writeErr = s.send(conn, wsMessage{
				Type:      wsStep,
				StepType:  step.Type,
				Content:   step.Content,
				Timestamp: step.Timestamp,
			})
		})
		if err != nil {
			msg := err.Error()
			if errors.Is(err, agent.ErrEmptyQuery) {
				msg = "Query cannot be empty"
			}
			if s.send(conn, wsMessage{Type: wsError, Content: msg}) != nil {
				return
			}
			continue
		}
		if writeErr != nil {
			s.logger.Debug("websocket write failed", zap.Error(writeErr))
			return
		}

		success := resp.Success
		if err := s.send(conn, wsMessage{
			Type:      wsResult,
			Content:   resp.Result,
			Success:   &success,
			FromCache: resp.FromCache,
			TimeMS:    resp.TimeMS,
			Error:     resp.Error,
		}); err != nil {
			return
		}
		if err := s.send(conn, wsMessage{Type: wsComplete}); err != nil {
			return
		}
	}
}

func (s *Server) send(conn *websocket.Conn, msg wsMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}
