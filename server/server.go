// Package server exposes the agent over HTTP: a health endpoint and a
// websocket chat endpoint with one agent per connection.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/recall-ai/recall-go/agent"
)

// AgentFactory builds a fresh agent for one connection. Each agent owns its
// short-term buffer; the store and the mutex-guarded metrics aggregator may
// be shared across connections.
type AgentFactory func() (*agent.Agent, error)

// Server serves the chat websocket.
type Server struct {
	factory  AgentFactory
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// Config configures a Server.
type Config struct {
	Factory AgentFactory
	Logger  *slog.Logger
}

// New creates a Server.
func New(cfg Config) (*Server, error) {
	if cfg.Factory == nil {
		return nil, fmt.Errorf("agent factory is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		factory: cfg.Factory,
		logger:  logger.With("component", "server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// ListenAndServe blocks serving on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleWS upgrades the connection and runs a chat session: each text frame
// is one user turn, each reply one text frame. Turn errors are reported to
// the client; the session continues.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	a, err := s.factory()
	if err != nil {
		s.logger.Error("agent construction failed", "error", err)
		conn.WriteMessage(websocket.TextMessage, []byte("error: agent unavailable"))
		return
	}

	s.logger.Info("chat session opened", "remote", r.RemoteAddr)
	defer func() {
		if err := a.Metrics().SaveAggregated(); err != nil {
			s.logger.Warn("saving metrics snapshot failed", "error", err)
		}
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			s.logger.Info("chat session closed", "remote", r.RemoteAddr)
			return
		}
		if msgType != websocket.TextMessage || len(data) == 0 {
			continue
		}

		reply, err := a.Chat(r.Context(), string(data))
		if err != nil {
			reply = fmt.Sprintf("error: %v", err)
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
			s.logger.Error("write failed", "error", err)
			return
		}
	}
}
