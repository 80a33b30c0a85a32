package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/holdem-live/internal/gameid"
)

// Server is the HTTP front door: game creation, the WebSocket entry
// point and a health check.
type Server struct {
	addr        string
	coordinator *Coordinator
	upgrader    websocket.Upgrader
	logger      *log.Logger
	httpServer  *http.Server
	started     time.Time
}

// NewServer wires the coordinator behind the HTTP surface.
func NewServer(addr string, coordinator *Coordinator, logger *log.Logger) *Server {
	return &Server{
		addr:        addr,
		coordinator: coordinator,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// For development, allow all origins
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.WithPrefix("server"),
	}
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /games", s.handleCreateGame)
	mux.HandleFunc("GET /ws/{game_id}", s.handleWebSocket)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.started = time.Now()
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	s.logger.Info("starting server", "addr", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

type createGameRequest struct {
	PlayerName string `json:"player_name"`
	AICount    int    `json:"ai_count"`
}

type createGameResponse struct {
	GameID string `json:"game_id"`
}

// handleCreateGame creates a game and returns its id. The game starts
// when the first WebSocket observer attaches.
func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlayerName == "" {
		s.writeError(w, http.StatusBadRequest, "player_name is required")
		return
	}
	if req.AICount < 1 || req.AICount > 3 {
		s.writeError(w, http.StatusBadRequest, "ai_count must be between 1 and 3")
		return
	}

	id, err := s.coordinator.CreateGame(req.PlayerName, req.AICount)
	if err != nil {
		s.logger.Error("failed to create game", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to create game")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(createGameResponse{GameID: id})
}

// handleWebSocket attaches an observer to an existing game.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("game_id")
	if err := gameid.Validate(id); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}

	session, ok := s.coordinator.Lookup(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "game not found")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, session, s.logger)
	client.Start()
}

// handleHealth reports liveness and the active game count.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":         "ok",
		"active_games":   s.coordinator.Count(),
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	})
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
