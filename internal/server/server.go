// Package server provides the HTTP API and WebSocket surface over the
// orchestrator: request submission, task lookups, and status.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/NoahInCloud/devops-sentinel-multi-agent/internal/orchestrator"
	"github.com/NoahInCloud/devops-sentinel-multi-agent/internal/redis"
)

// Server is the sentinel HTTP API server.
type Server struct {
	host   string
	port   int
	apiKey string

	orch  *orchestrator.Orchestrator
	cache *redis.Client

	// WebSocket
	wsConns map[*wsConn]bool
	wsMu    sync.Mutex

	// Load stats
	activeRequests atomic.Int64
	totalRequests  atomic.Int64
	totalLatencyMs atomic.Int64
	startTime      time.Time

	mux *http.ServeMux
	srv *http.Server
}

// Config configures the Server.
type Config struct {
	Host         string
	Port         int
	APIKey       string
	Orchestrator *orchestrator.Orchestrator
	Cache        *redis.Client
}

// NewServer creates a new HTTP API server.
func NewServer(cfg Config) *Server {
	host := cfg.Host
	if host == "" {
		host = "0.0.0.0"
	}
	s := &Server{
		host:      host,
		port:      cfg.Port,
		apiKey:    cfg.APIKey,
		orch:      cfg.Orchestrator,
		cache:     cfg.Cache,
		wsConns:   make(map[*wsConn]bool),
		startTime: time.Now(),
		mux:       http.NewServeMux(),
	}

	// Register routes
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/ws", s.handleWS)
	s.mux.HandleFunc("/api/status", s.withAuth(s.handleStatus))
	s.mux.HandleFunc("/api/chat", s.withAuth(s.handleChat))
	s.mux.HandleFunc("/api/tasks", s.withAuth(s.handleTasks))
	s.mux.HandleFunc("/api/tasks/", s.withAuth(s.handleTask))
	s.mux.HandleFunc("/api/agents", s.withAuth(s.handleAgents))

	return s
}

// Handler exposes the route mux (tests).
func (s *Server) Handler() http.Handler { return s.mux }

// Start starts the HTTP server and blocks until the context is cancelled
// or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.host, s.port),
		Handler: s.mux,
	}

	log.Printf("[Server] ✅ HTTP API → http://%s:%d", s.host, s.port)
	log.Printf("[Server] ✅ WebSocket → ws://%s:%d/ws", s.host, s.port)

	go func() {
		<-ctx.Done()
		s.closeAllWS()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.srv.Shutdown(shutdownCtx)
	}()

	if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop stops the server gracefully.
func (s *Server) Stop() {
	if s.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.srv.Shutdown(ctx)
	}
}

// --- Auth middleware ---

func (s *Server) withAuth(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" {
			if r.Header.Get("X-API-Key") != s.apiKey {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
		}
		handler(w, r)
	}
}

// --- Handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"status": "ok",
		"uptime": int(time.Since(s.startTime).Seconds()),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	total := s.totalRequests.Load()
	var avgMs int64
	if total > 0 {
		avgMs = s.totalLatencyMs.Load() / total
	}
	writeJSON(w, map[string]any{
		"orchestrator":   s.orch.Status(),
		"uptime":         int(time.Since(s.startTime).Seconds()),
		"activeRequests": s.activeRequests.Load(),
		"totalRequests":  total,
		"avgLatencyMs":   avgMs,
	})
}

// chatRequest is the JSON body for /api/chat.
type chatRequest struct {
	Message string         `json:"message"`
	Context map[string]any `json:"context"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		writeJSONError(w, "message is required", http.StatusBadRequest)
		return
	}

	s.activeRequests.Add(1)
	start := time.Now()
	defer func() {
		s.activeRequests.Add(-1)
		s.totalRequests.Add(1)
		s.totalLatencyMs.Add(time.Since(start).Milliseconds())
	}()

	outcome := s.orch.Process(r.Context(), req.Message, req.Context)
	s.cacheReport(outcome)

	writeJSON(w, outcome)
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	tasks := s.orch.Tracker().List(limit)
	writeJSON(w, map[string]any{
		"tasks": tasks,
		"total": len(tasks),
	})
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Path[len("/api/tasks/"):]
	if id == "" {
		writeJSONError(w, "task id is required", http.StatusBadRequest)
		return
	}
	rec, ok := s.orch.Tracker().Get(id)
	if !ok {
		writeJSONError(w, "task not found", http.StatusNotFound)
		return
	}
	writeJSON(w, rec)
}

func (s *Server) handleAgents(w http.ResponseWriter, _ *http.Request) {
	status := s.orch.Status()
	writeJSON(w, map[string]any{
		"agents": status.Agents,
		"total":  status.TotalAgents,
	})
}

// cacheReport mirrors a completed outcome into redis so other surfaces
// can fetch the report by request id.
func (s *Server) cacheReport(outcome orchestrator.Outcome) {
	if !s.cache.Enabled() || outcome.Status != "completed" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.cache.SetJSON(ctx, redis.KeyReport+outcome.RequestID, outcome, time.Hour)
}

// --- WebSocket ---

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn wraps a websocket.Conn with a write mutex for thread safety.
// gorilla/websocket does NOT support concurrent writes.
type wsConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (c *wsConn) WriteJSONSafe(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteJSON(v)
}

func (c *wsConn) WriteCloseSafe(code int, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, text))
}

// wsRequest is one inbound WebSocket frame.
//
// Protocol:
//
//	client → sentinel:  {"type": "chat", "message": "...", "context": {...}}
//	client → sentinel:  {"type": "status"}
//	sentinel → client:  {"type": "response", "data": <outcome>}
//	sentinel → client:  {"type": "status", "data": <status>}
//	sentinel → client:  {"type": "error", "error": "..."}
type wsRequest struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Context map[string]any `json:"context"`
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.apiKey != "" {
		key := r.Header.Get("X-API-Key")
		if key == "" {
			key = r.URL.Query().Get("key")
		}
		if key != s.apiKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	raw, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] ⚠️ Upgrade failed: %v", err)
		return
	}

	conn := &wsConn{Conn: raw}
	peer := r.RemoteAddr
	log.Printf("[WS] 🔗 Connected: %s", peer)

	s.wsMu.Lock()
	s.wsConns[conn] = true
	s.wsMu.Unlock()

	defer func() {
		raw.Close()
		s.wsMu.Lock()
		delete(s.wsConns, conn)
		s.wsMu.Unlock()
		log.Printf("[WS] 🔌 Disconnected: %s", peer)
	}()

	for {
		_, message, err := raw.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] ⚠️ Error: %v", err)
			}
			break
		}

		var req wsRequest
		if err := json.Unmarshal(message, &req); err != nil {
			conn.WriteJSONSafe(map[string]any{"type": "error", "error": "invalid JSON"})
			continue
		}

		switch req.Type {
		case "chat":
			if req.Message == "" {
				conn.WriteJSONSafe(map[string]any{"type": "error", "error": "message is required"})
				continue
			}
			outcome := s.orch.Process(r.Context(), req.Message, req.Context)
			s.cacheReport(outcome)
			conn.WriteJSONSafe(map[string]any{"type": "response", "data": outcome})

		case "status":
			conn.WriteJSONSafe(map[string]any{"type": "status", "data": s.orch.Status()})

		default:
			conn.WriteJSONSafe(map[string]any{
				"type":  "error",
				"error": fmt.Sprintf("unknown message type %q", req.Type),
			})
		}
	}
}

// closeAllWS closes all WebSocket connections (called on shutdown).
func (s *Server) closeAllWS() {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	for c := range s.wsConns {
		c.WriteCloseSafe(websocket.CloseGoingAway, "server shutdown")
		c.Close()
		delete(s.wsConns, c)
	}
}

// WSConnectionCount returns the number of active WebSocket connections.
func (s *Server) WSConnectionCount() int {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	return len(s.wsConns)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
