package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/NoahInCloud/devops-sentinel-multi-agent/internal/orchestrator"
)

func newTestServer(t *testing.T, apiKey string) *Server {
	t.Helper()
	orch := orchestrator.New(func(opts *orchestrator.Options) {
		opts.GlobalTimeout = 5 * time.Second
		opts.HeartbeatInterval = 0
	})
	if err := orch.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize orchestrator: %v", err)
	}
	t.Cleanup(orch.Shutdown)

	return NewServer(Config{
		Port:         0,
		APIKey:       apiKey,
		Orchestrator: orch,
	})
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, "")
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	s.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	var body map[string]any
	json.NewDecoder(w.Body).Decode(&body)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
}

func TestHandleStatus_NoAuth(t *testing.T) {
	s := newTestServer(t, "secret-key")

	req := httptest.NewRequest("GET", "/api/status", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestHandleStatus_WithAuth(t *testing.T) {
	s := newTestServer(t, "secret-key")

	req := httptest.NewRequest("GET", "/api/status", nil)
	req.Header.Set("X-API-Key", "secret-key")
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	var body map[string]any
	json.NewDecoder(w.Body).Decode(&body)
	if _, ok := body["orchestrator"]; !ok {
		t.Error("missing orchestrator field")
	}
}

func TestHandleChat(t *testing.T) {
	s := newTestServer(t, "")
	body := `{"message":"check infrastructure health"}`
	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(body))
	w := httptest.NewRecorder()

	s.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var outcome orchestrator.Outcome
	if err := json.NewDecoder(w.Body).Decode(&outcome); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if outcome.Status != "completed" {
		t.Errorf("outcome status = %q, want completed", outcome.Status)
	}
	if outcome.RequestID == "" {
		t.Error("missing request id")
	}
	if !strings.Contains(outcome.Response, "DevOps Sentinel Response:") {
		t.Errorf("unexpected response: %q", outcome.Response)
	}
}

func TestHandleChat_EmptyMessage(t *testing.T) {
	s := newTestServer(t, "")
	body := `{"message":""}`
	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(body))
	w := httptest.NewRecorder()

	s.mux.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleChat_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t, "")
	req := httptest.NewRequest("GET", "/api/chat", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestHandleTasks(t *testing.T) {
	s := newTestServer(t, "")

	// Process one request so a task record exists.
	chatBody := `{"message":"check infrastructure health"}`
	chatReq := httptest.NewRequest("POST", "/api/chat", strings.NewReader(chatBody))
	s.mux.ServeHTTP(httptest.NewRecorder(), chatReq)

	req := httptest.NewRequest("GET", "/api/tasks", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Tasks []orchestrator.TaskRecord `json:"tasks"`
		Total int                       `json:"total"`
	}
	json.NewDecoder(w.Body).Decode(&body)
	if body.Total != 1 {
		t.Errorf("total = %d, want 1", body.Total)
	}
	if len(body.Tasks) == 1 && body.Tasks[0].Status != orchestrator.TaskCompleted {
		t.Errorf("task status = %q", body.Tasks[0].Status)
	}
}

func TestHandleTask_ByID(t *testing.T) {
	s := newTestServer(t, "")

	chatReq := httptest.NewRequest("POST", "/api/chat",
		strings.NewReader(`{"message":"what are our costs"}`))
	chatW := httptest.NewRecorder()
	s.mux.ServeHTTP(chatW, chatReq)

	var outcome orchestrator.Outcome
	json.NewDecoder(chatW.Body).Decode(&outcome)

	req := httptest.NewRequest("GET", "/api/tasks/"+outcome.RequestID, nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var rec orchestrator.TaskRecord
	json.NewDecoder(w.Body).Decode(&rec)
	if rec.RequestID != outcome.RequestID {
		t.Errorf("request id = %q, want %q", rec.RequestID, outcome.RequestID)
	}
}

func TestHandleTask_NotFound(t *testing.T) {
	s := newTestServer(t, "")
	req := httptest.NewRequest("GET", "/api/tasks/nope", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHandleAgents(t *testing.T) {
	s := newTestServer(t, "")
	req := httptest.NewRequest("GET", "/api/agents", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body map[string]any
	json.NewDecoder(w.Body).Decode(&body)
	if total, _ := body["total"].(float64); total != 6 {
		t.Errorf("total = %v, want 6", body["total"])
	}
}

func TestWSConnectionCount_Empty(t *testing.T) {
	s := newTestServer(t, "")
	if n := s.WSConnectionCount(); n != 0 {
		t.Errorf("connections = %d, want 0", n)
	}
}
