package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/forgeline/devagent/internal/domain/chat/models"
	"github.com/forgeline/devagent/internal/services/session"
	"github.com/gorilla/mux"
)

func newSessionRouter(svc *session.Service) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/sessions", func(w http.ResponseWriter, req *http.Request) {
		HandleCreateSession(svc, w, req)
	}).Methods("POST")
	r.HandleFunc("/api/v1/sessions/{id}/history", func(w http.ResponseWriter, req *http.Request) {
		HandleSessionHistory(svc, w, req)
	}).Methods("GET")
	r.HandleFunc("/api/v1/sessions/{id}", func(w http.ResponseWriter, req *http.Request) {
		HandleDeleteSession(svc, w, req)
	}).Methods("DELETE")
	return r
}

func TestSessionHandlers(t *testing.T) {
	svc := session.NewServiceWithStore(session.NewMemoryStore())
	router := newSessionRouter(svc)

	t.Run("create returns a session id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d", w.Code)
		}

		var resp models.SessionResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.SessionID == "" {
			t.Error("Expected a session id")
		}
	})

	t.Run("history excludes the system prompt", func(t *testing.T) {
		created, err := svc.Create(httptest.NewRequest(http.MethodGet, "/", nil).Context())
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+created.SessionID+"/history", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var history []models.Message
		if err := json.NewDecoder(w.Body).Decode(&history); err != nil {
			t.Fatalf("Failed to decode history: %v", err)
		}
		if len(history) != 0 {
			t.Errorf("Expected empty history, got %+v", history)
		}
	})

	t.Run("delete removes the session", func(t *testing.T) {
		created, err := svc.Create(httptest.NewRequest(http.MethodGet, "/", nil).Context())
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/"+created.SessionID, nil))

		if w.Code != http.StatusNoContent {
			t.Fatalf("Expected status 204, got %d", w.Code)
		}

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+created.SessionID+"/history", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404 after delete, got %d", w.Code)
		}
	})

	t.Run("unknown session is 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/missing/history", nil))

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}
