package handlers

import (
	"net/http"

	v1chat "github.com/forgeline/devagent/internal/api/v1/handlers/chat"
	v1ws "github.com/forgeline/devagent/internal/api/v1/handlers/websocket"
	v1mware "github.com/forgeline/devagent/internal/api/v1/middleware"
	"github.com/forgeline/devagent/internal/services"
	"github.com/gorilla/mux"
)

func RegisterV1Routes(router *mux.Router, services *services.Services) {
	// v1 routes
	v1 := router.PathPrefix("/api/v1").Subrouter()

	// Session lifecycle
	v1.Handle("/sessions", v1mware.RateLimit("session_create")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HandleCreateSession(services.GetSessionService(), w, r)
	}))).Methods("POST")
	v1.HandleFunc("/sessions/{id}/history", func(w http.ResponseWriter, r *http.Request) {
		HandleSessionHistory(services.GetSessionService(), w, r)
	}).Methods("GET")
	v1.HandleFunc("/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		HandleDeleteSession(services.GetSessionService(), w, r)
	}).Methods("DELETE")

	// Streaming conversation turns
	v1.Handle("/chat", v1mware.RateLimit("chat")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HandleChat(services.GetChatService(), w, r)
	}))).Methods("POST")

	// Direct tool invocation and tool telemetry
	v1.Handle("/tools/{name}", v1mware.RateLimit("tool_invoke")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HandleToolInvoke(services.GetToolService(), services.GetConnectionManager(), w, r)
	}))).Methods("POST")
	v1.HandleFunc("/ws/tool-output", func(w http.ResponseWriter, r *http.Request) {
		v1ws.HandleToolOutput(services.GetConnectionManager(), w, r)
	})

	// Non-streaming completion path
	v1.Handle("/chat/completions", v1mware.RateLimit("chat_completion")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v1chat.HandleChatCompletions(services.GetCompletionService(), w, r)
	}))).Methods("POST")
}
