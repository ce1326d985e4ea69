// Package api provides the REST handlers for tasks and conversations.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/taskyar/internal/store"
	"github.com/ashureev/taskyar/internal/tools"
)

// maxRequestBodySize caps JSON request bodies (1MB).
const maxRequestBodySize = 1 << 20

// Handler serves the authenticated REST API. Every route resolves the user
// from the request context and goes through the tool gateway or the
// repository with that user's ID, so ownership is enforced on every path.
type Handler struct {
	repo    store.Repository
	gateway *tools.Gateway
	logger  *slog.Logger

	// onConversationDeleted lets the agent service drop per-conversation
	// state when a conversation is removed.
	onConversationDeleted func(conversationID string)
}

// NewHandler creates a new Handler.
func NewHandler(repo store.Repository, gateway *tools.Gateway, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{repo: repo, gateway: gateway, logger: logger}
}

// OnConversationDeleted registers a callback fired after a conversation is
// deleted.
func (h *Handler) OnConversationDeleted(fn func(conversationID string)) {
	h.onConversationDeleted = fn
}

// RegisterRoutes mounts the task and conversation routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/tasks", func(r chi.Router) {
		r.Get("/", h.handleListTasks)
		r.Post("/", h.handleCreateTask)
		r.Get("/{taskID}", h.handleGetTask)
		r.Put("/{taskID}", h.handleUpdateTask)
		r.Delete("/{taskID}", h.handleDeleteTask)
		r.Post("/{taskID}/complete", h.handleCompleteTask)
	})
	r.Route("/api/conversations", func(r chi.Router) {
		r.Get("/", h.handleListConversations)
		r.Get("/{conversationID}", h.handleGetConversation)
		r.Delete("/{conversationID}", h.handleDeleteConversation)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// writeToolResponse maps a tool envelope onto an HTTP response.
func writeToolResponse(w http.ResponseWriter, resp tools.Response, okStatus int) {
	if resp.Success {
		JSON(w, okStatus, resp.Data)
		return
	}
	status := http.StatusBadRequest
	switch resp.ErrorCode() {
	case tools.CodeNotFound:
		status = http.StatusNotFound
	case tools.CodeProcessing:
		status = http.StatusInternalServerError
	}
	JSON(w, status, map[string]interface{}{
		"error":   resp.Error.Message,
		"code":    resp.Error.Code,
		"details": resp.Error.Details,
	})
}
