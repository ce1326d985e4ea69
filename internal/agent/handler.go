package agent

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ashureev/taskyar/internal/api"
	"github.com/ashureev/taskyar/internal/auth"
	"github.com/ashureev/taskyar/internal/config"
	"github.com/ashureev/taskyar/internal/domain"
	"github.com/ashureev/taskyar/internal/store"
)

const (
	// maxChatMessageLen bounds the user message length.
	maxChatMessageLen = 10000
	// maxChatBodySize bounds the request body (1MB).
	maxChatBodySize = 1 << 20
	// historyLimit is how many recent messages are loaded as turn context.
	historyLimit = 20
	// titleMaxLen truncates the first message when used as the
	// conversation title.
	titleMaxLen = 50
)

// RateLimiter implements a per-user sliding-window rate limiter.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[int64][]time.Time
	limit    int
	window   time.Duration
}

// NewRateLimiter creates a rate limiter and starts its background eviction
// goroutine.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[int64][]time.Time),
		limit:    limit,
		window:   window,
	}
	rl.startEviction()
	return rl
}

// Allow checks whether a request is allowed for the user.
func (r *RateLimiter) Allow(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-r.window)

	var recent []time.Time
	for _, t := range r.requests[userID] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= r.limit {
		r.requests[userID] = recent
		return false
	}

	r.requests[userID] = append(recent, now)
	return true
}

// startEviction periodically removes expired keys so the requests map does
// not grow without bound.
func (r *RateLimiter) startEviction() {
	go func() {
		ticker := time.NewTicker(r.window)
		defer ticker.Stop()
		for range ticker.C {
			r.mu.Lock()
			cutoff := time.Now().Add(-r.window)
			for key, times := range r.requests {
				var fresh []time.Time
				for _, t := range times {
					if t.After(cutoff) {
						fresh = append(fresh, t)
					}
				}
				if len(fresh) == 0 {
					delete(r.requests, key)
				} else {
					r.requests[key] = fresh
				}
			}
			r.mu.Unlock()
		}
	}()
}

// Handler serves the chat endpoint: it owns the conversation lifecycle
// around each agent turn.
type Handler struct {
	service     *Service
	repo        store.Repository
	rateLimiter *RateLimiter
	logger      *slog.Logger
}

// NewHandler creates the chat handler.
func NewHandler(service *Service, repo store.Repository, cfg *config.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	limit, window := 30, time.Minute
	if cfg != nil {
		limit = cfg.ChatRateLimit
		window = cfg.ChatRateWindow
	}
	return &Handler{
		service:     service,
		repo:        repo,
		rateLimiter: NewRateLimiter(limit, window),
		logger:      logger,
	}
}

// RegisterRoutes mounts the chat route (requires authentication).
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/agent/chat", h.HandleChat)
}

// ChatRequest is the chat endpoint's request body. ConversationID is
// optional: empty starts a new conversation.
type ChatRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

// ChatResponse is the chat endpoint's response body.
type ChatResponse struct {
	ConversationID string           `json:"conversation_id"`
	Response       string           `json:"response"`
	Success        bool             `json:"success"`
	Language       Language         `json:"language"`
	ToolCalls      []ToolCallRecord `json:"tool_calls"`
	Error          string           `json:"error,omitempty"`
}

// HandleChat handles POST /api/agent/chat.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID <= 0 {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if !h.rateLimiter.Allow(userID) {
		api.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodySize)
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		api.Error(w, http.StatusBadRequest, "message is required")
		return
	}
	if len(req.Message) > maxChatMessageLen {
		api.Error(w, http.StatusBadRequest, "message is too long")
		return
	}

	conv, err := h.resolveConversation(r, userID, req.ConversationID)
	if err != nil {
		h.logger.Error("resolve conversation failed", "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to resolve conversation")
		return
	}
	if conv == nil {
		api.Error(w, http.StatusNotFound, "conversation not found")
		return
	}

	if err := h.repo.AddMessage(r.Context(), &domain.Message{
		ConversationID: conv.ID,
		UserID:         userID,
		Role:           domain.RoleUser,
		Content:        req.Message,
	}); err != nil {
		h.logger.Error("persist user message failed", "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to save message")
		return
	}

	history, err := h.loadHistory(r, conv.ID, userID)
	if err != nil {
		h.logger.Error("load history failed", "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	h.logger.Info("agent chat request",
		"user_id", userID,
		"conversation_id", conv.ID,
		"message_length", len(req.Message),
	)

	result := h.service.RunTurn(r.Context(), Context{
		UserID:         userID,
		ConversationID: conv.ID,
		History:        history,
	}, message)

	toolCallsJSON := ""
	if result.HasToolCalls() {
		if data, err := json.Marshal(result.ToolCalls); err == nil {
			toolCallsJSON = string(data)
		} else {
			h.logger.Warn("marshal tool calls failed", "error", err)
		}
	}

	if err := h.repo.AddMessage(r.Context(), &domain.Message{
		ConversationID: conv.ID,
		UserID:         userID,
		Role:           domain.RoleAssistant,
		Content:        result.Response,
		ToolCalls:      toolCallsJSON,
	}); err != nil {
		h.logger.Error("persist assistant message failed", "error", err)
	}
	if err := h.repo.TouchConversation(r.Context(), conv.ID, userID); err != nil {
		h.logger.Warn("touch conversation failed", "error", err)
	}
	if conv.Title == "" {
		if err := h.repo.SetConversationTitle(r.Context(), conv.ID, userID, truncateTitle(message)); err != nil {
			h.logger.Warn("set conversation title failed", "error", err)
		}
	}

	if result.ToolCalls == nil {
		result.ToolCalls = []ToolCallRecord{}
	}
	api.JSON(w, http.StatusOK, ChatResponse{
		ConversationID: conv.ID,
		Response:       result.Response,
		Success:        result.Success,
		Language:       result.Language,
		ToolCalls:      result.ToolCalls,
		Error:          result.Error,
	})
}

// resolveConversation loads the referenced conversation or creates a fresh
// one when no ID was supplied. Returns (nil, nil) for a missing or foreign
// conversation ID.
func (h *Handler) resolveConversation(r *http.Request, userID int64, conversationID string) (*domain.Conversation, error) {
	if conversationID != "" {
		return h.repo.GetConversation(r.Context(), conversationID, userID)
	}

	conv := &domain.Conversation{
		ID:     uuid.NewString(),
		UserID: userID,
	}
	if err := h.repo.CreateConversation(r.Context(), conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (h *Handler) loadHistory(r *http.Request, conversationID string, userID int64) ([]Message, error) {
	stored, err := h.repo.GetMessages(r.Context(), conversationID, userID, historyLimit)
	if err != nil {
		return nil, err
	}
	history := make([]Message, 0, len(stored))
	for _, m := range stored {
		history = append(history, Message{Role: m.Role, Content: m.Content})
	}
	return history, nil
}

func truncateTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= titleMaxLen {
		return message
	}
	return string(runes[:titleMaxLen])
}
