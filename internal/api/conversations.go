package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/taskyar/internal/auth"
	"github.com/ashureev/taskyar/internal/domain"
)

const (
	defaultConversationPageSize = 20
	maxConversationPageSize     = 100
)

type conversationListResponse struct {
	Conversations []*domain.Conversation `json:"conversations"`
	Total         int                    `json:"total"`
	Limit         int                    `json:"limit"`
	Offset        int                    `json:"offset"`
}

type conversationDetailResponse struct {
	Conversation *domain.Conversation `json:"conversation"`
	Messages     []*domain.Message    `json:"messages"`
}

func (h *Handler) handleListConversations(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	limit := queryInt(r, "limit", defaultConversationPageSize)
	if limit <= 0 || limit > maxConversationPageSize {
		limit = defaultConversationPageSize
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	convs, total, err := h.repo.ListConversations(r.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("list conversations failed", "error", err)
		Error(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}
	if convs == nil {
		convs = []*domain.Conversation{}
	}
	JSON(w, http.StatusOK, conversationListResponse{
		Conversations: convs,
		Total:         total,
		Limit:         limit,
		Offset:        offset,
	})
}

func (h *Handler) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	convID := chi.URLParam(r, "conversationID")

	conv, err := h.repo.GetConversation(r.Context(), convID, userID)
	if err != nil {
		h.logger.Error("get conversation failed", "error", err, "conversation_id", convID)
		Error(w, http.StatusInternalServerError, "failed to load conversation")
		return
	}
	if conv == nil {
		Error(w, http.StatusNotFound, "conversation not found")
		return
	}

	messages, err := h.repo.GetMessages(r.Context(), convID, userID, 0)
	if err != nil {
		h.logger.Error("get messages failed", "error", err, "conversation_id", convID)
		Error(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	if messages == nil {
		messages = []*domain.Message{}
	}
	JSON(w, http.StatusOK, conversationDetailResponse{Conversation: conv, Messages: messages})
}

func (h *Handler) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	convID := chi.URLParam(r, "conversationID")

	deleted, err := h.repo.DeleteConversation(r.Context(), convID, userID)
	if err != nil {
		h.logger.Error("delete conversation failed", "error", err, "conversation_id", convID)
		Error(w, http.StatusInternalServerError, "failed to delete conversation")
		return
	}
	if !deleted {
		Error(w, http.StatusNotFound, "conversation not found")
		return
	}
	if h.onConversationDeleted != nil {
		h.onConversationDeleted(convID)
	}
	JSON(w, http.StatusOK, map[string]interface{}{"deleted": true, "conversation_id": convID})
}

func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
