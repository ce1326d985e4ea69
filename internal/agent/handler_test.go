package agent

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/taskyar/internal/auth"
	"github.com/ashureev/taskyar/internal/domain"
	"github.com/ashureev/taskyar/internal/store"
	"github.com/ashureev/taskyar/internal/tools"
)

type chatFixture struct {
	handler *Handler
	repo    store.Repository
	userID  int64
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()

	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	user := &domain.User{Email: "chat@example.com", HashedPassword: "hash"}
	require.NoError(t, repo.CreateUser(t.Context(), user))

	gateway := tools.NewGateway(repo, nil, nil)
	service := NewService(gateway, 5*time.Second, nil)
	return &chatFixture{
		handler: NewHandler(service, repo, nil, nil),
		repo:    repo,
		userID:  user.ID,
	}
}

func (f *chatFixture) chat(t *testing.T, req ChatRequest) (*httptest.ResponseRecorder, ChatResponse) {
	t.Helper()

	body, err := json.Marshal(req)
	require.NoError(t, err)

	httpReq := httptest.NewRequest(http.MethodPost, "/api/agent/chat", bytes.NewReader(body))
	httpReq = httpReq.WithContext(auth.ContextWithUserID(httpReq.Context(), f.userID))
	w := httptest.NewRecorder()
	f.handler.HandleChat(w, httpReq)

	var resp ChatResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	}
	return w, resp
}

func TestHandleChatGreeting(t *testing.T) {
	t.Parallel()
	f := newChatFixture(t)

	w, resp := f.chat(t, ChatRequest{Message: "hi"})
	require.Equal(t, http.StatusOK, w.Code)

	assert.True(t, resp.Success)
	assert.Equal(t, LangEnglish, resp.Language)
	assert.NotEmpty(t, resp.ConversationID)
	assert.Empty(t, resp.ToolCalls)
	assert.NotEmpty(t, resp.Response)

	// Both turns were persisted.
	msgs, err := f.repo.GetMessages(t.Context(), resp.ConversationID, f.userID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.RoleUser, msgs[0].Role)
	assert.Equal(t, "hi", msgs[0].Content)
	assert.Equal(t, domain.RoleAssistant, msgs[1].Role)

	// Conversation title comes from the first message.
	conv, err := f.repo.GetConversation(t.Context(), resp.ConversationID, f.userID)
	require.NoError(t, err)
	assert.Equal(t, "hi", conv.Title)
}

func TestHandleChatAddTask(t *testing.T) {
	t.Parallel()
	f := newChatFixture(t)

	w, resp := f.chat(t, ChatRequest{Message: "add a task to buy milk"})
	require.Equal(t, http.StatusOK, w.Code)

	assert.True(t, resp.Success)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, tools.ToolAddTask, resp.ToolCalls[0].ToolName)
	assert.Contains(t, resp.Response, "buy milk")

	// The task really exists.
	tasks, err := f.repo.ListTasks(t.Context(), f.userID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "buy milk", tasks[0].Title)

	// The assistant message carries the serialized tool calls.
	msgs, err := f.repo.GetMessages(t.Context(), resp.ConversationID, f.userID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[1].ToolCalls, tools.ToolAddTask)
}

func TestHandleChatContinuesConversation(t *testing.T) {
	t.Parallel()
	f := newChatFixture(t)

	_, first := f.chat(t, ChatRequest{Message: "add a task to buy milk"})
	w, second := f.chat(t, ChatRequest{ConversationID: first.ConversationID, Message: "show my tasks"})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, first.ConversationID, second.ConversationID)
	assert.Contains(t, second.Response, "buy milk")

	msgs, err := f.repo.GetMessages(t.Context(), first.ConversationID, f.userID, 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 4)
}

func TestHandleChatDeleteConfirmationFlow(t *testing.T) {
	t.Parallel()
	f := newChatFixture(t)

	_, first := f.chat(t, ChatRequest{Message: "add a task to buy milk"})

	_, confirmAsk := f.chat(t, ChatRequest{ConversationID: first.ConversationID, Message: "delete buy milk"})
	assert.True(t, confirmAsk.Success)
	tasks, err := f.repo.ListTasks(t.Context(), f.userID)
	require.NoError(t, err)
	require.Len(t, tasks, 1, "nothing may be deleted before confirmation")

	_, confirmed := f.chat(t, ChatRequest{ConversationID: first.ConversationID, Message: "haan"})
	assert.True(t, confirmed.Success)
	assert.Equal(t, LangRomanUrdu, confirmed.Language)

	tasks, err = f.repo.ListTasks(t.Context(), f.userID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestHandleChatValidation(t *testing.T) {
	t.Parallel()
	f := newChatFixture(t)

	w, _ := f.chat(t, ChatRequest{Message: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.chat(t, ChatRequest{Message: string(make([]byte, maxChatMessageLen+1))})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.chat(t, ChatRequest{ConversationID: "does-not-exist", Message: "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleChatRequiresAuth(t *testing.T) {
	t.Parallel()
	f := newChatFixture(t)

	body, _ := json.Marshal(ChatRequest{Message: "hi"})
	req := httptest.NewRequest(http.MethodPost, "/api/agent/chat", bytes.NewReader(body))
	w := httptest.NewRecorder()
	f.handler.HandleChat(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
