package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/taskyar/internal/auth"
	"github.com/ashureev/taskyar/internal/domain"
	"github.com/ashureev/taskyar/internal/store"
	"github.com/ashureev/taskyar/internal/tools"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusNotFound, "task not found")

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}

	var got map[string]string
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got["error"] != "task not found" {
		t.Errorf("Expected error message, got %v", got["error"])
	}
}

// newTestRouter builds a router backed by a real store, with every request
// authenticated as a fixed test user.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	user := &domain.User{Email: "api@example.com", HashedPassword: "hash"}
	if err := repo.CreateUser(t.Context(), user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	h := NewHandler(repo, tools.NewGateway(repo, nil, nil), nil)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.ContextWithUserID(req.Context(), user.ID)))
		})
	})
	h.RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTaskLifecycle(t *testing.T) {
	router := newTestRouter(t)

	// Create.
	w := doJSON(t, router, http.MethodPost, "/api/tasks", createTaskRequest{
		Title:    "buy milk",
		Priority: "High",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created tools.TaskData
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("Failed to decode task: %v", err)
	}
	if created.ID <= 0 || created.Title != "buy milk" || created.Priority != "High" {
		t.Errorf("Unexpected created task: %+v", created)
	}

	taskPath := "/api/tasks/" + strconv.FormatInt(created.ID, 10)

	// Get.
	w = doJSON(t, router, http.MethodGet, taskPath, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 on get, got %d", w.Code)
	}

	// Update priority.
	low := "Low"
	w = doJSON(t, router, http.MethodPut, taskPath, updateTaskRequest{Priority: &low})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on update, got %d: %s", w.Code, w.Body.String())
	}
	var updated tools.TaskData
	if err := json.NewDecoder(w.Body).Decode(&updated); err != nil {
		t.Fatalf("Failed to decode task: %v", err)
	}
	if updated.Priority != "Low" {
		t.Errorf("Expected Low priority, got %s", updated.Priority)
	}

	// Complete.
	w = doJSON(t, router, http.MethodPost, taskPath+"/complete", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 on complete, got %d", w.Code)
	}

	// List completed only.
	w = doJSON(t, router, http.MethodGet, "/api/tasks/?completed=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on list, got %d", w.Code)
	}
	var listed tools.ListTasksData
	if err := json.NewDecoder(w.Body).Decode(&listed); err != nil {
		t.Fatalf("Failed to decode list: %v", err)
	}
	if listed.Total != 1 || len(listed.Tasks) != 1 {
		t.Fatalf("Expected 1 completed task, got %d", listed.Total)
	}
	if !listed.Tasks[0].Completed {
		t.Error("Expected task to be completed")
	}

	// Delete.
	w = doJSON(t, router, http.MethodDelete, taskPath, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 on delete, got %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, taskPath, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", w.Code)
	}
}

func TestGetTaskCrossUserIsolation(t *testing.T) {
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "isolation.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	userA := &domain.User{Email: "a@example.com", HashedPassword: "hash"}
	userB := &domain.User{Email: "b@example.com", HashedPassword: "hash"}
	for _, u := range []*domain.User{userA, userB} {
		if err := repo.CreateUser(t.Context(), u); err != nil {
			t.Fatalf("Failed to create user: %v", err)
		}
	}

	// B owns the first task, so its ID (1) collides with A's user ID but
	// not with B's own.
	now := time.Now()
	task := &domain.Task{
		UserID:    userB.ID,
		Title:     "quarterly numbers",
		Priority:  domain.PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.CreateTask(t.Context(), task); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	h := NewHandler(repo, tools.NewGateway(repo, nil, nil), nil)
	currentUser := userA.ID
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.ContextWithUserID(req.Context(), currentUser)))
		})
	})
	h.RegisterRoutes(r)

	taskPath := "/api/tasks/" + strconv.FormatInt(task.ID, 10)

	// A must not see B's task, even when the task ID equals A's user ID.
	w := doJSON(t, r, http.MethodGet, taskPath, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for foreign task, got %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodGet, "/api/tasks/"+strconv.FormatInt(userB.ID, 10), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for guessed id, got %d: %s", w.Code, w.Body.String())
	}

	// B still reads their own task despite task ID != user ID.
	currentUser = userB.ID
	w = doJSON(t, r, http.MethodGet, taskPath, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for owner, got %d: %s", w.Code, w.Body.String())
	}
	var got tools.TaskData
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode task: %v", err)
	}
	if got.ID != task.ID || got.UserID != userB.ID {
		t.Errorf("Unexpected task for owner: %+v", got)
	}
}

func TestTaskValidationErrors(t *testing.T) {
	router := newTestRouter(t)

	// Missing title.
	w := doJSON(t, router, http.MethodPost, "/api/tasks", createTaskRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing title, got %d", w.Code)
	}

	// Bad task ID in URL.
	w = doJSON(t, router, http.MethodGet, "/api/tasks/abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad task id, got %d", w.Code)
	}

	// Unknown task maps to 404.
	w = doJSON(t, router, http.MethodPost, "/api/tasks/9999/complete", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown task, got %d", w.Code)
	}

	// Bad completed filter.
	w = doJSON(t, router, http.MethodGet, "/api/tasks/?completed=maybe", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad filter, got %d", w.Code)
	}
}

func TestConversationEndpoints(t *testing.T) {
	router := newTestRouter(t)

	// No conversations yet.
	w := doJSON(t, router, http.MethodGet, "/api/conversations/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var list conversationListResponse
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("Failed to decode list: %v", err)
	}
	if list.Total != 0 {
		t.Errorf("Expected empty list, got total %d", list.Total)
	}

	// Unknown conversation.
	w = doJSON(t, router, http.MethodGet, "/api/conversations/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown conversation, got %d", w.Code)
	}
}
