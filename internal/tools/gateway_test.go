package tools

import (
	"context"
	"sync"
	"testing"

	"github.com/ashureev/taskyar/internal/domain"
)

// memRepo is an in-memory store.Repository carrying only the task methods
// the gateway touches; the rest are unused here.
type memRepo struct {
	mu     sync.Mutex
	tasks  map[int64]*domain.Task
	nextID int64
}

func newMemRepo() *memRepo {
	return &memRepo{tasks: make(map[int64]*domain.Task), nextID: 1}
}

func (m *memRepo) CreateTask(_ context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task.ID = m.nextID
	m.nextID++
	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

func (m *memRepo) ListTasks(_ context.Context, userID int64) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Task
	for _, t := range m.tasks {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRepo) GetTask(_ context.Context, taskID, userID int64) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *memRepo) CompleteTask(_ context.Context, taskID, userID int64) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	t.Completed = true
	cp := *t
	return &cp, nil
}

func (m *memRepo) UpdateTask(_ context.Context, taskID, userID int64, update domain.TaskUpdate) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	if update.Title != nil {
		t.Title = *update.Title
	}
	if update.Priority != nil {
		t.Priority = domain.Priority(*update.Priority)
	}
	if update.Completed != nil {
		t.Completed = *update.Completed
	}
	cp := *t
	return &cp, nil
}

func (m *memRepo) DeleteTask(_ context.Context, taskID, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok || t.UserID != userID {
		return false, nil
	}
	delete(m.tasks, taskID)
	return true, nil
}

// Unused Repository methods.
func (m *memRepo) CreateUser(context.Context, *domain.User) error { return nil }
func (m *memRepo) GetUserByEmail(context.Context, string) (*domain.User, error) {
	return nil, nil
}
func (m *memRepo) GetUserByID(context.Context, int64) (*domain.User, error) { return nil, nil }
func (m *memRepo) CreateConversation(context.Context, *domain.Conversation) error {
	return nil
}
func (m *memRepo) GetConversation(context.Context, string, int64) (*domain.Conversation, error) {
	return nil, nil
}
func (m *memRepo) ListConversations(context.Context, int64, int, int) ([]*domain.Conversation, int, error) {
	return nil, 0, nil
}
func (m *memRepo) DeleteConversation(context.Context, string, int64) (bool, error) {
	return false, nil
}
func (m *memRepo) TouchConversation(context.Context, string, int64) error        { return nil }
func (m *memRepo) SetConversationTitle(context.Context, string, int64, string) error {
	return nil
}
func (m *memRepo) AddMessage(context.Context, *domain.Message) error { return nil }
func (m *memRepo) GetMessages(context.Context, string, int64, int) ([]*domain.Message, error) {
	return nil, nil
}
func (m *memRepo) CountMessages(context.Context, string, int64) (int, error) { return 0, nil }
func (m *memRepo) Ping(context.Context) error                                { return nil }
func (m *memRepo) Close() error                                              { return nil }

// recordingSink captures emitted events.
type recordingSink struct {
	mu     sync.Mutex
	events []string
}

func (s *recordingSink) Emit(eventType string, _, _ int64, _ map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, eventType)
}

func (s *recordingSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func newTestGateway() (*Gateway, *memRepo, *recordingSink) {
	repo := newMemRepo()
	sink := &recordingSink{}
	return NewGateway(repo, sink, nil), repo, sink
}

func TestGatewayAddTaskRoundTrip(t *testing.T) {
	t.Parallel()

	gw, _, sink := newTestGateway()
	ctx := context.Background()

	resp := gw.Call(ctx, AddTaskParams{Title: "  buy milk  ", DueDate: "2026-09-01", Priority: "High"}, 1)
	if !resp.Success {
		t.Fatalf("Expected success, got %+v", resp.Error)
	}
	task, ok := resp.Data.(TaskData)
	if !ok {
		t.Fatalf("Expected TaskData, got %T", resp.Data)
	}
	if task.Title != "buy milk" {
		t.Errorf("Expected trimmed title, got %q", task.Title)
	}
	if task.DueDate != "2026-09-01" {
		t.Errorf("Expected due date, got %q", task.DueDate)
	}
	if task.Priority != "High" {
		t.Errorf("Expected High, got %q", task.Priority)
	}

	list := gw.Call(ctx, ListTasksParams{}, 1)
	data := list.Data.(ListTasksData)
	if data.Total != 1 || data.Tasks[0].ID != task.ID {
		t.Errorf("Expected created task in list, got %+v", data)
	}

	if got := sink.types(); len(got) != 1 || got[0] != "task.created" {
		t.Errorf("Expected task.created event, got %v", got)
	}
}

func TestGatewayAddTaskDefaultPriority(t *testing.T) {
	t.Parallel()

	gw, _, _ := newTestGateway()
	resp := gw.Call(context.Background(), AddTaskParams{Title: "t"}, 1)
	if task := resp.Data.(TaskData); task.Priority != "Medium" {
		t.Errorf("Expected Medium default, got %q", task.Priority)
	}
}

func TestGatewayValidationShortCircuits(t *testing.T) {
	t.Parallel()

	gw, repo, sink := newTestGateway()
	resp := gw.Call(context.Background(), AddTaskParams{Title: ""}, 1)
	if resp.Success || resp.ErrorCode() != CodeInvalidInput {
		t.Errorf("Expected invalid_input, got %+v", resp)
	}
	if len(repo.tasks) != 0 {
		t.Error("Validation failure must not touch the store")
	}
	if len(sink.types()) != 0 {
		t.Error("Validation failure must not emit events")
	}
}

func TestGatewayRejectsMissingUser(t *testing.T) {
	t.Parallel()

	gw, _, _ := newTestGateway()
	resp := gw.Call(context.Background(), ListTasksParams{}, 0)
	if resp.Success || resp.ErrorCode() != CodeInvalidInput {
		t.Errorf("Expected invalid_input for user 0, got %+v", resp)
	}
}

func TestGatewayCompleteIdempotent(t *testing.T) {
	t.Parallel()

	gw, _, _ := newTestGateway()
	ctx := context.Background()
	created := gw.Call(ctx, AddTaskParams{Title: "t"}, 1).Data.(TaskData)

	first := gw.Call(ctx, CompleteTaskParams{TaskID: created.ID}, 1)
	second := gw.Call(ctx, CompleteTaskParams{TaskID: created.ID}, 1)
	if !first.Success || !second.Success {
		t.Fatal("Expected complete to be idempotent")
	}
	if !second.Data.(TaskData).Completed {
		t.Error("Expected task to stay completed")
	}
}

func TestGatewayCrossUserIsNotFound(t *testing.T) {
	t.Parallel()

	gw, _, _ := newTestGateway()
	ctx := context.Background()
	created := gw.Call(ctx, AddTaskParams{Title: "secret"}, 1).Data.(TaskData)

	// Another user cannot see, complete, update, or delete it.
	if resp := gw.Call(ctx, CompleteTaskParams{TaskID: created.ID}, 2); resp.ErrorCode() != CodeNotFound {
		t.Errorf("Expected not_found on complete, got %+v", resp)
	}
	if resp := gw.Call(ctx, DeleteTaskParams{TaskID: created.ID}, 2); resp.ErrorCode() != CodeNotFound {
		t.Errorf("Expected not_found on delete, got %+v", resp)
	}
	title := "stolen"
	if resp := gw.Call(ctx, UpdateTaskParams{TaskID: created.ID, Title: &title}, 2); resp.ErrorCode() != CodeNotFound {
		t.Errorf("Expected not_found on update, got %+v", resp)
	}
	list := gw.Call(ctx, ListTasksParams{}, 2).Data.(ListTasksData)
	if list.Total != 0 {
		t.Errorf("Expected empty list for other user, got %d", list.Total)
	}
}

func TestGatewayDeleteEmitsEvent(t *testing.T) {
	t.Parallel()

	gw, _, sink := newTestGateway()
	ctx := context.Background()
	created := gw.Call(ctx, AddTaskParams{Title: "t"}, 1).Data.(TaskData)

	resp := gw.Call(ctx, DeleteTaskParams{TaskID: created.ID}, 1)
	if !resp.Success {
		t.Fatalf("Expected success, got %+v", resp.Error)
	}
	data := resp.Data.(DeleteTaskData)
	if !data.Deleted || data.TaskID != created.ID {
		t.Errorf("Unexpected delete payload: %+v", data)
	}
	got := sink.types()
	if len(got) != 2 || got[1] != "task.deleted" {
		t.Errorf("Expected task.deleted event, got %v", got)
	}
}

func TestGatewayListFilters(t *testing.T) {
	t.Parallel()

	gw, _, _ := newTestGateway()
	ctx := context.Background()
	a := gw.Call(ctx, AddTaskParams{Title: "a", Priority: "High"}, 1).Data.(TaskData)
	gw.Call(ctx, AddTaskParams{Title: "b", Priority: "Low"}, 1)
	gw.Call(ctx, CompleteTaskParams{TaskID: a.ID}, 1)

	done := true
	list := gw.Call(ctx, ListTasksParams{Completed: &done}, 1).Data.(ListTasksData)
	if list.Total != 1 || list.Tasks[0].ID != a.ID {
		t.Errorf("Expected only the completed task, got %+v", list)
	}

	list = gw.Call(ctx, ListTasksParams{Priority: "Low"}, 1).Data.(ListTasksData)
	if list.Total != 1 || list.Tasks[0].Title != "b" {
		t.Errorf("Expected only the Low task, got %+v", list)
	}
}

func TestGatewayUpdateEmptyRejected(t *testing.T) {
	t.Parallel()

	gw, _, _ := newTestGateway()
	ctx := context.Background()
	created := gw.Call(ctx, AddTaskParams{Title: "t"}, 1).Data.(TaskData)

	resp := gw.Call(ctx, UpdateTaskParams{TaskID: created.ID}, 1)
	if resp.Success || resp.ErrorCode() != CodeInvalidInput {
		t.Errorf("Expected invalid_input for empty update, got %+v", resp)
	}
}
