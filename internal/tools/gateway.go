package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ashureev/taskyar/internal/events"
	"github.com/ashureev/taskyar/internal/store"
)

// Gateway executes tool operations against the task store and emits domain
// events after successful commits.
type Gateway struct {
	repo   store.Repository
	sink   events.Sink
	logger *slog.Logger
}

// NewGateway creates a tool gateway. A nil sink disables event emission.
func NewGateway(repo store.Repository, sink events.Sink, logger *slog.Logger) *Gateway {
	if sink == nil {
		sink = events.NopSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{repo: repo, sink: sink, logger: logger}
}

// Call executes the tool identified by params for the authenticated user.
// It never panics and never returns an error: every failure is converted to
// an error envelope.
func (g *Gateway) Call(ctx context.Context, params Params, userID int64) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("tool panic recovered", "tool", params.Tool(), "panic", r)
			resp = Fail(CodeProcessing, "Tool execution failed",
				map[string]interface{}{"error": fmt.Sprint(r)})
		}
	}()

	g.logger.Info("invoking tool", "tool", params.Tool(), "user_id", userID)

	if userID <= 0 {
		return Fail(CodeInvalidInput, "user_id cannot be empty",
			map[string]interface{}{"field": "user_id"})
	}
	if verr := params.Validate(); verr != nil {
		return Response{Success: false, Error: verr}
	}

	switch p := params.(type) {
	case AddTaskParams:
		return g.addTask(ctx, p, userID)
	case ListTasksParams:
		return g.listTasks(ctx, p, userID)
	case CompleteTaskParams:
		return g.completeTask(ctx, p, userID)
	case DeleteTaskParams:
		return g.deleteTask(ctx, p, userID)
	case UpdateTaskParams:
		return g.updateTask(ctx, p, userID)
	default:
		return Fail(CodeInvalidInput, fmt.Sprintf("Unknown tool: %s", params.Tool()), nil)
	}
}
