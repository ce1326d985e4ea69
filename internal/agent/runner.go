package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/ashureev/taskyar/internal/tools"
)

// Guardrails.
const (
	// DefaultTurnTimeout bounds one conversational turn.
	DefaultTurnTimeout = 30 * time.Second
	// maxToolCalls caps tool invocations per turn. The keyword-routing
	// design performs at most two (list then mutate), so this is a
	// ceiling, not an expected limit.
	maxToolCalls = 10
)

// ToolGateway executes one tool operation. Implementations never return an
// error: failures arrive as error envelopes.
type ToolGateway interface {
	Call(ctx context.Context, params tools.Params, userID int64) tools.Response
}

// Runner orchestrates one conversation's agent turns.
//
// A Runner holds the single slot of cross-turn state (a pending delete
// confirmation), so an instance must be scoped to one conversation and its
// turns must not interleave. The Service registry enforces both.
type Runner struct {
	gateway ToolGateway
	timeout time.Duration
	logger  *slog.Logger
	pending *pendingConfirmation
}

// NewRunner creates a runner for a single conversation.
func NewRunner(gateway ToolGateway, timeout time.Duration, logger *slog.Logger) *Runner {
	if timeout <= 0 {
		timeout = DefaultTurnTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{gateway: gateway, timeout: timeout, logger: logger}
}

// HasPendingConfirmation reports whether a delete confirmation is queued.
func (r *Runner) HasPendingConfirmation() bool {
	return r.pending != nil
}

// callRecorder accumulates the turn's tool call records. It is guarded by a
// mutex because the timeout path reads it while the turn goroutine may still
// be appending.
type callRecorder struct {
	mu      sync.Mutex
	records []ToolCallRecord
}

func (c *callRecorder) append(rec ToolCallRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
}

func (c *callRecorder) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// snapshot returns a copy of the records accumulated so far.
func (c *callRecorder) snapshot() []ToolCallRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ToolCallRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Run executes one agent turn for the user message.
//
// The entire dispatch runs under a cooperative timeout. On expiry the result
// is a failure with error "timeout" in the language detected from the input
// message, preserving whatever tool calls had already completed: a mutation
// that committed before the deadline still appears in the audit trail.
func (r *Runner) Run(ctx context.Context, agentCtx Context, message string) Result {
	start := time.Now()
	recorder := &callRecorder{}

	turnCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan Result, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("agent panic recovered", "panic", rec)
				lang := DetectLanguage(message)
				done <- Result{
					Success:   false,
					Response:  formatError("unknown", lang),
					ToolCalls: recorder.snapshot(),
					Error:     fmt.Sprint(rec),
					Language:  lang,
				}
			}
		}()
		done <- r.processMessage(turnCtx, agentCtx, message, recorder)
	}()

	var result Result
	select {
	case result = <-done:
	case <-turnCtx.Done():
		r.logger.Error("agent turn timed out", "timeout", r.timeout)
		lang := DetectLanguage(message)
		result = Result{
			Success:   false,
			Response:  formatError("timeout", lang),
			ToolCalls: recorder.snapshot(),
			Error:     "timeout",
			Language:  lang,
		}
	}

	r.logger.Info("agent turn completed",
		"duration_ms", time.Since(start).Milliseconds(),
		"tool_calls", len(result.ToolCalls),
		"success", result.Success)
	return result
}

// processMessage classifies the message and dispatches to the intent
// handlers. This is the Idle / AwaitingDeleteConfirmation state machine.
func (r *Runner) processMessage(ctx context.Context, agentCtx Context, message string, rec *callRecorder) Result {
	lang := DetectLanguage(message)
	r.logger.Info("detected language", "language", lang)

	if IsGreeting(message) {
		return Result{Success: true, Response: formatGreeting(lang), ToolCalls: []ToolCallRecord{}, Language: lang}
	}
	if IsThanks(message) {
		return Result{Success: true, Response: formatThanks(lang), ToolCalls: []ToolCallRecord{}, Language: lang}
	}

	if r.pending != nil {
		return r.handleDeleteConfirmation(ctx, agentCtx, message, lang, rec)
	}

	switch ClassifyIntent(message) {
	case IntentAdd:
		return r.handleAddTask(ctx, agentCtx, message, lang, rec)
	case IntentList:
		return r.handleListTasks(ctx, agentCtx, lang, rec)
	case IntentComplete:
		return r.handleCompleteTask(ctx, agentCtx, message, lang, rec)
	case IntentDelete:
		return r.handleDeleteTask(ctx, agentCtx, message, lang, rec)
	case IntentUpdate:
		return r.handleUpdateTask(ctx, agentCtx, message, lang, rec)
	}

	return Result{Success: true, Response: renderTemplate(tplFallback, lang, nil), ToolCalls: []ToolCallRecord{}, Language: lang}
}

func (r *Runner) handleAddTask(ctx context.Context, agentCtx Context, message string, lang Language, rec *callRecorder) Result {
	title := ExtractTitle(message)
	if title == "" {
		return Result{
			Success:   false,
			Response:  renderTemplate(tplAddPrompt, lang, nil),
			ToolCalls: []ToolCallRecord{},
			Language:  lang,
		}
	}

	resp := r.callTool(ctx, rec, tools.AddTaskParams{Title: title}, agentCtx.UserID)
	if !resp.Success {
		return Result{
			Success:   false,
			Response:  mapToolError(resp, lang),
			ToolCalls: rec.snapshot(),
			Error:     resp.ErrorCode(),
			Language:  lang,
		}
	}

	task, _ := resp.Data.(tools.TaskData)
	return Result{Success: true, Response: formatTaskCreated(task, lang), ToolCalls: rec.snapshot(), Language: lang}
}

func (r *Runner) handleListTasks(ctx context.Context, agentCtx Context, lang Language, rec *callRecorder) Result {
	resp := r.callTool(ctx, rec, tools.ListTasksParams{}, agentCtx.UserID)
	if !resp.Success {
		return Result{
			Success:   false,
			Response:  mapToolError(resp, lang),
			ToolCalls: rec.snapshot(),
			Error:     resp.ErrorCode(),
			Language:  lang,
		}
	}

	data, _ := resp.Data.(tools.ListTasksData)
	return Result{Success: true, Response: formatTaskList(data, lang, ""), ToolCalls: rec.snapshot(), Language: lang}
}

func (r *Runner) handleCompleteTask(ctx context.Context, agentCtx Context, message string, lang Language, rec *callRecorder) Result {
	matched, matches, failure := r.resolveTaskReference(ctx, agentCtx, message, lang, rec)
	if failure != nil {
		return *failure
	}
	if len(matches) == 0 {
		return Result{Success: false, Response: formatError(tools.CodeNotFound, lang), ToolCalls: rec.snapshot(), Language: lang}
	}
	if DetectAmbiguity(matches) {
		return Result{Success: true, Response: formatAmbiguous(matches, lang), ToolCalls: rec.snapshot(), Language: lang}
	}

	resp := r.callTool(ctx, rec, tools.CompleteTaskParams{TaskID: matched.ID}, agentCtx.UserID)
	if !resp.Success {
		return Result{Success: false, Response: mapToolError(resp, lang), ToolCalls: rec.snapshot(), Language: lang}
	}
	return Result{Success: true, Response: formatTaskCompleted(matched.Title, lang), ToolCalls: rec.snapshot(), Language: lang}
}

// handleDeleteTask is the only transition out of Idle: a unique match queues
// a pending confirmation instead of mutating anything.
func (r *Runner) handleDeleteTask(ctx context.Context, agentCtx Context, message string, lang Language, rec *callRecorder) Result {
	matched, matches, failure := r.resolveTaskReference(ctx, agentCtx, message, lang, rec)
	if failure != nil {
		return *failure
	}
	if len(matches) == 0 {
		return Result{Success: false, Response: formatError(tools.CodeNotFound, lang), ToolCalls: rec.snapshot(), Language: lang}
	}
	if DetectAmbiguity(matches) {
		// Ambiguity leaves the state machine in Idle: no pending slot.
		return Result{Success: true, Response: formatAmbiguous(matches, lang), ToolCalls: rec.snapshot(), Language: lang}
	}

	r.pending = &pendingConfirmation{
		taskID:    matched.ID,
		taskTitle: matched.Title,
		userID:    agentCtx.UserID,
		language:  lang,
	}

	return Result{Success: true, Response: formatDeleteConfirmation(matched.Title, lang), ToolCalls: rec.snapshot(), Language: lang}
}

// handleDeleteConfirmation consumes the pending slot unconditionally:
// whatever this message says, the next turn starts from Idle.
func (r *Runner) handleDeleteConfirmation(ctx context.Context, agentCtx Context, message string, lang Language, rec *callRecorder) Result {
	pending := r.pending
	r.pending = nil

	if !IsConfirmation(message) {
		if !IsCancellation(message) {
			r.logger.Info("delete confirmation abandoned", "task_id", pending.taskID)
		}
		return Result{Success: true, Response: renderTemplate(tplDeleteCancelled, lang, nil), ToolCalls: rec.snapshot(), Language: lang}
	}

	resp := r.callTool(ctx, rec, tools.DeleteTaskParams{TaskID: pending.taskID}, agentCtx.UserID)
	if !resp.Success {
		return Result{Success: false, Response: mapToolError(resp, lang), ToolCalls: rec.snapshot(), Language: lang}
	}
	return Result{Success: true, Response: formatTaskDeleted(pending.taskTitle, lang), ToolCalls: rec.snapshot(), Language: lang}
}

func (r *Runner) handleUpdateTask(ctx context.Context, agentCtx Context, message string, lang Language, rec *callRecorder) Result {
	matched, matches, failure := r.resolveTaskReference(ctx, agentCtx, message, lang, rec)
	if failure != nil {
		return *failure
	}
	if len(matches) == 0 {
		return Result{Success: false, Response: formatError(tools.CodeNotFound, lang), ToolCalls: rec.snapshot(), Language: lang}
	}
	if DetectAmbiguity(matches) {
		return Result{Success: true, Response: formatAmbiguous(matches, lang), ToolCalls: rec.snapshot(), Language: lang}
	}

	changes := ExtractUpdates(message)
	params := tools.UpdateTaskParams{TaskID: matched.ID}
	if changes.Priority != "" {
		params.Priority = &changes.Priority
	}
	if changes.Title != "" {
		params.Title = &changes.Title
	}

	resp := r.callTool(ctx, rec, params, agentCtx.UserID)
	if !resp.Success {
		return Result{Success: false, Response: mapToolError(resp, lang), ToolCalls: rec.snapshot(), Language: lang}
	}

	task, _ := resp.Data.(tools.TaskData)
	return Result{Success: true, Response: formatTaskUpdated(task, changes, lang), ToolCalls: rec.snapshot(), Language: lang}
}

// resolveTaskReference lists the user's tasks and resolves the message's
// task reference against them, by ID first, then by title matching.
// A non-nil failure result means the list call itself failed.
func (r *Runner) resolveTaskReference(ctx context.Context, agentCtx Context, message string, lang Language, rec *callRecorder) (*tools.TaskData, []tools.TaskData, *Result) {
	listResp := r.callTool(ctx, rec, tools.ListTasksParams{}, agentCtx.UserID)
	if !listResp.Success {
		return nil, nil, &Result{
			Success:   false,
			Response:  mapToolError(listResp, lang),
			ToolCalls: rec.snapshot(),
			Language:  lang,
		}
	}

	data, _ := listResp.Data.(tools.ListTasksData)

	if id := ExtractTaskID(message); id != 0 {
		for i := range data.Tasks {
			if data.Tasks[i].ID == id {
				return &data.Tasks[i], []tools.TaskData{data.Tasks[i]}, nil
			}
		}
	}

	query := ExtractTaskReference(message)
	if query == "" {
		query = message
	}
	matched, matches := MatchTaskByTitle(query, data.Tasks)
	return matched, matches, nil
}

// callTool invokes the gateway and appends an audit record, success or
// failure, before the caller decides how to render the outcome.
func (r *Runner) callTool(ctx context.Context, rec *callRecorder, params tools.Params, userID int64) tools.Response {
	if rec.count() >= maxToolCalls {
		r.logger.Error("tool call ceiling reached", "tool", params.Tool(), "max", maxToolCalls)
		return tools.Fail(tools.CodeProcessing, "Tool call limit reached for this turn",
			map[string]interface{}{"max_tool_calls": strconv.Itoa(maxToolCalls)})
	}

	start := time.Now()
	resp := r.gateway.Call(ctx, params, userID)
	duration := time.Since(start)

	rec.append(ToolCallRecord{
		ToolName:   params.Tool(),
		Parameters: params.Audit(),
		Result:     resp,
		DurationMs: duration.Milliseconds(),
	})

	r.logger.Info("tool completed",
		"tool", params.Tool(),
		"duration_ms", duration.Milliseconds(),
		"success", resp.Success)
	return resp
}
