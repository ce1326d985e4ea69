// Package tools implements the Tool Gateway: the fixed set of idempotent
// task operations the conversational agent executes.
//
// Every tool validates its own parameters, performs its mutation with
// ownership filtering at the query level, and returns the uniform Response
// envelope. No tool ever lets an error or panic escape its boundary.
package tools

import (
	"time"

	"github.com/ashureev/taskyar/internal/domain"
)

// Error codes returned in tool error envelopes.
const (
	CodeInvalidInput    = "invalid_input"
	CodeInvalidPriority = "invalid_priority"
	CodeInvalidDate     = "invalid_date"
	CodeNotFound        = "not_found"
	CodeProcessing      = "processing_error"
)

// Error is structured error information for a failed tool call.
type Error struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Response is the uniform envelope returned by every tool operation.
// Exactly one of Data or Error is populated; use Ok and Fail to construct.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Ok creates a successful response.
func Ok(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// Fail creates an error response.
func Fail(code, message string, details map[string]interface{}) Response {
	return Response{Success: false, Error: &Error{Code: code, Message: message, Details: details}}
}

// ErrorCode returns the error code, or "" for a success response.
func (r Response) ErrorCode() string {
	if r.Error == nil {
		return ""
	}
	return r.Error.Code
}

// TaskData is the serialized task payload carried in tool responses.
type TaskData struct {
	ID              int64    `json:"id"`
	UserID          int64    `json:"user_id"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Completed       bool     `json:"completed"`
	Priority        string   `json:"priority"`
	DueDate         string   `json:"due_date,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	RecurrenceRule  string   `json:"recurrence_rule,omitempty"`
	ReminderMinutes *int     `json:"reminder_minutes,omitempty"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

// FromTask converts a domain task to its response payload.
func FromTask(t *domain.Task) TaskData {
	data := TaskData{
		ID:              t.ID,
		UserID:          t.UserID,
		Title:           t.Title,
		Description:     t.Description,
		Completed:       t.Completed,
		Priority:        string(t.Priority),
		Tags:            t.Tags,
		RecurrenceRule:  t.RecurrenceRule,
		ReminderMinutes: t.ReminderMinutes,
		CreatedAt:       t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       t.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if t.DueDate != nil {
		data.DueDate = t.DueDate.UTC().Format("2006-01-02")
	}
	return data
}

// ListTasksData is the response payload for list_tasks.
type ListTasksData struct {
	Tasks []TaskData `json:"tasks"`
	Total int        `json:"total"`
}

// DeleteTaskData is the response payload for delete_task.
type DeleteTaskData struct {
	Deleted bool  `json:"deleted"`
	TaskID  int64 `json:"task_id"`
}
