package tools

import (
	"regexp"
	"strings"
)

// Tool names.
const (
	ToolAddTask      = "add_task"
	ToolListTasks    = "list_tasks"
	ToolCompleteTask = "complete_task"
	ToolDeleteTask   = "delete_task"
	ToolUpdateTask   = "update_task"
)

const (
	maxTitleLen       = 255
	maxDescriptionLen = 1000
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Params is one of the five typed parameter records. Each record knows its
// tool name and validates itself at the gateway boundary.
type Params interface {
	Tool() string
	Validate() *Error
	// Audit returns the parameters as recorded in the audit trail.
	// The authenticated user ID is never included.
	Audit() map[string]interface{}
}

// AddTaskParams are the parameters for add_task.
type AddTaskParams struct {
	Title           string
	Description     string
	Priority        string
	DueDate         string
	Tags            []string
	RecurrenceRule  string
	ReminderMinutes *int
}

func (AddTaskParams) Tool() string { return ToolAddTask }

func (p AddTaskParams) Validate() *Error {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return &Error{Code: CodeInvalidInput, Message: "Title cannot be empty",
			Details: map[string]interface{}{"field": "title"}}
	}
	if len(p.Title) > maxTitleLen {
		return &Error{Code: CodeInvalidInput, Message: "Title cannot exceed 255 characters",
			Details: map[string]interface{}{"field": "title"}}
	}
	if len(p.Description) > maxDescriptionLen {
		return &Error{Code: CodeInvalidInput, Message: "Description cannot exceed 1000 characters",
			Details: map[string]interface{}{"field": "description"}}
	}
	if err := validatePriority(p.Priority); err != nil {
		return err
	}
	if err := validateDate(p.DueDate); err != nil {
		return err
	}
	if p.ReminderMinutes != nil && *p.ReminderMinutes <= 0 {
		return &Error{Code: CodeInvalidInput, Message: "Reminder minutes must be positive",
			Details: map[string]interface{}{"field": "reminder_minutes"}}
	}
	return nil
}

func (p AddTaskParams) Audit() map[string]interface{} {
	audit := map[string]interface{}{"title": p.Title}
	if p.Description != "" {
		audit["description"] = p.Description
	}
	if p.Priority != "" {
		audit["priority"] = p.Priority
	}
	if p.DueDate != "" {
		audit["due_date"] = p.DueDate
	}
	if len(p.Tags) > 0 {
		audit["tags"] = p.Tags
	}
	if p.RecurrenceRule != "" {
		audit["recurrence_rule"] = p.RecurrenceRule
	}
	if p.ReminderMinutes != nil {
		audit["reminder_minutes"] = *p.ReminderMinutes
	}
	return audit
}

// ListTasksParams are the parameters for list_tasks.
type ListTasksParams struct {
	// Completed filters by completion state when set.
	Completed *bool
	// Priority filters by priority when non-empty.
	Priority string
}

func (ListTasksParams) Tool() string { return ToolListTasks }

func (p ListTasksParams) Validate() *Error {
	if p.Priority != "" {
		if err := validatePriority(p.Priority); err != nil {
			return err
		}
	}
	return nil
}

func (p ListTasksParams) Audit() map[string]interface{} {
	audit := map[string]interface{}{}
	if p.Completed != nil {
		audit["completed"] = *p.Completed
	}
	if p.Priority != "" {
		audit["priority"] = p.Priority
	}
	return audit
}

// CompleteTaskParams are the parameters for complete_task.
type CompleteTaskParams struct {
	TaskID int64
}

func (CompleteTaskParams) Tool() string { return ToolCompleteTask }

func (p CompleteTaskParams) Validate() *Error {
	return validateTaskID(p.TaskID)
}

func (p CompleteTaskParams) Audit() map[string]interface{} {
	return map[string]interface{}{"task_id": p.TaskID}
}

// DeleteTaskParams are the parameters for delete_task.
type DeleteTaskParams struct {
	TaskID int64
}

func (DeleteTaskParams) Tool() string { return ToolDeleteTask }

func (p DeleteTaskParams) Validate() *Error {
	return validateTaskID(p.TaskID)
}

func (p DeleteTaskParams) Audit() map[string]interface{} {
	return map[string]interface{}{"task_id": p.TaskID}
}

// UpdateTaskParams are the parameters for update_task. Nil/empty fields are
// left unchanged; at least one field must be provided.
type UpdateTaskParams struct {
	TaskID          int64
	Title           *string
	Description     *string
	Priority        *string
	DueDate         *string
	Completed       *bool
	Tags            []string
	RecurrenceRule  *string
	ReminderMinutes *int
}

func (UpdateTaskParams) Tool() string { return ToolUpdateTask }

func (p UpdateTaskParams) Validate() *Error {
	if err := validateTaskID(p.TaskID); err != nil {
		return err
	}
	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			return &Error{Code: CodeInvalidInput, Message: "Title cannot be empty",
				Details: map[string]interface{}{"field": "title"}}
		}
		if len(*p.Title) > maxTitleLen {
			return &Error{Code: CodeInvalidInput, Message: "Title cannot exceed 255 characters",
				Details: map[string]interface{}{"field": "title"}}
		}
	}
	if p.Description != nil && len(*p.Description) > maxDescriptionLen {
		return &Error{Code: CodeInvalidInput, Message: "Description cannot exceed 1000 characters",
			Details: map[string]interface{}{"field": "description"}}
	}
	if p.Priority != nil {
		if err := validatePriority(*p.Priority); err != nil {
			return err
		}
	}
	if p.DueDate != nil && !datePattern.MatchString(*p.DueDate) {
		return &Error{Code: CodeInvalidDate, Message: "Due date must be in YYYY-MM-DD format",
			Details: map[string]interface{}{"field": "due_date"}}
	}
	if !p.hasUpdateFields() {
		return &Error{Code: CodeInvalidInput,
			Message: "At least one field must be provided for update",
			Details: map[string]interface{}{}}
	}
	return nil
}

func (p UpdateTaskParams) hasUpdateFields() bool {
	return p.Title != nil || p.Description != nil || p.Priority != nil ||
		p.DueDate != nil || p.Completed != nil || p.Tags != nil ||
		p.RecurrenceRule != nil || p.ReminderMinutes != nil
}

func (p UpdateTaskParams) Audit() map[string]interface{} {
	audit := map[string]interface{}{"task_id": p.TaskID}
	if p.Title != nil {
		audit["title"] = *p.Title
	}
	if p.Description != nil {
		audit["description"] = *p.Description
	}
	if p.Priority != nil {
		audit["priority"] = *p.Priority
	}
	if p.DueDate != nil {
		audit["due_date"] = *p.DueDate
	}
	if p.Completed != nil {
		audit["completed"] = *p.Completed
	}
	if p.Tags != nil {
		audit["tags"] = p.Tags
	}
	if p.RecurrenceRule != nil {
		audit["recurrence_rule"] = *p.RecurrenceRule
	}
	if p.ReminderMinutes != nil {
		audit["reminder_minutes"] = *p.ReminderMinutes
	}
	return audit
}

func validateTaskID(id int64) *Error {
	if id <= 0 {
		return &Error{Code: CodeInvalidInput, Message: "task_id must be a valid positive integer",
			Details: map[string]interface{}{"field": "task_id"}}
	}
	return nil
}

func validatePriority(p string) *Error {
	if p == "" {
		return nil
	}
	switch p {
	case "Low", "Medium", "High":
		return nil
	}
	return &Error{Code: CodeInvalidPriority, Message: "Priority must be one of: Low, Medium, High",
		Details: map[string]interface{}{"field": "priority", "value": p}}
}

func validateDate(d string) *Error {
	if d == "" {
		return nil
	}
	if !datePattern.MatchString(d) {
		return &Error{Code: CodeInvalidDate, Message: "Due date must be in YYYY-MM-DD format",
			Details: map[string]interface{}{"field": "due_date"}}
	}
	return nil
}
