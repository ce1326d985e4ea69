// Package domain contains core domain types for the taskyar application.
package domain

import (
	"time"
)

// Priority is the task priority level.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// ValidPriority reports whether p is one of the accepted priority levels.
func ValidPriority(p string) bool {
	switch Priority(p) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task represents a single task owned by a user.
type Task struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Tags        []string   `json:"tags,omitempty"`

	// Recurrence metadata. A recurring task carries a rule; instances
	// generated from it point back via RecurrenceParentID.
	RecurrenceRule     string `json:"recurrence_rule,omitempty"`
	RecurrenceParentID *int64 `json:"recurrence_parent_id,omitempty"`
	RecurrenceDepth    int    `json:"recurrence_depth,omitempty"`

	// Reminder metadata.
	ReminderMinutes *int `json:"reminder_minutes,omitempty"`
	ReminderSent    bool `json:"reminder_sent,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOverdue returns true if the task has a due date in the past and is not completed.
func (t *Task) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}

// TaskUpdate carries a partial set of task field changes.
// Nil pointers mean "leave unchanged".
type TaskUpdate struct {
	Title           *string  `json:"title,omitempty"`
	Description     *string  `json:"description,omitempty"`
	Completed       *bool    `json:"completed,omitempty"`
	Priority        *string  `json:"priority,omitempty"`
	DueDate         *string  `json:"due_date,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	RecurrenceRule  *string  `json:"recurrence_rule,omitempty"`
	ReminderMinutes *int     `json:"reminder_minutes,omitempty"`
}

// Empty reports whether the update carries no changes at all.
func (u *TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Completed == nil &&
		u.Priority == nil && u.DueDate == nil && u.Tags == nil &&
		u.RecurrenceRule == nil && u.ReminderMinutes == nil
}
