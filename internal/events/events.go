// Package events publishes task domain events to downstream consumers.
//
// Emission is strictly fire-and-forget: a failed publish is retried a bounded
// number of times and then dropped with a log line. Nothing in this package
// ever returns an error to the code that performed the mutation.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types published on the task topic.
const (
	TaskCreated   = "task.created"
	TaskUpdated   = "task.updated"
	TaskCompleted = "task.completed"
	TaskDeleted   = "task.deleted"
	ReminderDue   = "reminder.due"
)

// SchemaVersion identifies the event payload shape for consumers.
const SchemaVersion = "1.0"

// TaskEvent is the versioned envelope published for every task mutation.
type TaskEvent struct {
	EventID       string                 `json:"event_id"`
	EventType     string                 `json:"event_type"`
	SchemaVersion string                 `json:"schema_version"`
	UserID        int64                  `json:"user_id"`
	TaskID        int64                  `json:"task_id"`
	Data          map[string]interface{} `json:"data"`
	Timestamp     string                 `json:"timestamp"`
}

// NewTaskEvent builds an event with a fresh ID and current timestamp.
func NewTaskEvent(eventType string, userID, taskID int64, data map[string]interface{}) TaskEvent {
	if data == nil {
		data = map[string]interface{}{}
	}
	return TaskEvent{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		SchemaVersion: SchemaVersion,
		UserID:        userID,
		TaskID:        taskID,
		Data:          data,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
}

// Transport delivers a single event to one destination.
type Transport interface {
	Publish(ctx context.Context, topic string, event TaskEvent) error
}

// Sink is the interface mutation code depends on. Emit never blocks the
// caller on delivery and never reports failure.
type Sink interface {
	Emit(eventType string, userID, taskID int64, data map[string]interface{})
}

// NopSink discards all events. Used when event publication is disabled.
type NopSink struct{}

// Emit discards the event.
func (NopSink) Emit(string, int64, int64, map[string]interface{}) {}
