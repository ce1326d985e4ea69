// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/ashureev/taskyar/internal/domain"
)

// Repository defines the interface for persisting users, tasks, and conversations.
//
// Every task and conversation query filters by the owning user ID inside the
// query itself, never "fetch then check": a row belonging to another user is
// indistinguishable from a missing row.
type Repository interface {
	// CreateUser inserts a new user and populates its ID.
	CreateUser(ctx context.Context, user *domain.User) error

	// GetUserByEmail retrieves a user by email. Returns (nil, nil) if absent.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetUserByID retrieves a user by ID. Returns (nil, nil) if absent.
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)

	// CreateTask inserts a new task (and its tags) and populates its ID.
	CreateTask(ctx context.Context, task *domain.Task) error

	// ListTasks retrieves all tasks for a user, newest first.
	ListTasks(ctx context.Context, userID int64) ([]*domain.Task, error)

	// GetTask retrieves a task by ID for the given owner.
	// Returns (nil, nil) when the task is missing or owned by someone else.
	GetTask(ctx context.Context, taskID, userID int64) (*domain.Task, error)

	// CompleteTask marks a task completed. Idempotent: completing an
	// already-completed task succeeds and returns the task unchanged.
	// Returns (nil, nil) when the task is missing or owned by someone else.
	CompleteTask(ctx context.Context, taskID, userID int64) (*domain.Task, error)

	// UpdateTask applies the non-nil fields of update to a task.
	// Returns (nil, nil) when the task is missing or owned by someone else.
	UpdateTask(ctx context.Context, taskID, userID int64, update domain.TaskUpdate) (*domain.Task, error)

	// DeleteTask permanently removes a task. Returns false when the task is
	// missing or owned by someone else.
	DeleteTask(ctx context.Context, taskID, userID int64) (bool, error)

	// CreateConversation inserts a new conversation.
	CreateConversation(ctx context.Context, conv *domain.Conversation) error

	// GetConversation retrieves a conversation by ID for the given owner.
	// Returns (nil, nil) when missing or owned by someone else.
	GetConversation(ctx context.Context, id string, userID int64) (*domain.Conversation, error)

	// ListConversations retrieves conversations for a user ordered by
	// updated_at descending, with the total count before pagination.
	ListConversations(ctx context.Context, userID int64, limit, offset int) ([]*domain.Conversation, int, error)

	// DeleteConversation removes a conversation and its messages.
	// Returns false when missing or owned by someone else.
	DeleteConversation(ctx context.Context, id string, userID int64) (bool, error)

	// TouchConversation bumps a conversation's updated_at.
	TouchConversation(ctx context.Context, id string, userID int64) error

	// SetConversationTitle sets the title if it is currently empty.
	SetConversationTitle(ctx context.Context, id string, userID int64, title string) error

	// AddMessage appends a message to a conversation and populates its ID.
	AddMessage(ctx context.Context, msg *domain.Message) error

	// GetMessages retrieves messages for a conversation ordered oldest first,
	// limited to the most recent limit messages (0 means no limit).
	GetMessages(ctx context.Context, conversationID string, userID int64, limit int) ([]*domain.Message, error)

	// CountMessages returns the number of messages in a conversation.
	CountMessages(ctx context.Context, conversationID string, userID int64) (int, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
