package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ashureev/taskyar/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	PRAGMA foreign_keys = ON;

	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		full_name TEXT,
		hashed_password TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		title TEXT NOT NULL,
		description TEXT,
		completed INTEGER NOT NULL DEFAULT 0,
		priority TEXT NOT NULL DEFAULT 'Medium',
		due_date INTEGER,
		recurrence_rule TEXT,
		recurrence_parent_id INTEGER REFERENCES tasks(id),
		recurrence_depth INTEGER NOT NULL DEFAULT 0,
		reminder_minutes INTEGER,
		reminder_sent INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tasks_user_created ON tasks(user_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		UNIQUE(user_id, name)
	);

	CREATE TABLE IF NOT EXISTS task_tags (
		task_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		PRIMARY KEY (task_id, tag_id)
	);

	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id),
		title TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_user_updated ON conversations(user_id, updated_at DESC);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		user_id INTEGER NOT NULL REFERENCES users(id),
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		tool_calls TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// CreateUser inserts a new user and populates its ID.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (email, full_name, hashed_password, created_at) VALUES (?, ?, ?, ?)`

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	var fullName interface{}
	if user.FullName != "" {
		fullName = user.FullName
	}

	res, err := s.db.ExecContext(ctx, query, user.Email, fullName, user.HashedPassword, user.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("user insert id: %w", err)
	}
	user.ID = id
	return nil
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, email, full_name, hashed_password, created_at FROM users WHERE email = ?`
	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT id, email, full_name, hashed_password, created_at FROM users WHERE id = ?`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var fullName sql.NullString
	var createdAt int64

	err := row.Scan(&user.ID, &user.Email, &fullName, &user.HashedPassword, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	user.FullName = fullName.String
	user.CreatedAt = time.Unix(createdAt, 0)
	return &user, nil
}

const taskColumns = `id, user_id, title, description, completed, priority, due_date,
	recurrence_rule, recurrence_parent_id, recurrence_depth,
	reminder_minutes, reminder_sent, created_at, updated_at`

// CreateTask inserts a new task and its tags.
func (s *SQLiteStore) CreateTask(ctx context.Context, task *domain.Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin task insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO tasks (
		user_id, title, description, completed, priority, due_date,
		recurrence_rule, recurrence_parent_id, recurrence_depth,
		reminder_minutes, reminder_sent, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := tx.ExecContext(ctx, query,
		task.UserID, task.Title, nullString(task.Description),
		boolToInt(task.Completed), string(task.Priority), nullTime(task.DueDate),
		nullString(task.RecurrenceRule), task.RecurrenceParentID, task.RecurrenceDepth,
		task.ReminderMinutes, boolToInt(task.ReminderSent),
		task.CreatedAt.Unix(), task.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("task insert id: %w", err)
	}
	task.ID = id

	if err := s.replaceTags(ctx, tx, task.ID, task.UserID, task.Tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit task insert: %w", err)
	}
	return nil
}

// ListTasks retrieves all tasks for a user, newest first.
func (s *SQLiteStore) ListTasks(ctx context.Context, userID int64) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ? ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close task rows", "error", closeErr)
		}
	}()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	if err := s.attachTags(ctx, userID, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask retrieves a task by ID for the given owner.
func (s *SQLiteStore) GetTask(ctx context.Context, taskID, userID int64) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND user_id = ?`

	rows, err := s.db.QueryContext(ctx, query, taskID, userID)
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query task: %w", err)
		}
		return nil, nil
	}
	task, err := scanTask(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachTags(ctx, userID, []*domain.Task{task}); err != nil {
		return nil, err
	}
	return task, nil
}

// CompleteTask marks a task completed. Idempotent.
func (s *SQLiteStore) CompleteTask(ctx context.Context, taskID, userID int64) (*domain.Task, error) {
	query := `UPDATE tasks SET completed = 1, updated_at = ? WHERE id = ? AND user_id = ? AND completed = 0`
	if _, err := s.db.ExecContext(ctx, query, time.Now().Unix(), taskID, userID); err != nil {
		return nil, fmt.Errorf("complete task: %w", err)
	}
	// Re-fetch regardless of rows affected: an already-completed task is
	// still a success for the caller.
	return s.GetTask(ctx, taskID, userID)
}

// UpdateTask applies the non-nil fields of update to a task.
func (s *SQLiteStore) UpdateTask(ctx context.Context, taskID, userID int64, update domain.TaskUpdate) (*domain.Task, error) {
	sets := []string{"updated_at = ?"}
	args := []interface{}{time.Now().Unix()}

	if update.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *update.Title)
	}
	if update.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *update.Description)
	}
	if update.Completed != nil {
		sets = append(sets, "completed = ?")
		args = append(args, boolToInt(*update.Completed))
	}
	if update.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *update.Priority)
	}
	if update.DueDate != nil {
		due, err := time.Parse("2006-01-02", *update.DueDate)
		if err != nil {
			return nil, fmt.Errorf("parse due date: %w", err)
		}
		sets = append(sets, "due_date = ?")
		args = append(args, due.Unix())
	}
	if update.RecurrenceRule != nil {
		sets = append(sets, "recurrence_rule = ?")
		args = append(args, nullString(*update.RecurrenceRule))
	}
	if update.ReminderMinutes != nil {
		sets = append(sets, "reminder_minutes = ?, reminder_sent = 0")
		args = append(args, *update.ReminderMinutes)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin task update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := "UPDATE tasks SET " + strings.Join(sets, ", ") + " WHERE id = ? AND user_id = ?"
	args = append(args, taskID, userID)

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update task rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	if update.Tags != nil {
		if err := s.replaceTags(ctx, tx, taskID, userID, update.Tags); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit task update: %w", err)
	}
	return s.GetTask(ctx, taskID, userID)
}

// DeleteTask permanently removes a task.
func (s *SQLiteStore) DeleteTask(ctx context.Context, taskID, userID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, taskID, userID)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete task rows affected: %w", err)
	}
	return affected > 0, nil
}

// CreateConversation inserts a new conversation.
func (s *SQLiteStore) CreateConversation(ctx context.Context, conv *domain.Conversation) error {
	query := `INSERT INTO conversations (id, user_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	now := time.Now()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = now
	}
	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = now
	}
	_, err := s.db.ExecContext(ctx, query,
		conv.ID, conv.UserID, nullString(conv.Title), conv.CreatedAt.Unix(), conv.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

// GetConversation retrieves a conversation by ID for the given owner.
func (s *SQLiteStore) GetConversation(ctx context.Context, id string, userID int64) (*domain.Conversation, error) {
	query := `SELECT id, user_id, title, created_at, updated_at FROM conversations WHERE id = ? AND user_id = ?`
	row := s.db.QueryRowContext(ctx, query, id, userID)

	var conv domain.Conversation
	var title sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(&conv.ID, &conv.UserID, &title, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan conversation row: %w", err)
	}

	conv.Title = title.String
	conv.CreatedAt = time.Unix(createdAt, 0)
	conv.UpdatedAt = time.Unix(updatedAt, 0)
	return &conv, nil
}

// ListConversations retrieves conversations for a user, most recent first.
func (s *SQLiteStore) ListConversations(ctx context.Context, userID int64, limit, offset int) ([]*domain.Conversation, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conversations WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count conversations: %w", err)
	}

	query := `
		SELECT id, user_id, title, created_at, updated_at
		FROM conversations WHERE user_id = ?
		ORDER BY updated_at DESC LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query conversations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var convs []*domain.Conversation
	for rows.Next() {
		var conv domain.Conversation
		var title sql.NullString
		var createdAt, updatedAt int64
		if err := rows.Scan(&conv.ID, &conv.UserID, &title, &createdAt, &updatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan conversation row: %w", err)
		}
		conv.Title = title.String
		conv.CreatedAt = time.Unix(createdAt, 0)
		conv.UpdatedAt = time.Unix(updatedAt, 0)
		convs = append(convs, &conv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate conversations: %w", err)
	}
	return convs, total, nil
}

// DeleteConversation removes a conversation and its messages.
func (s *SQLiteStore) DeleteConversation(ctx context.Context, id string, userID int64) (bool, error) {
	// Messages cascade via foreign key, but delete explicitly in case the
	// connection was opened without foreign_keys enabled.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin conversation delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM messages WHERE conversation_id = ? AND user_id = ?`, id, userID); err != nil {
		return false, fmt.Errorf("delete conversation messages: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`DELETE FROM conversations WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete conversation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete conversation rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit conversation delete: %w", err)
	}
	return affected > 0, nil
}

// TouchConversation bumps a conversation's updated_at.
func (s *SQLiteStore) TouchConversation(ctx context.Context, id string, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ? AND user_id = ?`,
		time.Now().Unix(), id, userID)
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch conversation rows affected: %w", err)
	}
	if rows == 0 {
		slog.Warn("TouchConversation affected 0 rows", "conversation_id", id, "user_id", userID)
	}
	return nil
}

// SetConversationTitle sets the title if it is currently empty.
func (s *SQLiteStore) SetConversationTitle(ctx context.Context, id string, userID int64, title string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET title = ? WHERE id = ? AND user_id = ? AND (title IS NULL OR title = '')`,
		title, id, userID)
	if err != nil {
		return fmt.Errorf("set conversation title: %w", err)
	}
	return nil
}

// AddMessage appends a message to a conversation.
func (s *SQLiteStore) AddMessage(ctx context.Context, msg *domain.Message) error {
	query := `
	INSERT INTO messages (conversation_id, user_id, role, content, tool_calls, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, query,
		msg.ConversationID, msg.UserID, msg.Role, msg.Content,
		nullString(msg.ToolCalls), msg.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("message insert id: %w", err)
	}
	msg.ID = id
	return nil
}

// GetMessages retrieves messages for a conversation, oldest first.
func (s *SQLiteStore) GetMessages(ctx context.Context, conversationID string, userID int64, limit int) ([]*domain.Message, error) {
	query := `
		SELECT id, conversation_id, user_id, role, content, tool_calls, created_at
		FROM messages WHERE conversation_id = ? AND user_id = ?
		ORDER BY created_at ASC, id ASC`
	args := []interface{}{conversationID, userID}
	if limit > 0 {
		// Keep the most recent limit messages while preserving ascending order.
		query = `
		SELECT id, conversation_id, user_id, role, content, tool_calls, created_at FROM (
			SELECT id, conversation_id, user_id, role, content, tool_calls, created_at
			FROM messages WHERE conversation_id = ? AND user_id = ?
			ORDER BY created_at DESC, id DESC LIMIT ?
		) ORDER BY created_at ASC, id ASC`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var msgs []*domain.Message
	for rows.Next() {
		var msg domain.Message
		var toolCalls sql.NullString
		var createdAt int64
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.UserID,
			&msg.Role, &msg.Content, &toolCalls, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		msg.ToolCalls = toolCalls.String
		msg.CreatedAt = time.Unix(createdAt, 0)
		msgs = append(msgs, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return msgs, nil
}

// CountMessages returns the number of messages in a conversation.
func (s *SQLiteStore) CountMessages(ctx context.Context, conversationID string, userID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = ? AND user_id = ?`,
		conversationID, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

// replaceTags rewrites the tag set for a task within tx.
func (s *SQLiteStore) replaceTags(ctx context.Context, tx *sql.Tx, taskID, userID int64, tags []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = ?`, taskID); err != nil {
		return fmt.Errorf("clear task tags: %w", err)
	}
	for _, name := range tags {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tags (user_id, name) VALUES (?, ?) ON CONFLICT(user_id, name) DO NOTHING`,
			userID, name); err != nil {
			return fmt.Errorf("upsert tag: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO task_tags (task_id, tag_id)
			SELECT ?, id FROM tags WHERE user_id = ? AND name = ?
			ON CONFLICT(task_id, tag_id) DO NOTHING`,
			taskID, userID, name); err != nil {
			return fmt.Errorf("link tag: %w", err)
		}
	}
	return nil
}

// attachTags loads tag names for the given tasks in one query.
func (s *SQLiteStore) attachTags(ctx context.Context, userID int64, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	byID := make(map[int64]*domain.Task, len(tasks))
	placeholders := make([]string, 0, len(tasks))
	args := make([]interface{}, 0, len(tasks)+1)
	for _, t := range tasks {
		byID[t.ID] = t
		placeholders = append(placeholders, "?")
		args = append(args, t.ID)
	}
	args = append(args, userID)

	query := `
		SELECT tt.task_id, tg.name
		FROM task_tags tt JOIN tags tg ON tg.id = tt.tag_id
		WHERE tt.task_id IN (` + strings.Join(placeholders, ",") + `) AND tg.user_id = ?
		ORDER BY tg.name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query task tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var taskID int64
		var name string
		if err := rows.Scan(&taskID, &name); err != nil {
			return fmt.Errorf("scan tag row: %w", err)
		}
		if t, ok := byID[taskID]; ok {
			t.Tags = append(t.Tags, name)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate tags: %w", err)
	}
	return nil
}

// scanTask scans one task row from either *sql.Row or *sql.Rows.
func scanTask(row interface{ Scan(...interface{}) error }) (*domain.Task, error) {
	var task domain.Task
	var description, recurrenceRule sql.NullString
	var dueDate, recurrenceParent sql.NullInt64
	var reminderMinutes sql.NullInt64
	var completed, reminderSent int
	var priority string
	var createdAt, updatedAt int64

	err := row.Scan(
		&task.ID, &task.UserID, &task.Title, &description, &completed, &priority, &dueDate,
		&recurrenceRule, &recurrenceParent, &task.RecurrenceDepth,
		&reminderMinutes, &reminderSent, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan task row: %w", err)
	}

	task.Description = description.String
	task.Completed = completed != 0
	task.Priority = domain.Priority(priority)
	task.RecurrenceRule = recurrenceRule.String
	task.ReminderSent = reminderSent != 0
	if dueDate.Valid {
		t := time.Unix(dueDate.Int64, 0).UTC()
		task.DueDate = &t
	}
	if recurrenceParent.Valid {
		v := recurrenceParent.Int64
		task.RecurrenceParentID = &v
	}
	if reminderMinutes.Valid {
		v := int(reminderMinutes.Int64)
		task.ReminderMinutes = &v
	}
	task.CreatedAt = time.Unix(createdAt, 0)
	task.UpdatedAt = time.Unix(updatedAt, 0)
	return &task, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
