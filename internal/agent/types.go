// Package agent implements the rule-based conversational task assistant.
//
// A free-text message in English, Urdu script, or Roman Urdu is classified,
// routed to a task operation through the tool gateway, and answered in the
// language the user wrote in.
package agent

import (
	"time"

	"github.com/ashureev/taskyar/internal/tools"
)

// Language is the detected language tag of a user message.
type Language string

const (
	LangEnglish   Language = "en"
	LangUrdu      Language = "ur"
	LangRomanUrdu Language = "roman_ur"
)

// Message is a single message in the conversation history passed to the
// agent. Immutable once created.
type Message struct {
	Role      string    `json:"role"` // "user" | "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Context is the immutable per-invocation context for one agent turn.
// It is constructed fresh for every inbound request and never mutated.
type Context struct {
	UserID         int64
	ConversationID string
	History        []Message
}

// ToolCallRecord captures one tool invocation for the turn's audit trail.
// Parameters never include the authenticated user ID.
type ToolCallRecord struct {
	ToolName   string                 `json:"tool_name"`
	Parameters map[string]interface{} `json:"parameters"`
	Result     tools.Response         `json:"result"`
	DurationMs int64                  `json:"duration_ms"`
}

// Result is the sole output of one agent turn.
type Result struct {
	Success   bool             `json:"success"`
	Response  string           `json:"response"`
	ToolCalls []ToolCallRecord `json:"tool_calls"`
	Error     string           `json:"error,omitempty"`
	Language  Language         `json:"language"`
}

// HasToolCalls reports whether the turn invoked any tools.
func (r *Result) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// pendingConfirmation is the single slot of cross-turn state: a task queued
// for deletion, awaiting a yes/no from the user. It is consumed on the very
// next turn whatever that turn says.
type pendingConfirmation struct {
	taskID    int64
	taskTitle string
	userID    int64
	language  Language
}
