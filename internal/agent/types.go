// Package agent owns the tool-orchestration loop: the round-based
// conversation between the local model and the tool registries that turns
// one user message into one grounded answer.
package agent

import (
	"time"

	"github.com/skiff-ai/skiff/internal/llm"
)

// TurnRequest is one user message plus the modes and overrides that shape
// its processing.
type TurnRequest struct {
	// SessionID selects the conversation. Unknown IDs start fresh sessions.
	SessionID string

	// Message is the user's input text.
	Message string

	// ComputerUse selects the privileged registry for this turn instead of
	// the standard one.
	ComputerUse bool

	// Advanced enables the debug trace in the result.
	Advanced bool

	// Preferences, when non-nil, is applied to the session's tool
	// enablement before the turn runs.
	Preferences map[string]bool
}

// TurnResult is everything one completed turn produced.
type TurnResult struct {
	// Answer is the final assistant text.
	Answer string

	// Messages are the messages appended to the session by this turn, in
	// order: the user message, any assistant tool-call/tool-result pairs,
	// and the final assistant answer.
	Messages []llm.Message

	// Timing breaks down where the turn spent its time.
	Timing Timing

	// Debug is the per-round trace; populated only when the request asked
	// for it.
	Debug []DebugEvent

	// ContextUsage estimates how full the model's context window is after
	// this turn.
	ContextUsage ContextUsage
}

// Timing records the durations of a turn's externally visible work.
type Timing struct {
	Total      time.Duration   `json:"total"`
	ModelCalls []time.Duration `json:"model_calls"`
	ToolCalls  []ToolTiming    `json:"tool_calls"`
}

// ToolTiming is the duration of one tool invocation.
type ToolTiming struct {
	Name    string        `json:"name"`
	Elapsed time.Duration `json:"elapsed"`
}

// DebugEvent is one entry in the advanced-mode trace.
type DebugEvent struct {
	Round   int           `json:"round"`
	Kind    string        `json:"kind"` // "model_call" or "tool_call"
	Name    string        `json:"name,omitempty"`
	Detail  string        `json:"detail"`
	Elapsed time.Duration `json:"elapsed"`
}

// ContextUsage reports the rough token footprint of the conversation
// against the session's budget.
type ContextUsage struct {
	EstimatedTokens int `json:"estimated_tokens"`
	MaxTokens       int `json:"max_tokens"`
}
