// Package llm speaks the OpenAI-compatible chat-completions dialect that
// local model runtimes (Ollama, LM Studio, vLLM) expose.
//
// The package owns the wire types for messages and tool calls, the Completer
// interface the orchestration loop depends on, and an HTTP client
// implementation. It deliberately does NOT retry failed calls: the model is
// a local process, and surfacing its unavailability immediately beats
// masking it behind backoff.
package llm

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// Message roles on the chat-completions wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry in a conversation. Exactly one of the optional
// fields is populated depending on role: assistant messages may carry
// ToolCalls, tool messages must carry the ToolCallID they answer.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is the model requesting one tool invocation.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names the tool and carries its arguments. Arguments is a
// JSON object encoded as a string, as the OpenAI wire format specifies.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ArgumentsJSON returns the arguments as raw JSON, mapping the wire
// convention of an empty string to an empty object.
func (fc FunctionCall) ArgumentsJSON() json.RawMessage {
	if fc.Arguments == "" {
		return json.RawMessage("{}")
	}
	return json.RawMessage(fc.Arguments)
}

// ToolDefinition advertises one invocable tool to the model.
type ToolDefinition struct {
	Type     string   `json:"type"`
	Function Function `json:"function"`
}

// Function describes a tool's name, purpose, and argument schema.
type Function struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// Request is one chat-completions call.
type Request struct {
	Model       string           `json:"model"`
	Messages    []Message        `json:"messages"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
	Temperature float64          `json:"temperature"`
	MaxTokens   int              `json:"max_tokens"`
	Stream      bool             `json:"stream"`
}

// Completer is the model dependency of the orchestration loop. Defined here
// by the consumer side so tests can substitute a scripted fake.
//
// Complete returns the assistant message from the first choice. Errors wrap
// ErrModelUnavailable (endpoint unreachable or non-2xx) or
// ErrModelResponseParse (body undecodable or structurally invalid); both are
// terminal for the current turn.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Message, error)
}
