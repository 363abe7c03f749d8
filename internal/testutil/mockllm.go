// Package testutil holds shared test doubles for the model-facing parts of
// the codebase.
package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/skiff-ai/skiff/internal/llm"
)

// MockLLM is a deterministic llm.Completer for tests. It matches the last
// user message against registered patterns and replies with the
// corresponding canned message; tool results from earlier rounds are
// matched too, so multi-round loops can be scripted.
//
// Thread-safe for concurrent use.
type MockLLM struct {
	mu       sync.Mutex
	rules    []mockRule
	fallback string
	calls    []MockCall
}

type mockRule struct {
	pattern  string // case-insensitive substring in the matched message
	response string
	tools    []llm.ToolCall // non-nil: request these tools instead of answering
	used     bool
	once     bool
}

// MockCall records one completion request.
type MockCall struct {
	Request  llm.Request
	Response llm.Message
}

// NewMockLLM creates a mock with the given fallback answer, returned when
// no pattern matches.
func NewMockLLM(fallback string) *MockLLM {
	return &MockLLM{fallback: fallback}
}

// AddResponse registers a pattern that yields a plain text answer.
// Patterns are checked in registration order; first match wins.
func (m *MockLLM) AddResponse(pattern, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, mockRule{pattern: strings.ToLower(pattern), response: response})
}

// AddToolResponse registers a pattern that yields tool-call requests. The
// rule fires at most once, so the loop's follow-up round falls through to
// later rules (or the fallback) instead of looping forever.
func (m *MockLLM) AddToolResponse(pattern string, tools ...llm.ToolCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, mockRule{pattern: strings.ToLower(pattern), tools: tools, once: true})
}

// Calls returns a copy of every recorded request/response pair.
func (m *MockLLM) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]MockCall, len(m.calls))
	copy(cp, m.calls)
	return cp
}

// Complete implements llm.Completer.
func (m *MockLLM) Complete(_ context.Context, req llm.Request) (*llm.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := strings.ToLower(lastMatchable(req.Messages))
	reply := llm.Message{Role: llm.RoleAssistant, Content: m.fallback}
	for i := range m.rules {
		rule := &m.rules[i]
		if rule.once && rule.used {
			continue
		}
		if strings.Contains(matched, rule.pattern) {
			rule.used = true
			reply = llm.Message{Role: llm.RoleAssistant, Content: rule.response, ToolCalls: rule.tools}
			break
		}
	}

	m.calls = append(m.calls, MockCall{Request: req, Response: reply})
	return &reply, nil
}

// lastMatchable picks the message a rule should match: the most recent
// user or tool message.
func lastMatchable(messages []llm.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		switch messages[i].Role {
		case llm.RoleUser, llm.RoleTool:
			return messages[i].Content
		}
	}
	return ""
}
