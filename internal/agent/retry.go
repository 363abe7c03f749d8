package agent

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skiff-ai/skiff/internal/llm"
	"github.com/skiff-ai/skiff/internal/session"
	"github.com/skiff-ai/skiff/internal/tools"
)

// pythonBlock matches the first fenced python code block in a reply.
var pythonBlock = regexp.MustCompile("(?s)```(?:python|py)\\n(.+?)\\n```")

// correctedCode detects the pattern where a code execution failed and the
// model answered with fixed code instead of requesting another run: the
// last message is a tool error and the reply carries a fenced python
// block. Returns the code to re-execute.
func correctedCode(working []llm.Message, reply string) (string, bool) {
	if len(working) == 0 {
		return "", false
	}
	last := working[len(working)-1]
	if last.Role != llm.RoleTool || !strings.Contains(last.Content, "Error") {
		return "", false
	}
	m := pythonBlock.FindStringSubmatch(reply)
	if m == nil {
		return "", false
	}
	code := strings.TrimSpace(m[1])
	return code, code != ""
}

// retryCorrectedCode executes the fixed code on the model's behalf and
// gives it one more completion to interpret the outcome. Best effort: any
// failure along the way returns ok=false and the caller keeps the
// original reply. On success it returns the synthetic tool-call exchange
// to append to the conversation plus the model's fresh answer.
func (a *Agent) retryCorrectedCode(ctx context.Context, req TurnRequest, registry *tools.Registry, definitions []llm.ToolDefinition, settings session.Settings, code string, working []llm.Message, result *TurnResult) ([]llm.Message, string, bool) {
	args, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return nil, "", false
	}
	call := llm.ToolCall{
		ID:   uuid.NewString(),
		Type: "function",
		Function: llm.FunctionCall{
			Name:      "execute_python",
			Arguments: string(args),
		},
	}

	toolStart := time.Now()
	out, err := registry.Execute(ctx, "execute_python", call.Function.ArgumentsJSON())
	toolElapsed := time.Since(toolStart)
	if err != nil {
		a.logger.Debug("auto-retry execution failed",
			slog.String("session_id", req.SessionID),
			slog.Any("error", err))
		return nil, "", false
	}
	content := sanitizeToolResult(out)
	result.Timing.ToolCalls = append(result.Timing.ToolCalls, ToolTiming{Name: "execute_python", Elapsed: toolElapsed})
	if req.Advanced {
		result.Debug = append(result.Debug, DebugEvent{
			Round:   len(result.Timing.ModelCalls),
			Kind:    "auto_retry",
			Name:    "execute_python",
			Detail:  snippet(content, 200),
			Elapsed: toolElapsed,
		})
	}

	exchange := []llm.Message{
		{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{call}},
		{Role: llm.RoleTool, Content: content, ToolCallID: call.ID},
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, "", false
	}
	callStart := time.Now()
	reply, err := a.client.Complete(ctx, llm.Request{
		Model:       a.model,
		Messages:    trimForRequest(append(append([]llm.Message{}, working...), exchange...)),
		Tools:       definitions,
		Temperature: settings.Temperature,
		MaxTokens:   settings.MaxTokens,
	})
	callElapsed := time.Since(callStart)
	if err != nil {
		a.logger.Debug("auto-retry completion failed",
			slog.String("session_id", req.SessionID),
			slog.Any("error", err))
		return nil, "", false
	}
	result.Timing.ModelCalls = append(result.Timing.ModelCalls, callElapsed)
	if req.Advanced {
		result.Debug = append(result.Debug, DebugEvent{
			Round:   len(result.Timing.ModelCalls),
			Kind:    "model_call",
			Detail:  describeReply(reply),
			Elapsed: callElapsed,
		})
	}
	return exchange, reply.Content, true
}
