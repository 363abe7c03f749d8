package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skiff-ai/skiff/internal/llm"
	"github.com/skiff-ai/skiff/internal/session"
	"github.com/skiff-ai/skiff/internal/testutil"
	"github.com/skiff-ai/skiff/internal/tools"
)

func TestCorrectedCode(t *testing.T) {
	afterError := []llm.Message{{Role: llm.RoleTool, Content: "Error: exit status 1"}}

	code, ok := correctedCode(afterError, "Try this instead:\n```python\nprint(1)\n```")
	require.True(t, ok)
	assert.Equal(t, "print(1)", code)

	code, ok = correctedCode(afterError, "```py\nx = 2\n```")
	require.True(t, ok)
	assert.Equal(t, "x = 2", code)

	_, ok = correctedCode(afterError, "I could not fix it.")
	assert.False(t, ok)

	afterSuccess := []llm.Message{{Role: llm.RoleTool, Content: "all good"}}
	_, ok = correctedCode(afterSuccess, "```python\nprint(1)\n```")
	assert.False(t, ok)

	_, ok = correctedCode(nil, "```python\nprint(1)\n```")
	assert.False(t, ok)
}

type codeInput struct {
	Code string `json:"code" jsonschema:"code to run"`
}

// newRetryAgent wires a privileged registry whose run_script tool always
// fails and whose execute_python tool echoes what it ran.
func newRetryAgent(t *testing.T, client llm.Completer) (*Agent, *session.Store) {
	t.Helper()
	logger := testutil.DiscardLogger()
	store := session.NewStore(logger)

	script, err := tools.NewTool("run_script", "Runs a script.",
		func(context.Context, struct{}) (string, error) {
			return "", errors.New("script blew up")
		})
	require.NoError(t, err)
	exec, err := tools.NewTool("execute_python", "Executes Python code.",
		func(_ context.Context, in codeInput) (string, error) {
			return "ran fine: " + in.Code, nil
		})
	require.NoError(t, err)

	privileged := tools.NewRegistry(logger)
	require.NoError(t, privileged.Register(script))
	require.NoError(t, privileged.Register(exec))

	return New(client, tools.NewRegistry(logger), privileged, store, Config{}, logger), store
}

func scriptCall(id string) llm.ToolCall {
	return llm.ToolCall{
		ID:       id,
		Type:     "function",
		Function: llm.FunctionCall{Name: "run_script", Arguments: `{}`},
	}
}

func TestProcessTurnAutoRetryRunsCorrectedCode(t *testing.T) {
	mock := testutil.NewMockLLM("fallback")
	mock.AddToolResponse("run my script", scriptCall("c1"))
	mock.AddResponse("error:", "Here is the fix:\n```python\nprint('hi')\n```")
	mock.AddResponse("ran fine", "All fixed, it prints hi.")
	agent, store := newRetryAgent(t, mock)

	result, err := agent.ProcessTurn(context.Background(), TurnRequest{
		SessionID:   "s1",
		Message:     "run my script",
		ComputerUse: true,
		Advanced:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, "All fixed, it prints hi.", result.Answer)

	// user, tool request, error, synthetic exec request, exec result, answer
	require.Len(t, result.Messages, 6)
	retryCall := result.Messages[3]
	require.Len(t, retryCall.ToolCalls, 1)
	assert.Equal(t, "execute_python", retryCall.ToolCalls[0].Function.Name)
	assert.Contains(t, retryCall.ToolCalls[0].Function.Arguments, "print('hi')")
	assert.NotEmpty(t, retryCall.ToolCalls[0].ID)
	assert.Equal(t, "ran fine: print('hi')", result.Messages[4].Content)
	assert.Equal(t, retryCall.ToolCalls[0].ID, result.Messages[4].ToolCallID)

	assert.Len(t, result.Timing.ModelCalls, 3)
	require.Len(t, result.Timing.ToolCalls, 2)
	assert.Equal(t, "execute_python", result.Timing.ToolCalls[1].Name)

	var kinds []string
	for _, ev := range result.Debug {
		kinds = append(kinds, ev.Kind)
	}
	assert.Contains(t, kinds, "auto_retry")

	// The whole exchange is committed.
	assert.Len(t, mustHistory(t, store, "s1"), 6)
}

func TestProcessTurnAutoRetryOnlyInComputerUse(t *testing.T) {
	mock := testutil.NewMockLLM("fallback")
	mock.AddToolResponse("explode", lookupCall("c1", "boom"))
	mock.AddResponse("error:", "Run this yourself:\n```python\nprint('hi')\n```")
	agent, _ := newTestAgent(t, mock, Config{})

	result, err := agent.ProcessTurn(context.Background(), TurnRequest{
		SessionID: "s1",
		Message:   "please explode",
	})
	require.NoError(t, err)

	// Standard mode hands the code back to the user verbatim.
	assert.Contains(t, result.Answer, "```python")
	assert.Len(t, result.Messages, 4)
	assert.Len(t, mock.Calls(), 2)
}

func TestProcessTurnAutoRetryFailureKeepsOriginalAnswer(t *testing.T) {
	logger := testutil.DiscardLogger()
	store := session.NewStore(logger)

	script, err := tools.NewTool("run_script", "Runs a script.",
		func(context.Context, struct{}) (string, error) {
			return "", errors.New("script blew up")
		})
	require.NoError(t, err)
	privileged := tools.NewRegistry(logger)
	require.NoError(t, privileged.Register(script))

	mock := testutil.NewMockLLM("fallback")
	mock.AddToolResponse("run my script", scriptCall("c1"))
	mock.AddResponse("error:", "Maybe this works:\n```python\nprint('hi')\n```")
	agent := New(mock, tools.NewRegistry(logger), privileged, store, Config{}, logger)

	result, err := agent.ProcessTurn(context.Background(), TurnRequest{
		SessionID:   "s1",
		Message:     "run my script",
		ComputerUse: true,
	})
	require.NoError(t, err)

	// No execute_python tool is registered, so the re-run fails and the
	// original reply stands without a synthetic exchange.
	assert.Contains(t, result.Answer, "```python")
	assert.Len(t, result.Messages, 4)
	assert.Len(t, mock.Calls(), 2)
}
