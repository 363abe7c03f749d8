package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skiff-ai/skiff/internal/log"
	"github.com/skiff-ai/skiff/internal/security"
)

func newCommandTool(t *testing.T) *Tool {
	t.Helper()
	tool, err := NewExecuteCommandTool(security.NewGate(log.NewNop()), log.NewNop())
	require.NoError(t, err)
	return tool
}

func TestExecuteCommand(t *testing.T) {
	tool := newCommandTool(t)

	t.Run("captures stdout and exit code", func(t *testing.T) {
		args, _ := json.Marshal(ExecuteCommandInput{Command: "echo hello world"})
		out, err := tool.run(context.Background(), args)
		require.NoError(t, err)
		assert.Contains(t, out, "Output:\nhello world")
		assert.Contains(t, out, "Exit code: 0")
	})

	t.Run("shell features work", func(t *testing.T) {
		args, _ := json.Marshal(ExecuteCommandInput{Command: "echo one && echo two | tr 'a-z' 'A-Z'"})
		out, err := tool.run(context.Background(), args)
		require.NoError(t, err)
		assert.Contains(t, out, "one")
		assert.Contains(t, out, "TWO")
	})

	t.Run("nonzero exit is a result not an error", func(t *testing.T) {
		args, _ := json.Marshal(ExecuteCommandInput{Command: "echo oops >&2; exit 3"})
		out, err := tool.run(context.Background(), args)
		require.NoError(t, err)
		assert.Contains(t, out, "Error output:\noops")
		assert.Contains(t, out, "Exit code: 3")
	})

	t.Run("no output placeholder", func(t *testing.T) {
		args, _ := json.Marshal(ExecuteCommandInput{Command: "true"})
		out, err := tool.run(context.Background(), args)
		require.NoError(t, err)
		assert.Contains(t, out, "(no output)")
	})

	t.Run("dangerous command blocked before execution", func(t *testing.T) {
		args, _ := json.Marshal(ExecuteCommandInput{Command: "rm -rf / --no-preserve-root"})
		_, err := tool.run(context.Background(), args)
		require.Error(t, err)
		assert.ErrorIs(t, err, security.ErrDangerousOperation)
	})

	t.Run("empty command rejected", func(t *testing.T) {
		args, _ := json.Marshal(ExecuteCommandInput{Command: "   "})
		_, err := tool.run(context.Background(), args)
		assert.Error(t, err)
	})
}

func TestExecutePythonGate(t *testing.T) {
	tool, err := NewExecutePythonTool(security.NewGate(log.NewNop()), log.NewNop())
	require.NoError(t, err)

	// Gate rejection must happen before any interpreter is spawned, so this
	// holds even on hosts without python3.
	args, _ := json.Marshal(ExecutePythonInput{Code: `import os; os.system("mkfs.ext4 /dev/sda")`})
	_, err = tool.run(context.Background(), args)
	require.Error(t, err)
	assert.ErrorIs(t, err, security.ErrDangerousOperation)
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare code untouched", "print(1)", "print(1)"},
		{"python fence", "```python\nprint(1)\n```", "print(1)"},
		{"bash fence", "```bash\nls -la\n```", "ls -la"},
		{"anonymous fence", "```\necho hi\n```", "echo hi"},
		{"multiline body", "```python\na = 1\nprint(a)\n```", "a = 1\nprint(a)"},
		{"surrounding whitespace", "  ```\necho hi\n```  ", "echo hi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFence(tt.in))
		})
	}
}
