package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/skiff-ai/skiff/internal/log"
	"github.com/skiff-ai/skiff/internal/security"
)

const execTimeout = 60 * time.Second

// ExecutePythonInput defines input for the execute_python tool.
type ExecutePythonInput struct {
	Code string `json:"code" jsonschema:"The Python code to execute. Use print() to produce output."`
}

// ExecuteCommandInput defines input for the execute_command tool.
type ExecuteCommandInput struct {
	Command string `json:"command" jsonschema:"The shell command to execute."`
}

// codeFencePattern matches a markdown code fence wrapper that small models
// habitually put around code arguments.
var codeFencePattern = regexp.MustCompile("(?s)^```(?:python|py|sh|bash)?\\n(.*?)\\n?```$")

// stripCodeFence removes a surrounding markdown fence, if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := codeFencePattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// NewExecutePythonTool creates the privileged Python execution tool. Code is
// gate-checked before the interpreter starts; stdout, stderr and the exit
// code come back as text.
func NewExecutePythonTool(gate *security.Gate, logger log.Logger) (*Tool, error) {
	handler := func(ctx context.Context, in ExecutePythonInput) (string, error) {
		code := stripCodeFence(in.Code)
		if code == "" {
			return "", fmt.Errorf("code cannot be empty")
		}
		return runProcess(ctx, logger, "python3", "-c", code)
	}

	return NewTool(
		"execute_python",
		"Execute Python code on the host and return its output. The code runs with the server's privileges.",
		handler,
		WithTimeout[ExecutePythonInput](execTimeout),
		WithGuard(func(in ExecutePythonInput) error {
			return gate.Check("code", stripCodeFence(in.Code))
		}),
	)
}

// NewExecuteCommandTool creates the privileged shell execution tool. The
// command string is gate-checked, then handed to sh -c so pipes and
// redirects work the way users expect.
func NewExecuteCommandTool(gate *security.Gate, logger log.Logger) (*Tool, error) {
	handler := func(ctx context.Context, in ExecuteCommandInput) (string, error) {
		command := stripCodeFence(in.Command)
		if command == "" {
			return "", fmt.Errorf("command cannot be empty")
		}
		return runProcess(ctx, logger, "sh", "-c", command)
	}

	return NewTool(
		"execute_command",
		"Execute a shell command on the host and return its output. The command runs with the server's privileges.",
		handler,
		WithTimeout[ExecuteCommandInput](execTimeout),
		WithGuard(func(in ExecuteCommandInput) error {
			return gate.Check("command", stripCodeFence(in.Command))
		}),
	)
}

// runProcess executes one subprocess under ctx and formats its outcome.
// A non-zero exit is a result, not an error: the model should see the
// stderr and exit code and decide what to do next.
func runProcess(ctx context.Context, logger log.Logger, name string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if ctx.Err() != nil {
		// Let the tool pipeline classify the deadline.
		return "", ctx.Err()
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return "", fmt.Errorf("starting %s: %w", name, err)
		}
	}

	logger.Info("subprocess finished",
		"executable", name,
		"exit_code", exitCode,
		"elapsed", elapsed)

	var sb strings.Builder
	if out := strings.TrimRight(stdout.String(), "\n"); out != "" {
		sb.WriteString("Output:\n")
		sb.WriteString(out)
		sb.WriteString("\n")
	}
	if errOut := strings.TrimRight(stderr.String(), "\n"); errOut != "" {
		sb.WriteString("Error output:\n")
		sb.WriteString(errOut)
		sb.WriteString("\n")
	}
	if sb.Len() == 0 {
		sb.WriteString("(no output)\n")
	}
	fmt.Fprintf(&sb, "Exit code: %d", exitCode)
	return sb.String(), nil
}
