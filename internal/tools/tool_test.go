package tools

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoInput struct {
	Text   string `json:"text" jsonschema:"Text to echo back."`
	Repeat int    `json:"repeat,omitempty" jsonschema:"Repetitions (optional)."`
}

func TestNewToolSchemaInference(t *testing.T) {
	tool, err := NewTool("echo", "Echo text back.",
		func(ctx context.Context, in echoInput) (string, error) {
			return in.Text, nil
		})
	require.NoError(t, err)

	assert.Equal(t, "echo", tool.Name())
	assert.Equal(t, "Echo text back.", tool.Description())

	schema := tool.Schema()
	require.NotNil(t, schema)
	assert.Equal(t, "object", schema.Type)
	assert.Contains(t, schema.Properties, "text")
	assert.Contains(t, schema.Properties, "repeat")
	assert.Contains(t, schema.Required, "text")
	assert.NotContains(t, schema.Required, "repeat")
}

func TestToolPipelineValidation(t *testing.T) {
	var calls atomic.Int32
	tool, err := NewTool("counter", "Counts invocations.",
		func(ctx context.Context, in echoInput) (string, error) {
			calls.Add(1)
			return in.Text, nil
		})
	require.NoError(t, err)

	tests := []struct {
		name string
		args string
	}{
		{"missing required field", `{"repeat":2}`},
		{"wrong type", `{"text":42}`},
		{"not an object", `"just a string"`},
		{"malformed json", `{"text":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tool.run(context.Background(), json.RawMessage(tt.args))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidArguments)
		})
	}

	assert.Zero(t, calls.Load(), "handler must not run on invalid arguments")

	out, err := tool.run(context.Background(), json.RawMessage(`{"text":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
	assert.Equal(t, int32(1), calls.Load())
}

func TestToolGuardRunsBeforeHandler(t *testing.T) {
	var calls atomic.Int32
	guardErr := errors.New("payload rejected")

	tool, err := NewTool("guarded", "Guarded tool.",
		func(ctx context.Context, in echoInput) (string, error) {
			calls.Add(1)
			return in.Text, nil
		},
		WithGuard(func(in echoInput) error {
			if in.Text == "bad" {
				return guardErr
			}
			return nil
		}),
	)
	require.NoError(t, err)

	_, err = tool.run(context.Background(), json.RawMessage(`{"text":"bad"}`))
	assert.ErrorIs(t, err, guardErr)
	assert.Zero(t, calls.Load(), "guard rejection must abort before the handler")

	_, err = tool.run(context.Background(), json.RawMessage(`{"text":"ok"}`))
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestToolTimeout(t *testing.T) {
	tool, err := NewTool("slow", "Sleeps past its deadline.",
		func(ctx context.Context, in echoInput) (string, error) {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(5 * time.Second):
				return "done", nil
			}
		},
		WithTimeout[echoInput](20*time.Millisecond),
	)
	require.NoError(t, err)

	start := time.Now()
	_, err = tool.run(context.Background(), json.RawMessage(`{"text":"x"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrToolTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestToolEmptyArguments(t *testing.T) {
	tool, err := NewTool("noargs", "Needs no arguments.",
		func(ctx context.Context, in SystemInfoInput) (string, error) {
			return "ok", nil
		})
	require.NoError(t, err)

	out, err := tool.run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestToolExecutionErrorWrapped(t *testing.T) {
	cause := errors.New("backend exploded")
	tool, err := NewTool("failing", "Always fails.",
		func(ctx context.Context, in echoInput) (string, error) {
			return "", cause
		})
	require.NoError(t, err)

	_, err = tool.run(context.Background(), json.RawMessage(`{"text":"x"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrInvalidArguments)
	assert.NotErrorIs(t, err, ErrToolTimeout)
}
