package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
)

// defaultTimeout bounds a single tool execution when the constructor is not
// given an explicit deadline.
const defaultTimeout = 30 * time.Second

// Tool is one invocable capability: metadata the model sees plus the
// type-erased execution pipeline the registry drives.
//
// A Tool is immutable after construction and safe for concurrent use.
type Tool struct {
	name        string
	description string
	schema      *jsonschema.Schema
	timeout     time.Duration

	// run is the type-erased pipeline: validate, guard, execute under
	// deadline. Built once in NewTool.
	run func(ctx context.Context, raw json.RawMessage) (string, error)
}

// Name returns the tool's wire identifier.
func (t *Tool) Name() string { return t.name }

// Description returns the text the model uses to decide when to call the
// tool.
func (t *Tool) Description() string { return t.description }

// Schema returns the JSON schema of the tool's argument object.
func (t *Tool) Schema() *jsonschema.Schema { return t.schema }

// Option configures optional Tool behavior at construction.
type Option[In any] func(*toolConfig[In])

type toolConfig[In any] struct {
	timeout time.Duration
	guard   func(In) error
}

// WithTimeout overrides the default execution deadline.
func WithTimeout[In any](d time.Duration) Option[In] {
	return func(c *toolConfig[In]) { c.timeout = d }
}

// WithGuard installs a pre-execution check that sees the decoded, validated
// arguments. The privileged tools use this to run their payloads through
// the safety gate; a guard error aborts execution before any side effect.
func WithGuard[In any](fn func(In) error) Option[In] {
	return func(c *toolConfig[In]) { c.guard = fn }
}

// NewTool creates a tool with type-safe argument handling.
//
// The argument schema is inferred from In's struct tags via
// jsonschema.For, so the type declaration is the single source of truth
// for both decoding and the schema advertised to the model. Type erasure
// happens internally so registries can store heterogeneous tools.
//
// The execution pipeline enforced for every call:
//  1. Decode and schema-validate the raw arguments (ErrInvalidArguments).
//  2. Run the guard, if any (its error aborts before side effects).
//  3. Execute the handler under the tool's deadline (ErrToolTimeout).
//
// Example:
//
//	calc, err := NewTool(
//	    "calculator",
//	    "Evaluate a mathematical expression.",
//	    func(ctx context.Context, in CalculatorInput) (string, error) {
//	        return evaluate(in.Expression)
//	    },
//	)
func NewTool[In any](
	name string,
	description string,
	handler func(context.Context, In) (string, error),
	opts ...Option[In],
) (*Tool, error) {
	cfg := toolConfig[In]{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	schema, err := jsonschema.For[In](nil)
	if err != nil {
		return nil, fmt.Errorf("schema for %s: %w", name, err)
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolving schema for %s: %w", name, err)
	}

	run := func(ctx context.Context, raw json.RawMessage) (string, error) {
		if len(raw) == 0 {
			raw = json.RawMessage("{}")
		}

		// Validate against the generic decoding: the schema speaks JSON
		// shapes, not Go types.
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}
		if err := resolved.Validate(generic); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}

		var in In
		if err := json.Unmarshal(raw, &in); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}

		if cfg.guard != nil {
			if err := cfg.guard(in); err != nil {
				return "", err
			}
		}

		execCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
		defer cancel()

		out, err := handler(execCtx, in)
		if err != nil {
			if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
				return "", fmt.Errorf("%w: %s exceeded %s", ErrToolTimeout, name, cfg.timeout)
			}
			return "", fmt.Errorf("running %s: %w", name, err)
		}
		return out, nil
	}

	return &Tool{
		name:        name,
		description: description,
		schema:      schema,
		timeout:     cfg.timeout,
		run:         run,
	}, nil
}
