package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/skiff-ai/skiff/internal/llm"
	"github.com/skiff-ai/skiff/internal/log"
)

// Registry holds one named set of tools and is the single choke point for
// executing them. Two registries exist at runtime — the standard set and
// the privileged computer-use set — composed once at startup; the
// orchestration loop selects one per turn and never merges them.
//
// Registration happens during startup wiring only. After that the registry
// is read-only and safe for concurrent use.
type Registry struct {
	tools  map[string]*Tool
	order  []string // registration order, preserved in listings
	logger log.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger log.Logger) *Registry {
	return &Registry{
		tools:  make(map[string]*Tool),
		logger: logger,
	}
}

// Register adds a tool under its name. Returns ErrDuplicateTool if the name
// is taken; the existing registration is preserved.
func (r *Registry) Register(t *Tool) error {
	if _, exists := r.tools[t.name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, t.name)
	}
	r.tools[t.name] = t
	r.order = append(r.order, t.name)
	return nil
}

// MustRegister is Register for startup wiring, where a duplicate name is a
// programming error worth crashing on.
func (r *Registry) MustRegister(t *Tool) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Names returns all registered tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Description returns the registered description for name, or "" when the
// tool does not exist.
func (r *Registry) Description(name string) string {
	t, ok := r.tools[name]
	if !ok {
		return ""
	}
	return t.description
}

// Enablement reports each registered tool's effective enabled state under
// prefs: a name absent from prefs is enabled. Used by the tool-listing
// endpoints; reading never mutates anything.
func (r *Registry) Enablement(prefs map[string]bool) map[string]bool {
	out := make(map[string]bool, len(r.order))
	for _, name := range r.order {
		enabled, chosen := prefs[name]
		out[name] = !chosen || enabled
	}
	return out
}

// Definitions returns the wire tool definitions for every tool enabled
// under prefs, in registration order. Disabled tools are simply not
// advertised; the model cannot request what it cannot see.
func (r *Registry) Definitions(prefs map[string]bool) []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		if enabled, chosen := prefs[name]; chosen && !enabled {
			continue
		}
		t := r.tools[name]
		defs = append(defs, llm.ToolDefinition{
			Type: "function",
			Function: llm.Function{
				Name:        t.name,
				Description: t.description,
				Parameters:  t.schema,
			},
		})
	}
	return defs
}

// Execute dispatches one tool invocation: lookup, argument validation,
// guard, deadline-bounded run. Every invocation in the system passes
// through here.
//
// Error classification for callers (errors.Is): ErrUnknownTool,
// ErrInvalidArguments, security.ErrDangerousOperation, ErrToolTimeout;
// anything else is a wrapped execution failure. In all error cases the
// returned string is empty.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (string, error) {
	t, ok := r.tools[name]
	if !ok {
		r.logger.Warn("unknown tool requested", "tool", name)
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	start := time.Now()
	out, err := t.run(ctx, args)
	elapsed := time.Since(start)

	if err != nil {
		r.logger.Warn("tool execution failed",
			"tool", name,
			"elapsed", elapsed,
			"error", err)
		return "", err
	}

	r.logger.Debug("tool executed",
		"tool", name,
		"elapsed", elapsed,
		"result_bytes", len(out))
	return out, nil
}
