package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/skiff-ai/skiff/internal/llm"
	"github.com/skiff-ai/skiff/internal/session"
	"github.com/skiff-ai/skiff/internal/tools"
)

const (
	// defaultMaxRounds bounds how many model calls one turn may make. Each
	// round is one completion plus the dispatch of whatever tools it
	// requested.
	defaultMaxRounds = 5

	// roundExhaustedAnswer is returned when the model keeps requesting
	// tools past the round limit without producing an answer.
	roundExhaustedAnswer = "I could not finish answering within the allowed number of tool rounds. " +
		"The tool results gathered so far are in the conversation above; please ask again or narrow the question."
)

// Config shapes an Agent.
type Config struct {
	// Model is the model identifier sent with every completion request.
	Model string

	// MaxRounds overrides the per-turn round bound when positive.
	MaxRounds int

	// ModelCallsPerSecond throttles completion requests across all
	// sessions. Zero disables throttling.
	ModelCallsPerSecond float64
}

// Agent runs the orchestration loop. It is safe for concurrent use; all
// conversation state lives in the session store.
type Agent struct {
	client     llm.Completer
	standard   *tools.Registry
	privileged *tools.Registry
	sessions   *session.Store
	limiter    *rate.Limiter
	model      string
	maxRounds  int
	logger     *slog.Logger
}

// New assembles an Agent from its collaborators.
func New(client llm.Completer, standard, privileged *tools.Registry, sessions *session.Store, cfg Config, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	maxRounds := cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxRounds
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.ModelCallsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.ModelCallsPerSecond), int(cfg.ModelCallsPerSecond)+1)
	}
	return &Agent{
		client:     client,
		standard:   standard,
		privileged: privileged,
		sessions:   sessions,
		limiter:    limiter,
		model:      cfg.Model,
		maxRounds:  maxRounds,
		logger:     logger,
	}
}

// ProcessTurn runs one user message through the loop: model call, tool
// dispatch, repeat, until the model answers in plain text or the round
// bound is hit. Session history is committed only when the turn succeeds,
// so a model failure leaves the conversation exactly as it was.
func (a *Agent) ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	if req.Message == "" {
		return nil, ErrEmptyMessage
	}
	start := time.Now()

	if req.Preferences != nil {
		if err := a.sessions.SetPreferences(req.SessionID, req.Preferences); err != nil {
			return nil, fmt.Errorf("applying tool preferences: %w", err)
		}
	}
	prefs, err := a.sessions.Preferences(req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("reading tool preferences: %w", err)
	}
	settings, err := a.sessions.Settings(req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("reading session settings: %w", err)
	}
	history, err := a.sessions.History(req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("reading session history: %w", err)
	}

	registry := a.standard
	systemText := standardPrompt(start)
	if req.ComputerUse {
		registry = a.privileged
		systemText = computerUsePrompt(ctx, start)
	}
	definitions := registry.Definitions(prefs)
	enabled := registry.Enablement(prefs)

	userMsg := llm.Message{Role: llm.RoleUser, Content: req.Message}
	working := make([]llm.Message, 0, len(history)+2)
	working = append(working, llm.Message{Role: llm.RoleSystem, Content: systemText})
	working = append(working, history...)
	working = append(working, userMsg)

	result := &TurnResult{Messages: []llm.Message{userMsg}}

	answered := false
	for round := 1; round <= a.maxRounds && !answered; round++ {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrModelTurn, err)
		}

		callStart := time.Now()
		reply, err := a.client.Complete(ctx, llm.Request{
			Model:       a.model,
			Messages:    trimForRequest(working),
			Tools:       definitions,
			Temperature: settings.Temperature,
			MaxTokens:   settings.MaxTokens,
		})
		callElapsed := time.Since(callStart)
		result.Timing.ModelCalls = append(result.Timing.ModelCalls, callElapsed)
		if err != nil {
			a.logger.Error("model call failed",
				slog.String("session_id", req.SessionID),
				slog.Int("round", round),
				slog.Any("error", err))
			return nil, fmt.Errorf("%w: %w", ErrModelTurn, err)
		}
		if req.Advanced {
			result.Debug = append(result.Debug, DebugEvent{
				Round:   round,
				Kind:    "model_call",
				Detail:  describeReply(reply),
				Elapsed: callElapsed,
			})
		}

		if len(reply.ToolCalls) == 0 {
			answer := reply.Content
			// In computer-use mode a plain reply with corrected code after
			// a failed execution gets one automatic re-run before the
			// answer is accepted.
			if req.ComputerUse {
				if code, ok := correctedCode(working, answer); ok {
					if exchange, retried, ok := a.retryCorrectedCode(ctx, req, registry, definitions, settings, code, working, result); ok {
						working = append(working, exchange...)
						result.Messages = append(result.Messages, exchange...)
						answer = retried
					}
				}
			}
			final := llm.Message{Role: llm.RoleAssistant, Content: answer}
			working = append(working, final)
			result.Messages = append(result.Messages, final)
			result.Answer = answer
			answered = true
			break
		}

		assistant := *reply
		for i := range assistant.ToolCalls {
			if assistant.ToolCalls[i].ID == "" {
				assistant.ToolCalls[i].ID = uuid.NewString()
			}
		}
		working = append(working, assistant)
		result.Messages = append(result.Messages, assistant)

		for _, tc := range assistant.ToolCalls {
			toolMsg := a.dispatch(ctx, req, registry, enabled, tc, result)
			working = append(working, toolMsg)
			result.Messages = append(result.Messages, toolMsg)
		}
	}

	if !answered {
		a.logger.Warn("turn hit round limit without an answer",
			slog.String("session_id", req.SessionID),
			slog.Int("max_rounds", a.maxRounds))
		final := llm.Message{Role: llm.RoleAssistant, Content: roundExhaustedAnswer}
		working = append(working, final)
		result.Messages = append(result.Messages, final)
		result.Answer = roundExhaustedAnswer
	}

	if err := a.sessions.AppendMessages(req.SessionID, result.Messages...); err != nil {
		return nil, fmt.Errorf("committing turn history: %w", err)
	}

	result.Timing.Total = time.Since(start)
	result.ContextUsage = ContextUsage{
		EstimatedTokens: estimateTokens(working),
		MaxTokens:       settings.MaxTokens,
	}
	return result, nil
}

// dispatch runs one requested tool and renders its outcome as a tool
// message. Failures never abort the turn; they are reported back to the
// model as text so it can recover or explain.
func (a *Agent) dispatch(ctx context.Context, req TurnRequest, registry *tools.Registry, enabled map[string]bool, tc llm.ToolCall, result *TurnResult) llm.Message {
	name := tc.Function.Name
	toolStart := time.Now()

	var content string
	switch {
	case !enabled[name] && containsTool(registry, name):
		content = fmt.Sprintf("Tool %q is disabled for this session.", name)
	default:
		out, err := registry.Execute(ctx, name, tc.Function.ArgumentsJSON())
		if err != nil {
			content = fmt.Sprintf("Error: %v", err)
		} else {
			content = sanitizeToolResult(out)
		}
	}

	elapsed := time.Since(toolStart)
	result.Timing.ToolCalls = append(result.Timing.ToolCalls, ToolTiming{Name: name, Elapsed: elapsed})
	if req.Advanced {
		result.Debug = append(result.Debug, DebugEvent{
			Round:   len(result.Timing.ModelCalls),
			Kind:    "tool_call",
			Name:    name,
			Detail:  snippet(content, 200),
			Elapsed: elapsed,
		})
	}
	return llm.Message{Role: llm.RoleTool, Content: content, ToolCallID: tc.ID}
}

func containsTool(registry *tools.Registry, name string) bool {
	for _, n := range registry.Names() {
		if n == name {
			return true
		}
	}
	return false
}

func describeReply(reply *llm.Message) string {
	if len(reply.ToolCalls) == 0 {
		return "answer: " + snippet(reply.Content, 200)
	}
	names := make([]string, 0, len(reply.ToolCalls))
	for _, tc := range reply.ToolCalls {
		names = append(names, tc.Function.Name)
	}
	return fmt.Sprintf("requested tools: %v", names)
}

func snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
