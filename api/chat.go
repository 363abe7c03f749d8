package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/skiff-ai/skiff/internal/agent"
	"github.com/skiff-ai/skiff/internal/llm"
	"github.com/skiff-ai/skiff/internal/log"
	"github.com/skiff-ai/skiff/internal/session"
)

// MaxMessageLength bounds the user message accepted by /api/chat.
const MaxMessageLength = 10000

// ChatHandler handles the chat and reset endpoints.
type ChatHandler struct {
	agent  *agent.Agent
	store  *session.Store
	logger log.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(ag *agent.Agent, store *session.Store, logger log.Logger) *ChatHandler {
	return &ChatHandler{agent: ag, store: store, logger: logger}
}

// RegisterRoutes registers chat routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.chat)
	mux.HandleFunc("POST /api/reset", h.reset)
}

// ChatRequest is the request body for POST /api/chat.
type ChatRequest struct {
	Message         string          `json:"message"`
	SessionID       string          `json:"session_id"`
	AdvancedMode    bool            `json:"advanced_mode"`
	ComputerUseMode bool            `json:"computer_use_mode"`
	ToolPreferences map[string]bool `json:"tool_preferences,omitempty"`
}

// ChatResponse is the response body for POST /api/chat.
type ChatResponse struct {
	SessionID string         `json:"session_id"`
	Response  string         `json:"response"`
	Messages  []llm.Message  `json:"messages"`
	Timing    TimingPayload  `json:"timing"`
	Debug     []DebugPayload `json:"debug,omitempty"`
	Usage     UsagePayload   `json:"context_usage"`
}

// TimingPayload reports turn timings in milliseconds.
type TimingPayload struct {
	TotalMS      float64             `json:"total_ms"`
	ModelCallsMS []float64           `json:"model_calls_ms"`
	ToolCalls    []ToolTimingPayload `json:"tool_calls"`
}

// ToolTimingPayload is one tool invocation's timing.
type ToolTimingPayload struct {
	Name      string  `json:"name"`
	ElapsedMS float64 `json:"elapsed_ms"`
}

// DebugPayload is one advanced-mode trace entry.
type DebugPayload struct {
	Round     int     `json:"round"`
	Kind      string  `json:"kind"`
	Name      string  `json:"name,omitempty"`
	Detail    string  `json:"detail"`
	ElapsedMS float64 `json:"elapsed_ms"`
}

// UsagePayload is the context-window estimate.
type UsagePayload struct {
	EstimatedTokens int `json:"estimated_tokens"`
	MaxTokens       int `json:"max_tokens"`
}

// chat runs one conversation turn.
func (h *ChatHandler) chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "missing_message", "message is required")
		return
	}
	if len(req.Message) > MaxMessageLength {
		writeError(w, http.StatusBadRequest, "message_too_long", "message exceeds 10000 characters")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	result, err := h.agent.ProcessTurn(r.Context(), agent.TurnRequest{
		SessionID:   req.SessionID,
		Message:     req.Message,
		ComputerUse: req.ComputerUseMode,
		Advanced:    req.AdvancedMode,
		Preferences: req.ToolPreferences,
	})
	if err != nil {
		h.logger.Error("chat turn failed", "session_id", req.SessionID, "error", err)
		switch {
		case errors.Is(err, llm.ErrModelUnavailable):
			writeError(w, http.StatusServiceUnavailable, "model_unavailable",
				"the local model is not reachable")
		case errors.Is(err, agent.ErrEmptyMessage):
			writeError(w, http.StatusBadRequest, "missing_message", "message is required")
		default:
			writeError(w, http.StatusInternalServerError, "turn_failed", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, buildChatResponse(req.SessionID, result))
}

// ResetRequest is the request body for POST /api/reset.
type ResetRequest struct {
	SessionID string `json:"session_id"`
}

// reset clears a session's history and tool preferences. Sampling settings
// survive a reset.
func (h *ChatHandler) reset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "missing_session_id", "session_id is required")
		return
	}

	if err := h.store.Reset(req.SessionID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_session_id", err.Error())
		return
	}
	h.logger.Info("session reset", "session_id", req.SessionID)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "reset",
		"session_id": req.SessionID,
	})
}

// buildChatResponse converts a turn result to its wire shape.
func buildChatResponse(sessionID string, result *agent.TurnResult) ChatResponse {
	timing := TimingPayload{
		TotalMS:      toMS(result.Timing.Total),
		ModelCallsMS: make([]float64, 0, len(result.Timing.ModelCalls)),
		ToolCalls:    make([]ToolTimingPayload, 0, len(result.Timing.ToolCalls)),
	}
	for _, d := range result.Timing.ModelCalls {
		timing.ModelCallsMS = append(timing.ModelCallsMS, toMS(d))
	}
	for _, tc := range result.Timing.ToolCalls {
		timing.ToolCalls = append(timing.ToolCalls, ToolTimingPayload{
			Name:      tc.Name,
			ElapsedMS: toMS(tc.Elapsed),
		})
	}

	var debug []DebugPayload
	for _, ev := range result.Debug {
		debug = append(debug, DebugPayload{
			Round:     ev.Round,
			Kind:      ev.Kind,
			Name:      ev.Name,
			Detail:    ev.Detail,
			ElapsedMS: toMS(ev.Elapsed),
		})
	}

	return ChatResponse{
		SessionID: sessionID,
		Response:  result.Answer,
		Messages:  result.Messages,
		Timing:    timing,
		Debug:     debug,
		Usage: UsagePayload{
			EstimatedTokens: result.ContextUsage.EstimatedTokens,
			MaxTokens:       result.ContextUsage.MaxTokens,
		},
	}
}

func toMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
