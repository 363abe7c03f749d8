package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/skiff-ai/skiff/internal/log"
	"github.com/skiff-ai/skiff/internal/session"
)

// SettingsHandler handles per-session sampling settings.
type SettingsHandler struct {
	store  *session.Store
	logger log.Logger
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(store *session.Store, logger log.Logger) *SettingsHandler {
	return &SettingsHandler{store: store, logger: logger}
}

// RegisterRoutes registers settings routes on the given mux.
func (h *SettingsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/llm-settings", h.get)
	mux.HandleFunc("POST /api/llm-settings", h.update)
}

// SettingsPayload is the wire shape of sampling settings.
type SettingsPayload struct {
	SessionID   string  `json:"session_id"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// get returns a session's current sampling settings. Referencing a session
// that has never been seen returns its defaults.
func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing_session_id", "session_id is required")
		return
	}

	s, err := h.store.Settings(sessionID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_session_id", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, SettingsPayload{
		SessionID:   sessionID,
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
	})
}

// UpdateSettingsRequest is the request body for POST /api/llm-settings.
// Fields are pointers so an absent field leaves the stored value alone.
type UpdateSettingsRequest struct {
	SessionID   string   `json:"session_id"`
	Temperature *float64 `json:"temperature"`
	MaxTokens   *int     `json:"max_tokens"`
}

// update overlays the provided fields onto a session's sampling settings.
// Omitted fields keep their current values; out-of-range values are
// rejected and the stored settings stay untouched.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "missing_session_id", "session_id is required")
		return
	}

	next, err := h.store.Settings(req.SessionID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_session_id", err.Error())
		return
	}
	if req.Temperature != nil {
		next.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		next.MaxTokens = *req.MaxTokens
	}

	if err := h.store.UpdateSettings(req.SessionID, next); err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidTemperature):
			writeError(w, http.StatusBadRequest, "invalid_temperature",
				"temperature must be between 0.0 and 2.0")
		case errors.Is(err, session.ErrInvalidMaxTokens):
			writeError(w, http.StatusBadRequest, "invalid_max_tokens",
				"max_tokens must be between 1 and 131072")
		default:
			writeError(w, http.StatusBadRequest, "invalid_settings", err.Error())
		}
		return
	}

	h.logger.Info("llm settings updated",
		"session_id", req.SessionID,
		"temperature", next.Temperature,
		"max_tokens", next.MaxTokens)

	s, err := h.store.Settings(req.SessionID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_session_id", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, SettingsPayload{
		SessionID:   req.SessionID,
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
	})
}
