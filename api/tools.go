package api

import (
	"encoding/json"
	"net/http"

	"github.com/skiff-ai/skiff/internal/log"
	"github.com/skiff-ai/skiff/internal/session"
	"github.com/skiff-ai/skiff/internal/tools"
)

// ToolsHandler handles tool listing and per-session tool preferences.
type ToolsHandler struct {
	store      *session.Store
	standard   *tools.Registry
	privileged *tools.Registry
	logger     log.Logger
}

// NewToolsHandler creates a new tools handler.
func NewToolsHandler(store *session.Store, standard, privileged *tools.Registry, logger log.Logger) *ToolsHandler {
	return &ToolsHandler{store: store, standard: standard, privileged: privileged, logger: logger}
}

// RegisterRoutes registers tool routes on the given mux.
func (h *ToolsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/tools", h.list)
	mux.HandleFunc("POST /api/tools", h.update)
	mux.HandleFunc("GET /api/computer-use-tools", h.listComputerUse)
}

// ToolInfo describes one tool in API responses.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// list returns the standard tools with the session's enablement applied.
// Query parameter session_id is optional; without it, defaults apply.
func (h *ToolsHandler) list(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	var prefs map[string]bool
	if sessionID != "" {
		var err error
		prefs, err = h.store.Preferences(sessionID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_session_id", err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tools": h.describe(h.standard, prefs),
	})
}

// listComputerUse returns the privileged tool set. Enablement preferences
// do not apply to it; the whole registry is always active in computer-use
// mode.
func (h *ToolsHandler) listComputerUse(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"tools": h.describe(h.privileged, nil),
	})
}

// UpdateToolsRequest is the request body for POST /api/tools.
type UpdateToolsRequest struct {
	SessionID   string          `json:"session_id"`
	Preferences map[string]bool `json:"preferences"`
}

// update stores tool preferences for a session and returns the resulting
// tool list. Unknown tool names are stored but ignored by both listing and
// dispatch.
func (h *ToolsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateToolsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "missing_session_id", "session_id is required")
		return
	}

	if err := h.store.SetPreferences(req.SessionID, req.Preferences); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_session_id", err.Error())
		return
	}
	h.logger.Info("tool preferences updated",
		"session_id", req.SessionID,
		"count", len(req.Preferences))

	prefs, err := h.store.Preferences(req.SessionID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_session_id", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tools": h.describe(h.standard, prefs),
	})
}

// describe renders a registry's tools with enablement applied.
func (h *ToolsHandler) describe(registry *tools.Registry, prefs map[string]bool) []ToolInfo {
	enabled := registry.Enablement(prefs)
	infos := make([]ToolInfo, 0, len(registry.Names()))
	for _, name := range registry.Names() {
		infos = append(infos, ToolInfo{
			Name:        name,
			Description: registry.Description(name),
			Enabled:     enabled[name],
		})
	}
	return infos
}
