package api

import "net/http"

// HealthHandler handles the health endpoint.
type HealthHandler struct {
	model string
}

// NewHealthHandler creates a new health handler reporting the configured
// model identity.
func NewHealthHandler(model string) *HealthHandler {
	return &HealthHandler{model: model}
}

// RegisterRoutes registers health routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.health)
}

// health is a liveness probe. It reports the process as up together with
// the model the server is configured to talk to; it does not probe the
// model host, so a healthy API with a down model still answers 200 here
// and 503 on /api/chat.
func (h *HealthHandler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"model":  h.model,
	})
}
