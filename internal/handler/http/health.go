package http

import (
	"net/http"
	"time"

	"disclosure-feed/internal/handler/http/respond"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
}

// HealthHandler reports process health. The API keeps no connections of its
// own, so a running process is a healthy one.
type HealthHandler struct {
	Version   string
	StartedAt time.Time
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	now := time.Now()
	respond.JSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: now.UTC().Format(time.RFC3339),
		Version:   h.Version,
		Uptime:    now.Sub(h.StartedAt).Truncate(time.Second).String(),
	})
}

// LiveHandler answers liveness checks.
func LiveHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
