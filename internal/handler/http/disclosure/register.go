package disclosure

import (
	"log/slog"
	"net/http"
	"time"
)

// Register mounts the disclosure endpoint on mux under both its routes.
// Method checks happen in the handler so non-POST requests get the JSON 405 body.
func Register(mux *http.ServeMux, svc Lister, timeout time.Duration, logger *slog.Logger) {
	h := ListHandler{Svc: svc, Logger: logger, Timeout: timeout}
	mux.Handle("/api/tdnet", h)
	mux.Handle("/api/disclosures", h)
}
