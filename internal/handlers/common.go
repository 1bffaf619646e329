// Package handlers exposes the resolver over HTTP.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/titlematch/internal/matching"
)

// DefaultMaxQueries caps the requests resolved per call.
const DefaultMaxQueries = 10

type Handler struct {
	holder     *matching.Holder
	maxQueries int
}

func New(holder *matching.Holder, maxQueries int) *Handler {
	if maxQueries <= 0 {
		maxQueries = DefaultMaxQueries
	}
	return &Handler{
		holder:     holder,
		maxQueries: maxQueries,
	}
}

// Routes registers every endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/resolve", h.HandleResolve)
	mux.HandleFunc("/api/stats", h.HandleStats)
	mux.HandleFunc("/healthcheck", h.HandleHealthcheck)
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, message string, code int) {
	slog.Error(message, "request_id", RequestIDFromContext(r.Context()), "status", code)
	http.Error(w, message, code)
}

func (h *Handler) HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Unable to write healthcheck", "err", err)
	}
}
