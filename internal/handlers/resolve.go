package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/titlematch/internal/matching"
)

// ResolveRequest is the POST body of /api/resolve. Queries and the {{...}} requests
// found in Text are resolved in that order.
type ResolveRequest struct {
	Queries []string `json:"queries"`
	Text    string   `json:"text,omitempty"`
}

// ResolveResponse lists one result per query.
type ResolveResponse struct {
	Results []matching.Result `json:"results"`
}

func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if q == "" {
			h.writeError(w, r, "Missing query parameter q", http.StatusBadRequest)
			return
		}
		h.writeJSON(w, h.resolve(r, q))

	case http.MethodPost:
		var req ResolveRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			h.writeError(w, r, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}

		queries := req.Queries
		if req.Text != "" {
			queries = append(queries, matching.ExtractQueries(req.Text, 0)...)
		}
		if len(queries) == 0 {
			h.writeError(w, r, "No queries in request", http.StatusBadRequest)
			return
		}
		if len(queries) > h.maxQueries {
			slog.Warn("Truncating request", "request_id", RequestIDFromContext(r.Context()), "queries", len(queries), "max", h.maxQueries)
			queries = queries[:h.maxQueries]
		}

		resp := ResolveResponse{Results: make([]matching.Result, 0, len(queries))}
		for _, q := range queries {
			resp.Results = append(resp.Results, h.resolve(r, q))
		}
		h.writeJSON(w, resp)

	default:
		h.writeError(w, r, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) resolve(r *http.Request, q string) matching.Result {
	m := h.holder.Load()
	res := m.Resolve(q).Result(m.MinRatio())
	slog.Info("Resolved query",
		"request_id", RequestIDFromContext(r.Context()),
		"query", q,
		"id", res.ID,
		"score", res.Score,
		"valid", res.Valid)
	return res
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, r, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, h.holder.Load().Index().Stats())
}
