// Package handler exposes the query facade over HTTP: thin handlers that
// decode a path or query parameter, call into query.Facade, and write a
// JSON response. Every route answers exactly one stat_requests-shaped
// question and nothing else — no page rendering, no sessions.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"transitcat/internal/query"
)

// requestID assigns a caller id to a single HTTP-triggered query. There's
// no batch to correlate against here, so it's always 0.
const requestID = 0

// Handler holds the shared dependencies for all HTTP handlers.
type Handler struct {
	facade *query.Facade
	logger *slog.Logger
}

// New creates a Handler backed by the given facade.
func New(facade *query.Facade, logger *slog.Logger) *Handler {
	return &Handler{facade: facade, logger: logger}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// Bus handles GET /buses/{name}.
func (h *Handler) Bus(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	resp := h.facade.GetBus(requestID, name)
	if !resp.Found {
		writeError(w, http.StatusNotFound, query.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Stop handles GET /stops/{name}.
func (h *Handler) Stop(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	resp := h.facade.GetStop(requestID, name)
	if !resp.Found {
		writeError(w, http.StatusNotFound, query.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Route handles GET /route?from=&to=.
func (h *Handler) Route(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, errors.New("both from and to query parameters are required"))
		return
	}

	resp := h.facade.GetRoute(requestID, from, to)
	if !resp.Found {
		writeError(w, http.StatusNotFound, query.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Map handles GET /map.
func (h *Handler) Map(w http.ResponseWriter, r *http.Request) {
	resp := h.facade.GetMap(requestID)
	writeJSON(w, http.StatusOK, resp)
}
