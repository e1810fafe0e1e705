package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/okian/unisignals/internal/adapters/repository"
	"github.com/okian/unisignals/internal/domain/model"
	"github.com/okian/unisignals/pkg/metrics"
)

// MatchesHandler serves asynchronous submission and stored results.
type MatchesHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps Dependencies, maxLimit int) *MatchesHandler {
	return &MatchesHandler{deps: deps, maxLimit: maxLimit}
}

// HandleSubmit handles POST /v1/matches.
func (h *MatchesHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_match"

	var req matchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validateInput(req.RawMatchInput); err != nil {
		metrics.RecordValidationError()
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	sub, err := h.deps.Submit(r.Context(), model.MatchRequest{MatchID: req.MatchID, Input: req.RawMatchInput})
	switch {
	case errors.Is(err, ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	case sub.Duplicate:
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", MatchID: sub.MatchID, Duplicate: true})
	default:
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", MatchID: sub.MatchID})
	}
}

// HandleList handles GET /v1/matches?limit=N, most decisive first.
func (h *MatchesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_matches"

	n := min(defaultListLimit, h.maxLimit)
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if v > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		n = v
	}

	entries, err := h.deps.TopN(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleGet handles GET /v1/matches/{id}.
func (h *MatchesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.lookup(w, r, "api.get_match")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// HandlePrompt handles GET /v1/matches/{id}/prompt and returns only the
// five prompt labels.
func (h *MatchesHandler) HandlePrompt(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.lookup(w, r, "api.get_prompt")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, entry.Signals.PromptFields())
}

func (h *MatchesHandler) lookup(w http.ResponseWriter, r *http.Request, op string) (repository.Entry, bool) {
	id := mux.Vars(r)["id"]
	entry, err := h.deps.Get(r.Context(), id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
		return repository.Entry{}, false
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return repository.Entry{}, false
	}
	return entry, true
}
