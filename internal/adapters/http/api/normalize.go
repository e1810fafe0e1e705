package api

import (
	"net/http"

	"github.com/okian/unisignals/internal/domain/model"
	"github.com/okian/unisignals/pkg/metrics"
)

// NormalizeHandler serves synchronous normalization.
type NormalizeHandler struct {
	deps Dependencies
}

// NewNormalizeHandler creates a new normalize handler.
func NewNormalizeHandler(deps Dependencies) *NormalizeHandler {
	return &NormalizeHandler{deps: deps}
}

// HandleNormalize handles POST /v1/normalize. The body is a raw match input
// and the response is the full signal bundle.
func (h *NormalizeHandler) HandleNormalize(w http.ResponseWriter, r *http.Request) {
	const op = "api.normalize"

	var in model.RawMatchInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validateInput(in); err != nil {
		metrics.RecordValidationError()
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Normalize(r.Context(), in))
}
