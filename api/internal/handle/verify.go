package handle

import (
	"context"
	"encoding/json"
	"net/http"

	"compify/api/internal/solver/types"
)

type VerifyRequest struct {
	Engine string `json:"engine,omitempty"`
	types.VerifyRequest
}

func (h *Handle) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !req.Valid() {
		http.Error(w, "problemText and candidateSolution are required", http.StatusBadRequest)
		return
	}
	gw, err := h.gateway(req.Engine)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.deadline(r))
	defer cancel()

	out, err := gw.RequestVerification(ctx, req.VerifyRequest)
	if err != nil {
		h.fail(w, "verify", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
