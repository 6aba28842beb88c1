package handle

import (
	"context"
	"encoding/json"
	"net/http"

	"compify/api/internal/solver/types"
)

type SolveRequest struct {
	Engine string `json:"engine,omitempty"`
	types.SolveRequest
}

func (h *Handle) Solve(w http.ResponseWriter, r *http.Request) {
	var req SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !req.HasInput() {
		http.Error(w, "problemText or image is required", http.StatusBadRequest)
		return
	}
	gw, err := h.gateway(req.Engine)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.deadline(r))
	defer cancel()

	out, err := gw.RequestSolution(ctx, req.SolveRequest)
	if err != nil {
		h.fail(w, "solve", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
