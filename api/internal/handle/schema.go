package handle

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"compify/api/internal/solver/types"
)

// Schema serves the output schema the model is constrained to.
func (h *Handle) Schema(w http.ResponseWriter, r *http.Request) {
	s, ok := types.SchemaByName(chi.URLParam(r, "name"))
	if !ok {
		http.Error(w, "unknown schema; use 'solution' or 'verification'", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
