package handle

import (
	"encoding/json"
	"net/http"
	"strings"
)

type credentialBody struct {
	APIKey string `json:"apiKey"`
}

type credentialStatus struct {
	Configured bool `json:"configured"`
}

// CredentialStatus never returns the key itself.
func (h *Handle) CredentialStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, credentialStatus{Configured: h.creds.Configured()})
}

func (h *Handle) SetCredential(w http.ResponseWriter, r *http.Request) {
	var body credentialBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(body.APIKey) == "" {
		http.Error(w, "apiKey is required; use DELETE to clear", http.StatusBadRequest)
		return
	}
	if err := h.creds.Set(r.Context(), body.APIKey); err != nil {
		h.fail(w, "set credential", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handle) ClearCredential(w http.ResponseWriter, r *http.Request) {
	if err := h.creds.Clear(r.Context()); err != nil {
		h.fail(w, "clear credential", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
