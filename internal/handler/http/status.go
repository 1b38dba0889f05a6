package http

import (
	"net/http"
)

// status handles GET /api/status: the lifecycle manager's published
// snapshot.
func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.lifecycle.Status())
}

// pendingSummary handles GET /api/pending: a fresh pending-work summary for
// the current account.
func (h *Handler) pendingSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.pending.Summary(r.Context())
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "pending summary unavailable"})
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
}
