// Package http exposes the agent's read-only local status endpoint: the
// surface the device UI shell polls for the connection indicator and the
// pending-work badge. It binds to loopback and never mutates engine state.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/service"
)

// Handler serves the local status API.
type Handler struct {
	lifecycle service.LifecycleManager
	pending   service.PendingInspector
	logger    *logger.Logger
}

// NewHandler constructs a status [Handler] over the engine components.
func NewHandler(lifecycle service.LifecycleManager, pending service.PendingInspector, logger *logger.Logger) *Handler {
	return &Handler{
		lifecycle: lifecycle,
		pending:   pending,
		logger:    logger,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Err(err).Str("func", "Handler.writeJSON").Msg("failed to encode response")
	}
}
