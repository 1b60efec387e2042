package api

import (
	"net/http"

	"flightlog-service/internal/domain/entity"
	"flightlog-service/internal/usecase"
	"flightlog-service/pkg/logger"
)

// SyncHandler exposes sync status and controls. Sync failures never
// propagate here as server errors: they are state, not exceptions.
type SyncHandler struct {
	coordinator *usecase.SyncCoordinator
	identity    entity.UserIdentity
	log         logger.Logger
}

func NewSyncHandler(coordinator *usecase.SyncCoordinator, identity entity.UserIdentity, log logger.Logger) *SyncHandler {
	return &SyncHandler{coordinator: coordinator, identity: identity, log: log}
}

func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.coordinator.Status())
}

// Force triggers an immediate push. Offline it is a warning no-op; a
// transport failure reports the updated sync state rather than a 5xx.
func (h *SyncHandler) Force(w http.ResponseWriter, r *http.Request) {
	pushed, err := h.coordinator.ForceSync()
	if err != nil {
		writeJSON(w, http.StatusOK, h.coordinator.Status())
		return
	}
	if !pushed {
		if !h.coordinator.Status().Online {
			writeWarning(w, "sync unavailable while offline")
			return
		}
		writeWarning(w, "sync already in progress")
		return
	}

	writeJSON(w, http.StatusOK, h.coordinator.Status())
}

func (h *SyncHandler) ClearError(w http.ResponseWriter, r *http.Request) {
	h.coordinator.ClearError()
	writeJSON(w, http.StatusOK, h.coordinator.Status())
}

func (h *SyncHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.identity)
}
