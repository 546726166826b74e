package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/easygallery/server/internal/models"
	"github.com/easygallery/server/internal/services"
)

// SyncHandler exposes the Drive sync endpoints
type SyncHandler struct {
	syncService *services.SyncService
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncService *services.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// Trigger runs a Drive sync for a user and waits for it to finish
// @Summary Trigger a Drive sync
// @Description Walks the user's Drive folder tree and mirrors every image into the catalog
// @Tags sync
// @Accept json
// @Produce json
// @Param request body models.SyncRequest true "User and optional folder override"
// @Success 200 {object} models.SyncResponse
// @Failure 400 {object} models.SyncResponse
// @Router /api/admin/sync [post]
func (h *SyncHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var req models.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.SyncResponse{OK: false, Error: "Invalid request body"})
		return
	}
	if req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, models.SyncResponse{OK: false, Error: "userId is required"})
		return
	}

	job, err := h.syncService.Sync(r.Context(), req.UserID, req.FolderID)
	if err != nil {
		status := http.StatusInternalServerError
		switch err {
		case models.ErrUserNotFound:
			status = http.StatusNotFound
		case models.ErrMissingFolderID:
			status = http.StatusBadRequest
		}
		resp := models.SyncResponse{OK: false, Error: err.Error()}
		if job != nil {
			resp.JobID = job.ID
		}
		writeJSON(w, status, resp)
		return
	}

	writeJSON(w, http.StatusOK, models.SyncResponse{
		OK:           true,
		JobID:        job.ID,
		PhotosSynced: job.Processed,
	})
}

// JobStatus returns the state of one sync job
// @Summary Sync job status
// @Tags sync
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} models.SyncJob
// @Failure 404 {object} models.ErrorResponse
// @Router /api/admin/sync/jobs/{id} [get]
func (h *SyncHandler) JobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	job, err := h.syncService.JobStatus(r.Context(), jobID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if job == nil {
		writeError(w, http.StatusNotFound, "Sync job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// LatestForUser returns the newest sync job for a user
// @Summary Latest sync job for a user
// @Tags sync
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.SyncJob
// @Failure 404 {object} models.ErrorResponse
// @Router /api/admin/users/{id}/sync [get]
func (h *SyncHandler) LatestForUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	job, err := h.syncService.LatestJobForUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if job == nil {
		writeError(w, http.StatusNotFound, "No sync jobs for this user")
		return
	}
	writeJSON(w, http.StatusOK, job)
}
